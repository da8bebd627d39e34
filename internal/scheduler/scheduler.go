// Package scheduler runs tagged one-shot tasks and periodic jobs on a single
// cron instance.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitforge/internal/logger"
)

type TaskID = string

// Handler receives the payload of a task when it fires.
type Handler func(payload string)

type Task struct {
	ID      TaskID
	Tag     string
	Payload string
	FireAt  time.Time
}

type pendingTask struct {
	Task
	entry cron.EntryID
}

type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	handler Handler
	byTag   map[string]map[TaskID]*pendingTask
}

// once fires a single time at a fixed instant. A zero Next tells cron the
// entry has nothing further to run.
type once struct {
	at time.Time
}

func (o once) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}

// New builds a scheduler whose periodic specs are read in loc, with a
// leading seconds field. One-shot tasks whose instant passes before Start
// never fire.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLogger{})),
		),
		byTag: make(map[string]map[TaskID]*pendingTask),
	}
}

// Handle sets the callback for one-shot tasks.
func (s *Scheduler) Handle(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Cron exposes the underlying cron for periodic job registration.
func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ScheduleOneShot runs payload through the handler once, after delay.
func (s *Scheduler) ScheduleOneShot(delay time.Duration, payload string, tag string) (TaskID, error) {
	if delay <= 0 {
		return "", fmt.Errorf("delay must be positive, got %v", delay)
	}
	if tag == "" {
		return "", errors.New("tag cannot be empty")
	}

	t := &pendingTask{Task: Task{
		ID:      uuid.New().String(),
		Tag:     tag,
		Payload: payload,
		FireAt:  time.Now().Add(delay),
	}}

	s.mu.Lock()
	defer s.mu.Unlock()

	t.entry = s.cron.Schedule(once{at: t.FireAt}, cron.FuncJob(func() { s.run(t) }))
	if s.byTag[tag] == nil {
		s.byTag[tag] = make(map[TaskID]*pendingTask)
	}
	s.byTag[tag][t.ID] = t

	logger.Debug("Task scheduled", "task_id", t.ID, "tag", tag, "fire_at", t.FireAt.Format(time.RFC3339))
	return t.ID, nil
}

// run claims the task before invoking the handler. A task cancelled first is
// no longer pending and is dropped here.
func (s *Scheduler) run(t *pendingTask) {
	s.mu.Lock()
	if _, ok := s.byTag[t.Tag][t.ID]; !ok {
		s.mu.Unlock()
		return
	}
	s.forget(t)
	handler := s.handler
	s.mu.Unlock()

	if handler == nil {
		logger.Warn("Task fired with no handler", "task_id", t.ID, "tag", t.Tag)
		return
	}
	handler(t.Payload)
}

// CancelByTag removes every pending task carrying tag and returns how many
// were removed. Once it returns none of them can start.
func (s *Scheduler) CancelByTag(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.byTag[tag]
	for _, t := range tasks {
		s.forget(t)
	}
	return len(tasks)
}

// forget must be called with mu held.
func (s *Scheduler) forget(t *pendingTask) {
	s.cron.Remove(t.entry)
	delete(s.byTag[t.Tag], t.ID)
	if len(s.byTag[t.Tag]) == 0 {
		delete(s.byTag, t.Tag)
	}
}

// Pending lists the tasks still waiting under tag, soonest first.
func (s *Scheduler) Pending(tag string) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, 0, len(s.byTag[tag]))
	for _, t := range s.byTag[tag] {
		out = append(out, t.Task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

// cronLogger routes cron's own messages to the application log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
