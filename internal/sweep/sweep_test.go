package sweep

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/robfig/cron/v3"

	apperrors "github.com/julianstephens/habitforge/internal/errors"
	"github.com/julianstephens/habitforge/internal/models"
)

type memStore struct {
	habits      []models.Habit
	records     map[string]models.CompletionRecord
	failLoads   int
	failDeletes int
	deleteCalls int
}

func key(id int64, date string) string { return fmt.Sprintf("%d/%s", id, date) }

func (m *memStore) GetAllHabits(_ context.Context, includeArchived bool) ([]models.Habit, error) {
	if m.failLoads > 0 {
		m.failLoads--
		return nil, errors.New("database is locked")
	}
	var out []models.Habit
	for _, h := range m.habits {
		if includeArchived || !h.Archived {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memStore) GetCompletionsForDate(_ context.Context, date string) ([]models.CompletionRecord, error) {
	var out []models.CompletionRecord
	for _, r := range m.records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) DeleteCompletion(_ context.Context, habitID int64, date string) error {
	m.deleteCalls++
	if m.failDeletes > 0 {
		m.failDeletes--
		return errors.New("disk I/O error")
	}
	delete(m.records, key(habitID, date))
	return nil
}

const today = "2026-01-05"

var midnight = time.Date(2026, 1, 5, 0, 0, 1, 0, time.UTC)

func newStore() *memStore {
	archived := models.Habit{ID: 3, Frequency: models.FrequencyDaily, Archived: true}
	m := &memStore{
		habits: []models.Habit{
			{ID: 1, Frequency: models.FrequencyDaily},
			{ID: 2, Frequency: models.FrequencyWeekly, DaysOfWeek: []string{"MON"}},
			archived,
			{ID: 4, Frequency: models.FrequencyDaily},
		},
		records: make(map[string]models.CompletionRecord),
	}
	for _, r := range []models.CompletionRecord{
		{HabitID: 1, Date: today, IsCompleted: true},
		{HabitID: 2, Date: today, IsCompleted: true},
		{HabitID: 3, Date: today, IsCompleted: true},
		{HabitID: 4, Date: today, IsCompleted: false},
		{HabitID: 1, Date: "2026-01-04", IsCompleted: true},
	} {
		m.records[key(r.HabitID, r.Date)] = r
	}
	return m
}

func fastRetry(tries int) Option {
	return WithRetry(tries, time.Millisecond, 5*time.Millisecond)
}

func TestRunResetsOnlyActiveDailyCompletions(t *testing.T) {
	store := newStore()
	s := New(store, WithClock(func() time.Time { return midnight }))

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Date != today || res.Reset != 1 || res.Checked != 2 {
		t.Errorf("unexpected result: %+v", res)
	}

	if _, ok := store.records[key(1, today)]; ok {
		t.Error("daily habit's completion for today should be removed")
	}
	for _, k := range []string{key(2, today), key(3, today), key(4, today), key(1, "2026-01-04")} {
		if _, ok := store.records[k]; !ok {
			t.Errorf("record %s should be untouched", k)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store := newStore()
	s := New(store, WithClock(func() time.Time { return midnight }))

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := len(store.records)
	deletes := store.deleteCalls

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Reset != 0 || len(store.records) != before || store.deleteCalls != deletes {
		t.Errorf("second pass changed state: %+v", res)
	}
}

func TestRunClassifiesStoreFailuresAsTransient(t *testing.T) {
	store := newStore()
	store.failLoads = 1
	_, err := New(store, WithClock(func() time.Time { return midnight })).Run(context.Background())
	if !apperrors.Is(err, apperrors.ErrTransient) {
		t.Errorf("expected transient error, got %v", err)
	}
}

func TestRunWithRetryRecovers(t *testing.T) {
	store := newStore()
	store.failLoads = 2
	store.failDeletes = 1
	s := New(store, WithClock(func() time.Time { return midnight }), fastRetry(10))

	res, err := s.RunWithRetry(context.Background())
	if err != nil {
		t.Fatalf("RunWithRetry failed: %v", err)
	}
	if res.Reset != 1 {
		t.Errorf("expected the final pass to reset 1 record, got %+v", res)
	}
	if _, ok := store.records[key(1, today)]; ok {
		t.Error("expected record to be removed after retries")
	}
}

func TestRunWithRetryGivesUp(t *testing.T) {
	store := newStore()
	store.failLoads = 100
	s := New(store, WithClock(func() time.Time { return midnight }), fastRetry(3))

	if _, err := s.RunWithRetry(context.Background()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if store.failLoads != 97 {
		t.Errorf("expected exactly 3 attempts, got %d", 100-store.failLoads)
	}
}

func TestRunWithRetryHonoursCancellation(t *testing.T) {
	store := newStore()
	store.failLoads = 100
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(store, WithClock(func() time.Time { return midnight }), WithRetry(50, time.Second, time.Second))
	if _, err := s.RunWithRetry(ctx); err == nil {
		t.Error("expected error with cancelled context")
	}
	if attempts := 100 - store.failLoads; attempts > 1 {
		t.Errorf("expected retries to stop once the context is done, got %d attempts", attempts)
	}
}

func TestRegister(t *testing.T) {
	s := New(newStore())
	c := cron.New(cron.WithSeconds())

	if _, err := s.Register(c, "0 0 0 * * *"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("expected one cron entry, got %d", len(c.Entries()))
	}
	if _, err := s.Register(c, "midnight"); err == nil {
		t.Error("expected error for bad spec")
	}
}
