// Package notifier delivers reminder messages to the user.
package notifier

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitforge/internal/constants"
	"github.com/julianstephens/habitforge/internal/logger"
)

// Message is a user-visible reminder.
type Message struct {
	HabitID int64
	Title   string
	Body    string
}

func (m Message) Text() string {
	if m.Body == "" {
		return m.Title
	}
	return m.Title + ": " + m.Body
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// New returns the notifier configured by kind.
func New(kind string) (Notifier, error) {
	switch kind {
	case "", constants.NotifierLog:
		return NewLogNotifier(), nil
	case constants.NotifierTray:
		return NewTray(), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q (expected %s or %s)", kind, constants.NotifierLog, constants.NotifierTray)
	}
}

// LogNotifier writes reminders to the application log.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	logger.Info("Reminder", "habit_id", msg.HabitID, "title", msg.Title, "body", msg.Body)
	return nil
}
