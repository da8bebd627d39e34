package reminder

import (
	"fmt"
	"time"

	apperrors "github.com/julianstephens/habitforge/internal/errors"
	"github.com/julianstephens/habitforge/internal/utils"
)

// ComputeFireTime returns the instant a habit's one-shot reminder should fire,
// evaluated in now's location. ok is false when nothing should be scheduled.
//
//   - start today or tomorrow: today at HH:MM if still ahead, else tomorrow at HH:MM
//   - start two or more days out: the day before start at HH:MM
//   - start in the past: nothing
//
// A result that is not strictly after now is never returned.
func ComputeFireTime(reminderTime, startDate string, now time.Time) (time.Time, bool, error) {
	hour, minute, err := utils.ParseClock(reminderTime)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", apperrors.ErrInvalidReminderTime, err)
	}

	start, err := utils.ParseDate(startDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: start date %q", apperrors.ErrInvalidDate, startDate)
	}

	loc := now.Location()
	at := func(d time.Time) time.Time {
		return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
	}

	today := utils.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	startDay := utils.FormatDate(start)

	var fire time.Time
	switch {
	case startDay == utils.FormatDate(today), startDay == utils.FormatDate(tomorrow):
		fire = at(today)
		if !fire.After(now) {
			fire = at(tomorrow)
		}
	case startDay > utils.FormatDate(tomorrow):
		fire = at(start.AddDate(0, 0, -1))
	default:
		return time.Time{}, false, nil
	}

	if !fire.After(now) {
		return time.Time{}, false, nil
	}
	return fire, true, nil
}
