package habits

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/habitforge/internal/cli"
	habitsvc "github.com/julianstephens/habitforge/internal/habits"
	"github.com/julianstephens/habitforge/internal/models"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	Edit    HabitEditCmd    `cmd:"" help:"Edit an existing habit."`
	List    HabitListCmd    `cmd:"" help:"List habits."`
	Archive HabitArchiveCmd `cmd:"" help:"Archive a habit (keeps its history)."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit and all of its completion records."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Description string `short:"D" help:"Optional description."`
	Frequency   string `short:"f" help:"Frequency (daily|weekly)." enum:"daily,weekly" default:"daily"`
	Days        string `short:"w" help:"Comma-separated weekdays for weekly habits."`
	Reminder    string `short:"r" help:"Reminder time of day (HH:MM, 24h)."`
	Start       string `short:"s" help:"Start date (YYYY-MM-DD, default: today)."`
	End         string `short:"e" help:"Optional end date (YYYY-MM-DD, inclusive)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	days, err := cli.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}

	start := c.Start
	if start == "" {
		start = ctx.Today()
	}

	h, err := ctx.Habits(nil).Add(context.Background(), habitsvc.Input{
		Name:         c.Name,
		Description:  c.Description,
		Frequency:    strings.ToUpper(c.Frequency),
		ReminderTime: c.Reminder,
		StartDate:    start,
		EndDate:      c.End,
		DaysOfWeek:   days,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (ID: %d)\n", h.Name, h.ID)
	if h.HasInvertedRange() {
		fmt.Println("Warning: end date is before start date; this habit will never be due.")
	}
	warnReminder(h)
	return nil
}

func warnReminder(h models.Habit) {
	if habitsvc.ReminderError(h) != nil {
		fmt.Printf("Warning: reminder %q is not HH:MM; no reminder will be scheduled.\n", h.ReminderTime)
	}
}

type HabitEditCmd struct {
	ID          int64   `arg:"" help:"Habit ID."`
	Name        *string `help:"New habit name."`
	Description *string `short:"D" help:"New description."`
	Frequency   *string `short:"f" help:"New frequency (daily|weekly)."`
	Days        *string `short:"w" help:"New comma-separated weekdays."`
	Reminder    *string `short:"r" help:"New reminder time (HH:MM). Pass an empty string to clear it."`
	Start       *string `short:"s" help:"New start date (YYYY-MM-DD)."`
	End         *string `short:"e" help:"New end date (YYYY-MM-DD). Pass an empty string to clear it."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	h, err := ctx.Store.GetHabit(bg, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find habit: %w", err)
	}

	in := habitsvc.InputFrom(h)
	if c.Name != nil {
		in.Name = *c.Name
	}
	if c.Description != nil {
		in.Description = *c.Description
	}
	if c.Frequency != nil {
		in.Frequency = strings.ToUpper(*c.Frequency)
	}
	if c.Days != nil {
		days, err := cli.ParseWeekdays(*c.Days)
		if err != nil {
			return err
		}
		in.DaysOfWeek = days
	}
	if c.Reminder != nil {
		in.ReminderTime = *c.Reminder
	}
	if c.Start != nil {
		in.StartDate = *c.Start
	}
	if c.End != nil {
		in.EndDate = *c.End
	}

	updated, err := ctx.Habits(nil).Update(bg, c.ID, in)
	if err != nil {
		return err
	}

	fmt.Printf("Updated habit: %s (ID: %d)\n", updated.Name, updated.ID)
	warnReminder(updated)
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(context.Background(), c.Archived)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, h := range habits {
		status := ""
		if h.Archived {
			status = " [ARCHIVED]"
		}

		details := []string{cli.FormatFrequency(h), "from " + h.StartDate}
		if h.EndDate != "" {
			details = append(details, "until "+h.EndDate)
		}
		if h.HasReminder() {
			details = append(details, "reminder "+h.ReminderTime)
		}

		fmt.Printf("%4d  %s%s  %s\n", h.ID, h.Name, status, cli.MutedStyle.Render(strings.Join(details, ", ")))
	}
	return nil
}

type HabitArchiveCmd struct {
	ID int64 `arg:"" help:"Habit ID."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	if err := ctx.Habits(nil).Archive(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Archived habit %d\n", c.ID)
	return nil
}

type HabitDeleteCmd struct {
	ID int64 `arg:"" help:"Habit ID."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()
	if err := ctx.Habits(nil).Delete(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit %d\n", c.ID)
	return nil
}
