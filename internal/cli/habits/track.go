package habits

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/habitforge/internal/cli"
	"github.com/julianstephens/habitforge/internal/constants"
	"github.com/julianstephens/habitforge/internal/models"
	"github.com/julianstephens/habitforge/internal/quotes"
	"github.com/julianstephens/habitforge/internal/streak"
	"github.com/julianstephens/habitforge/internal/utils"
)

type MarkCmd struct {
	ID   int64  `arg:"" help:"Habit ID."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)."`
	Note string `help:"Optional note for this entry."`
}

func (c *MarkCmd) Run(ctx *cli.Context) error {
	rec, err := ctx.Habits(nil).MarkComplete(context.Background(), c.ID, c.Date, c.Note)
	if err != nil {
		return err
	}
	fmt.Printf("%s Marked habit %d done for %s\n", cli.StatusMarker(models.DayDone), rec.HabitID, rec.Date)
	return nil
}

type MissCmd struct {
	ID   int64  `arg:"" help:"Habit ID."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *MissCmd) Run(ctx *cli.Context) error {
	rec, err := ctx.Habits(nil).MarkMissed(context.Background(), c.ID, c.Date)
	if err != nil {
		return err
	}
	fmt.Printf("%s Marked habit %d missed for %s\n", cli.StatusMarker(models.DayMissed), rec.HabitID, rec.Date)
	return nil
}

type UndoCmd struct {
	ID   int64  `arg:"" help:"Habit ID."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *UndoCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = ctx.Today()
	}
	if err := ctx.Habits(nil).Undo(context.Background(), c.ID, date); err != nil {
		return err
	}
	fmt.Printf("Cleared habit %d for %s\n", c.ID, date)
	return nil
}

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	view, err := ctx.Habits(nil).TodayStatus(context.Background())
	if err != nil {
		return err
	}

	if view.Total == 0 {
		fmt.Printf("No habits due on %s.\n", view.Date)
		return nil
	}

	fmt.Println(cli.HeaderStyle.Render("Habits for " + view.Date))
	fmt.Println(cli.MutedStyle.Render(quotes.ForDate(view.Date).String()))
	fmt.Println()
	for _, item := range view.Items {
		streakText := ""
		if item.Streak > 0 {
			streakText = cli.MutedStyle.Render(fmt.Sprintf("  %d day streak", item.Streak))
		}
		fmt.Printf("%s %4d  %s%s\n", cli.StatusMarker(item.Status), item.Habit.ID, item.Habit.Name, streakText)
	}

	fmt.Printf("\nCompleted: %d/%d\n", view.Completed, view.Total)
	return nil
}

type StreakCmd struct {
	ID int64  `arg:"" help:"Habit ID."`
	On string `help:"Evaluate the streak as of this date (default: today)."`
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	h, err := ctx.Store.GetHabit(bg, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find habit: %w", err)
	}

	asOf := c.On
	if asOf == "" {
		asOf = ctx.Today()
	}

	calc := streak.NewCalculator(ctx.Store)
	current, err := calc.CurrentStreak(bg, h.ID, asOf)
	if err != nil {
		return err
	}
	total, err := calc.TotalCompletions(bg, h.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s: current streak %d, %d completions in total\n", h.Name, current, total)
	return nil
}

type StatsCmd struct {
	ID   int64 `arg:"" optional:"" help:"Habit ID. Omit for monthly totals across all habits."`
	Days int   `help:"Number of days of history to show." default:"${history_days}"`
}

func (c *StatsCmd) Validate() error {
	if c.Days < 1 || c.Days > 366 {
		return fmt.Errorf("days must be between 1 and 366")
	}
	return nil
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if c.ID == 0 {
		return c.monthly(ctx)
	}

	bg := context.Background()
	h, err := ctx.Store.GetHabit(bg, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find habit: %w", err)
	}

	today := ctx.Today()
	calc := streak.NewCalculator(ctx.Store)
	summary, err := calc.Summary(bg, h, today)
	if err != nil {
		return err
	}

	start, err := utils.AddDays(today, -(c.Days - 1))
	if err != nil {
		return err
	}
	history, err := calc.History(bg, h.ID, start, today)
	if err != nil {
		return err
	}

	fmt.Println(cli.HeaderStyle.Render(h.Name))
	fmt.Printf("Current streak:   %d\n", summary.CurrentStreak)
	fmt.Printf("Total completed:  %d\n", summary.Total)
	fmt.Printf("Last %d days:     %d/%d due days (%.0f%%)\n",
		summary.WindowDays, summary.CompletedDue, summary.DueDays, summary.Rate*100)
	fmt.Println()

	var markers strings.Builder
	for _, day := range history {
		markers.WriteString(cli.StatusMarker(day.Status))
	}
	fmt.Printf("%s .. %s  %s\n", start, today, markers.String())
	return nil
}

func (c *StatsCmd) monthly(ctx *cli.Context) error {
	stats, err := ctx.Store.MonthlyCompletionStats(context.Background())
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Println("No completions recorded yet.")
		return nil
	}

	fmt.Println(cli.HeaderStyle.Render("Completions per month"))
	for _, s := range stats {
		fmt.Printf("%-*s  %d\n", len(constants.MonthFormat), s.Month, s.CompletedCount)
	}
	return nil
}
