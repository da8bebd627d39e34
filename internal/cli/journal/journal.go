package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/habitforge/internal/cli"
	"github.com/julianstephens/habitforge/internal/constants"
	"github.com/julianstephens/habitforge/internal/models"
	"github.com/julianstephens/habitforge/internal/quotes"
	"github.com/julianstephens/habitforge/internal/utils"
)

type JournalCmd struct {
	Add    JournalAddCmd    `cmd:"" help:"Write a journal entry."`
	Edit   JournalEditCmd   `cmd:"" help:"Edit a journal entry."`
	List   JournalListCmd   `cmd:"" help:"List recent journal entries."`
	Delete JournalDeleteCmd `cmd:"" help:"Delete a journal entry."`
}

type JournalAddCmd struct {
	Content string `arg:"" help:"Entry text."`
	Mood    int    `short:"m" help:"Mood from 1 (low) to 5 (high)." default:"${default_mood}"`
	Date    string `help:"Date in YYYY-MM-DD format (default: today)."`
	Habit   int64  `help:"Link the entry to a habit ID."`
}

func (c *JournalAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	entry := models.JournalEntry{
		Content:   strings.TrimSpace(c.Content),
		Mood:      c.Mood,
		Date:      c.Date,
		CreatedAt: ctx.Now(),
	}
	if entry.Date == "" {
		entry.Date = ctx.Today()
	}
	if c.Habit != 0 {
		if _, err := ctx.Store.GetHabit(bg, c.Habit); err != nil {
			return fmt.Errorf("failed to find habit: %w", err)
		}
		entry.HabitID = &c.Habit
	}

	id, err := ctx.Store.AddJournalEntry(bg, entry)
	if err != nil {
		return err
	}
	fmt.Printf("Added journal entry %d for %s\n", id, entry.Date)
	return nil
}

type JournalEditCmd struct {
	ID      int64   `arg:"" help:"Journal entry ID."`
	Content *string `help:"New entry text."`
	Mood    *int    `short:"m" help:"New mood from 1 (low) to 5 (high)."`
	Date    *string `help:"New date in YYYY-MM-DD format."`
	Habit   *int64  `help:"Link to a habit ID. Pass 0 to clear the link."`
}

func (c *JournalEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	entry, err := ctx.Store.GetJournalEntry(bg, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find journal entry: %w", err)
	}

	if c.Content != nil {
		entry.Content = strings.TrimSpace(*c.Content)
	}
	if c.Mood != nil {
		entry.Mood = *c.Mood
	}
	if c.Date != nil {
		entry.Date = *c.Date
	}
	if c.Habit != nil {
		if *c.Habit == 0 {
			entry.HabitID = nil
		} else {
			if _, err := ctx.Store.GetHabit(bg, *c.Habit); err != nil {
				return fmt.Errorf("failed to find habit: %w", err)
			}
			id := *c.Habit
			entry.HabitID = &id
		}
	}

	if err := ctx.Store.UpdateJournalEntry(bg, entry); err != nil {
		return err
	}
	fmt.Printf("Updated journal entry %d\n", entry.ID)
	return nil
}

type JournalListCmd struct {
	Days  int    `help:"Number of days to show." default:"7"`
	On    string `help:"Show only entries written for this date (YYYY-MM-DD)."`
	Habit int64  `help:"Show every entry linked to this habit ID."`
}

func (c *JournalListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	var (
		entries []models.JournalEntry
		err     error
	)
	switch {
	case c.Habit != 0:
		if _, err := ctx.Store.GetHabit(bg, c.Habit); err != nil {
			return fmt.Errorf("failed to find habit: %w", err)
		}
		entries, err = ctx.Store.GetJournalEntriesForHabit(bg, c.Habit)
	case c.On != "":
		if !utils.ValidateDateFormat(c.On) {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", c.On)
		}
		entries, err = ctx.Store.GetJournalEntriesForDate(bg, c.On)
	default:
		if c.Days < 1 {
			return fmt.Errorf("days must be positive")
		}
		end := ctx.Today()
		start, derr := utils.AddDays(end, -(c.Days - 1))
		if derr != nil {
			return derr
		}
		entries, err = ctx.Store.GetJournalEntriesInRange(bg, start, end)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No journal entries found.")
		return nil
	}

	for _, e := range entries {
		mood := strings.Repeat("*", e.Mood) + strings.Repeat(".", constants.MaxMood-e.Mood)
		link := ""
		if e.HabitID != nil {
			link = cli.MutedStyle.Render(fmt.Sprintf(" (habit %d)", *e.HabitID))
		}
		fmt.Printf("%4d  %s  [%s]  %s%s\n", e.ID, e.Date, mood, e.Content, link)
	}
	return nil
}

type JournalDeleteCmd struct {
	ID int64 `arg:"" help:"Journal entry ID."`
}

func (c *JournalDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.DeleteJournalEntry(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted journal entry %d\n", c.ID)
	return nil
}

type QuoteCmd struct {
	On string `help:"Show the quote for this date (YYYY-MM-DD, default: today)."`
}

func (c *QuoteCmd) Run(ctx *cli.Context) error {
	date := c.On
	if date == "" {
		date = ctx.Today()
	}
	if !utils.ValidateDateFormat(date) {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	fmt.Println(quotes.ForDate(date))
	return nil
}
