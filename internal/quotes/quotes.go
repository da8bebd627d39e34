// Package quotes picks the motivational quote shown for a day from a fixed
// local list.
package quotes

import (
	"github.com/julianstephens/habitforge/internal/logger"
	"github.com/julianstephens/habitforge/internal/utils"
)

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

func (q Quote) String() string {
	return "\"" + q.Text + "\" - " + q.Author
}

// Fallback is shown when the day cannot be determined.
var Fallback = Quote{Text: "The secret of getting ahead is getting started.", Author: "Mark Twain"}

var local = []Quote{
	Fallback,
	{"Life goes by very fast. And the worst thing in life that you can have is a job that you hate, and have no energy and creativity in.", "Robert Greene"},
	{"The only way to do great work is to love what you do.", "Steve Jobs"},
	{"Success is not final, failure is not fatal: it is the courage to continue that counts.", "Winston Churchill"},
	{"The future belongs to those who believe in the beauty of their dreams.", "Eleanor Roosevelt"},
	{"It is during our darkest moments that we must focus to see the light.", "Aristotle"},
	{"The way to get started is to quit talking and begin doing.", "Walt Disney"},
	{"Don't let yesterday take up too much of today.", "Will Rogers"},
	{"You learn more from failure than from success.", "Unknown"},
	{"If you are working on something exciting that you really care about, you don't have to be pushed. The vision pulls you.", "Steve Jobs"},
}

// ForDate returns the quote for a YYYY-MM-DD date. Every call for the same
// date returns the same quote; consecutive days rotate through the list.
func ForDate(date string) Quote {
	t, err := utils.ParseDate(date)
	if err != nil {
		logger.Warn("Using fallback quote", "date", date, "error", err)
		return Fallback
	}
	return local[t.YearDay()%len(local)]
}
