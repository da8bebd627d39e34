package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD).
	// Completion queries compare these strings lexicographically, so the layout must stay
	// zero-padded ISO-8601.
	DateFormat = "2006-01-02"

	// MonthFormat is the YYYY-MM prefix of DateFormat used for monthly stats
	MonthFormat = "2006-01"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"
)
