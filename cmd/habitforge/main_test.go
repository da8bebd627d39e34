package main

import (
	"testing"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitforge/internal/constants"
)

func TestFlagDefaults(t *testing.T) {
	tests := []struct {
		name string
		args []string
		got  func() int
		want int
	}{
		{
			name: "journal add mood",
			args: []string{"journal", "add", "Felt good"},
			got:  func() int { return CLI.Journal.Add.Mood },
			want: constants.DefaultMood,
		},
		{
			name: "stats history days",
			args: []string{"stats"},
			got:  func() int { return CLI.Stats.Days },
			want: constants.DefaultHistoryDays,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := kong.New(&CLI, options()...)
			if err != nil {
				t.Fatalf("failed to build parser: %v", err)
			}
			if _, err := parser.Parse(tt.args); err != nil {
				t.Fatalf("parse %v: %v", tt.args, err)
			}
			if got := tt.got(); got != tt.want {
				t.Errorf("default = %d, want %d", got, tt.want)
			}
			if CLI.Config != constants.DefaultConfigPath {
				t.Errorf("config = %q, want %q", CLI.Config, constants.DefaultConfigPath)
			}
		})
	}
}
