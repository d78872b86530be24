package cmd

import "testing"

func TestColorizeUnknownSeverityPassesThrough(t *testing.T) {
	if got := colorize("unknown", "text"); got != "text" {
		t.Errorf("colorize(unknown) = %q, want %q", got, "text")
	}
}
