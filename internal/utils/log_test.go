package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "non-positive limit",
			input:  "Go developer",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "Go developer",
			limit:  20,
			expect: "Go developer",
		},
		{
			name:   "cut with ellipsis",
			input:  "Go developer",
			limit:  2,
			expect: "Go...",
		},
		{
			name:   "multi-line resume becomes one line",
			input:  "  Jane Doe\n\nSenior Engineer\tBerlin  ",
			limit:  40,
			expect: "Jane Doe Senior Engineer Berlin",
		},
		{
			name:   "counts runes",
			input:  "Müller, Zoë",
			limit:  6,
			expect: "Müller...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
