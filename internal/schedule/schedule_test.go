package schedule

import (
	"testing"
	"time"
)

func TestParseVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		once bool
	}{
		{name: "once", raw: "@once", once: true},
		{name: "legacy once", raw: "@specific", once: true},
		{name: "once mixed case", raw: " @Once ", once: true},
		{name: "minutely", raw: "@minutely"},
		{name: "hourly", raw: "@hourly"},
		{name: "daily", raw: "@daily"},
		{name: "weekly", raw: "@weekly"},
		{name: "monthly", raw: "@monthly"},
		{name: "yearly", raw: "@yearly"},
		{name: "annually", raw: "@annually"},
		{name: "five field", raw: "*/5 * * * *"},
		{name: "lists and ranges", raw: "0,30 9-17 * * 1-5"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.raw, err)
			}
			if got.Once() != tt.once {
				t.Fatalf("Once() = %v, want %v", got.Once(), tt.once)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		"",
		"not-a-schedule",
		"* * * *",
		"61 * * * *",
		"@fortnightly",
		// robfig extras outside the documented grammar
		"@midnight",
		"@every 90m",
		// well-formed but matches no real date
		"0 0 30 2 *",
		"0 0 31 4 *",
	} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("Parse(%q): expected error", raw)
		}
	}
}

func TestYearlySpellingsEquivalent(t *testing.T) {
	t.Parallel()
	from := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	y, err := Parse("@yearly")
	if err != nil {
		t.Fatalf("Parse(@yearly): %v", err)
	}
	a, err := Parse("@annually")
	if err != nil {
		t.Fatalf("Parse(@annually): %v", err)
	}
	if !y.Next(from).Equal(a.Next(from)) {
		t.Fatalf("@yearly and @annually disagree: %v vs %v", y.Next(from), a.Next(from))
	}
}

func TestNextStrictlyAfter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		from time.Time
		want time.Time
	}{
		{
			name: "minutely mid-minute",
			raw:  "@minutely",
			from: time.Date(2024, 1, 1, 0, 0, 30, 0, time.Local),
			want: time.Date(2024, 1, 1, 0, 1, 0, 0, time.Local),
		},
		{
			name: "minutely on boundary",
			raw:  "@minutely",
			from: time.Date(2024, 1, 1, 0, 1, 0, 0, time.Local),
			want: time.Date(2024, 1, 1, 0, 2, 0, 0, time.Local),
		},
		{
			name: "daily",
			raw:  "@daily",
			from: time.Date(2024, 1, 3, 12, 0, 0, 0, time.Local),
			want: time.Date(2024, 1, 4, 0, 0, 0, 0, time.Local),
		},
		{
			name: "five field step",
			raw:  "*/15 * * * *",
			from: time.Date(2024, 1, 1, 8, 16, 0, 0, time.Local),
			want: time.Date(2024, 1, 1, 8, 30, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.raw, err)
			}
			got := spec.Next(tt.from)
			if !got.Equal(tt.want) {
				t.Fatalf("Next(%v) = %v, want %v", tt.from, got, tt.want)
			}
			if !got.After(tt.from) {
				t.Fatalf("Next(%v) = %v is not strictly after", tt.from, got)
			}
		})
	}
}

func TestValid(t *testing.T) {
	t.Parallel()
	if !Valid("@once") || !Valid("0 0 * * *") {
		t.Fatal("expected valid expressions to pass")
	}
	if Valid("gibberish") {
		t.Fatal("expected invalid expression to fail")
	}
}
