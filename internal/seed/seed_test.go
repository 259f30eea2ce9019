package seed

import (
	"testing"
	"time"
)

func TestCalendarDatesWindow(t *testing.T) {
	from := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	dates := calendarDates(from, 14, 3)

	if len(dates) == 0 {
		t.Fatal("no dates generated")
	}
	if dates[0] != "2026-08-03" {
		t.Fatalf("first date = %s, want 2026-08-03", dates[0])
	}
	last, err := time.Parse("2006-01-02", dates[len(dates)-1])
	if err != nil {
		t.Fatalf("parse last date: %v", err)
	}
	if last.After(from.AddDate(0, 0, 14)) {
		t.Fatalf("last date %s beyond horizon", dates[len(dates)-1])
	}

	for i := 1; i < len(dates); i++ {
		prev, _ := time.Parse("2006-01-02", dates[i-1])
		curr, _ := time.Parse("2006-01-02", dates[i])
		if curr.Sub(prev) != 72*time.Hour {
			t.Fatalf("step between %s and %s is not three days", dates[i-1], dates[i])
		}
	}
}

func TestCatalogueSlugsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range catalogue {
		if m.title == "" || m.durationMin == 0 {
			t.Fatalf("incomplete catalogue entry: %+v", m)
		}
		if seen[m.title] {
			t.Fatalf("duplicate title %q", m.title)
		}
		seen[m.title] = true
	}
}
