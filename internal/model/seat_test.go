package model

import "testing"

func TestSeatGridLayout(t *testing.T) {
	seats := SeatGrid(8)
	if len(seats) != 50 {
		t.Fatalf("grid size = %d, want 50", len(seats))
	}

	counts := map[string]int{}
	for _, s := range seats {
		if s.ShowtimeID != 8 {
			t.Fatalf("seat %s bound to showtime %d, want 8", s.Label(), s.ShowtimeID)
		}
		counts[s.SeatClass]++
		switch s.RowLabel {
		case "A":
			if s.SeatClass != SeatClassFirst || s.Price != PriceFirst {
				t.Fatalf("row A seat %s: class=%s price=%v", s.Label(), s.SeatClass, s.Price)
			}
		case "B":
			if s.SeatClass != SeatClassSecond || s.Price != PriceSecond {
				t.Fatalf("row B seat %s: class=%s price=%v", s.Label(), s.SeatClass, s.Price)
			}
		default:
			if s.SeatClass != SeatClassRegular || s.Price != PriceRegular {
				t.Fatalf("row %s seat %s: class=%s price=%v", s.RowLabel, s.Label(), s.SeatClass, s.Price)
			}
		}
	}
	if counts[SeatClassFirst] != 10 || counts[SeatClassSecond] != 10 || counts[SeatClassRegular] != 30 {
		t.Fatalf("class distribution = %v, want 10/10/30", counts)
	}

	if got := seats[0].Label(); got != "A1" {
		t.Fatalf("first seat label = %q, want A1", got)
	}
	if got := seats[49].Label(); got != "E10" {
		t.Fatalf("last seat label = %q, want E10", got)
	}
}

func TestShowtimeStartsAt(t *testing.T) {
	s := Showtime{ShowDate: "2026-09-15", ShowTime: "19:15"}
	at, err := s.StartsAt()
	if err != nil {
		t.Fatalf("StartsAt: %v", err)
	}
	if at.Year() != 2026 || at.Month() != 9 || at.Day() != 15 || at.Hour() != 19 || at.Minute() != 15 {
		t.Fatalf("StartsAt = %v", at)
	}

	if _, err := (Showtime{ShowDate: "soon", ShowTime: "late"}).StartsAt(); err == nil {
		t.Fatal("StartsAt accepted malformed data")
	}
}
