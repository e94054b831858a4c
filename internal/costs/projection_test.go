package costs

import (
	"math"
	"testing"
	"time"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestProject(t *testing.T) {
	tests := []struct {
		name      string
		cost      float64
		now       time.Time
		projected float64
		remaining float64
	}{
		{
			name:      "mid-month",
			cost:      150,
			now:       time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			projected: 300, // 10/day over 30 days
			remaining: 150,
		},
		{
			name:      "first day projects aggressively",
			cost:      20,
			now:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			projected: 600,
			remaining: 580,
		},
		{
			name:      "last day projects no growth",
			cost:      310,
			now:       time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
			projected: 310,
			remaining: 0,
		},
		{
			name:      "zero spend",
			cost:      0,
			now:       time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			projected: 0,
			remaining: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project(tt.cost, tt.now)
			if p.Cost != tt.cost {
				t.Fatalf("cost = %v, want %v", p.Cost, tt.cost)
			}
			if !approx(p.Projected, tt.projected) {
				t.Fatalf("projected = %v, want %v", p.Projected, tt.projected)
			}
			if !approx(p.Remaining, tt.remaining) {
				t.Fatalf("remaining = %v, want %v", p.Remaining, tt.remaining)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		t    time.Time
		want int
	}{
		{time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), 31},
		{time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), 28},
		{time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 29}, // leap year
		{time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), 30},
		{time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), 31},
	}

	for _, tt := range tests {
		if got := daysInMonth(tt.t); got != tt.want {
			t.Fatalf("daysInMonth(%v) = %d, want %d", tt.t, got, tt.want)
		}
	}
}
