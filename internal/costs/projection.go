package costs

import "time"

// Month-to-date spend extrapolated to the end of the month.
type Projection struct {
	Cost      float64 // Spend accrued so far this month.
	Projected float64 // Projected total at the end of the month.
	Remaining float64 // Projected additional spend for the rest of the month.
}

// Extrapolates month-to-date spend linearly over the rest of the month.
//
// The daily rate is cost divided by the current day of the month, so early
// in the month a single expensive day projects aggressively. That bias is
// deliberate: the projection feeds a spending alarm, where overestimating
// beats underestimating.
func Project(cost float64, now time.Time) Projection {
	now = now.UTC()

	day := now.Day()
	days := daysInMonth(now)

	rate := cost / float64(day)

	return Projection{
		Cost:      cost,
		Projected: rate * float64(days),
		Remaining: rate * float64(days-day),
	}
}

// Returns the number of days in the month of t.
func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
