// Package costs queries AWS Cost Explorer and projects month-end spend.
//
// The query window always covers the current month to date, with a one-day
// extension on the first of the month because the API rejects empty
// intervals. Projection is a linear extrapolation of the daily rate over
// the full month.
package costs
