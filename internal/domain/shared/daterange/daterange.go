package daterange

import (
	"time"

	"staybook/internal/domain/shared/fault"
)

// MaxNights bounds every range the engine accepts, so a single request cannot
// price or scan years of nights.
const MaxNights = 366

var (
	ErrInvalidRange = fault.New(fault.KindValidation, "daterange: checkout must be after checkin")
	ErrRangeTooLong = fault.New(fault.KindValidation, "daterange: range exceeds 366 nights")
)

// DateRange represents a half-open interval of calendar days [checkIn, checkOut).
// Both bounds are kept at UTC midnight.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Day truncates t to its calendar day, keeping the wall-clock date of t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay compares two instants at day granularity.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return DateRange{}, ErrInvalidRange
	}
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	if dr.Nights() > MaxNights {
		return ErrRangeTooLong
	}
	return nil
}

// Nights counts calendar days in [checkIn, checkOut). Both bounds sit on UTC
// midnight, so every day is exactly 24 hours.
func (dr DateRange) Nights() int {
	if !dr.CheckOut.After(dr.CheckIn) {
		return 0
	}
	return int(Day(dr.CheckOut).Sub(Day(dr.CheckIn)) / (24 * time.Hour))
}

// Days lists every night of the stay, checkout day excluded.
func (dr DateRange) Days() []time.Time {
	out := make([]time.Time, 0, dr.Nights())
	for day := dr.CheckIn; day.Before(dr.CheckOut); day = day.AddDate(0, 0, 1) {
		out = append(out, day)
	}
	return out
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}
