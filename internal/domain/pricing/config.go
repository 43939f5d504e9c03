package pricing

import (
	"time"

	"staybook/internal/domain/shared/fault"
)

var (
	ErrNegativePrice      = fault.New(fault.KindValidation, "pricing: prices cannot be negative")
	ErrInvalidSeason      = fault.New(fault.KindValidation, "pricing: season must end on or after its start")
	ErrInvalidWeekday     = fault.New(fault.KindValidation, "pricing: weekend day must be within 0..6")
	ErrBaseNotConfigured  = fault.New(fault.KindValidation, "pricing: room type has no base price configured")
	defaultWeekendWeekday = []time.Weekday{time.Friday, time.Saturday}
)

// Config is the pricing section of a room type. Prices are minor units of Currency.
type Config struct {
	Currency        string         `json:"currency" bson:"currency"`
	BasePrice       int64          `json:"base_price" bson:"base_price"`
	Weekend         WeekendPricing `json:"weekend_pricing" bson:"weekend_pricing"`
	SpecialRates    []SpecialRate  `json:"special_rates" bson:"special_rates"`
	SeasonalPricing []SeasonalRate `json:"seasonal_pricing" bson:"seasonal_pricing"`
}

type WeekendPricing struct {
	Enabled bool           `json:"enabled" bson:"enabled"`
	Price   int64          `json:"price" bson:"price"`
	Days    []time.Weekday `json:"days" bson:"days"`
}

// WeekendDays falls back to Friday and Saturday when no days are stored.
func (w WeekendPricing) WeekendDays() []time.Weekday {
	if len(w.Days) == 0 {
		return defaultWeekendWeekday
	}
	return w.Days
}

func (w WeekendPricing) applies(day time.Weekday) bool {
	if !w.Enabled || w.Price == 0 {
		return false
	}
	for _, d := range w.WeekendDays() {
		if d == day {
			return true
		}
	}
	return false
}

type SpecialRate struct {
	Date  time.Time `json:"date" bson:"date"`
	Price int64     `json:"price" bson:"price"`
}

// SeasonalRate covers StartDate through EndDate, both days included.
type SeasonalRate struct {
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date"`
	Price     int64     `json:"price" bson:"price"`
	IsActive  bool      `json:"is_active" bson:"is_active"`
}

// BaseConfigured reports whether a non-zero base price is set.
func (c Config) BaseConfigured() bool {
	return c.BasePrice > 0
}

// Validate checks the shape of a config before an admin flow stores it.
// Overlapping seasons are allowed; the first stored match wins at resolution.
func (c Config) Validate() error {
	if c.BasePrice < 0 || c.Weekend.Price < 0 {
		return ErrNegativePrice
	}
	for _, d := range c.Weekend.Days {
		if d < time.Sunday || d > time.Saturday {
			return ErrInvalidWeekday
		}
	}
	for _, sr := range c.SpecialRates {
		if sr.Price < 0 {
			return ErrNegativePrice
		}
	}
	for _, s := range c.SeasonalPricing {
		if s.Price < 0 {
			return ErrNegativePrice
		}
		if s.EndDate.Before(s.StartDate) {
			return ErrInvalidSeason
		}
	}
	return nil
}

// Clone copies the rate slices so the result shares no memory with c.
func (c Config) Clone() Config {
	c.Weekend.Days = append([]time.Weekday(nil), c.Weekend.Days...)
	c.SpecialRates = append([]SpecialRate(nil), c.SpecialRates...)
	c.SeasonalPricing = append([]SeasonalRate(nil), c.SeasonalPricing...)
	return c
}
