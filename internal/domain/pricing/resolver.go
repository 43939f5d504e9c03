package pricing

import (
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type Tier string

const (
	TierBase     Tier = "base"
	TierWeekend  Tier = "weekend"
	TierSeasonal Tier = "seasonal"
	TierSpecial  Tier = "special"
)

// NightlyRate is the price of one night and the tier it came from.
type NightlyRate struct {
	Date  time.Time   `json:"date" bson:"date"`
	Price money.Money `json:"price" bson:"price"`
	Tier  Tier        `json:"tier" bson:"tier"`
}

// ResolveNightlyRate picks the rate for date: special, then seasonal, then
// weekend, then base. It never fails; an unset base price resolves to zero.
func ResolveNightlyRate(cfg Config, date time.Time) NightlyRate {
	day := daterange.Day(date)
	rate := func(amount int64, tier Tier) NightlyRate {
		return NightlyRate{Date: day, Price: money.Money{Amount: amount, Currency: cfg.Currency}, Tier: tier}
	}

	for _, sr := range cfg.SpecialRates {
		if daterange.SameDay(sr.Date, day) {
			return rate(sr.Price, TierSpecial)
		}
	}
	for _, s := range cfg.SeasonalPricing {
		if !s.IsActive {
			continue
		}
		start := daterange.Day(s.StartDate)
		end := daterange.Day(s.EndDate)
		if !day.Before(start) && !day.After(end) {
			return rate(s.Price, TierSeasonal)
		}
	}
	if cfg.Weekend.applies(day.Weekday()) {
		return rate(cfg.Weekend.Price, TierWeekend)
	}
	return rate(cfg.BasePrice, TierBase)
}

// Quote is the priced breakdown of a stay.
type Quote struct {
	Range    daterange.DateRange `json:"-"`
	Nightly  []NightlyRate       `json:"nightly"`
	Subtotal money.Money         `json:"subtotal"`
}

func (q Quote) Nights() int {
	return len(q.Nightly)
}

// PriceStay resolves every night of dr. It has no side effects, so quoting the
// same range twice against the same config yields identical breakdowns.
func PriceStay(cfg Config, dr daterange.DateRange) Quote {
	days := dr.Days()
	q := Quote{
		Range:    dr,
		Nightly:  make([]NightlyRate, 0, len(days)),
		Subtotal: money.Money{Currency: cfg.Currency},
	}
	for _, day := range days {
		nr := ResolveNightlyRate(cfg, day)
		q.Nightly = append(q.Nightly, nr)
		q.Subtotal.Amount += nr.Price.Amount
	}
	return q
}

// RequireConfigured rejects quotes that fell through to a zero base price.
func (q Quote) RequireConfigured() error {
	for _, nr := range q.Nightly {
		if nr.Tier == TierBase && nr.Price.Amount == 0 {
			return ErrBaseNotConfigured
		}
	}
	return nil
}

func (q Quote) Copy() Quote {
	clone := q
	clone.Nightly = append([]NightlyRate(nil), q.Nightly...)
	return clone
}
