package dto

import (
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/money"
)

// DateLayout renders calendar days in results.
const DateLayout = "2006-01-02"

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(m money.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount, Currency: m.Currency}
}

type NightlyRate struct {
	Date  string `json:"date"`
	Price int64  `json:"price"`
	Tier  string `json:"tier"`
}

type Quote struct {
	RoomTypeID string        `json:"room_type_id"`
	CheckIn    string        `json:"check_in"`
	CheckOut   string        `json:"check_out"`
	Nights     int           `json:"nights"`
	Subtotal   MoneyDTO      `json:"subtotal"`
	Nightly    []NightlyRate `json:"nightly"`
}

func MapNightly(rates []pricing.NightlyRate) []NightlyRate {
	out := make([]NightlyRate, 0, len(rates))
	for _, r := range rates {
		out = append(out, NightlyRate{Date: r.Date.Format(DateLayout), Price: r.Price.Amount, Tier: string(r.Tier)})
	}
	return out
}

func MapQuote(roomTypeID string, q pricing.Quote) Quote {
	return Quote{
		RoomTypeID: roomTypeID,
		CheckIn:    q.Range.CheckIn.Format(DateLayout),
		CheckOut:   q.Range.CheckOut.Format(DateLayout),
		Nights:     q.Nights(),
		Subtotal:   MapMoney(q.Subtotal),
		Nightly:    MapNightly(q.Nightly),
	}
}
