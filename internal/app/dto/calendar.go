package dto

import (
	"staybook/internal/domain/availability"
	"staybook/internal/domain/pricing"
)

type Availability struct {
	RoomTypeID  string `json:"room_type_id"`
	RoomUnitID  string `json:"room_unit_id,omitempty"`
	Available   bool   `json:"available"`
	TotalUnits  int    `json:"total_units"`
	Overlapping int    `json:"overlapping"`
	Reason      string `json:"reason,omitempty"`
}

type CalendarNight struct {
	Date      string   `json:"date"`
	Booked    int      `json:"booked"`
	Remaining int      `json:"remaining"`
	Units     []string `json:"units,omitempty"`
	Price     int64    `json:"price"`
	Tier      string   `json:"tier"`
}

type Calendar struct {
	RoomTypeID string          `json:"room_type_id"`
	TotalUnits int             `json:"total_units"`
	Currency   string          `json:"currency"`
	Nights     []CalendarNight `json:"nights"`
}

// MapCalendar zips per-night occupancy with the nightly rates of the same range.
func MapCalendar(cal *availability.Calendar, occupancy []availability.NightOccupancy, rates []pricing.NightlyRate, currency string) Calendar {
	if cal == nil {
		return Calendar{}
	}
	nights := make([]CalendarNight, 0, len(occupancy))
	for i, n := range occupancy {
		night := CalendarNight{Date: n.Date.Format(DateLayout), Booked: n.Booked, Remaining: n.Remaining}
		for _, u := range n.Units {
			night.Units = append(night.Units, string(u))
		}
		if i < len(rates) {
			night.Price = rates[i].Price.Amount
			night.Tier = string(rates[i].Tier)
		}
		nights = append(nights, night)
	}
	return Calendar{RoomTypeID: string(cal.RoomTypeID), TotalUnits: cal.TotalUnits, Currency: currency, Nights: nights}
}
