package availability

import (
	"time"

	"staybook/internal/domain/shared/daterange"
)

type OverbookingPrevented struct {
	RoomTypeID string
	Range      daterange.DateRange
	UnitID     string
	At         time.Time
}

func (e OverbookingPrevented) EventName() string     { return "calendar.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return e.RoomTypeID }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }
