package availability

import (
	"time"

	"staybook/internal/domain/inventory"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/fault"
)

var (
	ErrCapacityExhausted = fault.New(fault.KindConflict, "availability: no units left for the requested range")
	ErrUnitUnavailable   = fault.New(fault.KindConflict, "availability: room unit already booked for the requested range")
)

// Hold is one inventory-blocking booking as seen by the capacity model.
// UnitID is empty for pooled bookings.
type Hold struct {
	Reference string
	UnitID    inventory.RoomUnitID
	Range     daterange.DateRange
}

// Request describes a stay to test against the calendar. ExcludeReference
// leaves one existing hold out of the count, for re-checking a booking that is
// being modified.
type Request struct {
	Range            daterange.DateRange
	UnitID           inventory.RoomUnitID
	ExcludeReference string
}

// Calendar is the capacity view of one room type: a pool of TotalUnits
// interchangeable rooms. Requesting a specific unit narrows the pool check
// with a per-unit check where each unit has a capacity of one.
type Calendar struct {
	RoomTypeID inventory.RoomTypeID
	TotalUnits int
	Holds      []Hold
	events.EventRecorder
}

func NewCalendar(rt *inventory.RoomType, holds []Hold) *Calendar {
	return &Calendar{RoomTypeID: rt.ID, TotalUnits: rt.TotalUnits, Holds: append([]Hold(nil), holds...)}
}

// Overlapping lists holds sharing at least one night with the request.
func (c *Calendar) Overlapping(req Request) []Hold {
	var out []Hold
	for _, h := range c.Holds {
		if req.ExcludeReference != "" && h.Reference == req.ExcludeReference {
			continue
		}
		if h.Range.Overlaps(req.Range) {
			out = append(out, h)
		}
	}
	return out
}

// Check returns nil when the request fits, or the conflict that prevents it.
func (c *Calendar) Check(req Request) error {
	overlapping := c.Overlapping(req)
	if len(overlapping) >= c.TotalUnits {
		return ErrCapacityExhausted
	}
	if req.UnitID == "" {
		return nil
	}
	for _, h := range overlapping {
		if h.UnitID == req.UnitID {
			return ErrUnitUnavailable
		}
	}
	return nil
}

func (c *Calendar) CanReserve(req Request) bool {
	return c.Check(req) == nil
}

// Reserve adds a hold for reference after re-checking capacity.
func (c *Calendar) Reserve(req Request, reference string, now time.Time) error {
	if err := c.Check(req); err != nil {
		c.Record(OverbookingPrevented{RoomTypeID: string(c.RoomTypeID), Range: req.Range, UnitID: string(req.UnitID), At: now.UTC()})
		return err
	}
	c.Holds = append(c.Holds, Hold{Reference: reference, UnitID: req.UnitID, Range: req.Range})
	return nil
}

// NightOccupancy is the per-night view used by calendar screens.
type NightOccupancy struct {
	Date      time.Time
	Booked    int
	Remaining int
	Units     []inventory.RoomUnitID
}

// Occupancy counts holds night by night over dr.
func (c *Calendar) Occupancy(dr daterange.DateRange) []NightOccupancy {
	days := dr.Days()
	out := make([]NightOccupancy, 0, len(days))
	for _, day := range days {
		night := NightOccupancy{Date: day}
		for _, h := range c.Holds {
			if !h.Range.ContainsDate(day) {
				continue
			}
			night.Booked++
			if h.UnitID != "" {
				night.Units = append(night.Units, h.UnitID)
			}
		}
		night.Remaining = c.TotalUnits - night.Booked
		if night.Remaining < 0 {
			night.Remaining = 0
		}
		out = append(out, night)
	}
	return out
}
