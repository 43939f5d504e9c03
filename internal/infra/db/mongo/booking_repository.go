package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	domaininventory "staybook/internal/domain/inventory"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/fault"
	"staybook/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	idx := mongo.IndexModel{Keys: bson.D{
		{Key: "tenant_id", Value: 1},
		{Key: "room_type_id", Value: 1},
		{Key: "status", Value: 1},
		{Key: "range.check_in", Value: 1},
	}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, tenantID string, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id), "tenant_id": tenantID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, classify(err)
	}
	return doc.toAggregate(), nil
}

// Save upserts under a version guard: a new booking (Version 0) must not
// exist yet, an existing one must still carry b.Version.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return fault.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Overlapping(ctx context.Context, tenantID string, roomType domaininventory.RoomTypeID, dr daterange.DateRange) ([]*domainbooking.Booking, error) {
	statuses := make([]string, 0, len(domainbooking.BlockingStatuses))
	for _, s := range domainbooking.BlockingStatuses {
		statuses = append(statuses, string(s))
	}
	filter := bson.M{
		"tenant_id":       tenantID,
		"room_type_id":    string(roomType),
		"status":          bson.M{"$in": statuses},
		"range.check_in":  bson.M{"$lt": dr.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": dr.CheckIn.UnixMilli()},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}}))
	if err != nil {
		return nil, classify(err)
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, classify(err)
		}
		out = append(out, doc.toAggregate())
	}
	return out, classify(cur.Err())
}

type bookingDocument struct {
	ID         string            `bson:"_id"`
	TenantID   string            `bson:"tenant_id"`
	RoomTypeID string            `bson:"room_type_id"`
	RoomUnitID string            `bson:"room_unit_id,omitempty"`
	Guest      guestDocument     `bson:"guest"`
	Guests     int               `bson:"guests"`
	Range      rangeDocument     `bson:"range"`
	Channel    string            `bson:"channel"`
	Status     string            `bson:"status"`
	Nightly    []nightlyDocument `bson:"nightly"`
	Total      money.Money       `bson:"total"`
	AmountPaid money.Money       `bson:"amount_paid"`
	AmountDue  money.Money       `bson:"amount_due"`
	CreatedAt  int64             `bson:"created_at"`
	UpdatedAt  int64             `bson:"updated_at"`
	Version    int64             `bson:"version"`
}

type guestDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email,omitempty"`
	Phone string `bson:"phone,omitempty"`
}

type nightlyDocument struct {
	Date  int64       `bson:"date"`
	Price money.Money `bson:"price"`
	Tier  string      `bson:"tier"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	nightly := make([]nightlyDocument, 0, len(b.Nightly))
	for _, n := range b.Nightly {
		nightly = append(nightly, nightlyDocument{Date: n.Date.UnixMilli(), Price: n.Price, Tier: string(n.Tier)})
	}
	return bookingDocument{
		ID:         string(b.ID),
		TenantID:   b.TenantID,
		RoomTypeID: string(b.RoomTypeID),
		RoomUnitID: string(b.RoomUnitID),
		Guest:      guestDocument{Name: b.Guest.Name, Email: b.Guest.Email, Phone: b.Guest.Phone},
		Guests:     b.Guests,
		Range:      rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Channel:    string(b.Channel),
		Status:     string(b.Status),
		Nightly:    nightly,
		Total:      b.Total,
		AmountPaid: b.AmountPaid,
		AmountDue:  b.AmountDue,
		CreatedAt:  b.CreatedAt.UnixMilli(),
		UpdatedAt:  b.UpdatedAt.UnixMilli(),
		Version:    b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	nightly := make([]pricing.NightlyRate, 0, len(d.Nightly))
	for _, n := range d.Nightly {
		nightly = append(nightly, pricing.NightlyRate{Date: timestampToTime(n.Date), Price: n.Price, Tier: pricing.Tier(n.Tier)})
	}
	return &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		TenantID:   d.TenantID,
		RoomTypeID: domaininventory.RoomTypeID(d.RoomTypeID),
		RoomUnitID: domaininventory.RoomUnitID(d.RoomUnitID),
		Guest:      domainbooking.Guest{Name: d.Guest.Name, Email: d.Guest.Email, Phone: d.Guest.Phone},
		Guests:     d.Guests,
		Range:      daterange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Channel:    domainbooking.Channel(d.Channel),
		Status:     domainbooking.Status(d.Status),
		Nightly:    nightly,
		Total:      d.Total,
		AmountPaid: d.AmountPaid,
		AmountDue:  d.AmountDue,
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		Version:    d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
