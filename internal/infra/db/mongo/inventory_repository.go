package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaininventory "staybook/internal/domain/inventory"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/fault"
)

func docID(tenantID, id string) string {
	return tenantID + "/" + id
}

type RoomTypeRepository struct {
	col *mongo.Collection
}

func NewRoomTypeRepository(db *mongo.Database) *RoomTypeRepository {
	return &RoomTypeRepository{col: db.Collection("agg_room_type")}
}

func (r *RoomTypeRepository) ByID(ctx context.Context, tenantID string, id domaininventory.RoomTypeID) (*domaininventory.RoomType, error) {
	var doc roomTypeDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": docID(tenantID, string(id))}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaininventory.ErrRoomTypeNotFound
		}
		return nil, classify(err)
	}
	return doc.toAggregate(), nil
}

// Save writes the configuration and leaves inventory_version to ClaimInventory.
func (r *RoomTypeRepository) Save(ctx context.Context, rt *domaininventory.RoomType) error {
	doc := newRoomTypeDocument(rt)
	update := bson.M{
		"$set": bson.M{
			"tenant_id":   doc.TenantID,
			"type_id":     doc.TypeID,
			"name":        doc.Name,
			"total_units": doc.TotalUnits,
			"pricing":     doc.Pricing,
			"updated_at":  doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"inventory_version": int64(0),
			"created_at":        doc.CreatedAt,
		},
	}
	_, err := r.col.UpdateByID(ctx, doc.ID, update, options.Update().SetUpsert(true))
	return classify(err)
}

func (r *RoomTypeRepository) ClaimInventory(ctx context.Context, rt *domaininventory.RoomType) error {
	filter := bson.M{"_id": docID(rt.TenantID, string(rt.ID)), "inventory_version": rt.InventoryVersion}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"inventory_version": 1}})
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return fault.ErrConcurrentUpdate
	}
	rt.InventoryVersion++
	return nil
}

type roomTypeDocument struct {
	ID               string         `bson:"_id"`
	TenantID         string         `bson:"tenant_id"`
	TypeID           string         `bson:"type_id"`
	Name             string         `bson:"name"`
	TotalUnits       int            `bson:"total_units"`
	Pricing          pricing.Config `bson:"pricing"`
	InventoryVersion int64          `bson:"inventory_version"`
	CreatedAt        time.Time      `bson:"created_at"`
	UpdatedAt        time.Time      `bson:"updated_at"`
}

func newRoomTypeDocument(rt *domaininventory.RoomType) roomTypeDocument {
	return roomTypeDocument{
		ID:               docID(rt.TenantID, string(rt.ID)),
		TenantID:         rt.TenantID,
		TypeID:           string(rt.ID),
		Name:             rt.Name,
		TotalUnits:       rt.TotalUnits,
		Pricing:          rt.Pricing,
		InventoryVersion: rt.InventoryVersion,
		CreatedAt:        rt.CreatedAt,
		UpdatedAt:        rt.UpdatedAt,
	}
}

func (d roomTypeDocument) toAggregate() *domaininventory.RoomType {
	return &domaininventory.RoomType{
		ID:               domaininventory.RoomTypeID(d.TypeID),
		TenantID:         d.TenantID,
		Name:             d.Name,
		TotalUnits:       d.TotalUnits,
		Pricing:          d.Pricing,
		InventoryVersion: d.InventoryVersion,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
}

type RoomUnitRepository struct {
	col *mongo.Collection
}

func NewRoomUnitRepository(db *mongo.Database) *RoomUnitRepository {
	col := db.Collection("agg_room_unit")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "number", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &RoomUnitRepository{col: col}
}

func (r *RoomUnitRepository) ByID(ctx context.Context, tenantID string, id domaininventory.RoomUnitID) (*domaininventory.RoomUnit, error) {
	var doc roomUnitDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": docID(tenantID, string(id))}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaininventory.ErrRoomUnitNotFound
		}
		return nil, classify(err)
	}
	return doc.toAggregate(), nil
}

func (r *RoomUnitRepository) Save(ctx context.Context, unit *domaininventory.RoomUnit) error {
	doc := roomUnitDocument{
		ID:           docID(unit.TenantID, string(unit.ID)),
		TenantID:     unit.TenantID,
		UnitID:       string(unit.ID),
		RoomTypeID:   string(unit.RoomTypeID),
		Number:       unit.Number,
		Housekeeping: string(unit.Housekeeping),
		UpdatedAt:    unit.UpdatedAt,
	}
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return classify(err)
}

func (r *RoomUnitRepository) ListByRoomType(ctx context.Context, tenantID string, roomType domaininventory.RoomTypeID) ([]*domaininventory.RoomUnit, error) {
	filter := bson.M{"tenant_id": tenantID, "room_type_id": string(roomType)}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "number", Value: 1}}))
	if err != nil {
		return nil, classify(err)
	}
	var docs []roomUnitDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(err)
	}
	out := make([]*domaininventory.RoomUnit, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type roomUnitDocument struct {
	ID           string    `bson:"_id"`
	TenantID     string    `bson:"tenant_id"`
	UnitID       string    `bson:"unit_id"`
	RoomTypeID   string    `bson:"room_type_id"`
	Number       string    `bson:"number"`
	Housekeeping string    `bson:"housekeeping"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d roomUnitDocument) toAggregate() *domaininventory.RoomUnit {
	return &domaininventory.RoomUnit{
		ID:           domaininventory.RoomUnitID(d.UnitID),
		TenantID:     d.TenantID,
		RoomTypeID:   domaininventory.RoomTypeID(d.RoomTypeID),
		Number:       d.Number,
		Housekeeping: domaininventory.HousekeepingState(d.Housekeeping),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

var (
	_ domaininventory.RoomTypeRepository = (*RoomTypeRepository)(nil)
	_ domaininventory.RoomUnitRepository = (*RoomUnitRepository)(nil)
)
