package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/domain/shared/fault"
	domainwallet "staybook/internal/domain/wallet"
)

type WalletRepository struct {
	col *mongo.Collection
}

func NewWalletRepository(db *mongo.Database) *WalletRepository {
	return &WalletRepository{col: db.Collection("agg_wallet")}
}

func (r *WalletRepository) ByTenant(ctx context.Context, tenantID string) (*domainwallet.Wallet, error) {
	var doc walletDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainwallet.ErrTenantNotFound
		}
		return nil, classify(err)
	}
	return &domainwallet.Wallet{TenantID: doc.TenantID, Balance: doc.Balance, Version: doc.Version, UpdatedAt: doc.UpdatedAt.UTC()}, nil
}

func (r *WalletRepository) Create(ctx context.Context, w *domainwallet.Wallet) error {
	doc := walletDocument{TenantID: w.TenantID, Balance: w.Balance, Version: 1, UpdatedAt: w.UpdatedAt}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainwallet.ErrWalletExists
		}
		return classify(err)
	}
	w.Version = doc.Version
	return nil
}

// Save writes the balance only while the stored version equals w.Version.
// Inside a transaction a concurrent writer surfaces as a write conflict
// instead, which classify maps to the same error.
func (r *WalletRepository) Save(ctx context.Context, w *domainwallet.Wallet) error {
	filter := bson.M{"_id": w.TenantID, "version": w.Version}
	update := bson.M{
		"$set": bson.M{"balance": w.Balance, "updated_at": w.UpdatedAt},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return fault.ErrConcurrentUpdate
	}
	w.Version++
	return nil
}

type walletDocument struct {
	TenantID  string    `bson:"_id"`
	Balance   int64     `bson:"balance"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type LedgerRepository struct {
	col *mongo.Collection
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{col: db.Collection("ledger_entries")}
}

// EnsureIndexes builds the history index and the unique (tenant_id,
// external_ref) index that makes a replayed credit collide instead of
// writing a second entry.
func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "external_ref", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"external_ref": bson.M{"$type": "string"}}),
		},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongo: ledger indexes: %w", err)
	}
	return nil
}

func (r *LedgerRepository) Append(ctx context.Context, entry domainwallet.LedgerEntry) error {
	_, err := r.col.InsertOne(ctx, newEntryDocument(entry))
	return classify(err)
}

func (r *LedgerRepository) ByID(ctx context.Context, tenantID, id string) (domainwallet.LedgerEntry, error) {
	return r.findOne(ctx, bson.M{"_id": id, "tenant_id": tenantID})
}

func (r *LedgerRepository) ByExternalRef(ctx context.Context, tenantID, ref string) (domainwallet.LedgerEntry, error) {
	if ref == "" {
		return domainwallet.LedgerEntry{}, domainwallet.ErrEntryNotFound
	}
	return r.findOne(ctx, bson.M{"tenant_id": tenantID, "external_ref": ref})
}

func (r *LedgerRepository) findOne(ctx context.Context, filter bson.M) (domainwallet.LedgerEntry, error) {
	var doc entryDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainwallet.LedgerEntry{}, domainwallet.ErrEntryNotFound
		}
		return domainwallet.LedgerEntry{}, classify(err)
	}
	return doc.toEntry(), nil
}

func (r *LedgerRepository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]domainwallet.LedgerEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, classify(err)
	}
	var docs []entryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(err)
	}
	out := make([]domainwallet.LedgerEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntry())
	}
	return out, nil
}

func (r *LedgerRepository) Totals(ctx context.Context, tenantID string) (domainwallet.Totals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tenant_id": tenantID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"sum":     bson.M{"$sum": "$amount"},
			"entries": bson.M{"$sum": 1},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return domainwallet.Totals{}, classify(err)
	}
	var rows []struct {
		Sum     int64 `bson:"sum"`
		Entries int   `bson:"entries"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return domainwallet.Totals{}, classify(err)
	}
	if len(rows) == 0 {
		return domainwallet.Totals{}, nil
	}
	return domainwallet.Totals{Sum: rows[0].Sum, Entries: rows[0].Entries}, nil
}

type entryDocument struct {
	ID            string    `bson:"_id"`
	TenantID      string    `bson:"tenant_id"`
	Type          string    `bson:"type"`
	Amount        int64     `bson:"amount"`
	BalanceBefore int64     `bson:"balance_before"`
	BalanceAfter  int64     `bson:"balance_after"`
	Reason        string    `bson:"reason"`
	Actor         string    `bson:"actor,omitempty"`
	ExternalRef   string    `bson:"external_ref,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
}

func newEntryDocument(e domainwallet.LedgerEntry) entryDocument {
	return entryDocument{
		ID:            e.ID,
		TenantID:      e.TenantID,
		Type:          string(e.Type),
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Reason:        e.Reason,
		Actor:         e.Actor,
		ExternalRef:   e.ExternalRef,
		CreatedAt:     e.CreatedAt,
	}
}

func (d entryDocument) toEntry() domainwallet.LedgerEntry {
	return domainwallet.LedgerEntry{
		ID:            d.ID,
		TenantID:      d.TenantID,
		Type:          domainwallet.EntryType(d.Type),
		Amount:        d.Amount,
		BalanceBefore: d.BalanceBefore,
		BalanceAfter:  d.BalanceAfter,
		Reason:        d.Reason,
		Actor:         d.Actor,
		ExternalRef:   d.ExternalRef,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

var (
	_ domainwallet.Repository      = (*WalletRepository)(nil)
	_ domainwallet.EntryRepository = (*LedgerRepository)(nil)
)
