package memory

import (
	"context"
	"sort"

	domainbooking "staybook/internal/domain/booking"
	domaininventory "staybook/internal/domain/inventory"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/fault"
	domainwallet "staybook/internal/domain/wallet"
)

// Documents are stored by value and copied on the way in and out, so callers
// never share memory with the store.

func cloneRoomType(rt domaininventory.RoomType) *domaininventory.RoomType {
	rt.Pricing = rt.Pricing.Clone()
	return &rt
}

func cloneBooking(b domainbooking.Booking) *domainbooking.Booking {
	b.Nightly = append([]pricing.NightlyRate(nil), b.Nightly...)
	b.EventRecorder = events.EventRecorder{}
	return &b
}

func cloneWallet(w domainwallet.Wallet) *domainwallet.Wallet {
	w.EventRecorder = events.EventRecorder{}
	return &w
}

type RoomTypeRepository struct {
	store *Store
}

func NewRoomTypeRepository(store *Store) *RoomTypeRepository {
	return &RoomTypeRepository{store: store}
}

func (r *RoomTypeRepository) ByID(ctx context.Context, tenantID string, id domaininventory.RoomTypeID) (*domaininventory.RoomType, error) {
	k := key(tenantID, string(id))
	if unit := r.store.unitFrom(ctx); unit != nil {
		unit.mu.Lock()
		rt, ok := unit.roomTypes[k]
		unit.mu.Unlock()
		if ok {
			return cloneRoomType(rt), nil
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rt, ok := r.store.roomTypes[k]
	if !ok {
		return nil, domaininventory.ErrRoomTypeNotFound
	}
	return cloneRoomType(rt), nil
}

// Save replaces the room type configuration, keeping its inventory version.
func (r *RoomTypeRepository) Save(ctx context.Context, rt *domaininventory.RoomType) error {
	doc := *cloneRoomType(*rt)
	k := key(rt.TenantID, string(rt.ID))
	return r.store.write(ctx, op{apply: func(s *Store) {
		if prev, ok := s.roomTypes[k]; ok {
			doc.InventoryVersion = prev.InventoryVersion
		}
		s.roomTypes[k] = doc
	}})
}

func (r *RoomTypeRepository) ClaimInventory(ctx context.Context, rt *domaininventory.RoomType) error {
	k := key(rt.TenantID, string(rt.ID))
	expected := rt.InventoryVersion
	err := r.store.write(ctx, op{
		check: func(s *Store) error {
			stored, ok := s.roomTypes[k]
			if !ok {
				return domaininventory.ErrRoomTypeNotFound
			}
			if stored.InventoryVersion != expected {
				return fault.ErrConcurrentUpdate
			}
			return nil
		},
		apply: func(s *Store) {
			stored := s.roomTypes[k]
			stored.InventoryVersion = expected + 1
			s.roomTypes[k] = stored
		},
	})
	if err != nil {
		return err
	}
	rt.InventoryVersion = expected + 1
	if unit := r.store.unitFrom(ctx); unit != nil {
		unit.mu.Lock()
		unit.roomTypes[k] = *cloneRoomType(*rt)
		unit.mu.Unlock()
	}
	return nil
}

type RoomUnitRepository struct {
	store *Store
}

func NewRoomUnitRepository(store *Store) *RoomUnitRepository {
	return &RoomUnitRepository{store: store}
}

func (r *RoomUnitRepository) ByID(ctx context.Context, tenantID string, id domaininventory.RoomUnitID) (*domaininventory.RoomUnit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.roomUnits[key(tenantID, string(id))]
	if !ok {
		return nil, domaininventory.ErrRoomUnitNotFound
	}
	return &u, nil
}

func (r *RoomUnitRepository) Save(ctx context.Context, unit *domaininventory.RoomUnit) error {
	doc := *unit
	return r.store.write(ctx, op{apply: func(s *Store) {
		s.roomUnits[key(doc.TenantID, string(doc.ID))] = doc
	}})
}

func (r *RoomUnitRepository) ListByRoomType(ctx context.Context, tenantID string, roomType domaininventory.RoomTypeID) ([]*domaininventory.RoomUnit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domaininventory.RoomUnit
	for _, u := range r.store.roomUnits {
		if u.TenantID == tenantID && u.RoomTypeID == roomType {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

type BookingRepository struct {
	store *Store
}

func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

func (r *BookingRepository) ByID(ctx context.Context, tenantID string, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	k := key(tenantID, string(id))
	if unit := r.store.unitFrom(ctx); unit != nil {
		unit.mu.Lock()
		b, ok := unit.bookings[k]
		unit.mu.Unlock()
		if ok {
			return cloneBooking(b), nil
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	b, ok := r.store.bookings[k]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

// Save inserts a booking with Version 0 or updates one whose stored version
// still equals b.Version.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	k := key(b.TenantID, string(b.ID))
	expected := b.Version
	doc := *cloneBooking(*b)
	doc.Version = expected + 1
	err := r.store.write(ctx, op{
		check: func(s *Store) error {
			stored, ok := s.bookings[k]
			if !ok && expected == 0 {
				return nil
			}
			if !ok || stored.Version != expected {
				return fault.ErrConcurrentUpdate
			}
			return nil
		},
		apply: func(s *Store) { s.bookings[k] = doc },
	})
	if err != nil {
		return err
	}
	b.Version = doc.Version
	if unit := r.store.unitFrom(ctx); unit != nil {
		unit.mu.Lock()
		unit.bookings[k] = doc
		unit.mu.Unlock()
	}
	return nil
}

func (r *BookingRepository) Overlapping(ctx context.Context, tenantID string, roomType domaininventory.RoomTypeID, dr daterange.DateRange) ([]*domainbooking.Booking, error) {
	matches := func(b domainbooking.Booking) bool {
		return b.TenantID == tenantID && b.RoomTypeID == roomType && b.Status.BlocksInventory() && b.Range.Overlaps(dr)
	}
	seen := make(map[string]struct{})
	var out []*domainbooking.Booking
	if unit := r.store.unitFrom(ctx); unit != nil {
		unit.mu.Lock()
		for k, b := range unit.bookings {
			seen[k] = struct{}{}
			if matches(b) {
				out = append(out, cloneBooking(b))
			}
		}
		unit.mu.Unlock()
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for k, b := range r.store.bookings {
		if _, ok := seen[k]; ok {
			continue
		}
		if matches(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.CheckIn.Before(out[j].Range.CheckIn) })
	return out, nil
}

type WalletRepository struct {
	store *Store
}

func NewWalletRepository(store *Store) *WalletRepository {
	return &WalletRepository{store: store}
}

func (r *WalletRepository) ByTenant(ctx context.Context, tenantID string) (*domainwallet.Wallet, error) {
	if unit := r.store.unitFrom(ctx); unit != nil {
		unit.mu.Lock()
		w, ok := unit.wallets[tenantID]
		unit.mu.Unlock()
		if ok {
			return cloneWallet(w), nil
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	w, ok := r.store.wallets[tenantID]
	if !ok {
		return nil, domainwallet.ErrTenantNotFound
	}
	return cloneWallet(w), nil
}

func (r *WalletRepository) Create(ctx context.Context, w *domainwallet.Wallet) error {
	doc := *cloneWallet(*w)
	doc.Version = 1
	exists := func(s *Store) error {
		if _, ok := s.wallets[doc.TenantID]; ok {
			return domainwallet.ErrWalletExists
		}
		return nil
	}
	r.store.mu.RLock()
	err := exists(r.store)
	r.store.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := r.store.write(ctx, op{check: exists, apply: func(s *Store) { s.wallets[doc.TenantID] = doc }}); err != nil {
		return err
	}
	w.Version = doc.Version
	r.overlay(ctx, doc)
	return nil
}

func (r *WalletRepository) Save(ctx context.Context, w *domainwallet.Wallet) error {
	expected := w.Version
	doc := *cloneWallet(*w)
	doc.Version = expected + 1
	err := r.store.write(ctx, op{
		check: func(s *Store) error {
			stored, ok := s.wallets[doc.TenantID]
			if !ok {
				return domainwallet.ErrTenantNotFound
			}
			if stored.Version != expected {
				return fault.ErrConcurrentUpdate
			}
			return nil
		},
		apply: func(s *Store) { s.wallets[doc.TenantID] = doc },
	})
	if err != nil {
		return err
	}
	w.Version = doc.Version
	r.overlay(ctx, doc)
	return nil
}

func (r *WalletRepository) overlay(ctx context.Context, doc domainwallet.Wallet) {
	if unit := r.store.unitFrom(ctx); unit != nil {
		unit.mu.Lock()
		unit.wallets[doc.TenantID] = doc
		unit.mu.Unlock()
	}
}

type LedgerRepository struct {
	store *Store
}

func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Append adds an entry. Entry ids and, per tenant, external references are
// unique; a clash means another writer recorded the same request first.
func (r *LedgerRepository) Append(ctx context.Context, entry domainwallet.LedgerEntry) error {
	err := r.store.write(ctx, op{
		check: func(s *Store) error {
			for _, e := range s.entries[entry.TenantID] {
				if e.ID == entry.ID || (entry.ExternalRef != "" && e.ExternalRef == entry.ExternalRef) {
					return fault.ErrConcurrentUpdate
				}
			}
			return nil
		},
		apply: func(s *Store) {
			s.entries[entry.TenantID] = append(s.entries[entry.TenantID], entry)
		},
	})
	if err != nil {
		return err
	}
	if unit := r.store.unitFrom(ctx); unit != nil {
		unit.mu.Lock()
		unit.entries = append(unit.entries, entry)
		unit.mu.Unlock()
	}
	return nil
}

// visible returns committed entries of the tenant followed by those staged in
// the unit, oldest first.
func (r *LedgerRepository) visible(ctx context.Context, tenantID string) []domainwallet.LedgerEntry {
	r.store.mu.RLock()
	out := append([]domainwallet.LedgerEntry(nil), r.store.entries[tenantID]...)
	r.store.mu.RUnlock()
	if unit := r.store.unitFrom(ctx); unit != nil {
		unit.mu.Lock()
		for _, e := range unit.entries {
			if e.TenantID == tenantID {
				out = append(out, e)
			}
		}
		unit.mu.Unlock()
	}
	return out
}

func (r *LedgerRepository) ByID(ctx context.Context, tenantID, id string) (domainwallet.LedgerEntry, error) {
	for _, e := range r.visible(ctx, tenantID) {
		if e.ID == id {
			return e, nil
		}
	}
	return domainwallet.LedgerEntry{}, domainwallet.ErrEntryNotFound
}

func (r *LedgerRepository) ByExternalRef(ctx context.Context, tenantID, ref string) (domainwallet.LedgerEntry, error) {
	for _, e := range r.visible(ctx, tenantID) {
		if ref != "" && e.ExternalRef == ref {
			return e, nil
		}
	}
	return domainwallet.LedgerEntry{}, domainwallet.ErrEntryNotFound
}

func (r *LedgerRepository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]domainwallet.LedgerEntry, error) {
	all := r.visible(ctx, tenantID)
	out := make([]domainwallet.LedgerEntry, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, all[i])
	}
	return out, nil
}

func (r *LedgerRepository) Totals(ctx context.Context, tenantID string) (domainwallet.Totals, error) {
	var t domainwallet.Totals
	for _, e := range r.visible(ctx, tenantID) {
		t.Sum += e.Amount
		t.Entries++
	}
	return t, nil
}

var (
	_ domaininventory.RoomTypeRepository = (*RoomTypeRepository)(nil)
	_ domaininventory.RoomUnitRepository = (*RoomUnitRepository)(nil)
	_ domainbooking.Repository           = (*BookingRepository)(nil)
	_ domainwallet.Repository            = (*WalletRepository)(nil)
	_ domainwallet.EntryRepository       = (*LedgerRepository)(nil)
)
