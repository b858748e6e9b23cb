package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	domainbooking "stayloom/internal/domain/booking"
	domainunit "stayloom/internal/domain/unit"
)

// UnitRepository is an in-memory implementation for demo and test use.
type UnitRepository struct {
	mu    sync.RWMutex
	items map[domainunit.UnitID]*domainunit.Unit
}

// NewUnitRepository builds an empty repository.
func NewUnitRepository() *UnitRepository {
	return &UnitRepository{items: make(map[domainunit.UnitID]*domainunit.Unit)}
}

// ByID returns a unit or unit.ErrNotFound.
func (r *UnitRepository) ByID(ctx context.Context, id domainunit.UnitID) (*domainunit.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domainunit.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// Save stores/updates a unit entry.
func (r *UnitRepository) Save(ctx context.Context, u *domainunit.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *u
	r.items[u.ID] = &copied
	return nil
}

// List returns every unit sorted by id.
func (r *UnitRepository) List(ctx context.Context) ([]*domainunit.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	units := make([]*domainunit.Unit, 0, len(r.items))
	for _, u := range r.items {
		copied := *u
		units = append(units, &copied)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units, nil
}

func (r *UnitRepository) snapshot(id domainunit.UnitID) *domainunit.Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.items[id]; ok {
		copied := *u
		return &copied
	}
	return nil
}

// restore puts back the pre-write state; a nil prev means the row did not exist.
func (r *UnitRepository) restore(id domainunit.UnitID, prev *domainunit.Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev == nil {
		delete(r.items, id)
		return
	}
	copied := *prev
	r.items[id] = &copied
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
	byRef map[string]domainbooking.BookingID
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items: make(map[domainbooking.BookingID]*domainbooking.Booking),
		byRef: make(map[string]domainbooking.BookingID),
	}
}

// ByID fetches a booking.
func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

// ByPaymentReference resolves a booking by the reference stamped at confirmation.
func (r *BookingRepository) ByPaymentReference(ctx context.Context, ref string) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byRef[ref]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

// Save stores the current booking state.
func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.Version++
	copied := *booking
	r.items[booking.ID] = &copied
	if booking.PaymentReference != "" {
		r.byRef[booking.PaymentReference] = booking.ID
	}
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id := strings.TrimSpace(guestID)
	if id == "" {
		return nil, errors.New("memory: guest id required")
	}
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.GuestID == id {
			copied := *booking
			matches = append(matches, &copied)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *BookingRepository) snapshot(id domainbooking.BookingID) *domainbooking.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.items[id]; ok {
		copied := *b
		return &copied
	}
	return nil
}

func (r *BookingRepository) restore(id domainbooking.BookingID, prev *domainbooking.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ref, bid := range r.byRef {
		if bid == id {
			delete(r.byRef, ref)
		}
	}
	if prev == nil {
		delete(r.items, id)
		return
	}
	copied := *prev
	r.items[id] = &copied
	if prev.PaymentReference != "" {
		r.byRef[prev.PaymentReference] = id
	}
}

// TransactionRepository keeps payment ledger rows in memory, one per booking.
type TransactionRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Transaction
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{items: make(map[domainbooking.BookingID]*domainbooking.Transaction)}
}

func (r *TransactionRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainbooking.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.items[bookingID]
	if !ok {
		return nil, domainbooking.ErrTransactionNotFound
	}
	copied := *tx
	return &copied, nil
}

func (r *TransactionRepository) Save(ctx context.Context, tx *domainbooking.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *tx
	r.items[tx.BookingID] = &copied
	return nil
}

func (r *TransactionRepository) snapshot(bookingID domainbooking.BookingID) *domainbooking.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tx, ok := r.items[bookingID]; ok {
		copied := *tx
		return &copied
	}
	return nil
}

func (r *TransactionRepository) restore(bookingID domainbooking.BookingID, prev *domainbooking.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev == nil {
		delete(r.items, bookingID)
		return
	}
	copied := *prev
	r.items[bookingID] = &copied
}

var (
	_ domainunit.Repository               = (*UnitRepository)(nil)
	_ domainbooking.Repository            = (*BookingRepository)(nil)
	_ domainbooking.TransactionRepository = (*TransactionRepository)(nil)
)
