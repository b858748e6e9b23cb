package booking

import (
	"context"
	"errors"
	"time"

	"stayloom/internal/domain/shared/money"
)

var ErrTransactionNotFound = errors.New("booking: transaction not found")

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
)

// Transaction is the append-only payment ledger entry tied to a booking.
// Rows are created alongside the booking and updated on payment outcome,
// never deleted.
type Transaction struct {
	ID        string
	BookingID BookingID
	Amount    money.Money
	Status    TransactionStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TransactionRepository interface {
	ByBooking(ctx context.Context, bookingID BookingID) (*Transaction, error)
	Save(ctx context.Context, tx *Transaction) error
}

func NewTransaction(id string, bookingID BookingID, amount money.Money, now time.Time) *Transaction {
	now = now.UTC()
	return &Transaction{
		ID:        id,
		BookingID: bookingID,
		Amount:    amount,
		Status:    TransactionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t *Transaction) Complete(now time.Time) {
	t.Status = TransactionCompleted
	t.UpdatedAt = now.UTC()
}

func (t *Transaction) Fail(now time.Time) {
	t.Status = TransactionFailed
	t.UpdatedAt = now.UTC()
}
