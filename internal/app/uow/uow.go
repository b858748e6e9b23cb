package uow

import (
	"context"
	"errors"

	domainbooking "stayloom/internal/domain/booking"
	domainoccupancy "stayloom/internal/domain/occupancy"
	domainunit "stayloom/internal/domain/unit"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work not found")

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Units() domainunit.Repository
	Occupancy() domainoccupancy.Ledger
	Bookings() domainbooking.Repository
	Transactions() domainbooking.TransactionRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
