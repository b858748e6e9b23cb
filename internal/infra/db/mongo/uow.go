package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayloom/internal/app/uow"
	domainbooking "stayloom/internal/domain/booking"
	domainoccupancy "stayloom/internal/domain/occupancy"
	domainunit "stayloom/internal/domain/unit"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	UnitsRepo        domainunit.Repository
	OccupancyLedger  domainoccupancy.Ledger
	BookingsRepo     domainbooking.Repository
	TransactionsRepo domainbooking.TransactionRepository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:           f.DB,
		session:      session,
		units:        f.UnitsRepo,
		occupancy:    f.OccupancyLedger,
		bookings:     f.BookingsRepo,
		transactions: f.TransactionsRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

	units        domainunit.Repository
	occupancy    domainoccupancy.Ledger
	bookings     domainbooking.Repository
	transactions domainbooking.TransactionRepository
}

func (u *Unit) Units() domainunit.Repository {
	return u.units
}

func (u *Unit) Occupancy() domainoccupancy.Ledger {
	return u.occupancy
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Transactions() domainbooking.TransactionRepository {
	return u.transactions
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
