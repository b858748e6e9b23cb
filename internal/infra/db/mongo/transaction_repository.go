package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "stayloom/internal/domain/booking"
	"stayloom/internal/domain/shared/money"
)

type TransactionRepository struct {
	col *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	col := db.Collection("payment_transactions")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "booking_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &TransactionRepository{col: col}
}

func (r *TransactionRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainbooking.Transaction, error) {
	var doc transactionDocument
	if err := r.col.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrTransactionNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *TransactionRepository) Save(ctx context.Context, tx *domainbooking.Transaction) error {
	doc := transactionDocument{
		ID:        tx.ID,
		BookingID: string(tx.BookingID),
		Amount:    tx.Amount,
		Status:    string(tx.Status),
		CreatedAt: tx.CreatedAt.UnixMilli(),
		UpdatedAt: tx.UpdatedAt.UnixMilli(),
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, opts)
	return err
}

type transactionDocument struct {
	ID        string      `bson:"_id"`
	BookingID string      `bson:"booking_id"`
	Amount    money.Money `bson:"amount"`
	Status    string      `bson:"status"`
	CreatedAt int64       `bson:"created_at"`
	UpdatedAt int64       `bson:"updated_at"`
}

func (d transactionDocument) toAggregate() *domainbooking.Transaction {
	return &domainbooking.Transaction{
		ID:        d.ID,
		BookingID: domainbooking.BookingID(d.BookingID),
		Amount:    d.Amount,
		Status:    domainbooking.TransactionStatus(d.Status),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
