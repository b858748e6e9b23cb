package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayloom/internal/domain/shared/money"
	domainunit "stayloom/internal/domain/unit"
)

type UnitRepository struct {
	col *mongo.Collection
}

func NewUnitRepository(db *mongo.Database) *UnitRepository {
	return &UnitRepository{col: db.Collection("agg_unit")}
}

func (r *UnitRepository) ByID(ctx context.Context, id domainunit.UnitID) (*domainunit.Unit, error) {
	var doc unitDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainunit.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UnitRepository) Save(ctx context.Context, u *domainunit.Unit) error {
	doc := newUnitDocument(u)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, opts)
	return err
}

func (r *UnitRepository) List(ctx context.Context) ([]*domainunit.Unit, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var units []*domainunit.Unit
	for cur.Next(ctx) {
		var doc unitDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		units = append(units, doc.toAggregate())
	}
	return units, cur.Err()
}

type unitDocument struct {
	ID            string      `bson:"_id"`
	Name          string      `bson:"name"`
	NightlyRate   money.Money `bson:"nightly_rate"`
	ExtraGuestFee money.Money `bson:"extra_guest_fee"`
	MaxGuests     int         `bson:"max_guests"`
	Available     bool        `bson:"available"`
	CreatedAt     int64       `bson:"created_at"`
	UpdatedAt     int64       `bson:"updated_at"`
}

func newUnitDocument(u *domainunit.Unit) unitDocument {
	return unitDocument{
		ID:            string(u.ID),
		Name:          u.Name,
		NightlyRate:   u.NightlyRate,
		ExtraGuestFee: u.ExtraGuestNightlyFee,
		MaxGuests:     u.MaxGuests,
		Available:     u.Available,
		CreatedAt:     u.CreatedAt.UnixMilli(),
		UpdatedAt:     u.UpdatedAt.UnixMilli(),
	}
}

func (d unitDocument) toAggregate() *domainunit.Unit {
	return &domainunit.Unit{
		ID:                   domainunit.UnitID(d.ID),
		Name:                 d.Name,
		NightlyRate:          d.NightlyRate,
		ExtraGuestNightlyFee: d.ExtraGuestFee,
		MaxGuests:            d.MaxGuests,
		Available:            d.Available,
		CreatedAt:            timestampToTime(d.CreatedAt),
		UpdatedAt:            timestampToTime(d.UpdatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
