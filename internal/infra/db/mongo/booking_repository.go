package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "stayloom/internal/domain/booking"
	domainpricing "stayloom/internal/domain/pricing"
	domainrange "stayloom/internal/domain/shared/daterange"
	domainunit "stayloom/internal/domain/unit"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "guest_id", Value: 1}, {Key: "created_at", Value: -1}}})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "payment_reference", Value: 1}},
		Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"payment_reference": bson.M{"$gt": ""}}),
	})
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) ByPaymentReference(ctx context.Context, ref string) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"payment_reference": ref}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"guest_id": guestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var bookings []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		bookings = append(bookings, doc.toAggregate())
	}
	return bookings, cur.Err()
}

type bookingDocument struct {
	ID               string                    `bson:"_id"`
	UnitID           string                    `bson:"unit_id"`
	GuestID          string                    `bson:"guest_id"`
	ContactName      string                    `bson:"contact_name"`
	ContactEmail     string                    `bson:"contact_email"`
	ContactPhone     string                    `bson:"contact_phone"`
	Range            rangeDocument             `bson:"range"`
	Guests           int                       `bson:"guests"`
	Category         string                    `bson:"category"`
	Price            domainpricing.Breakdown   `bson:"price"`
	State            string                    `bson:"state"`
	PaymentReference string                    `bson:"payment_reference"`
	CreatedAt        int64                     `bson:"created_at"`
	UpdatedAt        int64                     `bson:"updated_at"`
	Version          int64                     `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:               string(b.ID),
		UnitID:           string(b.UnitID),
		GuestID:          b.GuestID,
		ContactName:      b.Contact.Name,
		ContactEmail:     b.Contact.Email,
		ContactPhone:     b.Contact.Phone,
		Range:            rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:           b.Guests,
		Category:         string(b.Category),
		Price:            b.Price,
		State:            string(b.State),
		PaymentReference: b.PaymentReference,
		CreatedAt:        b.CreatedAt.UnixMilli(),
		UpdatedAt:        b.UpdatedAt.UnixMilli(),
		Version:          b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	dr := domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)}
	return &domainbooking.Booking{
		ID:      domainbooking.BookingID(d.ID),
		UnitID:  domainunit.UnitID(d.UnitID),
		GuestID: d.GuestID,
		Contact: domainbooking.Contact{
			Name:  d.ContactName,
			Email: d.ContactEmail,
			Phone: d.ContactPhone,
		},
		Range:            dr,
		Guests:           d.Guests,
		Category:         domainbooking.Category(d.Category),
		Price:            d.Price,
		State:            domainbooking.BookingState(d.State),
		PaymentReference: d.PaymentReference,
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
		Version:          d.Version,
	}
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}
