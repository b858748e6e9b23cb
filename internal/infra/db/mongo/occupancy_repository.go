package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainoccupancy "stayloom/internal/domain/occupancy"
	"stayloom/internal/domain/shared/daterange"
	domainunit "stayloom/internal/domain/unit"
)

const (
	rowKindStay   = "stay"
	rowKindBuffer = "buffer"
	rowKindBlock  = "block"
)

// OccupancyLedger persists one document per unavailable (unit, day). The
// unique compound index on {unit_id, date} is the sole double-booking
// arbiter: every writer goes through it and concurrent overlapping inserts
// resolve to exactly one winner.
type OccupancyLedger struct {
	col *mongo.Collection
}

func NewOccupancyLedger(db *mongo.Database) *OccupancyLedger {
	col := db.Collection("occupancy_ledger")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "unit_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "booking_id", Value: 1}}})
	return &OccupancyLedger{col: col}
}

type occupancyDocument struct {
	UnitID    string `bson:"unit_id"`
	Date      string `bson:"date"`
	Kind      string `bson:"kind"`
	BookingID string `bson:"booking_id,omitempty"`
	Reason    string `bson:"reason,omitempty"`
}

func entryDocument(e domainoccupancy.Entry) occupancyDocument {
	kind := rowKindStay
	if e.Buffer {
		kind = rowKindBuffer
	}
	return occupancyDocument{
		UnitID:    string(e.UnitID),
		Date:      daterange.DayKey(e.Date),
		Kind:      kind,
		BookingID: e.BookingID,
	}
}

// InsertEntries is all-or-nothing. Inside a session transaction the whole
// batch aborts on the first duplicate; the conflicting dates are then read
// back so the caller can report them precisely.
func (l *OccupancyLedger) InsertEntries(ctx context.Context, entries []domainoccupancy.Entry) error {
	if len(entries) == 0 {
		return domainoccupancy.ErrNoEntries
	}
	docs := make([]any, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, entryDocument(e))
	}
	_, err := l.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	dates := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		dates = append(dates, e.Date)
	}
	conflicts, lookupErr := l.ConflictingDates(ctx, entries[0].UnitID, dates)
	if lookupErr != nil || len(conflicts) == 0 {
		return &domainoccupancy.DateConflictError{UnitID: entries[0].UnitID, Dates: dates}
	}
	return &domainoccupancy.DateConflictError{UnitID: entries[0].UnitID, Dates: conflicts}
}

// InsertEntriesTolerant inserts one document at a time, skipping duplicates.
func (l *OccupancyLedger) InsertEntriesTolerant(ctx context.Context, entries []domainoccupancy.Entry) ([]domainoccupancy.Entry, error) {
	inserted := make([]domainoccupancy.Entry, 0, len(entries))
	for _, e := range entries {
		_, err := l.col.InsertOne(ctx, entryDocument(e))
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return inserted, err
		}
		inserted = append(inserted, e)
	}
	return inserted, nil
}

func (l *OccupancyLedger) DeleteByBooking(ctx context.Context, bookingID string) error {
	_, err := l.col.DeleteMany(ctx, bson.M{"booking_id": bookingID})
	return err
}

func (l *OccupancyLedger) ConflictingDates(ctx context.Context, unitID domainunit.UnitID, dates []time.Time) ([]time.Time, error) {
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, daterange.DayKey(d))
	}
	cur, err := l.col.Find(ctx, bson.M{"unit_id": unitID, "date": bson.M{"$in": keys}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var conflicts []time.Time
	for cur.Next(ctx) {
		var doc occupancyDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		day, err := time.Parse("2006-01-02", doc.Date)
		if err != nil {
			continue
		}
		conflicts = append(conflicts, day)
	}
	return conflicts, cur.Err()
}

func (l *OccupancyLedger) InsertBlocks(ctx context.Context, blocks []domainoccupancy.Block) error {
	if len(blocks) == 0 {
		return domainoccupancy.ErrNoEntries
	}
	docs := make([]any, 0, len(blocks))
	for _, b := range blocks {
		docs = append(docs, occupancyDocument{
			UnitID: string(b.UnitID),
			Date:   daterange.DayKey(b.Date),
			Kind:   rowKindBlock,
			Reason: b.Reason,
		})
	}
	_, err := l.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	dates := make([]time.Time, 0, len(blocks))
	for _, b := range blocks {
		dates = append(dates, b.Date)
	}
	conflicts, lookupErr := l.ConflictingDates(ctx, blocks[0].UnitID, dates)
	if lookupErr != nil || len(conflicts) == 0 {
		return &domainoccupancy.DateConflictError{UnitID: blocks[0].UnitID, Dates: dates}
	}
	return &domainoccupancy.DateConflictError{UnitID: blocks[0].UnitID, Dates: conflicts}
}

func (l *OccupancyLedger) DeleteBlocks(ctx context.Context, unitID domainunit.UnitID, dates []time.Time) error {
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, daterange.DayKey(d))
	}
	_, err := l.col.DeleteMany(ctx, bson.M{"unit_id": unitID, "kind": rowKindBlock, "date": bson.M{"$in": keys}})
	return err
}

func (l *OccupancyLedger) Calendar(ctx context.Context, unitID domainunit.UnitID, from, to time.Time) ([]domainoccupancy.DayStatus, error) {
	filter := bson.M{
		"unit_id": unitID,
		"date":    bson.M{"$gte": daterange.DayKey(from), "$lt": daterange.DayKey(to)},
	}
	cur, err := l.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var statuses []domainoccupancy.DayStatus
	for cur.Next(ctx) {
		var doc occupancyDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		day, err := time.Parse("2006-01-02", doc.Date)
		if err != nil {
			continue
		}
		statuses = append(statuses, domainoccupancy.DayStatus{
			Date:    day,
			Booked:  doc.Kind == rowKindStay,
			Buffer:  doc.Kind == rowKindBuffer,
			Blocked: doc.Kind == rowKindBlock,
			Reason:  doc.Reason,
		})
	}
	return statuses, cur.Err()
}

var _ domainoccupancy.Ledger = (*OccupancyLedger)(nil)
