package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkshare/internal/app/booking"
	domainres "parkshare/internal/domain/reservation"
)

type IdempotencyStore struct {
	col *mongo.Collection
}

func NewIdempotencyStore(db *mongo.Database) *IdempotencyStore {
	col := db.Collection("idempotency_keys")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32((24 * time.Hour).Seconds())),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &IdempotencyStore{col: col}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (booking.IdempotencyRecord, bool, error) {
	var doc idempotencyDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return booking.IdempotencyRecord{}, false, nil
		}
		return booking.IdempotencyRecord{}, false, err
	}
	return booking.IdempotencyRecord{
		Key:           doc.ID,
		ReservationID: domainres.ID(doc.ReservationID),
		CreatedAt:     doc.CreatedAt,
	}, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec booking.IdempotencyRecord) error {
	doc := idempotencyDocument{
		ID:            rec.Key,
		ReservationID: string(rec.ReservationID),
		CreatedAt:     rec.CreatedAt,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type idempotencyDocument struct {
	ID            string    `bson:"_id"`
	ReservationID string    `bson:"reservation_id"`
	CreatedAt     time.Time `bson:"created_at"`
}

var _ booking.IdempotencyStore = (*IdempotencyStore)(nil)
