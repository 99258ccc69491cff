package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "parkshare/internal/domain/pricing"
	domainres "parkshare/internal/domain/reservation"
	"parkshare/internal/domain/shared/money"
	"parkshare/internal/domain/shared/timerange"
	"parkshare/internal/domain/spaces"
	domainuser "parkshare/internal/domain/user"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

const reservationCollection = "reservations"

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	col := db.Collection(reservationCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "space_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "renter_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "window.end", Value: 1}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	return &ReservationRepository{col: col}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainres.ID) (*domainres.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainres.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainres.Reservation) error {
	doc := newReservationDocument(res)
	filter := bson.M{"_id": doc.ID, "version": res.Version}
	doc.Version = res.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	result, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	res.Version = doc.Version
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id domainres.ID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}

func (r *ReservationRepository) ListByRenter(ctx context.Context, renterID domainuser.ID) ([]*domainres.Reservation, error) {
	return r.list(ctx, bson.M{"renter_id": string(renterID)})
}

func (r *ReservationRepository) ListBySpace(ctx context.Context, spaceID spaces.SpaceID) ([]*domainres.Reservation, error) {
	return r.list(ctx, bson.M{"space_id": string(spaceID)})
}

func (r *ReservationRepository) ListConfirmedEndedBy(ctx context.Context, now time.Time) ([]*domainres.Reservation, error) {
	return r.list(ctx, bson.M{
		"status":     string(domainres.StatusConfirmed),
		"window.end": bson.M{"$lte": now.UTC().UnixMilli()},
	})
}

func (r *ReservationRepository) list(ctx context.Context, filter bson.M) ([]*domainres.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "window.start", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainres.Reservation
	for cursor.Next(ctx) {
		var doc reservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type reservationDocument struct {
	ID            string         `bson:"_id"`
	SpaceID       string         `bson:"space_id"`
	RenterID      string         `bson:"renter_id"`
	Window        windowDocument `bson:"window"`
	Status        string         `bson:"status"`
	PaymentStatus string         `bson:"payment_status"`
	Currency      string         `bson:"currency"`
	TotalCents    int64          `bson:"total_cents"`
	FeeCents      int64          `bson:"platform_fee_cents"`
	OwnerCents    int64          `bson:"owner_earnings_cents"`
	IsRecurring   bool           `bson:"is_recurring"`
	GroupID       string         `bson:"recurring_group_id,omitempty"`
	CreatedAt     int64          `bson:"created_at"`
	UpdatedAt     int64          `bson:"updated_at"`
	Version       int64          `bson:"version"`
}

type windowDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newReservationDocument(res *domainres.Reservation) reservationDocument {
	return reservationDocument{
		ID:            string(res.ID),
		SpaceID:       string(res.SpaceID),
		RenterID:      string(res.RenterID),
		Window:        windowDocument{Start: res.Window.Start.UnixMilli(), End: res.Window.End.UnixMilli()},
		Status:        string(res.Status),
		PaymentStatus: string(res.PaymentStatus),
		Currency:      res.Price.Total.Currency,
		TotalCents:    res.Price.Total.Cents,
		FeeCents:      res.Price.PlatformFee.Cents,
		OwnerCents:    res.Price.OwnerEarnings.Cents,
		IsRecurring:   res.IsRecurring,
		GroupID:       string(res.GroupID),
		CreatedAt:     res.CreatedAt.UnixMilli(),
		UpdatedAt:     res.UpdatedAt.UnixMilli(),
		Version:       res.Version,
	}
}

func (d reservationDocument) toAggregate() *domainres.Reservation {
	return &domainres.Reservation{
		ID:       domainres.ID(d.ID),
		SpaceID:  spaces.SpaceID(d.SpaceID),
		RenterID: domainuser.ID(d.RenterID),
		Window: timerange.Range{
			Start: timestampToTime(d.Window.Start),
			End:   timestampToTime(d.Window.End),
		},
		Status:        domainres.Status(d.Status),
		PaymentStatus: domainres.PaymentStatus(d.PaymentStatus),
		Price: domainpricing.Breakdown{
			Total:         money.Money{Cents: d.TotalCents, Currency: d.Currency},
			PlatformFee:   money.Money{Cents: d.FeeCents, Currency: d.Currency},
			OwnerEarnings: money.Money{Cents: d.OwnerCents, Currency: d.Currency},
		},
		IsRecurring: d.IsRecurring,
		GroupID:     domainres.GroupID(d.GroupID),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
