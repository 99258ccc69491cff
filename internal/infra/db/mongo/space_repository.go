package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"parkshare/internal/domain/spaces"
)

// SpaceCatalog reads the space collection owned by the space-management
// side; the reservation engine treats it as read-only, except for Put used
// to import fixtures.
type SpaceCatalog struct {
	col *mongo.Collection
}

func NewSpaceCatalog(db *mongo.Database) *SpaceCatalog {
	col := db.Collection("parking_spaces")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "owner_id", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &SpaceCatalog{col: col}
}

func (c *SpaceCatalog) ByID(ctx context.Context, id spaces.SpaceID) (*spaces.ParkingSpace, error) {
	var doc spaceDocument
	if err := c.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, spaces.ErrNotFound
		}
		return nil, err
	}
	return doc.toSpace(), nil
}

func (c *SpaceCatalog) List(ctx context.Context, onlyActive bool) ([]*spaces.ParkingSpace, error) {
	filter := bson.M{}
	if onlyActive {
		filter["is_active"] = true
	}
	return c.find(ctx, filter)
}

func (c *SpaceCatalog) ListByOwner(ctx context.Context, ownerID spaces.OwnerID) ([]*spaces.ParkingSpace, error) {
	return c.find(ctx, bson.M{"owner_id": string(ownerID)})
}

func (c *SpaceCatalog) Put(ctx context.Context, space spaces.ParkingSpace) error {
	doc := newSpaceDocument(space)
	opts := options.Replace().SetUpsert(true)
	_, err := c.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (c *SpaceCatalog) find(ctx context.Context, filter bson.M) ([]*spaces.ParkingSpace, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := c.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*spaces.ParkingSpace
	for cursor.Next(ctx) {
		var doc spaceDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toSpace())
	}
	return out, cursor.Err()
}

type spaceDocument struct {
	ID              string `bson:"_id"`
	OwnerID         string `bson:"owner_id"`
	Title           string `bson:"title"`
	Address         string `bson:"address"`
	City            string `bson:"city"`
	Size            string `bson:"size"`
	Kind            string `bson:"kind"`
	HourlyRateCents int64  `bson:"hourly_rate_cents"`
	Currency        string `bson:"currency"`
	IsActive        bool   `bson:"is_active"`
	Timezone        string `bson:"timezone"`
	CreatedAt       int64  `bson:"created_at"`
}

func newSpaceDocument(space spaces.ParkingSpace) spaceDocument {
	return spaceDocument{
		ID:              string(space.ID),
		OwnerID:         string(space.OwnerID),
		Title:           space.Title,
		Address:         space.Address,
		City:            space.City,
		Size:            string(space.Size),
		Kind:            string(space.Kind),
		HourlyRateCents: space.HourlyRateCents,
		Currency:        space.Currency,
		IsActive:        space.IsActive,
		Timezone:        space.Timezone,
		CreatedAt:       space.CreatedAt.UnixMilli(),
	}
}

func (d spaceDocument) toSpace() *spaces.ParkingSpace {
	return &spaces.ParkingSpace{
		ID:              spaces.SpaceID(d.ID),
		OwnerID:         spaces.OwnerID(d.OwnerID),
		Title:           d.Title,
		Address:         d.Address,
		City:            d.City,
		Size:            spaces.Size(d.Size),
		Kind:            spaces.Kind(d.Kind),
		HourlyRateCents: d.HourlyRateCents,
		Currency:        d.Currency,
		IsActive:        d.IsActive,
		Timezone:        d.Timezone,
		CreatedAt:       time.UnixMilli(d.CreatedAt).UTC(),
	}
}
