package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"parkshare/internal/domain/availability"
	domainres "parkshare/internal/domain/reservation"
	"parkshare/internal/domain/shared/timerange"
	"parkshare/internal/domain/spaces"
)

// AvailabilityIndex answers overlap queries straight off the reservation
// collection: the `(space_id, status)` index plus the half-open window
// predicate make the reservation documents themselves the interval set, so
// Insert and Remove have nothing extra to maintain.
type AvailabilityIndex struct {
	col *mongo.Collection
}

func NewAvailabilityIndex(db *mongo.Database) *AvailabilityIndex {
	return &AvailabilityIndex{col: db.Collection(reservationCollection)}
}

func (x *AvailabilityIndex) HasConflict(ctx context.Context, spaceID spaces.SpaceID, window timerange.Range, excludeID domainres.ID) (bool, error) {
	filter := bson.M{
		"space_id": string(spaceID),
		"status": bson.M{"$in": []string{
			string(domainres.StatusPending),
			string(domainres.StatusConfirmed),
		}},
		"window.start": bson.M{"$lt": window.End.UnixMilli()},
		"window.end":   bson.M{"$gt": window.Start.UnixMilli()},
	}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": string(excludeID)}
	}
	count, err := x.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (x *AvailabilityIndex) Insert(ctx context.Context, spaceID spaces.SpaceID, entry availability.Entry) error {
	return nil
}

func (x *AvailabilityIndex) Remove(ctx context.Context, spaceID spaces.SpaceID, id domainres.ID) error {
	return nil
}

var _ availability.Index = (*AvailabilityIndex)(nil)
