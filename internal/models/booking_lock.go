package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrLockHeld is returned when another request is booking the same property.
var ErrLockHeld = errors.New("property lock is held")

// BookingLock serialises the overlap check and insert for one property.
// The unique _id makes acquisition atomic; the TTL index on expires_at clears locks left by crashed requests.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type PropertyLocker interface {
	AcquirePropertyLock(ctx context.Context, propertyID, owner string, now time.Time, ttl time.Duration) error
	ReleasePropertyLock(ctx context.Context, propertyID, owner string) error
}

func lockID(propertyID string) string {
	return "property:" + propertyID
}

func (mdb *MongodbRepo) AcquirePropertyLock(ctx context.Context, propertyID, owner string, now time.Time, ttl time.Duration) error {
	col, err := mdb.GetCollection(ctx, BookingLocksColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	lock := BookingLock{
		ID:        lockID(propertyID),
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err = col.InsertOne(ctx, lock)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to acquire property lock: %w", err)
	}

	// The TTL monitor runs roughly once a minute, so take over an expired lock ourselves.
	if _, err := col.DeleteOne(ctx, bson.M{"_id": lock.ID, "expires_at": bson.M{"$lte": now}}); err != nil {
		return fmt.Errorf("failed to clear expired property lock: %w", err)
	}
	if _, err := col.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrLockHeld
		}
		return fmt.Errorf("failed to acquire property lock: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) ReleasePropertyLock(ctx context.Context, propertyID, owner string) error {
	col, err := mdb.GetCollection(ctx, BookingLocksColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	if _, err := col.DeleteOne(ctx, bson.M{"_id": lockID(propertyID), "owner": owner}); err != nil {
		return fmt.Errorf("failed to release property lock: %w", err)
	}
	return nil
}
