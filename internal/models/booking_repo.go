package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRepo interface {
	InsertBooking(ctx context.Context, booking *Booking) error
	GetBookingByID(ctx context.Context, id string) (*Booking, error)
	FindOverlappingBookings(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]*Booking, error)
	ListBookingsByProperty(ctx context.Context, propertyID string) ([]*Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]*Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]*Booking, int64, error)
	TransitionBookingStatus(ctx context.Context, id string, from, to BookingStatus, now time.Time) (*Booking, error)
	FindCompletedBooking(ctx context.Context, id, userID, propertyID string) (*Booking, error)
	SetBookingReviewed(ctx context.Context, id string, reviewed bool) error
	CountUpcomingBookings(ctx context.Context, propertyID string, now time.Time) (int64, error)
	CompleteElapsedBookings(ctx context.Context, now time.Time) (int64, error)
}

func (mdb *MongodbRepo) InsertBooking(ctx context.Context, booking *Booking) error {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	if _, err := col.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) findOneBooking(ctx context.Context, filter bson.M) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	var booking Booking
	if err := col.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	return mdb.findOneBooking(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) FindCompletedBooking(ctx context.Context, id, userID, propertyID string) (*Booking, error) {
	return mdb.findOneBooking(ctx, bson.M{
		"_id":         id,
		"user_id":     userID,
		"property_id": propertyID,
		"status":      BookingCompleted,
	})
}

func (mdb *MongodbRepo) findBookings(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %v", err)
	}
	defer cursor.Close(ctx)

	bookings := []*Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %v", err)
	}
	return bookings, nil
}

// FindOverlappingBookings returns confirmed bookings intersecting [checkIn, checkOut).
func (mdb *MongodbRepo) FindOverlappingBookings(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]*Booking, error) {
	filter := bson.M{
		"property_id": propertyID,
		"status":      BookingConfirmed,
		"check_in":    bson.M{"$lt": checkOut},
		"check_out":   bson.M{"$gt": checkIn},
	}
	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: 1}})
	return mdb.findBookings(ctx, filter, opts)
}

func (mdb *MongodbRepo) ListBookingsByProperty(ctx context.Context, propertyID string) ([]*Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: 1}})
	return mdb.findBookings(ctx, bson.M{"property_id": propertyID}, opts)
}

func (mdb *MongodbRepo) ListBookingsByUser(ctx context.Context, userID string) ([]*Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return mdb.findBookings(ctx, bson.M{"user_id": userID}, opts)
}

func (mdb *MongodbRepo) ListBookings(ctx context.Context, filter BookingFilter) ([]*Booking, int64, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}
	q := bson.M{}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	total, err := col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %v", err)
	}

	// _id breaks created_at ties so consecutive pages never overlap.
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	bookings, err := mdb.findBookings(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// TransitionBookingStatus moves a booking from one status to another only if it is still in `from`.
func (mdb *MongodbRepo) TransitionBookingStatus(ctx context.Context, id string, from, to BookingStatus, now time.Time) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking Booking
	err = col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": now}},
		opts,
	).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: booking is no longer %s", ErrConflict, from)
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) SetBookingReviewed(ctx context.Context, id string, reviewed bool) error {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"reviewed":   reviewed,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: booking not found", ErrNotFound)
	}
	return nil
}

func (mdb *MongodbRepo) CountUpcomingBookings(ctx context.Context, propertyID string, now time.Time) (int64, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}
	count, err := col.CountDocuments(ctx, bson.M{
		"property_id": propertyID,
		"status":      BookingConfirmed,
		"check_out":   bson.M{"$gt": now},
	})
	if err != nil {
		return 0, fmt.Errorf("error counting bookings: %v", err)
	}
	return count, nil
}

// CompleteElapsedBookings marks every confirmed booking whose check-out has passed as completed.
// Re-running it is a no-op because completed bookings no longer match the filter.
func (mdb *MongodbRepo) CompleteElapsedBookings(ctx context.Context, now time.Time) (int64, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.UpdateMany(ctx,
		bson.M{
			"status":    BookingConfirmed,
			"check_out": bson.M{"$lt": now},
		},
		bson.M{"$set": bson.M{"status": BookingCompleted, "updated_at": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to complete bookings: %w", err)
	}
	return res.ModifiedCount, nil
}
