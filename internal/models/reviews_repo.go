package models

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewsRepo interface {
	InsertReview(ctx context.Context, review *Review) error
	GetReviewByID(ctx context.Context, id string) (*Review, error)
	ReviewExistsForBooking(ctx context.Context, bookingID string) (bool, error)
	DeleteReview(ctx context.Context, id string) error
	ListReviewsByProperty(ctx context.Context, propertyID string) ([]*Review, error)
	PropertyRatingSummary(ctx context.Context, propertyID string) (RatingSummary, error)
}

func (mdb *MongodbRepo) InsertReview(ctx context.Context, review *Review) error {
	col, err := mdb.GetCollection(ctx, ReviewsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	if _, err := col.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: booking already reviewed", ErrConflict)
		}
		return fmt.Errorf("failed to insert review into database: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetReviewByID(ctx context.Context, id string) (*Review, error) {
	col, err := mdb.GetCollection(ctx, ReviewsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	var review Review
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: review not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &review, nil
}

func (mdb *MongodbRepo) ReviewExistsForBooking(ctx context.Context, bookingID string) (bool, error) {
	col, err := mdb.GetCollection(ctx, ReviewsColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %v", err)
	}
	count, err := col.CountDocuments(ctx, bson.M{"booking_id": bookingID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error counting reviews: %v", err)
	}
	return count > 0, nil
}

func (mdb *MongodbRepo) DeleteReview(ctx context.Context, id string) error {
	col, err := mdb.GetCollection(ctx, ReviewsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: review not found", ErrNotFound)
	}
	return nil
}

func (mdb *MongodbRepo) ListReviewsByProperty(ctx context.Context, propertyID string) ([]*Review, error) {
	col, err := mdb.GetCollection(ctx, ReviewsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"property_id": propertyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding reviews: %v", err)
	}
	defer cursor.Close(ctx)

	reviews := []*Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("error decoding reviews: %v", err)
	}
	return reviews, nil
}

// PropertyRatingSummary averages every stored rating for a property. Zero reviews yield a zero summary.
func (mdb *MongodbRepo) PropertyRatingSummary(ctx context.Context, propertyID string) (RatingSummary, error) {
	col, err := mdb.GetCollection(ctx, ReviewsColName)
	if err != nil {
		return RatingSummary{}, fmt.Errorf("error getting collection: %v", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"property_id": propertyID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$property_id",
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return RatingSummary{}, fmt.Errorf("error aggregating ratings: %v", err)
	}
	defer cursor.Close(ctx)

	var result []RatingSummary
	if err := cursor.All(ctx, &result); err != nil {
		return RatingSummary{}, fmt.Errorf("error decoding ratings: %v", err)
	}
	if len(result) == 0 {
		return RatingSummary{}, nil
	}
	return result[0], nil
}
