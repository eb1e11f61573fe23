package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique, lookup and TTL indexes every collection relies on.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	plan := map[string][]mongo.IndexModel{
		UsersColName: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
			{
				Keys:    bson.D{{Key: "phone", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("phone_unique"),
			},
			// Cleanup sweep
			{
				Keys: bson.D{
					{Key: "is_verified", Value: 1},
					{Key: "created_at", Value: 1},
				},
				Options: options.Index().SetName("unverified_created_at_idx"),
			},
			{
				Keys:    bson.D{{Key: "reset_token", Value: 1}},
				Options: options.Index().SetSparse(true).SetName("reset_token_idx"),
			},
		},
		PropertiesColName: {
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}},
				Options: options.Index().SetName("owner_id_idx"),
			},
			{
				Keys: bson.D{
					{Key: "type", Value: 1},
					{Key: "price", Value: 1},
				},
				Options: options.Index().SetName("type_price_idx"),
			},
		},
		BookingsColName: {
			// Overlap queries
			{
				Keys: bson.D{
					{Key: "property_id", Value: 1},
					{Key: "status", Value: 1},
					{Key: "check_in", Value: 1},
					{Key: "check_out", Value: 1},
				},
				Options: options.Index().SetName("property_status_range_idx"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetName("user_id_idx"),
			},
			// Completion sweep
			{
				Keys: bson.D{
					{Key: "status", Value: 1},
					{Key: "check_out", Value: 1},
				},
				Options: options.Index().SetName("status_check_out_idx"),
			},
		},
		BookingLocksColName: {
			{
				Keys: bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().
					SetExpireAfterSeconds(0).
					SetName("expires_at_ttl"),
			},
		},
		ReviewsColName: {
			{
				Keys:    bson.D{{Key: "booking_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("booking_id_unique"),
			},
			{
				Keys:    bson.D{{Key: "property_id", Value: 1}},
				Options: options.Index().SetName("property_id_idx"),
			},
		},
		FavouriteColName: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "property_id", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("user_property_unique"),
			},
		},
	}

	for colName, indexes := range plan {
		col, err := mdb.GetCollection(ctx, colName)
		if err != nil {
			return fmt.Errorf("error getting collection: %v", err)
		}
		if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("error creating indexes on %s: %v", colName, err)
		}
	}
	return nil
}
