package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Favourite struct {
	ID         string    `bson:"_id" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id" validate:"required"`
	PropertyID string    `bson:"property_id" json:"property_id" validate:"required"`
	AddedAt    time.Time `bson:"added_at" json:"added_at"`
}

type FavouriteRepo interface {
	AddToFavourites(ctx context.Context, fav *Favourite) error
	RemoveFromFavourites(ctx context.Context, userID, propertyID string) error
	GetFavouritesByUserID(ctx context.Context, userID string) ([]*Favourite, error)
}

func (mdb *MongodbRepo) AddToFavourites(ctx context.Context, fav *Favourite) error {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	if _, err := col.InsertOne(ctx, fav); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: property already in favourites", ErrConflict)
		}
		return fmt.Errorf("error inserting favourite: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) RemoveFromFavourites(ctx context.Context, userID, propertyID string) error {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"user_id": userID, "property_id": propertyID})
	if err != nil {
		return fmt.Errorf("error removing favourite: %v", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: property is not in favourites", ErrNotFound)
	}
	return nil
}

func (mdb *MongodbRepo) GetFavouritesByUserID(ctx context.Context, userID string) ([]*Favourite, error) {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding favourites: %v", err)
	}
	defer cursor.Close(ctx)

	favourites := []*Favourite{}
	for cursor.Next(ctx) {
		var fav Favourite
		if err := cursor.Decode(&fav); err != nil {
			return nil, fmt.Errorf("error decoding favourite: %v", err)
		}
		favourites = append(favourites, &fav)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return favourites, nil
}
