package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PropertyRepo interface {
	CreateProperty(ctx context.Context, property *Property) error
	GetPropertyByID(ctx context.Context, id string) (*Property, error)
	ListProperties(ctx context.Context, filter PropertyFilter) ([]*Property, int64, error)
	UpdateProperty(ctx context.Context, id string, fields map[string]interface{}) (*Property, error)
	DeleteProperty(ctx context.Context, id string) error
	AppendPropertyImages(ctx context.Context, id string, urls []string) (*Property, error)
	UpdatePropertyRating(ctx context.Context, id string, rating float64, count int) error
}

func (f PropertyFilter) query() bson.M {
	q := bson.M{}
	if f.Location != "" {
		q["location"] = bson.M{"$regex": regexp.QuoteMeta(f.Location), "$options": "i"}
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	price := bson.M{}
	if f.MinPrice > 0 {
		price["$gte"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		price["$lte"] = f.MaxPrice
	}
	if len(price) > 0 {
		q["price"] = price
	}
	if f.Guests > 0 {
		q["max_guests"] = bson.M{"$gte": f.Guests}
	}
	if f.OwnerID != "" {
		q["owner_id"] = f.OwnerID
	}
	return q
}

func (mdb *MongodbRepo) CreateProperty(ctx context.Context, property *Property) error {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	if _, err := col.InsertOne(ctx, property); err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetPropertyByID(ctx context.Context, id string) (*Property, error) {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	var property Property
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: property not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return &property, nil
}

func (mdb *MongodbRepo) ListProperties(ctx context.Context, filter PropertyFilter) ([]*Property, int64, error) {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	q := filter.query()
	total, err := col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting properties: %v", err)
	}

	// _id breaks created_at ties so consecutive pages never overlap.
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cursor, err := col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding properties: %v", err)
	}
	defer cursor.Close(ctx)

	properties := []*Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, 0, fmt.Errorf("error decoding properties: %v", err)
	}
	return properties, total, nil
}

func (mdb *MongodbRepo) UpdateProperty(ctx context.Context, id string, fields map[string]interface{}) (*Property, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	return mdb.findOneAndUpdateProperty(ctx, id, bson.M{"$set": set})
}

func (mdb *MongodbRepo) AppendPropertyImages(ctx context.Context, id string, urls []string) (*Property, error) {
	return mdb.findOneAndUpdateProperty(ctx, id, bson.M{
		"$push": bson.M{"images": bson.M{"$each": urls}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (mdb *MongodbRepo) findOneAndUpdateProperty(ctx context.Context, id string, update bson.M) (*Property, error) {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var property Property
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: property not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	return &property, nil
}

func (mdb *MongodbRepo) DeleteProperty(ctx context.Context, id string) error {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: property not found", ErrNotFound)
	}
	return nil
}

func (mdb *MongodbRepo) UpdatePropertyRating(ctx context.Context, id string, rating float64, count int) error {
	col, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"rating":       rating,
		"review_count": count,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update property rating: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: property not found", ErrNotFound)
	}
	return nil
}
