package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StatusCount struct {
	Status  BookingStatus `bson:"_id" json:"status"`
	Count   int64         `bson:"count" json:"count"`
	Revenue float64       `bson:"revenue" json:"revenue"`
}

type MonthlyRevenue struct {
	Month    string  `bson:"_id" json:"month"` // YYYY-MM
	Revenue  float64 `bson:"revenue" json:"revenue"`
	Bookings int64   `bson:"bookings" json:"bookings"`
}

type TopProperty struct {
	PropertyID string  `bson:"_id" json:"property_id"`
	Title      string  `bson:"title" json:"title"`
	Bookings   int64   `bson:"bookings" json:"bookings"`
	Revenue    float64 `bson:"revenue" json:"revenue"`
}

// DashboardStats is the admin overview of users, listings and bookings.
type DashboardStats struct {
	TotalUsers       int64            `json:"total_users"`
	VerifiedUsers    int64            `json:"verified_users"`
	Hosts            int64            `json:"hosts"`
	TotalProperties  int64            `json:"total_properties"`
	TotalBookings    int64            `json:"total_bookings"`
	BookingsByStatus map[string]int64 `json:"bookings_by_status"`
	Revenue          float64          `json:"revenue"`
	MonthlyRevenue   []MonthlyRevenue `json:"monthly_revenue"`
	TopProperties    []TopProperty    `json:"top_properties"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

type StatsRepo interface {
	DashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error)
}

// revenueStatuses are the booking states that count towards earned revenue.
var revenueStatuses = []BookingStatus{BookingConfirmed, BookingCompleted}

func (mdb *MongodbRepo) DashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	users, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	properties, err := mdb.GetCollection(ctx, PropertiesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	bookings, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	stats := &DashboardStats{
		BookingsByStatus: map[string]int64{},
		GeneratedAt:      now,
	}

	if stats.TotalUsers, err = users.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("error counting users: %v", err)
	}
	if stats.VerifiedUsers, err = users.CountDocuments(ctx, bson.M{"is_verified": true}); err != nil {
		return nil, fmt.Errorf("error counting verified users: %v", err)
	}
	if stats.Hosts, err = users.CountDocuments(ctx, bson.M{"is_host": true}); err != nil {
		return nil, fmt.Errorf("error counting hosts: %v", err)
	}
	if stats.TotalProperties, err = properties.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("error counting properties: %v", err)
	}

	// Bookings and revenue per status
	statusPipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     "$status",
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$total_amount"},
		}}},
	}
	var statusCounts []StatusCount
	if err := aggregateAll(ctx, bookings, statusPipeline, &statusCounts); err != nil {
		return nil, fmt.Errorf("error aggregating booking statuses: %v", err)
	}
	for _, sc := range statusCounts {
		stats.BookingsByStatus[string(sc.Status)] = sc.Count
		stats.TotalBookings += sc.Count
		for _, s := range revenueStatuses {
			if sc.Status == s {
				stats.Revenue += sc.Revenue
			}
		}
	}

	// Revenue for the trailing twelve months, bucketed by check-in month
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	monthlyPipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":   bson.M{"$in": revenueStatuses},
			"check_in": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":      bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$check_in"}},
			"revenue":  bson.M{"$sum": "$total_amount"},
			"bookings": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	if err := aggregateAll(ctx, bookings, monthlyPipeline, &stats.MonthlyRevenue); err != nil {
		return nil, fmt.Errorf("error aggregating monthly revenue: %v", err)
	}

	topPipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$in": revenueStatuses}}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$property_id",
			"bookings": bson.M{"$sum": 1},
			"revenue":  bson.M{"$sum": "$total_amount"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "bookings", Value: -1}, {Key: "revenue", Value: -1}}}},
		{{Key: "$limit", Value: 5}},
		{{Key: "$lookup", Value: bson.M{
			"from":         PropertiesColName,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "property",
		}}},
		{{Key: "$set", Value: bson.M{"title": bson.M{"$first": "$property.title"}}}},
		{{Key: "$project", Value: bson.M{"property": 0}}},
	}
	if err := aggregateAll(ctx, bookings, topPipeline, &stats.TopProperties); err != nil {
		return nil, fmt.Errorf("error aggregating top properties: %v", err)
	}

	return stats, nil
}

func aggregateAll(ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := col.Aggregate(ctx, pipeline, options.Aggregate())
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
