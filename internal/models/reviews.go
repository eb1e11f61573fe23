package models

import (
	"time"
)

type Review struct {
	ID         string    `bson:"_id" json:"id"`
	PropertyID string    `bson:"property_id" json:"property_id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	BookingID  string    `bson:"booking_id" json:"booking_id"`
	Rating     int       `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Comment    string    `bson:"comment" json:"comment" validate:"max=2000"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

type RatingSummary struct {
	Average float64 `bson:"average"`
	Count   int     `bson:"count"`
}
