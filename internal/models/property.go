package models

import (
	"math"
	"time"
)

type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyVilla     PropertyType = "villa"
	PropertyCabin     PropertyType = "cabin"
	PropertyRoom      PropertyType = "room"
)

type Property struct {
	ID          string       `bson:"_id" json:"id"`
	OwnerID     string       `bson:"owner_id" json:"owner_id"`
	Title       string       `bson:"title" json:"title" validate:"required,min=3,max=120"`
	Description string       `bson:"description" json:"description" validate:"max=5000"`
	Type        PropertyType `bson:"type" json:"type" validate:"required,oneof=apartment house villa cabin room"`
	Location    string       `bson:"location" json:"location" validate:"required"`
	Price       float64      `bson:"price" json:"price" validate:"gt=0"` // per night

	// CAPACITY
	MaxGuests int `bson:"max_guests" json:"max_guests" validate:"min=1"`
	Bedrooms  int `bson:"bedrooms" json:"bedrooms" validate:"min=0"`
	Bathrooms int `bson:"bathrooms" json:"bathrooms" validate:"min=0"`

	Amenities   []string  `bson:"amenities" json:"amenities"`
	Images      []string  `bson:"images" json:"images"`
	Rating      float64   `bson:"rating" json:"rating"`
	ReviewCount int       `bson:"review_count" json:"review_count"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

type PropertyFilter struct {
	Location string
	Type     string
	MinPrice float64
	MaxPrice float64
	Guests   int
	OwnerID  string
	Offset   int
	Limit    int
}

// RoundRating rounds an average rating to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
