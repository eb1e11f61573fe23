package models

import (
	"time"
)

type BookingStatus string

const (
	// BookingPending is never persisted today; creation goes straight to confirmed.
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

type Booking struct {
	ID            string        `bson:"_id" json:"id"`
	PropertyID    string        `bson:"property_id" json:"property_id"`
	UserID        string        `bson:"user_id" json:"user_id"`
	CheckIn       time.Time     `bson:"check_in" json:"check_in"`
	CheckOut      time.Time     `bson:"check_out" json:"check_out"`
	Guests        int           `bson:"guests" json:"guests"`
	PaymentMethod string        `bson:"payment_method" json:"payment_method"`
	TotalAmount   float64       `bson:"total_amount" json:"total_amount"`
	Status        BookingStatus `bson:"status" json:"status"`
	Reviewed      bool          `bson:"reviewed" json:"reviewed"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updated_at"`
}

// Overlaps uses half-open intervals: a stay ending on day N never clashes with one starting on day N.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn)
}

// BlocksDates reports whether the booking takes part in overlap checks.
func (b *Booking) BlocksDates() bool {
	return b.Status == BookingConfirmed
}

func (b *Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

type BookingFilter struct {
	Status BookingStatus
	Offset int
	Limit  int
}
