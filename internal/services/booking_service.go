package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/staybook/internal/clock"
	"github.com/joshua-takyi/staybook/internal/metrics"
	"github.com/joshua-takyi/staybook/internal/models"
)

type BookingService struct {
	bookingRepo  models.BookingRepo
	propertyRepo models.PropertyRepo
	lock         propertyLock
	clock        clock.Clock
}

func NewBookingService(bookingRepo models.BookingRepo, locker models.PropertyLocker, propertyRepo models.PropertyRepo, clk clock.Clock, opts ...LockOption) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		lock:         newPropertyLock(locker, clk, opts...),
		clock:        clk,
	}
}

type CreateBookingInput struct {
	PropertyID    string `validate:"required"`
	UserID        string `validate:"required"`
	CheckIn       time.Time
	CheckOut      time.Time
	Guests        int     `validate:"min=1"`
	PaymentMethod string  `validate:"required,max=40"`
	TotalAmount   float64 `validate:"gt=0"`
}

// startOfDay truncates t to midnight UTC; stays are booked by calendar day.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (in CreateBookingInput) normalize(now time.Time) (CreateBookingInput, error) {
	in.PropertyID = strings.TrimSpace(in.PropertyID)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if err := models.Validate.Struct(in); err != nil {
		return in, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if in.CheckIn.IsZero() || in.CheckOut.IsZero() {
		return in, fmt.Errorf("%w: check-in and check-out dates are required", models.ErrValidation)
	}
	in.CheckIn = startOfDay(in.CheckIn)
	in.CheckOut = startOfDay(in.CheckOut)
	if !in.CheckIn.Before(in.CheckOut) {
		return in, fmt.Errorf("%w: check-out must be after check-in", models.ErrValidation)
	}
	if in.CheckIn.Before(startOfDay(now)) {
		return in, fmt.Errorf("%w: check-in cannot be in the past", models.ErrValidation)
	}
	return in, nil
}

// CreateBooking confirms a stay if no confirmed booking overlaps it. The overlap check and the
// insert run under a per-property lock so concurrent requests cannot double-book.
func (bs *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	in, err := input.normalize(bs.clock.Now())
	if err != nil {
		return nil, err
	}

	property, err := bs.propertyRepo.GetPropertyByID(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	if in.Guests > property.MaxGuests {
		return nil, fmt.Errorf("%w: property accepts at most %d guests", models.ErrValidation, property.MaxGuests)
	}

	release, err := bs.lock.acquire(ctx, in.PropertyID)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			metrics.ObserveBooking("busy")
		}
		return nil, err
	}
	defer release()

	overlapping, err := bs.bookingRepo.FindOverlappingBookings(ctx, in.PropertyID, in.CheckIn, in.CheckOut)
	if err != nil {
		metrics.ObserveBooking("error")
		return nil, err
	}
	if len(overlapping) > 0 {
		ranges := make([]models.DateRange, 0, len(overlapping))
		for _, b := range overlapping {
			ranges = append(ranges, b.Range())
		}
		metrics.ObserveBooking("conflict")
		return nil, &models.BookingConflictError{Ranges: ranges}
	}

	now := bs.clock.Now()
	booking := &models.Booking{
		ID:            uuid.NewString(),
		PropertyID:    in.PropertyID,
		UserID:        in.UserID,
		CheckIn:       in.CheckIn,
		CheckOut:      in.CheckOut,
		Guests:        in.Guests,
		PaymentMethod: in.PaymentMethod,
		TotalAmount:   in.TotalAmount,
		Status:        models.BookingConfirmed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := bs.bookingRepo.InsertBooking(ctx, booking); err != nil {
		metrics.ObserveBooking("error")
		return nil, err
	}
	metrics.ObserveBooking("created")
	return booking, nil
}

// CancelBooking lets the guest who made a confirmed booking cancel it. The record is kept for reporting.
func (bs *BookingService) CancelBooking(ctx context.Context, bookingID, requestingUserID string) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != requestingUserID {
		return nil, fmt.Errorf("%w: only the guest who made the booking can cancel it", models.ErrForbidden)
	}
	if booking.Status != models.BookingConfirmed {
		return nil, fmt.Errorf("%w: booking is already %s", models.ErrConflict, booking.Status)
	}
	return bs.bookingRepo.TransitionBookingStatus(ctx, bookingID, models.BookingConfirmed, models.BookingCancelled, bs.clock.Now())
}

func (bs *BookingService) GetBookingsForProperty(ctx context.Context, propertyID string) ([]*models.Booking, error) {
	if strings.TrimSpace(propertyID) == "" {
		return nil, fmt.Errorf("%w: property ID is required", models.ErrValidation)
	}
	return bs.bookingRepo.ListBookingsByProperty(ctx, propertyID)
}

func (bs *BookingService) GetBookingsForUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}
	return bs.bookingRepo.ListBookingsByUser(ctx, userID)
}

// GetPropertyBookings is the host view: only the property owner or an admin may list its bookings.
func (bs *BookingService) GetPropertyBookings(ctx context.Context, propertyID string, requester Requester) ([]*models.Booking, error) {
	property, err := bs.propertyRepo.GetPropertyByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !requester.CanManage(property.OwnerID) {
		return nil, fmt.Errorf("%w: only the property owner can view its bookings", models.ErrForbidden)
	}
	return bs.GetBookingsForProperty(ctx, propertyID)
}

// GetBooking returns a booking to its guest, the property owner or an admin.
func (bs *BookingService) GetBooking(ctx context.Context, bookingID string, requester Requester) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if requester.CanManage(booking.UserID) {
		return booking, nil
	}
	property, err := bs.propertyRepo.GetPropertyByID(ctx, booking.PropertyID)
	if err == nil && property.OwnerID == requester.UserID {
		return booking, nil
	}
	return nil, fmt.Errorf("%w: you do not have access to this booking", models.ErrForbidden)
}
