package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/staybook/internal/clock"
	"github.com/joshua-takyi/staybook/internal/models"
)

type ReviewService struct {
	reviewsRepo  models.ReviewsRepo
	bookingRepo  models.BookingRepo
	propertyRepo models.PropertyRepo
	clock        clock.Clock
}

func NewReviewService(reviewsRepo models.ReviewsRepo, bookingRepo models.BookingRepo, propertyRepo models.PropertyRepo, clk clock.Clock) *ReviewService {
	return &ReviewService{
		reviewsRepo:  reviewsRepo,
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		clock:        clk,
	}
}

type CreateReviewInput struct {
	PropertyID string `validate:"required"`
	BookingID  string `validate:"required"`
	UserID     string `validate:"required"`
	Rating     int    `validate:"required,min=1,max=5"`
	Comment    string `validate:"max=2000"`
}

// CreateReview accepts a review only for the reviewer's own completed stay, once per booking.
func (rs *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if err := models.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	booking, err := rs.bookingRepo.FindCompletedBooking(ctx, in.BookingID, in.UserID, in.PropertyID)
	if err != nil {
		return nil, err
	}
	// booking.Reviewed mirrors the reviews collection; only a stored review blocks another one.
	exists, err := rs.reviewsRepo.ReviewExistsForBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: booking has already been reviewed", models.ErrConflict)
	}

	review := &models.Review{
		ID:         uuid.NewString(),
		PropertyID: in.PropertyID,
		UserID:     in.UserID,
		BookingID:  in.BookingID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		CreatedAt:  rs.clock.Now(),
	}
	if err := rs.reviewsRepo.InsertReview(ctx, review); err != nil {
		return nil, err
	}
	flagErr := rs.bookingRepo.SetBookingReviewed(ctx, booking.ID, true)
	if err := errors.Join(flagErr, rs.recomputeRating(ctx, in.PropertyID)); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes the author's review and reopens the booking for review.
func (rs *ReviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	review, err := rs.reviewsRepo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return fmt.Errorf("%w: only the author can delete this review", models.ErrForbidden)
	}
	if err := rs.reviewsRepo.DeleteReview(ctx, reviewID); err != nil {
		return err
	}
	// The review is gone; the rating is rebuilt even if the flag reset fails.
	flagErr := rs.bookingRepo.SetBookingReviewed(ctx, review.BookingID, false)
	return errors.Join(flagErr, rs.recomputeRating(ctx, review.PropertyID))
}

func (rs *ReviewService) ListReviewsForProperty(ctx context.Context, propertyID string) ([]*models.Review, error) {
	if strings.TrimSpace(propertyID) == "" {
		return nil, fmt.Errorf("%w: property ID is required", models.ErrValidation)
	}
	return rs.reviewsRepo.ListReviewsByProperty(ctx, propertyID)
}

// recomputeRating rebuilds the rating from every remaining review rather than adjusting it incrementally.
func (rs *ReviewService) recomputeRating(ctx context.Context, propertyID string) error {
	summary, err := rs.reviewsRepo.PropertyRatingSummary(ctx, propertyID)
	if err != nil {
		return err
	}
	rating := 0.0
	if summary.Count > 0 {
		rating = models.RoundRating(summary.Average)
	}
	return rs.propertyRepo.UpdatePropertyRating(ctx, propertyID, rating, summary.Count)
}
