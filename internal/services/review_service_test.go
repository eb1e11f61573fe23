package services

import (
	"context"
	"errors"
	"testing"

	"github.com/joshua-takyi/staybook/internal/clock"
	"github.com/joshua-takyi/staybook/internal/models"
)

func TestReviewService(t *testing.T) {
	t.Parallel()

	setup := func() (*ReviewService, *memStore) {
		store := seededStore()
		for _, b := range []*models.Booking{
			{ID: "b-1", PropertyID: "prop-1", UserID: "guest-1", CheckIn: day(5, 1), CheckOut: day(5, 3), Status: models.BookingCompleted},
			{ID: "b-2", PropertyID: "prop-1", UserID: "guest-2", CheckIn: day(5, 4), CheckOut: day(5, 6), Status: models.BookingCompleted},
			{ID: "b-3", PropertyID: "prop-1", UserID: "guest-3", CheckIn: day(5, 7), CheckOut: day(5, 9), Status: models.BookingCompleted},
			{ID: "b-4", PropertyID: "prop-1", UserID: "guest-1", CheckIn: day(6, 10), CheckOut: day(6, 12), Status: models.BookingConfirmed},
		} {
			store.addBooking(b)
		}
		return NewReviewService(store, store, store, clock.NewFixed(testNow)), store
	}

	review := func(bookingID, userID string, rating int) CreateReviewInput {
		return CreateReviewInput{PropertyID: "prop-1", BookingID: bookingID, UserID: userID, Rating: rating, Comment: "  lovely stay  "}
	}

	t.Run("review of a completed stay updates rating", func(t *testing.T) {
		svc, store := setup()
		created, err := svc.CreateReview(context.Background(), review("b-1", "guest-1", 5))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if created.Comment != "lovely stay" {
			t.Fatalf("expected trimmed comment, got %q", created.Comment)
		}
		if !store.booking("b-1").Reviewed {
			t.Fatalf("expected booking to be marked reviewed")
		}
		p := store.property("prop-1")
		if p.Rating != 5 || p.ReviewCount != 1 {
			t.Fatalf("expected rating 5 from 1 review, got %v from %d", p.Rating, p.ReviewCount)
		}
	})

	t.Run("rating is the rounded mean of all reviews", func(t *testing.T) {
		svc, store := setup()
		ctx := context.Background()
		for _, in := range []CreateReviewInput{review("b-1", "guest-1", 5), review("b-2", "guest-2", 3), review("b-3", "guest-3", 4)} {
			if _, err := svc.CreateReview(ctx, in); err != nil {
				t.Fatalf("create review: %v", err)
			}
		}
		if p := store.property("prop-1"); p.Rating != 4.0 || p.ReviewCount != 3 {
			t.Fatalf("expected 4.0 from 3 reviews, got %v from %d", p.Rating, p.ReviewCount)
		}
	})

	t.Run("second review for the same booking conflicts", func(t *testing.T) {
		svc, store := setup()
		ctx := context.Background()
		if _, err := svc.CreateReview(ctx, review("b-1", "guest-1", 5)); err != nil {
			t.Fatalf("first review: %v", err)
		}
		_, err := svc.CreateReview(ctx, review("b-1", "guest-1", 1))
		if !errors.Is(err, models.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if p := store.property("prop-1"); p.Rating != 5 || p.ReviewCount != 1 {
			t.Fatalf("rating must be unchanged, got %v from %d", p.Rating, p.ReviewCount)
		}
	})

	t.Run("stay must be completed and belong to the reviewer", func(t *testing.T) {
		svc, store := setup()
		cases := []CreateReviewInput{
			review("b-4", "guest-1", 4),
			review("b-1", "guest-2", 4),
			{PropertyID: "prop-2", BookingID: "b-1", UserID: "guest-1", Rating: 4},
			review("missing", "guest-1", 4),
		}
		for _, in := range cases {
			if _, err := svc.CreateReview(context.Background(), in); !errors.Is(err, models.ErrNotFound) {
				t.Errorf("booking %s by %s: expected ErrNotFound, got %v", in.BookingID, in.UserID, err)
			}
		}
		if len(store.reviews) != 0 {
			t.Fatalf("expected no reviews stored")
		}
	})

	t.Run("rating out of range", func(t *testing.T) {
		svc, _ := setup()
		for _, rating := range []int{0, 6, -1} {
			if _, err := svc.CreateReview(context.Background(), review("b-1", "guest-1", rating)); !errors.Is(err, models.ErrValidation) {
				t.Errorf("rating %d: expected ErrValidation, got %v", rating, err)
			}
		}
	})

	t.Run("author deletes review and the booking reopens", func(t *testing.T) {
		svc, store := setup()
		ctx := context.Background()
		first, err := svc.CreateReview(ctx, review("b-1", "guest-1", 5))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := svc.CreateReview(ctx, review("b-2", "guest-2", 4)); err != nil {
			t.Fatalf("create: %v", err)
		}
		if p := store.property("prop-1"); p.Rating != 4.5 {
			t.Fatalf("expected 4.5, got %v", p.Rating)
		}

		if err := svc.DeleteReview(ctx, first.ID, "guest-1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if store.booking("b-1").Reviewed {
			t.Fatalf("expected reviewed flag to be reset")
		}
		if p := store.property("prop-1"); p.Rating != 4 || p.ReviewCount != 1 {
			t.Fatalf("expected 4 from 1 review, got %v from %d", p.Rating, p.ReviewCount)
		}
		if _, err := svc.CreateReview(ctx, review("b-1", "guest-1", 3)); err != nil {
			t.Fatalf("expected booking to be reviewable again, got %v", err)
		}
	})

	t.Run("deleting the last review resets rating to zero", func(t *testing.T) {
		svc, store := setup()
		ctx := context.Background()
		created, err := svc.CreateReview(ctx, review("b-1", "guest-1", 2))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := svc.DeleteReview(ctx, created.ID, "guest-1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if p := store.property("prop-1"); p.Rating != 0 || p.ReviewCount != 0 {
			t.Fatalf("expected 0 from 0 reviews, got %v from %d", p.Rating, p.ReviewCount)
		}
	})

	t.Run("only the author may delete", func(t *testing.T) {
		svc, _ := setup()
		ctx := context.Background()
		created, err := svc.CreateReview(ctx, review("b-1", "guest-1", 5))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := svc.DeleteReview(ctx, created.ID, "guest-2"); !errors.Is(err, models.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if err := svc.DeleteReview(ctx, "missing", "guest-1"); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("deleting the middle rating of five three four", func(t *testing.T) {
		svc, store := setup()
		ctx := context.Background()
		var middle *models.Review
		for _, in := range []CreateReviewInput{review("b-1", "guest-1", 5), review("b-2", "guest-2", 3), review("b-3", "guest-3", 4)} {
			created, err := svc.CreateReview(ctx, in)
			if err != nil {
				t.Fatalf("create review: %v", err)
			}
			if created.Rating == 3 {
				middle = created
			}
		}
		if p := store.property("prop-1"); p.Rating != 4.0 {
			t.Fatalf("expected 4.0, got %v", p.Rating)
		}
		if err := svc.DeleteReview(ctx, middle.ID, "guest-2"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if p := store.property("prop-1"); p.Rating != 4.5 || p.ReviewCount != 2 {
			t.Fatalf("expected 4.5 from 2 reviews, got %v from %d", p.Rating, p.ReviewCount)
		}
	})

	t.Run("failed flag reset still recomputes and leaves the booking reviewable", func(t *testing.T) {
		svc, store := setup()
		ctx := context.Background()
		created, err := svc.CreateReview(ctx, review("b-1", "guest-1", 2))
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		store.reviewedErr = errStoreDown
		if err := svc.DeleteReview(ctx, created.ID, "guest-1"); !errors.Is(err, errStoreDown) {
			t.Fatalf("expected store error to surface, got %v", err)
		}
		if len(store.reviews) != 0 {
			t.Fatalf("expected review to be deleted")
		}
		if p := store.property("prop-1"); p.Rating != 0 || p.ReviewCount != 0 {
			t.Fatalf("expected rating recomputed to 0 from 0 reviews, got %v from %d", p.Rating, p.ReviewCount)
		}

		if _, err := svc.CreateReview(ctx, review("b-1", "guest-1", 4)); err != nil {
			t.Fatalf("expected booking to be reviewable again, got %v", err)
		}
		if !store.booking("b-1").Reviewed {
			t.Fatalf("expected reviewed flag to be set again")
		}
		if p := store.property("prop-1"); p.Rating != 4 || p.ReviewCount != 1 {
			t.Fatalf("expected 4 from 1 review, got %v from %d", p.Rating, p.ReviewCount)
		}
	})

	t.Run("failed flag set on create still counts the review", func(t *testing.T) {
		svc, store := setup()
		store.reviewedErr = errStoreDown
		if _, err := svc.CreateReview(context.Background(), review("b-1", "guest-1", 3)); !errors.Is(err, errStoreDown) {
			t.Fatalf("expected store error to surface, got %v", err)
		}
		if p := store.property("prop-1"); p.Rating != 3 || p.ReviewCount != 1 {
			t.Fatalf("expected 3 from 1 review, got %v from %d", p.Rating, p.ReviewCount)
		}
		_, err := svc.CreateReview(context.Background(), review("b-1", "guest-1", 5))
		if !errors.Is(err, models.ErrConflict) {
			t.Fatalf("expected ErrConflict for the stored review, got %v", err)
		}
	})
}
