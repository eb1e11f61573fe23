package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/joshua-takyi/staybook/internal/clock"
	"github.com/joshua-takyi/staybook/internal/helpers"
	"github.com/joshua-takyi/staybook/internal/models"
)

func TestPropertyService(t *testing.T) {
	t.Parallel()

	host := Requester{UserID: "host-1", IsHost: true}
	input := PropertyInput{
		Title:     "Beach house",
		Type:      "House",
		Location:  "Cape Coast",
		Price:     120,
		MaxGuests: 6,
		Bedrooms:  3,
		Bathrooms: 2,
		Amenities: []string{"WiFi", " wifi ", "Pool", ""},
	}

	setup := func() (*PropertyService, *memStore, *fakeUploader) {
		store := seededStore()
		uploader := &fakeUploader{}
		return NewPropertyService(store, store, store, uploader, clock.NewFixed(testNow), WithLockRetry(2, 0)), store, uploader
	}

	t.Run("host creates property", func(t *testing.T) {
		svc, store, _ := setup()
		property, err := svc.CreateProperty(context.Background(), host, input)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if property.OwnerID != "host-1" || property.Type != models.PropertyHouse {
			t.Fatalf("unexpected property %+v", property)
		}
		if strings.Join(property.Amenities, ",") != "wifi,pool" {
			t.Fatalf("expected de-duplicated amenities, got %v", property.Amenities)
		}
		if _, ok := store.properties[property.ID]; !ok {
			t.Fatalf("expected property to be stored")
		}
	})

	t.Run("non hosts cannot list properties", func(t *testing.T) {
		svc, _, _ := setup()
		if _, err := svc.CreateProperty(context.Background(), Requester{UserID: "guest-1"}, input); !errors.Is(err, models.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("invalid property", func(t *testing.T) {
		svc, _, _ := setup()
		bad := input
		bad.Price = 0
		if _, err := svc.CreateProperty(context.Background(), host, bad); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		bad = input
		bad.Type = "castle"
		if _, err := svc.CreateProperty(context.Background(), host, bad); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("update requires ownership", func(t *testing.T) {
		svc, _, _ := setup()
		price := 150.0
		updated, err := svc.UpdateProperty(context.Background(), "prop-1", host, UpdatePropertyInput{Price: &price})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Price != 150 {
			t.Fatalf("expected price 150, got %v", updated.Price)
		}
		if _, err := svc.UpdateProperty(context.Background(), "prop-1", Requester{UserID: "host-2", IsHost: true}, UpdatePropertyInput{Price: &price}); !errors.Is(err, models.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if _, err := svc.UpdateProperty(context.Background(), "prop-1", Requester{UserID: "admin", IsAdmin: true}, UpdatePropertyInput{Price: &price}); err != nil {
			t.Fatalf("admin update: %v", err)
		}
		negative := -1.0
		if _, err := svc.UpdateProperty(context.Background(), "prop-1", host, UpdatePropertyInput{Price: &negative}); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if _, err := svc.UpdateProperty(context.Background(), "prop-1", host, UpdatePropertyInput{}); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation for empty update, got %v", err)
		}
	})

	t.Run("delete is blocked by upcoming bookings", func(t *testing.T) {
		svc, store, _ := setup()
		store.addBooking(confirmed("b-1", "prop-1", day(6, 10), day(6, 12)))
		if err := svc.DeleteProperty(context.Background(), "prop-1", host); !errors.Is(err, models.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}

		store.bookings["b-1"].Status = models.BookingCancelled
		if err := svc.DeleteProperty(context.Background(), "prop-1", host); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := svc.GetProperty(context.Background(), "prop-1"); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("delete waits for an in-flight booking on the property", func(t *testing.T) {
		svc, store, _ := setup()
		store.locks["prop-1"] = models.BookingLock{ID: "prop-1", Owner: "booking-request", ExpiresAt: testNow.Add(time.Minute)}
		if err := svc.DeleteProperty(context.Background(), "prop-1", host); !errors.Is(err, models.ErrConflict) {
			t.Fatalf("expected ErrConflict while the property is locked, got %v", err)
		}
		if _, err := svc.GetProperty(context.Background(), "prop-1"); err != nil {
			t.Fatalf("expected property to survive, got %v", err)
		}

		delete(store.locks, "prop-1")
		if err := svc.DeleteProperty(context.Background(), "prop-1", host); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if len(store.locks) != 0 {
			t.Fatalf("expected lock released after delete")
		}
	})

	t.Run("upload images appends urls", func(t *testing.T) {
		svc, _, uploader := setup()
		files := []io.Reader{strings.NewReader("a"), strings.NewReader("b")}
		property, err := svc.UploadImages(context.Background(), "prop-1", host, files)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		if len(property.Images) != 2 || len(uploader.urls) != 2 {
			t.Fatalf("expected 2 images, got %v", property.Images)
		}
		if !strings.Contains(property.Images[0], helpers.PropertyFolder+"/prop-1") {
			t.Fatalf("expected property folder in url, got %s", property.Images[0])
		}
	})

	t.Run("uploads disabled without a provider", func(t *testing.T) {
		store := seededStore()
		svc := NewPropertyService(store, store, store, nil, clock.NewFixed(testNow))
		_, err := svc.UploadImages(context.Background(), "prop-1", host, []io.Reader{strings.NewReader("a")})
		if !errors.Is(err, helpers.ErrUploadsDisabled) {
			t.Fatalf("expected ErrUploadsDisabled, got %v", err)
		}
	})

	t.Run("list validates paging and filters", func(t *testing.T) {
		svc, _, _ := setup()
		ctx := context.Background()
		properties, total, err := svc.ListProperties(ctx, models.PropertyFilter{Location: "  ", Limit: 10})
		if err != nil || total != 1 || len(properties) != 1 {
			t.Fatalf("expected 1 property, got %d/%d %v", len(properties), total, err)
		}
		bad := []models.PropertyFilter{
			{Limit: 0},
			{Limit: maxPageSize + 1},
			{Offset: -1, Limit: 10},
			{MinPrice: 200, MaxPrice: 100, Limit: 10},
			{Type: "castle", Limit: 10},
		}
		for _, f := range bad {
			if _, _, err := svc.ListProperties(ctx, f); !errors.Is(err, models.ErrValidation) {
				t.Errorf("filter %+v: expected ErrValidation, got %v", f, err)
			}
		}
		mine, _, err := svc.ListOwnProperties(ctx, "host-1", 0, 10)
		if err != nil || len(mine) != 1 {
			t.Fatalf("expected own property, got %d %v", len(mine), err)
		}
	})
}

func TestFavouriteService(t *testing.T) {
	t.Parallel()

	store := seededStore()
	svc := NewFavouriteService(store, store, clock.NewFixed(testNow))
	ctx := context.Background()

	fav, err := svc.AddToFavourites(ctx, "guest-1", "prop-1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !fav.AddedAt.Equal(testNow) {
		t.Fatalf("expected added_at %v, got %v", testNow, fav.AddedAt)
	}
	if _, err := svc.AddToFavourites(ctx, "guest-1", "prop-1"); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := svc.AddToFavourites(ctx, "guest-1", "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.AddToFavourites(ctx, "", "prop-1"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	favs, err := svc.GetFavouritesByUserID(ctx, "guest-1")
	if err != nil || len(favs) != 1 {
		t.Fatalf("expected 1 favourite, got %d %v", len(favs), err)
	}
	if err := svc.RemoveFromFavourites(ctx, "guest-1", "prop-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveFromFavourites(ctx, "guest-1", "prop-1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
