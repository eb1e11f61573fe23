package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/staybook/internal/clock"
	"github.com/joshua-takyi/staybook/internal/helpers"
	"github.com/joshua-takyi/staybook/internal/models"
)

const maxPageSize = 100

// ImageUploader stores listing photos and returns their public URLs.
type ImageUploader interface {
	UploadImages(ctx context.Context, folder string, files []io.Reader) ([]string, error)
}

type PropertyService struct {
	propertyRepo models.PropertyRepo
	bookingRepo  models.BookingRepo
	lock         propertyLock
	uploader     ImageUploader
	clock        clock.Clock
}

func NewPropertyService(propertyRepo models.PropertyRepo, bookingRepo models.BookingRepo, locker models.PropertyLocker, uploader ImageUploader, clk clock.Clock, opts ...LockOption) *PropertyService {
	return &PropertyService{
		propertyRepo: propertyRepo,
		bookingRepo:  bookingRepo,
		lock:         newPropertyLock(locker, clk, opts...),
		uploader:     uploader,
		clock:        clk,
	}
}

type PropertyInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Location    string   `json:"location"`
	Price       float64  `json:"price"`
	MaxGuests   int      `json:"max_guests"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Amenities   []string `json:"amenities"`
}

type UpdatePropertyInput struct {
	Title       *string   `json:"title" validate:"omitempty,min=3,max=120"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Type        *string   `json:"type" validate:"omitempty,oneof=apartment house villa cabin room"`
	Location    *string   `json:"location" validate:"omitempty,min=1"`
	Price       *float64  `json:"price" validate:"omitempty,gt=0"`
	MaxGuests   *int      `json:"max_guests" validate:"omitempty,min=1"`
	Bedrooms    *int      `json:"bedrooms" validate:"omitempty,min=0"`
	Bathrooms   *int      `json:"bathrooms" validate:"omitempty,min=0"`
	Amenities   *[]string `json:"amenities"`
}

// normalizeAmenities trims, lowercases and de-duplicates, keeping first-seen order.
func normalizeAmenities(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

func (ps *PropertyService) CreateProperty(ctx context.Context, requester Requester, in PropertyInput) (*models.Property, error) {
	if !requester.IsHost && !requester.IsAdmin {
		return nil, fmt.Errorf("%w: only hosts can list properties", models.ErrForbidden)
	}

	now := ps.clock.Now()
	property := &models.Property{
		ID:          uuid.NewString(),
		OwnerID:     requester.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Type:        models.PropertyType(strings.ToLower(strings.TrimSpace(in.Type))),
		Location:    strings.TrimSpace(in.Location),
		Price:       in.Price,
		MaxGuests:   in.MaxGuests,
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Amenities:   normalizeAmenities(in.Amenities),
		Images:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := models.Validate.Struct(property); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if err := ps.propertyRepo.CreateProperty(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

func (ps *PropertyService) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: property ID is required", models.ErrValidation)
	}
	return ps.propertyRepo.GetPropertyByID(ctx, id)
}

func (ps *PropertyService) ListProperties(ctx context.Context, filter models.PropertyFilter) ([]*models.Property, int64, error) {
	if filter.Offset < 0 || filter.Limit <= 0 || filter.Limit > maxPageSize {
		return nil, 0, fmt.Errorf("%w: invalid offset or limit", models.ErrValidation)
	}
	if filter.MinPrice < 0 || filter.MaxPrice < 0 || (filter.MaxPrice > 0 && filter.MinPrice > filter.MaxPrice) {
		return nil, 0, fmt.Errorf("%w: invalid price range", models.ErrValidation)
	}
	if filter.Type != "" {
		if err := models.Validate.Var(filter.Type, "oneof=apartment house villa cabin room"); err != nil {
			return nil, 0, fmt.Errorf("%w: unknown property type", models.ErrValidation)
		}
	}
	filter.Location = strings.TrimSpace(filter.Location)
	return ps.propertyRepo.ListProperties(ctx, filter)
}

func (ps *PropertyService) ListOwnProperties(ctx context.Context, ownerID string, offset, limit int) ([]*models.Property, int64, error) {
	return ps.ListProperties(ctx, models.PropertyFilter{OwnerID: ownerID, Offset: offset, Limit: limit})
}

func (ps *PropertyService) managedProperty(ctx context.Context, id string, requester Requester) (*models.Property, error) {
	property, err := ps.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanManage(property.OwnerID) {
		return nil, fmt.Errorf("%w: only the owner can modify this property", models.ErrForbidden)
	}
	return property, nil
}

func (ps *PropertyService) UpdateProperty(ctx context.Context, id string, requester Requester, in UpdatePropertyInput) (*models.Property, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if _, err := ps.managedProperty(ctx, id, requester); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Type != nil {
		fields["type"] = strings.ToLower(strings.TrimSpace(*in.Type))
	}
	if in.Location != nil {
		fields["location"] = strings.TrimSpace(*in.Location)
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.MaxGuests != nil {
		fields["max_guests"] = *in.MaxGuests
	}
	if in.Bedrooms != nil {
		fields["bedrooms"] = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		fields["bathrooms"] = *in.Bathrooms
	}
	if in.Amenities != nil {
		fields["amenities"] = normalizeAmenities(*in.Amenities)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}
	return ps.propertyRepo.UpdateProperty(ctx, id, fields)
}

// DeleteProperty refuses while confirmed stays are still ahead; past bookings keep their property ID.
// It holds the booking lock so no stay can be confirmed between the count and the delete.
func (ps *PropertyService) DeleteProperty(ctx context.Context, id string, requester Requester) error {
	if _, err := ps.managedProperty(ctx, id, requester); err != nil {
		return err
	}
	release, err := ps.lock.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	upcoming, err := ps.bookingRepo.CountUpcomingBookings(ctx, id, ps.clock.Now())
	if err != nil {
		return err
	}
	if upcoming > 0 {
		return fmt.Errorf("%w: property has %d upcoming bookings", models.ErrConflict, upcoming)
	}
	return ps.propertyRepo.DeleteProperty(ctx, id)
}

func (ps *PropertyService) UploadImages(ctx context.Context, id string, requester Requester, files []io.Reader) (*models.Property, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no images provided", models.ErrValidation)
	}
	if _, err := ps.managedProperty(ctx, id, requester); err != nil {
		return nil, err
	}
	if ps.uploader == nil {
		return nil, helpers.ErrUploadsDisabled
	}
	urls, err := ps.uploader.UploadImages(ctx, helpers.PropertyFolder+"/"+id, files)
	if err != nil {
		return nil, err
	}
	return ps.propertyRepo.AppendPropertyImages(ctx, id, urls)
}
