package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/staybook/internal/clock"
	"github.com/joshua-takyi/staybook/internal/models"
)

type FavouriteService struct {
	favouritesRepo models.FavouriteRepo
	propertyRepo   models.PropertyRepo
	clock          clock.Clock
}

func NewFavouriteService(favouritesRepo models.FavouriteRepo, propertyRepo models.PropertyRepo, clk clock.Clock) *FavouriteService {
	return &FavouriteService{
		favouritesRepo: favouritesRepo,
		propertyRepo:   propertyRepo,
		clock:          clk,
	}
}

func (fs *FavouriteService) AddToFavourites(ctx context.Context, userID, propertyID string) (*models.Favourite, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: invalid user ID", models.ErrValidation)
	}
	if strings.TrimSpace(propertyID) == "" {
		return nil, fmt.Errorf("%w: property ID cannot be empty", models.ErrValidation)
	}
	if _, err := fs.propertyRepo.GetPropertyByID(ctx, propertyID); err != nil {
		return nil, err
	}

	fav := &models.Favourite{
		ID:         uuid.NewString(),
		UserID:     userID,
		PropertyID: propertyID,
		AddedAt:    fs.clock.Now(),
	}
	if err := fs.favouritesRepo.AddToFavourites(ctx, fav); err != nil {
		return nil, err
	}
	return fav, nil
}

func (fs *FavouriteService) RemoveFromFavourites(ctx context.Context, userID, propertyID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: invalid user ID", models.ErrValidation)
	}
	if strings.TrimSpace(propertyID) == "" {
		return fmt.Errorf("%w: property ID cannot be empty", models.ErrValidation)
	}

	return fs.favouritesRepo.RemoveFromFavourites(ctx, userID, propertyID)
}

func (fs *FavouriteService) GetFavouritesByUserID(ctx context.Context, userID string) ([]*models.Favourite, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: invalid user ID", models.ErrValidation)
	}

	return fs.favouritesRepo.GetFavouritesByUserID(ctx, userID)
}
