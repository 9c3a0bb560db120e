package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type WishlistService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type ToggleResult struct {
	Added bool
	Item  *models.WishlistItem
}

func (s *WishlistService) GetWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	items, err := s.Repo.GetWishlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	return items, nil
}

func (s *WishlistService) Toggle(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error) {
	if productID == uuid.Nil {
		return nil, newErr(ErrValidation, "productId is required")
	}

	exists, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, newErr(ErrNotFound, "product not found")
	}

	added, item, err := s.Repo.ToggleWishlist(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	evType := events.WishlistRemoved
	if added {
		evType = events.WishlistAdded
	}
	publish(ctx, s.Events, events.TopicCartEvents, events.Event{
		Type:      evType,
		UserID:    userID.String(),
		ProductID: productID.String(),
	})
	return &ToggleResult{Added: added, Item: item}, nil
}
