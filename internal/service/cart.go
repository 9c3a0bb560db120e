package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// MaxCartQuantity caps a single cart line.
const MaxCartQuantity = 10000

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type CartView struct {
	Items []models.CartItem
	Total decimal.Decimal
}

var errQuantityTooLarge = newErr(ErrValidation, fmt.Sprintf("quantity must be at most %d", MaxCartQuantity))

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &CartView{Items: items, Total: cartTotal(items)}, nil
}

// AddToCart increments the quantity when the product is already in the
// cart. The storage layer merges concurrent adds into a single line.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "user_id", userID)

	if productID == uuid.Nil {
		return nil, newErr(ErrValidation, "productId is required")
	}
	if quantity < 1 {
		return nil, newErr(ErrValidation, "quantity must be at least 1")
	}
	if quantity > MaxCartQuantity {
		return nil, errQuantityTooLarge
	}

	exists, err := s.Repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		l.Warn("cart_add_failed", "status", 404, "product_id", productID)
		return nil, newErr(ErrNotFound, "product not found")
	}

	current, err := s.Repo.GetCartItem(ctx, userID, productID)
	switch {
	case err == nil:
		if current.Quantity+quantity > MaxCartQuantity {
			l.Warn("cart_add_failed", "status", 400, "reason", "quantity limit", "product_id", productID)
			return nil, errQuantityTooLarge
		}
	case !repo.IsNotFound(err):
		return nil, fmt.Errorf("load cart item: %w", err)
	}

	item, err := s.Repo.AddToCart(ctx, userID, productID, quantity)
	if err != nil {
		l.Error("cart_add_failed", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCartEvents, events.Event{
		Type:      events.CartItemAdded,
		UserID:    userID.String(),
		ProductID: productID.String(),
		Quantity:  item.Quantity,
	})
	return item, nil
}

// UpdateCartItem sets an absolute quantity. Non-positive values are rejected
// and leave the line untouched.
func (s *CartService) UpdateCartItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, newErr(ErrValidation, "quantity must be greater than 0")
	}
	if quantity > MaxCartQuantity {
		return nil, errQuantityTooLarge
	}

	item, err := s.Repo.SetCartQuantity(ctx, userID, productID, quantity)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, newErr(ErrNotFound, "item not found in cart")
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCartEvents, events.Event{
		Type:      events.CartItemUpdated,
		UserID:    userID.String(),
		ProductID: productID.String(),
		Quantity:  item.Quantity,
	})
	return item, nil
}

func (s *CartService) RemoveCartItem(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.Repo.DeleteOneFromCart(ctx, userID, productID); err != nil {
		if repo.IsNotFound(err) {
			return newErr(ErrNotFound, "item not found in cart")
		}
		return err
	}

	publish(ctx, s.Events, events.TopicCartEvents, events.Event{
		Type:      events.CartItemRemoved,
		UserID:    userID.String(),
		ProductID: productID.String(),
	})
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.Repo.DeleteAllFromCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	publish(ctx, s.Events, events.TopicCartEvents, events.Event{Type: events.CartCleared, UserID: userID.String()})
	return n, nil
}

func cartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		total = total.Add(it.Product.CurrentPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2)
}
