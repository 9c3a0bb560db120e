package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type WishlistHandler struct {
	Svc     *service.WishlistService
	Metrics *metrics.Metrics
}

// Toggle answers 201 when the product was added and 200 when removed.
func (h *WishlistHandler) Toggle(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req ToggleWishlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "productId is required")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	res, err := h.Svc.Toggle(c.Request().Context(), userID, productID)
	if err != nil {
		return err
	}

	if !res.Added {
		h.Metrics.CartMutation("wishlist_remove")
		return c.JSON(http.StatusOK, WishlistToggleResponse{
			Success: true,
			Message: "product removed from wishlist",
		})
	}
	h.Metrics.CartMutation("wishlist_add")
	return c.JSON(http.StatusCreated, WishlistToggleResponse{
		Success:      true,
		Message:      "product added to wishlist",
		IsWishlisted: true,
		WishlistItem: res.Item,
	})
}

func (h *WishlistHandler) GetWishlist(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	items, err := h.Svc.GetWishlist(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, WishlistResponse{Success: true, Count: len(items), Wishlist: items})
}
