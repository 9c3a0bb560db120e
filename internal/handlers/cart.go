package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type CartHandler struct {
	Svc     *service.CartService
	Metrics *metrics.Metrics
}

func currentUser(c echo.Context) (uuid.UUID, error) {
	id, err := authmw.UserID(c)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	view, err := h.Svc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CartResponse{
		Success:    true,
		CartItems:  view.Items,
		TotalPrice: view.Total.StringFixed(2),
	})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req AddToCartRequest
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
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, err := h.Svc.AddToCart(c.Request().Context(), userID, productID, qty)
	if err != nil {
		return err
	}
	h.Metrics.CartMutation("cart_add")
	return c.JSON(http.StatusCreated, CartItemResponse{Success: true, CartItem: item})
}

func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be greater than 0")
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "item not found in cart")
	}

	item, err := h.Svc.UpdateCartItem(c.Request().Context(), userID, productID, *req.Quantity)
	if err != nil {
		return err
	}
	h.Metrics.CartMutation("cart_update")
	return c.JSON(http.StatusOK, CartItemResponse{Success: true, CartItem: item})
}

func (h *CartHandler) RemoveCartItem(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "item not found in cart")
	}
	if err := h.Svc.RemoveCartItem(c.Request().Context(), userID, productID); err != nil {
		return err
	}
	h.Metrics.CartMutation("cart_remove")
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "item removed from cart"})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	n, err := h.Svc.ClearCart(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	h.Metrics.CartMutation("cart_clear")
	return c.JSON(http.StatusOK, ClearCartResponse{Success: true, Message: "cart cleared", Removed: n})
}
