package handlers

import "github.com/Skotchmaster/storefront/internal/models"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Contact  string `json:"contact"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Role  string  `json:"role"`
}

func toUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{ID: u.ID.String(), Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role}
}

type AuthResponse struct {
	Success     bool          `json:"success"`
	User        *UserResponse `json:"user,omitempty"`
	AccessToken string        `json:"accessToken"`
	ExpiresAt   int64         `json:"expiresAt"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

type CartResponse struct {
	Success    bool              `json:"success"`
	CartItems  []models.CartItem `json:"cartItems"`
	TotalPrice string            `json:"totalPrice"`
}

type CartItemResponse struct {
	Success  bool             `json:"success"`
	CartItem *models.CartItem `json:"cartItem"`
}

type ClearCartResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Removed int64  `json:"removed"`
}

type ToggleWishlistRequest struct {
	ProductID string `json:"productId"`
}

type WishlistToggleResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message"`
	IsWishlisted bool                 `json:"isWishlisted"`
	WishlistItem *models.WishlistItem `json:"wishListItem,omitempty"`
}

type WishlistResponse struct {
	Success  bool                  `json:"success"`
	Count    int                   `json:"count"`
	Wishlist []models.WishlistItem `json:"wishlist"`
}

type ProductListResponse struct {
	Success  bool             `json:"success"`
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Pages    int              `json:"pages"`
}

type ProductResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    *models.Product `json:"data"`
}
