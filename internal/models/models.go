package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleUser   = "user"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

var Roles = []string{RoleUser, RoleSeller, RoleAdmin}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"                 json:"id"`
	Name         string    `gorm:"not null"                             json:"name"`
	Email        *string   `gorm:"uniqueIndex:idx_users_email"          json:"email,omitempty"`
	Phone        *string   `gorm:"uniqueIndex:idx_users_phone"          json:"phone,omitempty"`
	PasswordHash string    `gorm:"not null"                             json:"-"`
	Role         string    `gorm:"not null;default:user;index"          json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// RefreshToken tracks issued refresh tokens by jti so logout can revoke them.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null"  json:"jti"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"              json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"             json:"id"`
	Image          string          `gorm:"not null"                         json:"image"`
	Name           string          `gorm:"not null;index"                   json:"name"`
	CurrentPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"      json:"currentPrice"`
	OriginalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"originalPrice"`
	Discount       int             `gorm:"not null;default:0"               json:"discount"`
	Rating         float64         `gorm:"not null;default:0"               json:"rating"`
	ReviewCount    int             `gorm:"not null;default:0"               json:"reviewCount"`
	Description    string          `gorm:"not null"                         json:"description"`
	Category       string          `gorm:"index"                            json:"category,omitempty"`
	ParentCategory string          `gorm:"index"                            json:"parentCategory,omitempty"`
	Tags           []string        `gorm:"type:text;serializer:json"        json:"tags"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                                 json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product;not null" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product;not null" json:"productId"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0"                json:"quantity"`
	Product   *Product  `gorm:"foreignKey:ProductID"                                 json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

type WishlistItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                                     json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wishlist_user_product;not null" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wishlist_user_product;not null" json:"productId"`
	Product   *Product  `gorm:"foreignKey:ProductID"                                     json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &RefreshToken{}, &Product{}, &CartItem{}, &WishlistItem{})
}
