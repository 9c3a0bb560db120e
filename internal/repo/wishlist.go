package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	items := make([]models.WishlistItem, 0)
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ToggleWishlist removes the pair when present, otherwise inserts it.
// added reports the direction taken. When a concurrent toggle inserts the
// same pair first, the unique index rejects this insert and the pair is
// removed instead, so two racing toggles cancel out.
func (r *GormRepo) ToggleWishlist(ctx context.Context, userID, productID uuid.UUID) (added bool, item *models.WishlistItem, err error) {
	db := r.DB.WithContext(ctx)

	res := db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		return false, nil, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil, nil
	}

	created := models.WishlistItem{UserID: userID, ProductID: productID}
	if err := db.Create(&created).Error; err != nil {
		if !isDuplicate(err) {
			return false, nil, err
		}
		if err := db.Where("user_id = ? AND product_id = ?", userID, productID).
			Delete(&models.WishlistItem{}).Error; err != nil {
			return false, nil, err
		}
		return false, nil, nil
	}
	return true, &created, nil
}
