package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	t.ExpiresAt = t.ExpiresAt.UTC()
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// RefreshUsable reports whether the jti is known, unrevoked and unexpired.
func (r *GormRepo) RefreshUsable(ctx context.Context, jti string, now time.Time) (bool, error) {
	token, err := r.FindRefreshByJTI(ctx, jti)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return !token.Revoked && token.ExpiresAt.After(now), nil
}

func (r *GormRepo) RevokeRefresh(ctx context.Context, jti string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("jti = ?", jti).
		Update("revoked", true).Error
}

// PurgeRefreshTokens drops rows that expired before the cutoff.
func (r *GormRepo) PurgeRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at < ?", before.UTC()).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
