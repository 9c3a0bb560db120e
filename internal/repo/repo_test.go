package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/db"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	return New(gdb)
}

func seedProduct(t *testing.T, r *GormRepo, name, category, price string) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:         name,
		Image:        "img.png",
		Description:  name + " description",
		Category:     category,
		CurrentPrice: decimal.RequireFromString(price),
		Tags:         []string{"explore"},
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func strPtr(s string) *string { return &s }

func TestCreateUser_Duplicate(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := &models.User{Name: "Ann", Email: strPtr("ann@x.com"), PasswordHash: "h"}
	require.NoError(t, r.CreateUser(ctx, u))
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, uuid.Nil, u.ID)

	dup := &models.User{Name: "Ann 2", Email: strPtr("ann@x.com"), PasswordHash: "h"}
	err := r.CreateUser(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)

	// users without a phone must not collide on the phone index
	other := &models.User{Name: "Bob", Email: strPtr("bob@x.com"), PasswordHash: "h"}
	require.NoError(t, r.CreateUser(ctx, other))

	taken, err := r.EmailTaken(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = r.PhoneTaken(ctx, "+15550000000")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestSetUserRole(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := &models.User{Name: "Ann", Phone: strPtr("+15551234567"), PasswordHash: "h"}
	require.NoError(t, r.CreateUser(ctx, u))
	require.NoError(t, r.SetUserRole(ctx, u.ID, models.RoleAdmin))

	got, err := r.UserByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	err = r.SetUserRole(ctx, uuid.New(), models.RoleAdmin)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRefreshTokens(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	live := &models.RefreshToken{JTI: "live", UserID: uuid.New(), ExpiresAt: now.Add(time.Hour)}
	old := &models.RefreshToken{JTI: "old", UserID: uuid.New(), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, r.SaveRefreshToken(ctx, live))
	require.NoError(t, r.SaveRefreshToken(ctx, old))

	ok, err := r.RefreshUsable(ctx, "live", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.RefreshUsable(ctx, "old", now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.RefreshUsable(ctx, "missing", now)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.RevokeRefresh(ctx, "live"))
	ok, err = r.RefreshUsable(ctx, "live", now)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := r.PurgeRefreshTokens(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAddToCart_IncrementsSingleRow(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()
	p := seedProduct(t, r, "Gamepad", "gaming", "120")

	first, err := r.AddToCart(ctx, userID, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)

	second, err := r.AddToCart(ctx, userID, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Quantity)
	assert.Equal(t, first.ID, second.ID)

	items, err := r.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Gamepad", items[0].Product.Name)
}

func TestAddToCart_ScopedPerUser(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Gamepad", "gaming", "120")

	_, err := r.AddToCart(ctx, uuid.New(), p.ID, 3)
	require.NoError(t, err)
	other := uuid.New()
	_, err = r.AddToCart(ctx, other, p.ID, 1)
	require.NoError(t, err)

	items, err := r.GetCart(ctx, other)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestSetCartQuantity_And_Delete(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()
	p := seedProduct(t, r, "Keyboard", "computers", "960")

	_, err := r.SetCartQuantity(ctx, userID, p.ID, 4)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = r.AddToCart(ctx, userID, p.ID, 2)
	require.NoError(t, err)

	item, err := r.SetCartQuantity(ctx, userID, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	require.NoError(t, r.DeleteOneFromCart(ctx, userID, p.ID))
	assert.ErrorIs(t, r.DeleteOneFromCart(ctx, userID, p.ID), gorm.ErrRecordNotFound)
}

func TestDeleteAllFromCart(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()
	a := seedProduct(t, r, "A", "x", "1")
	b := seedProduct(t, r, "B", "x", "2")

	_, err := r.AddToCart(ctx, userID, a.ID, 1)
	require.NoError(t, err)
	_, err = r.AddToCart(ctx, userID, b.ID, 1)
	require.NoError(t, err)

	n, err := r.DeleteAllFromCart(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	items, err := r.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestToggleWishlist_PairNetsOut(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()
	p := seedProduct(t, r, "Camera", "camera", "360")

	added, item, err := r.ToggleWishlist(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.True(t, added)
	require.NotNil(t, item)

	list, err := r.GetWishlist(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Camera", list[0].Product.Name)

	added, item, err = r.ToggleWishlist(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Nil(t, item)

	list, err = r.GetWishlist(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestToggleWishlist_InsertCollisionRemoves(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()
	p := seedProduct(t, r, "Camera", "camera", "360")

	// simulate a concurrent toggle that won the insert between our delete and create
	r.DB.Callback().Create().Before("gorm:create").Register("test:race", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*models.WishlistItem); !ok {
			return
		}
		if tx.Statement.Context.Value(raceKey{}) == nil {
			return
		}
		tx.Session(&gorm.Session{NewDB: true}).Exec("INSERT INTO wishlist_items (id, user_id, product_id, created_at) VALUES (?, ?, ?, ?)",
			uuid.New(), userID, p.ID, time.Now())
	})
	t.Cleanup(func() { _ = r.DB.Callback().Create().Remove("test:race") })

	added, item, err := r.ToggleWishlist(context.WithValue(ctx, raceKey{}, true), userID, p.ID)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Nil(t, item)

	list, err := r.GetWishlist(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type raceKey struct{}

func TestListProducts_Filters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	seedProduct(t, r, "iPhone 14 Pro Max", "phones", "1099")
	seedProduct(t, r, "Samsung Galaxy S23 Ultra", "phones", "999")
	seedProduct(t, r, "Samsung Galaxy Watch 6", "smartwatch", "299")
	seedProduct(t, r, "PlayStation 5", "gaming", "499")

	total, items, err := r.ListProducts(ctx, ProductFilter{Search: "samsung"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	total, _, err = r.ListProducts(ctx, ProductFilter{Categories: []string{"phones", "gaming"}}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	lo := decimal.NewFromInt(300)
	hi := decimal.NewFromInt(1000)
	total, items, err = r.ListProducts(ctx, ProductFilter{MinPrice: &lo, MaxPrice: &hi}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, it := range items {
		assert.True(t, it.CurrentPrice.GreaterThanOrEqual(lo))
		assert.True(t, it.CurrentPrice.LessThanOrEqual(hi))
	}

	total, items, err = r.ListProducts(ctx, ProductFilter{}, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, items, 2)

	total, _, err = r.ListProducts(ctx, ProductFilter{Search: "100%"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestUpsertProductByName(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p := &models.Product{Name: "Xbox Series X", Image: "x.png", Description: "console", CurrentPrice: decimal.NewFromInt(499)}
	created, err := r.UpsertProductByName(ctx, p)
	require.NoError(t, err)
	assert.True(t, created)

	again := &models.Product{Name: "Xbox Series X", Image: "x.png", Description: "console", CurrentPrice: decimal.NewFromInt(499)}
	created, err = r.UpsertProductByName(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)

	exists, err := r.ProductExists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = r.ProductExists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}
