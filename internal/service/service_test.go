package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type fixture struct {
	repo     *repo.GormRepo
	issuer   *tokens.Issuer
	recorder *events.Recorder
	auth     *AuthService
	cart     *CartService
	wishlist *WishlistService
	catalog  *CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	issuer, err := tokens.NewIssuer([]byte("access-secret"), []byte("refresh-secret"), 0, 0)
	require.NoError(t, err)

	r := repo.New(gdb)
	rec := &events.Recorder{}
	return &fixture{
		repo:     r,
		issuer:   issuer,
		recorder: rec,
		auth:     &AuthService{Repo: r, Tokens: issuer, Events: rec},
		cart:     &CartService{Repo: r, Events: rec},
		wishlist: &WishlistService{Repo: r, Events: rec},
		catalog:  &CatalogService{Repo: r, Events: rec},
	}
}

func (f *fixture) product(t *testing.T, name, category, price string) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:         name,
		Image:        "img.png",
		Description:  name + " description",
		Category:     category,
		CurrentPrice: decimal.RequireFromString(price),
		Tags:         []string{},
	}
	require.NoError(t, f.repo.CreateProduct(context.Background(), p))
	return p
}
