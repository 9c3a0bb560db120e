package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type ProductQuery struct {
	Search     string
	Categories []string
	MinPrice   string
	MaxPrice   string
	Page       int
	Limit      int
}

type ProductPage struct {
	Items []models.Product
	Total int64
	Page  int
	Limit int
	Pages int
}

type CreateProductInput struct {
	Image          string           `json:"image"          validate:"required,max=2048"`
	Name           string           `json:"name"           validate:"required,max=200"`
	CurrentPrice   *decimal.Decimal `json:"currentPrice"`
	OriginalPrice  *decimal.Decimal `json:"originalPrice"`
	Discount       int              `json:"discount"       validate:"min=0,max=100"`
	Rating         float64          `json:"rating"         validate:"min=0,max=5"`
	ReviewCount    int              `json:"reviewCount"    validate:"min=0"`
	Description    string           `json:"description"    validate:"required"`
	Category       string           `json:"category"       validate:"max=100"`
	ParentCategory string           `json:"parentCategory" validate:"max=100"`
	Tags           []string         `json:"tags"           validate:"max=20,dive,max=50"`
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	f := repo.ProductFilter{Search: q.Search}
	for _, c := range q.Categories {
		if c = strings.TrimSpace(c); c != "" {
			f.Categories = append(f.Categories, c)
		}
	}

	var err error
	if f.MinPrice, err = parsePriceBound("minPrice", q.MinPrice); err != nil {
		return nil, err
	}
	if f.MaxPrice, err = parsePriceBound("maxPrice", q.MaxPrice); err != nil {
		return nil, err
	}

	from, limit, page := util.Calculate(q.Page, q.Limit)
	total, items, err := s.Repo.ListProducts(ctx, f, from, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return &ProductPage{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: util.Pages(total, limit),
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, newErr(ErrNotFound, "product not found")
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	in.Name = strings.TrimSpace(in.Name)
	in.Image = strings.TrimSpace(in.Image)
	in.Description = strings.TrimSpace(in.Description)
	if in.Image == "" || in.Name == "" || in.CurrentPrice == nil || in.Description == "" {
		return nil, newErr(ErrValidation, "please provide all required fields")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	current, err := nonNegative("currentPrice", *in.CurrentPrice)
	if err != nil {
		return nil, err
	}
	original := decimal.Zero
	if in.OriginalPrice != nil {
		if original, err = nonNegative("originalPrice", *in.OriginalPrice); err != nil {
			return nil, err
		}
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	p := &models.Product{
		Image:          in.Image,
		Name:           in.Name,
		CurrentPrice:   current,
		OriginalPrice:  original,
		Discount:       in.Discount,
		Rating:         in.Rating,
		ReviewCount:    in.ReviewCount,
		Description:    in.Description,
		Category:       strings.TrimSpace(in.Category),
		ParentCategory: strings.TrimSpace(in.ParentCategory),
		Tags:           tags,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		l.Error("product_create_failed", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicProductEvents, events.Event{Type: events.ProductCreated, ProductID: p.ID.String()})
	l.Info("product_created", "product_id", p.ID)
	return p, nil
}

func parsePrice(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, newErr(ErrValidation, field+" must be a number")
	}
	return nonNegative(field, d)
}

func nonNegative(field string, d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, newErr(ErrValidation, field+" must be at least 0")
	}
	return d.Round(2), nil
}

func parsePriceBound(field, raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := parsePrice(field, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
