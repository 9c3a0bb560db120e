package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
)

type ProductHandler struct {
	Svc *service.CatalogService
}

// GetProducts accepts search, category (repeatable or comma separated),
// price[gte] / price[lte] (or minPrice / maxPrice), page and limit.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	q := service.ProductQuery{
		Search:   c.QueryParam("search"),
		MinPrice: firstParam(c, "price[gte]", "minPrice"),
		MaxPrice: firstParam(c, "price[lte]", "maxPrice"),
		Page:     atoiOr(c.QueryParam("page"), 1),
		Limit:    atoiOr(c.QueryParam("limit"), 0),
	}
	for _, v := range c.QueryParams()["category"] {
		q.Categories = append(q.Categories, strings.Split(v, ",")...)
	}

	page, err := h.Svc.ListProducts(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ProductListResponse{
		Success:  true,
		Products: page.Items,
		Total:    page.Total,
		Page:     page.Page,
		Limit:    page.Limit,
		Pages:    page.Pages,
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	p, err := h.Svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ProductResponse{Success: true, Data: p})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req service.CreateProductInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ProductResponse{Success: true, Message: "product created successfully", Data: p})
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func firstParam(c echo.Context, names ...string) string {
	for _, n := range names {
		if v := c.QueryParam(n); v != "" {
			return v
		}
	}
	return ""
}
