package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/peony/pkg/catalog"
	"github.com/Ramsey-B/peony/pkg/shop"
)

type ShopService interface {
	Load(ctx context.Context, locale string) (*shop.Data, error)
	Product(ctx context.Context, slug, locale string) (*catalog.ProductCard, error)
}

// ShopHandler serves the public storefront
type ShopHandler struct {
	svc           ShopService
	queryCfg      shop.QueryConfig
	defaultLocale string
}

func NewShopHandler(svc ShopService, queryCfg shop.QueryConfig, defaultLocale string) *ShopHandler {
	return &ShopHandler{svc: svc, queryCfg: queryCfg, defaultLocale: defaultLocale}
}

func (h *ShopHandler) RegisterRoutes(g *echo.Group) {
	s := g.Group("/shop")
	s.GET("", h.Page)
	s.GET("/products/:slug", h.Product)
}

// Page handles GET /shop?q=&brand=&sort=&perPage=&page=&view=&section=
func (h *ShopHandler) Page(c echo.Context) error {
	ctx := c.Request().Context()
	locale := GetLocale(c, h.defaultLocale)

	data, err := h.svc.Load(ctx, locale)
	if err != nil {
		return err
	}

	q := shop.ParseQuery(c.QueryParams(), h.queryCfg)
	return SuccessResponse(c, shop.NewPage(data, q))
}

// Product handles GET /shop/products/:slug
func (h *ShopHandler) Product(c echo.Context) error {
	slug := c.Param("slug")
	if slug == "" {
		return BadRequest("missing slug")
	}

	card, err := h.svc.Product(c.Request().Context(), slug, GetLocale(c, h.defaultLocale))
	if err != nil {
		return err
	}
	return SuccessResponse(c, card)
}
