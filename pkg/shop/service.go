// Package shop assembles the storefront's view model: taxonomies, product cards and routine templates.
package shop

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/peony/pkg/catalog"
	"github.com/Ramsey-B/peony/pkg/metrics"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/routine"
	"github.com/Ramsey-B/peony/pkg/tracing"
	"golang.org/x/sync/errgroup"
)

type CatalogRepo interface {
	ListNeeds(ctx context.Context) ([]models.Need, error)
	ListTextures(ctx context.Context) ([]models.Texture, error)
	ListProductAreas(ctx context.Context) ([]models.ProductArea, error)
	ListTimings(ctx context.Context) ([]models.Timing, error)
	ListSkinTypes(ctx context.Context) ([]models.SkinType, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)
	ListBrandLines(ctx context.Context) ([]models.BrandLine, error)
}

type RoutineRepo interface {
	ListRoutineSteps(ctx context.Context) ([]models.RoutineStep, error)
	ListRoutineTemplates(ctx context.Context) ([]models.RoutineTemplate, error)
	ListRoutineTemplateSteps(ctx context.Context) ([]models.RoutineTemplateStep, error)
	ListRoutineTemplateStepProducts(ctx context.Context) ([]models.RoutineTemplateStepProduct, error)
	ListRoutineStepRules(ctx context.Context) ([]models.RoutineStepRule, error)
}

type ProductRepo interface {
	ListPublished(ctx context.Context) ([]models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
}

// Taxonomies are the filter facets, in repository order.
type Taxonomies struct {
	Needs        []catalog.Ref `json:"needs"`
	Textures     []catalog.Ref `json:"textures"`
	ProductAreas []catalog.Ref `json:"productAreas"`
	Timings      []catalog.Ref `json:"timings"`
	SkinTypes    []catalog.Ref `json:"skinTypes"`
	Brands       []catalog.Ref `json:"brands"`
	BrandLines   []catalog.Ref `json:"brandLines"`
}

// Data is the fully resolved shop dataset for one locale.
type Data struct {
	Locale           string                 `json:"locale"`
	Taxonomies       Taxonomies             `json:"taxonomies"`
	Products         []catalog.ProductCard  `json:"products"`
	RoutineTemplates []routine.TemplateView `json:"routineTemplates"`
	RoutineRules     []routine.RuleView     `json:"routineRules"`
}

type Service struct {
	catalog  CatalogRepo
	routines RoutineRepo
	products ProductRepo
	logger   ectologger.Logger
}

func NewService(catalog CatalogRepo, routines RoutineRepo, products ProductRepo, logger ectologger.Logger) *Service {
	return &Service{
		catalog:  catalog,
		routines: routines,
		products: products,
		logger:   logger,
	}
}

// Load fetches every reference table concurrently and projects them for locale.
// Any failed load fails the whole assembly.
func (s *Service) Load(ctx context.Context, locale string) (*Data, error) {
	ctx, span := tracing.StartSpan(ctx, "ShopService.Load")
	defer span.End()

	start := time.Now()
	var (
		c             catalog.Collections
		templates     []models.RoutineTemplate
		templateSteps []models.RoutineTemplateStep
		stepProducts  []models.RoutineTemplateStepProduct
		rules         []models.RoutineStepRule
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { c.Needs, err = s.catalog.ListNeeds(gctx); return })
	g.Go(func() (err error) { c.Textures, err = s.catalog.ListTextures(gctx); return })
	g.Go(func() (err error) { c.ProductAreas, err = s.catalog.ListProductAreas(gctx); return })
	g.Go(func() (err error) { c.Timings, err = s.catalog.ListTimings(gctx); return })
	g.Go(func() (err error) { c.SkinTypes, err = s.catalog.ListSkinTypes(gctx); return })
	g.Go(func() (err error) { c.Brands, err = s.catalog.ListBrands(gctx); return })
	g.Go(func() (err error) { c.BrandLines, err = s.catalog.ListBrandLines(gctx); return })
	g.Go(func() (err error) { c.RoutineSteps, err = s.routines.ListRoutineSteps(gctx); return })
	g.Go(func() (err error) { c.Products, err = s.products.ListPublished(gctx); return })
	g.Go(func() (err error) { templates, err = s.routines.ListRoutineTemplates(gctx); return })
	g.Go(func() (err error) { templateSteps, err = s.routines.ListRoutineTemplateSteps(gctx); return })
	g.Go(func() (err error) { stepProducts, err = s.routines.ListRoutineTemplateStepProducts(gctx); return })
	g.Go(func() (err error) { rules, err = s.routines.ListRoutineStepRules(gctx); return })

	if err := g.Wait(); err != nil {
		metrics.RecordShopAssembly(locale, "error", time.Since(start).Seconds())
		s.logger.WithContext(ctx).WithError(err).Errorf("Failed to load shop data for locale %s", locale)
		return nil, err
	}

	idx := catalog.BuildIndexes(c, locale)
	cards, cardIndex := catalog.BuildProductCards(c.Products, idx, locale)
	views := routine.Project(templates, templateSteps, stepProducts, idx, cardIndex, locale)

	data := &Data{
		Locale: locale,
		Taxonomies: Taxonomies{
			Needs:        refs(c.Needs, idx.Needs, func(n models.Need) string { return n.ID }),
			Textures:     refs(c.Textures, idx.Textures, func(t models.Texture) string { return t.ID }),
			ProductAreas: refs(c.ProductAreas, idx.ProductAreas, func(a models.ProductArea) string { return a.ID }),
			Timings:      refs(c.Timings, idx.Timings, func(t models.Timing) string { return t.ID }),
			SkinTypes:    refs(c.SkinTypes, idx.SkinTypes, func(st models.SkinType) string { return st.ID }),
			Brands:       refs(c.Brands, idx.Brands, func(b models.Brand) string { return b.ID }),
			BrandLines:   refs(c.BrandLines, idx.BrandLines, func(b models.BrandLine) string { return b.ID }),
		},
		Products:         cards,
		RoutineTemplates: views,
		RoutineRules:     routine.ProjectRules(rules),
	}

	metrics.RecordShopAssembly(locale, "success", time.Since(start).Seconds())
	metrics.RecordRoutineTemplates(locale, len(views))
	s.logger.WithContext(ctx).Debugf("Assembled shop data for locale %s: %d products, %d routine templates", locale, len(cards), len(views))
	return data, nil
}

// Product returns the resolved card for a published product.
func (s *Service) Product(ctx context.Context, slug, locale string) (*catalog.ProductCard, error) {
	ctx, span := tracing.StartSpan(ctx, "ShopService.Product")
	defer span.End()

	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	var c catalog.Collections
	g.Go(func() (err error) { c.Needs, err = s.catalog.ListNeeds(gctx); return })
	g.Go(func() (err error) { c.Textures, err = s.catalog.ListTextures(gctx); return })
	g.Go(func() (err error) { c.ProductAreas, err = s.catalog.ListProductAreas(gctx); return })
	g.Go(func() (err error) { c.Timings, err = s.catalog.ListTimings(gctx); return })
	g.Go(func() (err error) { c.SkinTypes, err = s.catalog.ListSkinTypes(gctx); return })
	g.Go(func() (err error) { c.Brands, err = s.catalog.ListBrands(gctx); return })
	g.Go(func() (err error) { c.BrandLines, err = s.catalog.ListBrandLines(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	card := catalog.NewProductCard(*product, catalog.BuildIndexes(c, locale), locale)
	return &card, nil
}

func refs[T any](items []T, idx catalog.Index, id func(T) string) []catalog.Ref {
	out := make([]catalog.Ref, 0, len(items))
	for _, item := range items {
		if ref, ok := idx.Lookup(id(item)); ok {
			out = append(out, ref)
		}
	}
	return out
}
