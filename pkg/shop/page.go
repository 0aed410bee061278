package shop

import (
	"sort"
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/Ramsey-B/peony/pkg/catalog"
	"github.com/Ramsey-B/peony/pkg/routine"
	"github.com/Ramsey-B/peony/pkg/utils"
)

// Result is one page of filtered products.
type Result struct {
	Items   []catalog.ProductCard `json:"items"`
	Total   int                   `json:"total"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"perPage"`
	Pages   int                   `json:"pages"`
}

// Apply filters, sorts and paginates products. The input slice is not modified.
// A page past the end is clamped to the last page.
func Apply(products []catalog.ProductCard, q Query) Result {
	filtered := ectolinq.Filter(products, matcher(q))

	switch q.Sort {
	case SortPriceAsc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case SortPriceDesc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	case SortNameAsc:
		sort.SliceStable(filtered, func(i, j int) bool { return utils.Fold(filtered[i].Title) < utils.Fold(filtered[j].Title) })
	case SortNameDesc:
		sort.SliceStable(filtered, func(i, j int) bool { return utils.Fold(filtered[i].Title) > utils.Fold(filtered[j].Title) })
	case SortNewest:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultQueryConfig().DefaultPerPage
	}
	total := len(filtered)
	pages := (total + perPage - 1) / perPage
	page := min(max(q.Page, 1), max(pages, 1))

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return Result{
		Items:   append([]catalog.ProductCard{}, filtered[start:end]...),
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
	}
}

func matcher(q Query) func(catalog.ProductCard) bool {
	terms := strings.Fields(utils.Fold(q.Q))
	brand := utils.Fold(q.Brand)

	return func(card catalog.ProductCard) bool {
		if brand != "" {
			if card.Brand == nil {
				return false
			}
			if utils.Fold(card.Brand.Slug) != brand && utils.Fold(card.Brand.ID) != brand {
				return false
			}
		}
		if len(terms) == 0 {
			return true
		}
		haystack := searchText(card)
		for _, term := range terms {
			if !strings.Contains(haystack, term) {
				return false
			}
		}
		return true
	}
}

func searchText(card catalog.ProductCard) string {
	parts := []string{card.Title}
	if card.Brand != nil {
		parts = append(parts, card.Brand.Label)
	}
	if card.BrandLine != nil {
		parts = append(parts, card.BrandLine.Label)
	}
	return utils.Fold(strings.Join(parts, " "))
}

// Page is the shop page view model.
type Page struct {
	Locale           string                 `json:"locale"`
	Query            Query                  `json:"query"`
	Products         Result                 `json:"products"`
	Taxonomies       Taxonomies             `json:"taxonomies"`
	RoutineTemplates []routine.TemplateView `json:"routineTemplates"`
	RoutineRules     []routine.RuleView     `json:"routineRules"`
}

func NewPage(data *Data, q Query) Page {
	return Page{
		Locale:           data.Locale,
		Query:            q,
		Products:         Apply(data.Products, q),
		Taxonomies:       data.Taxonomies,
		RoutineTemplates: data.RoutineTemplates,
		RoutineRules:     data.RoutineRules,
	}
}
