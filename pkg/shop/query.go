package shop

import (
	"net/url"
	"strconv"
	"strings"
)

type Sort string

const (
	SortRelevance Sort = "relevance"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortNameAsc   Sort = "name_asc"
	SortNameDesc  Sort = "name_desc"
	SortNewest    Sort = "newest"
)

type View string

const (
	ViewGrid View = "grid"
	ViewList View = "list"
)

type Section string

const (
	SectionProducts Section = "products"
	SectionRoutines Section = "routines"
)

var (
	sorts    = []Sort{SortRelevance, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc, SortNewest}
	views    = []View{ViewGrid, ViewList}
	sections = []Section{SectionProducts, SectionRoutines}
)

type QueryConfig struct {
	DefaultPerPage int
	MaxPerPage     int
}

func DefaultQueryConfig() QueryConfig {
	return QueryConfig{DefaultPerPage: 24, MaxPerPage: 96}
}

// Query is the normalized shop page query. Parsing never fails: unknown or malformed
// values fall back to their defaults.
type Query struct {
	Q       string  `json:"q"`
	Brand   string  `json:"brand"`
	Sort    Sort    `json:"sort"`
	PerPage int     `json:"perPage"`
	Page    int     `json:"page"`
	View    View    `json:"view"`
	Section Section `json:"section"`
}

func ParseQuery(values url.Values, cfg QueryConfig) Query {
	if cfg.DefaultPerPage <= 0 {
		cfg.DefaultPerPage = DefaultQueryConfig().DefaultPerPage
	}
	if cfg.MaxPerPage < cfg.DefaultPerPage {
		cfg.MaxPerPage = cfg.DefaultPerPage
	}

	q := Query{
		Q:       strings.TrimSpace(values.Get("q")),
		Brand:   strings.TrimSpace(values.Get("brand")),
		Sort:    oneOf(Sort(values.Get("sort")), sorts, SortRelevance),
		PerPage: cfg.DefaultPerPage,
		Page:    1,
		View:    oneOf(View(values.Get("view")), views, ViewGrid),
		Section: oneOf(Section(values.Get("section")), sections, SectionProducts),
	}

	if n, err := strconv.Atoi(values.Get("perPage")); err == nil && n > 0 {
		q.PerPage = min(n, cfg.MaxPerPage)
	}
	if n, err := strconv.Atoi(values.Get("page")); err == nil && n > 0 {
		q.Page = n
	}
	return q
}

// Values encodes the non-default fields of q.
func (q Query) Values(cfg QueryConfig) url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Brand != "" {
		v.Set("brand", q.Brand)
	}
	if q.Sort != "" && q.Sort != SortRelevance {
		v.Set("sort", string(q.Sort))
	}
	if q.PerPage > 0 && q.PerPage != cfg.DefaultPerPage {
		v.Set("perPage", strconv.Itoa(q.PerPage))
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.View != "" && q.View != ViewGrid {
		v.Set("view", string(q.View))
	}
	if q.Section != "" && q.Section != SectionProducts {
		v.Set("section", string(q.Section))
	}
	return v
}

func oneOf[T ~string](value T, allowed []T, fallback T) T {
	value = T(strings.ToLower(strings.TrimSpace(string(value))))
	for _, a := range allowed {
		if a == value {
			return value
		}
	}
	return fallback
}
