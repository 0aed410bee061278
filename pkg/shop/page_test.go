package shop

import (
	"net/url"
	"testing"
	"time"

	"github.com/Ramsey-B/peony/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery_Defaults(t *testing.T) {
	q := ParseQuery(url.Values{}, QueryConfig{DefaultPerPage: 12, MaxPerPage: 48})

	assert.Equal(t, Query{Sort: SortRelevance, PerPage: 12, Page: 1, View: ViewGrid, Section: SectionProducts}, q)
}

func TestParseQuery(t *testing.T) {
	cfg := QueryConfig{DefaultPerPage: 12, MaxPerPage: 48}

	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, q Query)
	}{
		{
			name: "known values",
			raw:  "q=+siero+&brand=skin-lab&sort=PRICE_DESC&perPage=24&page=3&view=list&section=routines",
			check: func(t *testing.T, q Query) {
				assert.Equal(t, Query{Q: "siero", Brand: "skin-lab", Sort: SortPriceDesc, PerPage: 24, Page: 3, View: ViewList, Section: SectionRoutines}, q)
			},
		},
		{
			name: "unknown enums fall back",
			raw:  "sort=cheapest&view=carousel&section=blog",
			check: func(t *testing.T, q Query) {
				assert.Equal(t, SortRelevance, q.Sort)
				assert.Equal(t, ViewGrid, q.View)
				assert.Equal(t, SectionProducts, q.Section)
			},
		},
		{
			name: "perPage clamped",
			raw:  "perPage=1000",
			check: func(t *testing.T, q Query) {
				assert.Equal(t, 48, q.PerPage)
			},
		},
		{
			name: "malformed numbers",
			raw:  "perPage=-3&page=abc",
			check: func(t *testing.T, q Query) {
				assert.Equal(t, 12, q.PerPage)
				assert.Equal(t, 1, q.Page)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)
			tt.check(t, ParseQuery(values, cfg))
		})
	}
}

func TestQuery_ValuesRoundTrip(t *testing.T) {
	cfg := DefaultQueryConfig()
	q := Query{Q: "crema", Sort: SortNewest, PerPage: cfg.DefaultPerPage, Page: 2, View: ViewGrid, Section: SectionProducts}

	v := q.Values(cfg)
	assert.Equal(t, url.Values{"q": {"crema"}, "sort": {"newest"}, "page": {"2"}}, v)
	assert.Equal(t, q, ParseQuery(v, cfg))
}

func cards() []catalog.ProductCard {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	skinLab := &catalog.Ref{ID: "b1", Label: "Skin Lab", Slug: "skin-lab"}
	bioEra := &catalog.Ref{ID: "b2", Label: "Bioèra", Slug: "bioera"}
	return []catalog.ProductCard{
		{ID: "p1", Title: "Crème Idratante", Price: 30, Brand: skinLab, CreatedAt: base},
		{ID: "p2", Title: "Siero viso", Price: 45, Brand: bioEra, CreatedAt: base.Add(48 * time.Hour)},
		{ID: "p3", Title: "Acqua micellare", Price: 12, Brand: skinLab, CreatedAt: base.Add(24 * time.Hour)},
		{ID: "p4", Title: "Crema mani", Price: 12, CreatedAt: base.Add(72 * time.Hour)},
	}
}

func ids(items []catalog.ProductCard) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.ID)
	}
	return out
}

func TestApply_Filters(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{name: "no filters keeps input order", q: Query{PerPage: 10, Page: 1}, want: []string{"p1", "p2", "p3", "p4"}},
		{name: "accent insensitive title", q: Query{Q: "creme", PerPage: 10}, want: []string{"p1"}},
		{name: "matches brand label", q: Query{Q: "bioera", PerPage: 10}, want: []string{"p2"}},
		{name: "all terms must match", q: Query{Q: "skin acqua", PerPage: 10}, want: []string{"p3"}},
		{name: "brand by slug", q: Query{Brand: "Skin-Lab", PerPage: 10}, want: []string{"p1", "p3"}},
		{name: "brand by id", q: Query{Brand: "b2", PerPage: 10}, want: []string{"p2"}},
		{name: "no match", q: Query{Q: "shampoo", PerPage: 10}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Apply(cards(), tt.q)
			assert.Equal(t, tt.want, ids(res.Items))
			assert.Equal(t, len(tt.want), res.Total)
		})
	}
}

func TestApply_Sorts(t *testing.T) {
	tests := []struct {
		sort Sort
		want []string
	}{
		{sort: SortRelevance, want: []string{"p1", "p2", "p3", "p4"}},
		{sort: SortPriceAsc, want: []string{"p3", "p4", "p1", "p2"}},
		{sort: SortPriceDesc, want: []string{"p2", "p1", "p3", "p4"}},
		{sort: SortNameAsc, want: []string{"p3", "p4", "p1", "p2"}},
		{sort: SortNameDesc, want: []string{"p2", "p1", "p4", "p3"}},
		{sort: SortNewest, want: []string{"p4", "p2", "p3", "p1"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			input := cards()
			res := Apply(input, Query{Sort: tt.sort, PerPage: 10, Page: 1})
			assert.Equal(t, tt.want, ids(res.Items))
			assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(input), "input must not be reordered")
		})
	}
}

func TestApply_Pagination(t *testing.T) {
	res := Apply(cards(), Query{PerPage: 3, Page: 2})
	assert.Equal(t, []string{"p4"}, ids(res.Items))
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 2, res.Page)

	res = Apply(cards(), Query{PerPage: 3, Page: 9})
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, []string{"p4"}, ids(res.Items))

	res = Apply(nil, Query{PerPage: 3, Page: 4})
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 0, res.Pages)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestApply_NoMatchesClampsToFirstPage(t *testing.T) {
	res := Apply(cards(), Query{Q: "nothing-matches-this", PerPage: 2, Page: 4})
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0, res.Pages)
	assert.Equal(t, 1, res.Page)
	assert.Empty(t, res.Items)
}

func TestNewPage(t *testing.T) {
	data := &Data{Locale: "it", Products: cards()}
	page := NewPage(data, Query{Brand: "skin-lab", PerPage: 1, Page: 1})

	assert.Equal(t, "it", page.Locale)
	assert.Equal(t, 2, page.Products.Total)
	assert.Equal(t, []string{"p1"}, ids(page.Products.Items))
}
