package catalog

import (
	"testing"

	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/relation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestBuildIndexes(t *testing.T) {
	c := Collections{
		Needs: []models.Need{
			{ID: "n1", Label: relation.Localized("it", "Idratazione", "en", "Hydration"), Slug: strPtr("idratazione")},
			{ID: "n2", Label: relation.Localized("it", "Rughe")},
			{ID: "", Label: relation.Plain("dropped")},
		},
		Brands: []models.Brand{
			{ID: "b1", Label: relation.Plain("Comfort Zone"), Slug: strPtr("comfort-zone")},
		},
		Products: []models.Product{
			{ID: "p1", Title: relation.Localized("en", "Serum"), Slug: "serum"},
		},
		SkinTypes: []models.SkinType{
			{ID: "s1"},
		},
	}

	idx := BuildIndexes(c, "en")
	require.NotNil(t, idx)

	assert.Len(t, idx.Needs, 2)
	assert.Equal(t, Ref{ID: "n1", Label: "Hydration", Slug: "idratazione"}, idx.Needs["n1"])
	// missing locale falls back to the first defined value
	assert.Equal(t, "Rughe", idx.Needs["n2"].Label)
	assert.Equal(t, Ref{ID: "b1", Label: "Comfort Zone", Slug: "comfort-zone"}, idx.Brands["b1"])
	assert.Equal(t, Ref{ID: "p1", Label: "Serum", Slug: "serum"}, idx.Products["p1"])
	// no label at all degrades to the id
	assert.Equal(t, "s1", idx.SkinTypes["s1"].Label)
	assert.Empty(t, idx.Timings)
}

func TestIndex_LabelOr(t *testing.T) {
	idx := Index{"a": {ID: "a", Label: "Alpha"}}

	ref, ok := idx.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "Alpha", ref.Label)

	_, ok = idx.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, Ref{ID: "missing", Label: "missing"}, idx.LabelOr("missing"))
	assert.Equal(t, Ref{}, idx.Resolve(relation.None))
}

func TestIndex_ResolveRelations(t *testing.T) {
	idx := Index{
		"a": {ID: "a", Label: "Alpha"},
		"b": {ID: "b", Label: "Beta"},
	}

	assert.Nil(t, idx.ResolveOptional(relation.None))
	assert.Equal(t, &Ref{ID: "a", Label: "Alpha"}, idx.ResolveOptional(relation.FromObject(map[string]any{"id": "a"})))

	list := relation.List{relation.FromID("b"), relation.None, relation.FromID("zzz"), relation.FromID("a")}
	assert.Equal(t, []Ref{
		{ID: "b", Label: "Beta"},
		{ID: "zzz", Label: "zzz"},
		{ID: "a", Label: "Alpha"},
	}, idx.ResolveList(list))
}

func TestBuildProductCards(t *testing.T) {
	c := Collections{
		Brands: []models.Brand{{ID: "b1", Label: relation.Plain("Brand One"), Slug: strPtr("brand-one")}},
		Needs:  []models.Need{{ID: "n1", Label: relation.Localized("it", "Acne", "en", "Blemishes")}},
		Products: []models.Product{
			{
				ID:    "p1",
				Title: relation.Localized("it", "Crema", "en", "Cream"),
				Slug:  "crema",
				Price: 42.5,
				Cover: strPtr("cover.jpg"),
				Brand: relation.FromID("b1"),
				Needs: relation.List{relation.FromObject(map[string]any{"id": "n1"}), relation.None},
			},
			{ID: "p2", Slug: "untitled"},
		},
	}
	idx := BuildIndexes(c, "it")

	cards, byID := BuildProductCards(c.Products, idx, "it")
	require.Len(t, cards, 2)

	assert.Equal(t, "Crema", cards[0].Title)
	assert.Equal(t, "cover.jpg", cards[0].Cover)
	assert.Equal(t, &Ref{ID: "b1", Label: "Brand One", Slug: "brand-one"}, cards[0].Brand)
	assert.Equal(t, []Ref{{ID: "n1", Label: "Acne"}}, cards[0].Needs)
	assert.Nil(t, cards[0].BrandLine)

	assert.Equal(t, "untitled", cards[1].Title)
	assert.Equal(t, cards[1], byID["p2"])
}
