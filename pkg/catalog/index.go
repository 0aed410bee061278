// Package catalog builds the per-request id indexes used to label relations.
package catalog

import (
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/relation"
)

// Ref is the minimal display projection of a taxonomy entry.
type Ref struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug,omitempty"`
}

// Index maps canonical ids to their display projection.
type Index map[string]Ref

func (i Index) Lookup(id string) (Ref, bool) {
	ref, ok := i[id]
	return ref, ok
}

// LabelOr returns the indexed ref for id, or a ref labelled with the id itself.
func (i Index) LabelOr(id string) Ref {
	if ref, ok := i[id]; ok {
		return ref
	}
	return Ref{ID: id, Label: id}
}

// Resolve labels a relation. An absent relation yields an empty id and label.
func (i Index) Resolve(r relation.Relation) Ref {
	return i.LabelOr(r.IDOrEmpty())
}

// ResolveOptional labels a relation, returning nil when the relation is absent.
func (i Index) ResolveOptional(r relation.Relation) *Ref {
	id, ok := r.ResolveID()
	if !ok {
		return nil
	}
	ref := i.LabelOr(id)
	return &ref
}

// ResolveList labels every resolvable element of a list relation, keeping list order.
func (i Index) ResolveList(l relation.List) []Ref {
	ids := l.ResolveIDs()
	refs := make([]Ref, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, i.LabelOr(id))
	}
	return refs
}

// Collections are the reference tables loaded for one request.
type Collections struct {
	Needs        []models.Need
	Textures     []models.Texture
	ProductAreas []models.ProductArea
	Timings      []models.Timing
	SkinTypes    []models.SkinType
	Brands       []models.Brand
	BrandLines   []models.BrandLine
	RoutineSteps []models.RoutineStep
	Products     []models.Product
}

// Indexes bundles one Index per reference collection. Build it per request and discard it after.
type Indexes struct {
	Needs        Index
	Textures     Index
	ProductAreas Index
	Timings      Index
	SkinTypes    Index
	Brands       Index
	BrandLines   Index
	RoutineSteps Index
	Products     Index
}

func BuildIndexes(c Collections, locale string) *Indexes {
	return &Indexes{
		Needs: build(c.Needs, func(n models.Need) Ref {
			return newRef(n.ID, n.Label, n.Slug, locale)
		}),
		Textures: build(c.Textures, func(t models.Texture) Ref {
			return newRef(t.ID, t.Label, t.Slug, locale)
		}),
		ProductAreas: build(c.ProductAreas, func(a models.ProductArea) Ref {
			return newRef(a.ID, a.Label, a.Slug, locale)
		}),
		Timings: build(c.Timings, func(t models.Timing) Ref {
			return newRef(t.ID, t.Label, t.Slug, locale)
		}),
		SkinTypes: build(c.SkinTypes, func(s models.SkinType) Ref {
			return newRef(s.ID, s.Label, nil, locale)
		}),
		Brands: build(c.Brands, func(b models.Brand) Ref {
			return newRef(b.ID, b.Label, b.Slug, locale)
		}),
		BrandLines: build(c.BrandLines, func(b models.BrandLine) Ref {
			return newRef(b.ID, b.Label, b.Slug, locale)
		}),
		RoutineSteps: build(c.RoutineSteps, func(s models.RoutineStep) Ref {
			return newRef(s.ID, s.Label, s.Slug, locale)
		}),
		Products: build(c.Products, func(p models.Product) Ref {
			slug := p.Slug
			return newRef(p.ID, p.Title, &slug, locale)
		}),
	}
}

func build[T any](items []T, project func(T) Ref) Index {
	idx := make(Index, len(items))
	for _, item := range items {
		ref := project(item)
		if ref.ID == "" {
			continue
		}
		idx[ref.ID] = ref
	}
	return idx
}

func newRef(id string, label relation.LocalizedText, slug *string, locale string) Ref {
	ref := Ref{ID: id, Label: id}
	if s, ok := label.Resolve(locale); ok {
		ref.Label = s
	}
	if slug != nil {
		ref.Slug = *slug
	}
	return ref
}
