package catalog

import (
	"time"

	"github.com/Ramsey-B/peony/pkg/models"
)

// ProductCard is a product with every relation resolved to a display ref.
type ProductCard struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Slug               string    `json:"slug"`
	Price              float64   `json:"price"`
	Cover              string    `json:"cover,omitempty"`
	Gallery            []string  `json:"gallery,omitempty"`
	Brand              *Ref      `json:"brand,omitempty"`
	BrandLine          *Ref      `json:"brandLine,omitempty"`
	SkinType           *Ref      `json:"skinType,omitempty"`
	SecondarySkinTypes []Ref     `json:"secondarySkinTypes"`
	Needs              []Ref     `json:"needs"`
	Textures           []Ref     `json:"textures"`
	ProductAreas       []Ref     `json:"productAreas"`
	Timings            []Ref     `json:"timings"`
	CreatedAt          time.Time `json:"createdAt"`
}

// CardIndex maps product ids to their cards.
type CardIndex map[string]ProductCard

func NewProductCard(p models.Product, idx *Indexes, locale string) ProductCard {
	card := ProductCard{
		ID:                 p.ID,
		Title:              p.Title.String(locale),
		Slug:               p.Slug,
		Price:              p.Price,
		Gallery:            p.Gallery.Data,
		Brand:              idx.Brands.ResolveOptional(p.Brand),
		BrandLine:          idx.BrandLines.ResolveOptional(p.BrandLine),
		SkinType:           idx.SkinTypes.ResolveOptional(p.SkinType),
		SecondarySkinTypes: idx.SkinTypes.ResolveList(p.SecondarySkinTypes),
		Needs:              idx.Needs.ResolveList(p.Needs),
		Textures:           idx.Textures.ResolveList(p.Textures),
		ProductAreas:       idx.ProductAreas.ResolveList(p.ProductAreas),
		Timings:            idx.Timings.ResolveList(p.Timings),
		CreatedAt:          p.CreatedAt,
	}
	if card.Title == "" {
		card.Title = p.Slug
	}
	if p.Cover != nil {
		card.Cover = *p.Cover
	}
	return card
}

// BuildProductCards projects products in input order and indexes the result by id.
func BuildProductCards(products []models.Product, idx *Indexes, locale string) ([]ProductCard, CardIndex) {
	cards := make([]ProductCard, 0, len(products))
	byID := make(CardIndex, len(products))
	for _, p := range products {
		card := NewProductCard(p, idx, locale)
		cards = append(cards, card)
		byID[card.ID] = card
	}
	return cards, byID
}
