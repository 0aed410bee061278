package models

import (
	"time"

	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/relation"
)

// Product is a sellable catalog item. Multi-valued relations are JSONB lists written by the CMS.
type Product struct {
	ID                 string                   `db:"id" json:"id"`
	Title              relation.LocalizedText   `db:"title" json:"title"`
	Slug               string                   `db:"slug" json:"slug"`
	Price              float64                  `db:"price" json:"price"`
	Cover              *string                  `db:"cover" json:"cover,omitempty"`
	Gallery            database.JSONB[[]string] `db:"gallery" json:"gallery,omitempty"`
	Needs              relation.List            `db:"needs" json:"needs,omitempty"`
	Textures           relation.List            `db:"textures" json:"textures,omitempty"`
	Brand              relation.Relation        `db:"brand_id" json:"brand,omitempty"`
	BrandLine          relation.Relation        `db:"brand_line_id" json:"brandLine,omitempty"`
	SkinType           relation.Relation        `db:"skin_type_id" json:"skinType,omitempty"`
	SecondarySkinTypes relation.List            `db:"secondary_skin_types" json:"secondarySkinTypes,omitempty"`
	ProductAreas       relation.List            `db:"product_areas" json:"productAreas,omitempty"`
	Timings            relation.List            `db:"timings" json:"timings,omitempty"`
	Published          bool                     `db:"published" json:"published"`
	CreatedAt          time.Time                `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time                `db:"updated_at" json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}
