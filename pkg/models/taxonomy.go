package models

import (
	"github.com/Ramsey-B/peony/pkg/relation"
)

// Need is a skin concern products and routines are filed under
type Need struct {
	ID            string                 `db:"id" json:"id"`
	Label         relation.LocalizedText `db:"label" json:"label"`
	Slug          *string                `db:"slug" json:"slug,omitempty"`
	Description   relation.LocalizedText `db:"description" json:"description,omitempty"`
	SortOrder     *int                   `db:"sort_order" json:"sortOrder,omitempty"`
	MarketingCopy relation.LocalizedText `db:"marketing_copy" json:"marketingCopy,omitempty"`
	CardMedia     *string                `db:"card_media" json:"cardMedia,omitempty"`
}

func (Need) TableName() string {
	return "needs"
}

type Texture struct {
	ID    string                 `db:"id" json:"id"`
	Label relation.LocalizedText `db:"label" json:"label"`
	Slug  *string                `db:"slug" json:"slug,omitempty"`
}

func (Texture) TableName() string {
	return "textures"
}

// ProductArea is the body zone a product or routine step targets (face, body, hair)
type ProductArea struct {
	ID          string                 `db:"id" json:"id"`
	Label       relation.LocalizedText `db:"label" json:"label"`
	Slug        *string                `db:"slug" json:"slug,omitempty"`
	Description relation.LocalizedText `db:"description" json:"description,omitempty"`
	CardMedia   *string                `db:"card_media" json:"cardMedia,omitempty"`
}

func (ProductArea) TableName() string {
	return "product_areas"
}

// Timing is the when-to-use taxonomy (morning, evening, weekly)
type Timing struct {
	ID          string                 `db:"id" json:"id"`
	Label       relation.LocalizedText `db:"label" json:"label"`
	Slug        *string                `db:"slug" json:"slug,omitempty"`
	Description relation.LocalizedText `db:"description" json:"description,omitempty"`
	Media       *string                `db:"media" json:"media,omitempty"`
}

func (Timing) TableName() string {
	return "timings"
}

type SkinType struct {
	ID          string                 `db:"id" json:"id"`
	Label       relation.LocalizedText `db:"label" json:"label"`
	Description relation.LocalizedText `db:"description" json:"description,omitempty"`
	Media       *string                `db:"media" json:"media,omitempty"`
	ProductArea relation.Relation      `db:"product_area_id" json:"productArea,omitempty"`
}

func (SkinType) TableName() string {
	return "skin_types"
}

type Brand struct {
	ID    string                 `db:"id" json:"id"`
	Label relation.LocalizedText `db:"label" json:"label"`
	Slug  *string                `db:"slug" json:"slug,omitempty"`
}

func (Brand) TableName() string {
	return "brands"
}

type BrandLine struct {
	ID    string                 `db:"id" json:"id"`
	Label relation.LocalizedText `db:"label" json:"label"`
	Slug  *string                `db:"slug" json:"slug,omitempty"`
	Brand relation.Relation      `db:"brand_id" json:"brand,omitempty"`
}

func (BrandLine) TableName() string {
	return "brand_lines"
}
