package models

import (
	"github.com/Ramsey-B/peony/pkg/relation"
)

// RoutineStep is a single stage of a skincare routine (cleansing, toning, ...)
type RoutineStep struct {
	ID              string                 `db:"id" json:"id"`
	Label           relation.LocalizedText `db:"label" json:"label"`
	Slug            *string                `db:"slug" json:"slug,omitempty"`
	ProductArea     relation.Relation      `db:"product_area_id" json:"productArea,omitempty"`
	DefaultOrder    *int                   `db:"default_order" json:"defaultOrder,omitempty"`
	DefaultOptional bool                   `db:"default_optional" json:"defaultOptional"`
}

func (RoutineStep) TableName() string {
	return "routine_steps"
}

type RoutineTemplate struct {
	ID          string                 `db:"id" json:"id"`
	Name        relation.LocalizedText `db:"name" json:"name"`
	Description relation.LocalizedText `db:"description" json:"description,omitempty"`
	Timing      relation.Relation      `db:"timing_id" json:"timing"`
	Need        relation.Relation      `db:"need_id" json:"need"`
	ProductArea relation.Relation      `db:"product_area_id" json:"productArea,omitempty"`
	MultiBrand  bool                   `db:"multi_brand" json:"multiBrand"`
	Brand       relation.Relation      `db:"brand_id" json:"brand,omitempty"`
}

func (RoutineTemplate) TableName() string {
	return "routine_templates"
}

type RoutineTemplateStep struct {
	ID        string            `db:"id" json:"id"`
	Template  relation.Relation `db:"template_id" json:"template"`
	Step      relation.Relation `db:"step_id" json:"step"`
	Required  bool              `db:"required" json:"required"`
	StepOrder *int              `db:"step_order" json:"stepOrder,omitempty"`
}

func (RoutineTemplateStep) TableName() string {
	return "routine_template_steps"
}

// RoutineTemplateStepProduct is a ranked candidate product for one step of one template
type RoutineTemplateStepProduct struct {
	ID       string            `db:"id" json:"id"`
	Template relation.Relation `db:"template_id" json:"template"`
	Step     relation.Relation `db:"step_id" json:"step"`
	Product  relation.Relation `db:"product_id" json:"product"`
	Rank     *int              `db:"rank" json:"rank,omitempty"`
}

func (RoutineTemplateStepProduct) TableName() string {
	return "routine_template_step_products"
}

type RuleType string

const (
	RuleRequire RuleType = "require"
	RuleForbid  RuleType = "forbid"
	RuleWarn    RuleType = "warn"
)

// RoutineStepRule is advisory metadata; nothing enforces it server side
type RoutineStepRule struct {
	ID          string            `db:"id" json:"id"`
	RoutineStep relation.Relation `db:"routine_step_id" json:"routineStep"`
	Timing      relation.Relation `db:"timing_id" json:"timing,omitempty"`
	SkinType    relation.Relation `db:"skin_type_id" json:"skinType,omitempty"`
	RuleType    RuleType          `db:"rule_type" json:"ruleType"`
}

func (RoutineStepRule) TableName() string {
	return "routine_step_rules"
}
