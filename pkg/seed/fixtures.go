// Package seed loads catalog fixtures from YAML and upserts them into postgres.
package seed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Ramsey-B/peony/pkg/models"
	"gopkg.in/yaml.v3"
)

// Fixtures is a catalog snapshot. Keys follow the API's JSON field names.
type Fixtures struct {
	Needs                       []models.Need                       `json:"needs"`
	Textures                    []models.Texture                    `json:"textures"`
	ProductAreas                []models.ProductArea                `json:"productAreas"`
	Timings                     []models.Timing                     `json:"timings"`
	SkinTypes                   []models.SkinType                   `json:"skinTypes"`
	Brands                      []models.Brand                      `json:"brands"`
	BrandLines                  []models.BrandLine                  `json:"brandLines"`
	RoutineSteps                []models.RoutineStep                `json:"routineSteps"`
	Products                    []models.Product                    `json:"products"`
	RoutineTemplates            []models.RoutineTemplate            `json:"routineTemplates"`
	RoutineTemplateSteps        []models.RoutineTemplateStep        `json:"routineTemplateSteps"`
	RoutineTemplateStepProducts []models.RoutineTemplateStepProduct `json:"routineTemplateStepProducts"`
	RoutineStepRules            []models.RoutineStepRule            `json:"routineStepRules"`
}

func LoadFile(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures %s: %w", path, err)
	}
	return Parse(bytes.NewReader(raw))
}

// Parse decodes YAML fixtures. Documents are routed through JSON so relations and localized
// text accept the same shapes the API does.
func Parse(r io.Reader) (*Fixtures, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Fixtures{}, nil
		}
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert fixtures: %w", err)
	}

	var f Fixtures
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	seen := map[string]map[string]bool{}
	check := func(table, id string) error {
		if id == "" {
			return fmt.Errorf("%s: entry without id", table)
		}
		if seen[table] == nil {
			seen[table] = map[string]bool{}
		}
		if seen[table][id] {
			return fmt.Errorf("%s: duplicate id %q", table, id)
		}
		seen[table][id] = true
		return nil
	}

	for _, set := range f.idSets() {
		for _, id := range set.ids {
			if err := check(set.table, id); err != nil {
				return err
			}
		}
	}
	return nil
}

type idSet struct {
	table string
	ids   []string
}

func (f *Fixtures) idSets() []idSet {
	return []idSet{
		{models.Need{}.TableName(), ids(f.Needs, func(v models.Need) string { return v.ID })},
		{models.Texture{}.TableName(), ids(f.Textures, func(v models.Texture) string { return v.ID })},
		{models.ProductArea{}.TableName(), ids(f.ProductAreas, func(v models.ProductArea) string { return v.ID })},
		{models.Timing{}.TableName(), ids(f.Timings, func(v models.Timing) string { return v.ID })},
		{models.SkinType{}.TableName(), ids(f.SkinTypes, func(v models.SkinType) string { return v.ID })},
		{models.Brand{}.TableName(), ids(f.Brands, func(v models.Brand) string { return v.ID })},
		{models.BrandLine{}.TableName(), ids(f.BrandLines, func(v models.BrandLine) string { return v.ID })},
		{models.RoutineStep{}.TableName(), ids(f.RoutineSteps, func(v models.RoutineStep) string { return v.ID })},
		{models.Product{}.TableName(), ids(f.Products, func(v models.Product) string { return v.ID })},
		{models.RoutineTemplate{}.TableName(), ids(f.RoutineTemplates, func(v models.RoutineTemplate) string { return v.ID })},
		{models.RoutineTemplateStep{}.TableName(), ids(f.RoutineTemplateSteps, func(v models.RoutineTemplateStep) string { return v.ID })},
		{models.RoutineTemplateStepProduct{}.TableName(), ids(f.RoutineTemplateStepProducts, func(v models.RoutineTemplateStepProduct) string { return v.ID })},
		{models.RoutineStepRule{}.TableName(), ids(f.RoutineStepRules, func(v models.RoutineStepRule) string { return v.ID })},
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

// stamp fills creation times the fixtures leave out.
func (f *Fixtures) stamp(now time.Time) {
	for i := range f.Products {
		if f.Products[i].CreatedAt.IsZero() {
			f.Products[i].CreatedAt = now
		}
		if f.Products[i].UpdatedAt.IsZero() {
			f.Products[i].UpdatedAt = now
		}
	}
}
