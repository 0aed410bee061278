// Package routine projects routine templates, their steps, and ranked step products into view models.
package routine

import (
	"sort"

	"github.com/Gobusters/ectolinq"
	"github.com/Ramsey-B/peony/pkg/catalog"
	"github.com/Ramsey-B/peony/pkg/models"
)

type StepView struct {
	ID       string                `json:"id"`
	Label    string                `json:"label"`
	Slug     string                `json:"slug,omitempty"`
	Required bool                  `json:"required"`
	Order    int                   `json:"order"`
	Products []catalog.ProductCard `json:"products"`
}

type TemplateView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Need        catalog.Ref  `json:"need"`
	Timing      catalog.Ref  `json:"timing"`
	ProductArea *catalog.Ref `json:"productArea,omitempty"`
	Brand       *catalog.Ref `json:"brand,omitempty"`
	MultiBrand  bool         `json:"multiBrand"`
	Steps       []StepView   `json:"steps"`
}

type rankedProduct struct {
	productID string
	rank      int
}

func stepKey(templateID, stepID string) string {
	return templateID + ":" + stepID
}

// Project denormalizes every template. Templates are never dropped: unknown taxonomy ids are
// labelled with the id itself and a template without step rows gets an empty step list.
// Candidate products missing from cards are skipped.
func Project(
	templates []models.RoutineTemplate,
	steps []models.RoutineTemplateStep,
	stepProducts []models.RoutineTemplateStepProduct,
	idx *catalog.Indexes,
	cards catalog.CardIndex,
	locale string,
) []TemplateView {
	productsByStep := groupStepProducts(stepProducts)

	stepsByTemplate := make(map[string][]models.RoutineTemplateStep)
	for _, s := range steps {
		templateID, ok := s.Template.ResolveID()
		if !ok {
			continue
		}
		stepsByTemplate[templateID] = append(stepsByTemplate[templateID], s)
	}

	views := make([]TemplateView, 0, len(templates))
	for _, t := range templates {
		view := TemplateView{
			ID:          t.ID,
			Name:        t.Name.String(locale),
			Description: t.Description.String(locale),
			Need:        idx.Needs.Resolve(t.Need),
			Timing:      idx.Timings.Resolve(t.Timing),
			ProductArea: idx.ProductAreas.ResolveOptional(t.ProductArea),
			Brand:       idx.Brands.ResolveOptional(t.Brand),
			MultiBrand:  t.MultiBrand,
			Steps:       make([]StepView, 0, len(stepsByTemplate[t.ID])),
		}

		for _, s := range stepsByTemplate[t.ID] {
			stepID := s.Step.IDOrEmpty()
			ref := idx.RoutineSteps.LabelOr(stepID)
			step := StepView{
				ID:       stepID,
				Label:    ref.Label,
				Slug:     ref.Slug,
				Required: s.Required,
				Order:    intOrZero(s.StepOrder),
				Products: []catalog.ProductCard{},
			}
			for _, rp := range productsByStep[stepKey(t.ID, stepID)] {
				if card, ok := cards[rp.productID]; ok {
					step.Products = append(step.Products, card)
				}
			}
			view.Steps = append(view.Steps, step)
		}

		sort.SliceStable(view.Steps, func(i, j int) bool {
			return view.Steps[i].Order < view.Steps[j].Order
		})
		views = append(views, view)
	}

	return views
}

// groupStepProducts groups rows by template and step, each group ascending by rank with
// ties kept in input order.
func groupStepProducts(rows []models.RoutineTemplateStepProduct) map[string][]rankedProduct {
	groups := make(map[string][]rankedProduct)
	for _, row := range rows {
		productID, ok := row.Product.ResolveID()
		if !ok {
			continue
		}
		key := stepKey(row.Template.IDOrEmpty(), row.Step.IDOrEmpty())
		groups[key] = append(groups[key], rankedProduct{productID: productID, rank: intOrZero(row.Rank)})
	}

	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].rank < group[j].rank
		})
	}
	return groups
}

// RuleView is a step rule flattened to ids. Referenced ids are not checked.
type RuleView struct {
	ID            string          `json:"id"`
	RoutineStepID string          `json:"routineStepId"`
	TimingID      string          `json:"timingId,omitempty"`
	SkinTypeID    string          `json:"skinTypeId,omitempty"`
	RuleType      models.RuleType `json:"ruleType"`
}

func ProjectRules(rules []models.RoutineStepRule) []RuleView {
	return ectolinq.Map(rules, func(r models.RoutineStepRule) RuleView {
		return RuleView{
			ID:            r.ID,
			RoutineStepID: r.RoutineStep.IDOrEmpty(),
			TimingID:      r.Timing.IDOrEmpty(),
			SkinTypeID:    r.SkinType.IDOrEmpty(),
			RuleType:      r.RuleType,
		}
	})
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
