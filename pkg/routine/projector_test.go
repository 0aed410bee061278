package routine

import (
	"testing"

	"github.com/Ramsey-B/peony/pkg/catalog"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/Ramsey-B/peony/pkg/relation"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func fixtureIndexes(t *testing.T) (*catalog.Indexes, catalog.CardIndex) {
	t.Helper()

	c := catalog.Collections{
		Needs:        []models.Need{{ID: "need-dry", Label: relation.Localized("it", "Pelle secca", "en", "Dry skin")}},
		Timings:      []models.Timing{{ID: "am", Label: relation.Localized("it", "Mattina", "en", "Morning"), Slug: strPtr("mattina")}},
		ProductAreas: []models.ProductArea{{ID: "face", Label: relation.Plain("Viso"), Slug: strPtr("viso")}},
		Brands:       []models.Brand{{ID: "b1", Label: relation.Plain("Skin Lab"), Slug: strPtr("skin-lab")}},
		RoutineSteps: []models.RoutineStep{
			{ID: "cleanse", Label: relation.Localized("it", "Detersione", "en", "Cleanse"), Slug: strPtr("detersione")},
			{ID: "tone", Label: relation.Localized("it", "Tonico", "en", "Tone"), Slug: strPtr("tonico")},
			{ID: "moisturize", Label: relation.Localized("it", "Idratazione", "en", "Moisturize")},
		},
		Products: []models.Product{
			{ID: "p1", Title: relation.Plain("Gel"), Slug: "gel"},
			{ID: "p2", Title: relation.Plain("Milk"), Slug: "milk"},
			{ID: "p3", Title: relation.Plain("Toner"), Slug: "toner"},
			{ID: "p4", Title: relation.Plain("Foam"), Slug: "foam"},
		},
	}
	idx := catalog.BuildIndexes(c, "en")
	_, cards := catalog.BuildProductCards(c.Products, idx, "en")
	return idx, cards
}

func productIDs(cards []catalog.ProductCard) []string {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestProject_OrdersStepsAndProducts(t *testing.T) {
	idx, cards := fixtureIndexes(t)

	templates := []models.RoutineTemplate{{
		ID:          "t1",
		Name:        relation.Localized("it", "Routine mattina", "en", "Morning routine"),
		Need:        relation.FromID("need-dry"),
		Timing:      relation.FromObject(map[string]any{"id": "am", "label": "ignored"}),
		ProductArea: relation.FromID("face"),
		Brand:       relation.FromID("b1"),
	}}
	steps := []models.RoutineTemplateStep{
		{ID: "ts3", Template: relation.FromID("t1"), Step: relation.FromID("moisturize"), StepOrder: intPtr(3)},
		{ID: "ts1", Template: relation.FromID("t1"), Step: relation.FromID("cleanse"), Required: true, StepOrder: intPtr(1)},
		{ID: "ts2", Template: relation.FromID("t1"), Step: relation.FromID("tone"), StepOrder: intPtr(2)},
		{ID: "other", Template: relation.FromID("t2"), Step: relation.FromID("tone"), StepOrder: intPtr(1)},
	}
	stepProducts := []models.RoutineTemplateStepProduct{
		{ID: "sp1", Template: relation.FromID("t1"), Step: relation.FromID("cleanse"), Product: relation.FromID("p2"), Rank: intPtr(2)},
		{ID: "sp2", Template: relation.FromID("t1"), Step: relation.FromID("cleanse"), Product: relation.FromID("p1"), Rank: intPtr(1)},
		{ID: "sp3", Template: relation.FromID("t1"), Step: relation.FromID("cleanse"), Product: relation.FromID("p4")},
		{ID: "sp4", Template: relation.FromID("t1"), Step: relation.FromID("tone"), Product: relation.FromID("p3"), Rank: intPtr(1)},
		{ID: "sp5", Template: relation.FromID("t1"), Step: relation.FromID("tone"), Product: relation.FromID("unknown"), Rank: intPtr(0)},
		{ID: "sp6", Template: relation.FromID("t2"), Step: relation.FromID("cleanse"), Product: relation.FromID("p3")},
	}

	views := Project(templates, steps, stepProducts, idx, cards, "en")
	require.Len(t, views, 1)
	view := views[0]

	assert.Equal(t, "Morning routine", view.Name)
	assert.Equal(t, catalog.Ref{ID: "need-dry", Label: "Dry skin"}, view.Need)
	assert.Equal(t, catalog.Ref{ID: "am", Label: "Morning", Slug: "mattina"}, view.Timing)
	assert.Equal(t, &catalog.Ref{ID: "face", Label: "Viso", Slug: "viso"}, view.ProductArea)
	assert.Equal(t, &catalog.Ref{ID: "b1", Label: "Skin Lab", Slug: "skin-lab"}, view.Brand)

	require.Len(t, view.Steps, 3)
	for i := 1; i < len(view.Steps); i++ {
		assert.LessOrEqual(t, view.Steps[i-1].Order, view.Steps[i].Order)
	}
	assert.Equal(t, "cleanse", view.Steps[0].ID)
	assert.Equal(t, "Cleanse", view.Steps[0].Label)
	assert.Equal(t, "detersione", view.Steps[0].Slug)
	assert.True(t, view.Steps[0].Required)

	// rank ascending, absent rank counts as 0
	if diff := cmp.Diff([]string{"p4", "p1", "p2"}, productIDs(view.Steps[0].Products)); diff != "" {
		t.Errorf("cleanse products mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"p3"}, productIDs(view.Steps[1].Products))
	assert.Empty(t, view.Steps[2].Products)
	assert.NotNil(t, view.Steps[2].Products)
}

func TestProject_RankTiesKeepInputOrder(t *testing.T) {
	idx, cards := fixtureIndexes(t)

	templates := []models.RoutineTemplate{{ID: "t1", Need: relation.FromID("need-dry"), Timing: relation.FromID("am")}}
	steps := []models.RoutineTemplateStep{{ID: "ts1", Template: relation.FromID("t1"), Step: relation.FromID("cleanse")}}
	stepProducts := []models.RoutineTemplateStepProduct{
		{Template: relation.FromID("t1"), Step: relation.FromID("cleanse"), Product: relation.FromID("p3"), Rank: intPtr(5)},
		{Template: relation.FromID("t1"), Step: relation.FromID("cleanse"), Product: relation.FromID("p1"), Rank: intPtr(1)},
		{Template: relation.FromID("t1"), Step: relation.FromID("cleanse"), Product: relation.FromID("p2"), Rank: intPtr(1)},
		{Template: relation.FromID("t1"), Step: relation.FromID("cleanse"), Product: relation.FromID("p4"), Rank: intPtr(5)},
	}

	views := Project(templates, steps, stepProducts, idx, cards, "en")
	require.Len(t, views, 1)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, productIDs(views[0].Steps[0].Products))
}

func TestProject_StepOrderDefaultsAndStability(t *testing.T) {
	idx, cards := fixtureIndexes(t)

	templates := []models.RoutineTemplate{{ID: "t1"}}
	steps := []models.RoutineTemplateStep{
		{Template: relation.FromID("t1"), Step: relation.FromID("tone"), StepOrder: intPtr(1)},
		{Template: relation.FromID("t1"), Step: relation.FromID("moisturize")},
		{Template: relation.FromObject(map[string]any{"id": "t1"}), Step: relation.FromID("cleanse")},
	}

	views := Project(templates, steps, nil, idx, cards, "en")
	require.Len(t, views, 1)

	got := make([]string, 0, 3)
	for _, s := range views[0].Steps {
		got = append(got, s.ID)
	}
	assert.Equal(t, []string{"moisturize", "cleanse", "tone"}, got)
}

func TestProject_DegradesUnknownReferences(t *testing.T) {
	idx, cards := fixtureIndexes(t)

	templates := []models.RoutineTemplate{
		{ID: "t1", Need: relation.FromID("need-gone"), Timing: relation.FromID("am")},
		{ID: "t2"},
	}
	steps := []models.RoutineTemplateStep{
		{Template: relation.FromID("t1"), Step: relation.FromID("step-gone")},
	}

	views := Project(templates, steps, nil, idx, cards, "en")
	require.Len(t, views, 2)

	assert.Equal(t, catalog.Ref{ID: "need-gone", Label: "need-gone"}, views[0].Need)
	assert.Equal(t, "step-gone", views[0].Steps[0].Label)

	// missing need and timing degrade to an empty id labelled with itself
	assert.Equal(t, catalog.Ref{}, views[1].Need)
	assert.Equal(t, catalog.Ref{}, views[1].Timing)
	assert.Nil(t, views[1].ProductArea)
	assert.Nil(t, views[1].Brand)
}

func TestProject_TemplateWithoutStepsIsKept(t *testing.T) {
	idx, cards := fixtureIndexes(t)

	templates := []models.RoutineTemplate{
		{ID: "t1", Need: relation.FromID("need-dry"), Timing: relation.FromID("am")},
		{ID: "empty", Need: relation.FromID("need-dry"), Timing: relation.FromID("am")},
	}
	steps := []models.RoutineTemplateStep{
		{Template: relation.FromID("t1"), Step: relation.FromID("cleanse")},
	}

	views := Project(templates, steps, nil, idx, cards, "en")
	require.Len(t, views, 2)
	assert.Equal(t, "empty", views[1].ID)
	assert.NotNil(t, views[1].Steps)
	assert.Empty(t, views[1].Steps)
}

func TestProjectRules(t *testing.T) {
	rules := []models.RoutineStepRule{
		{ID: "r1", RoutineStep: relation.FromID("cleanse"), Timing: relation.FromID("am"), RuleType: models.RuleRequire},
		{ID: "r2", RoutineStep: relation.FromObject(map[string]any{"id": "tone"}), SkinType: relation.FromID("oily"), RuleType: models.RuleForbid},
		{ID: "r3", RoutineStep: relation.FromID("ghost-step"), RuleType: models.RuleWarn},
	}

	want := []RuleView{
		{ID: "r1", RoutineStepID: "cleanse", TimingID: "am", RuleType: models.RuleRequire},
		{ID: "r2", RoutineStepID: "tone", SkinTypeID: "oily", RuleType: models.RuleForbid},
		{ID: "r3", RoutineStepID: "ghost-step", RuleType: models.RuleWarn},
	}
	if diff := cmp.Diff(want, ProjectRules(rules)); diff != "" {
		t.Errorf("ProjectRules mismatch (-want +got):\n%s", diff)
	}
}
