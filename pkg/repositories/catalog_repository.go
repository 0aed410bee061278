package repositories

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/models"
)

var (
	needStruct                = database.NewStruct(new(models.Need))
	textureStruct             = database.NewStruct(new(models.Texture))
	productAreaStruct         = database.NewStruct(new(models.ProductArea))
	timingStruct              = database.NewStruct(new(models.Timing))
	skinTypeStruct            = database.NewStruct(new(models.SkinType))
	brandStruct               = database.NewStruct(new(models.Brand))
	brandLineStruct           = database.NewStruct(new(models.BrandLine))
	routineStepStruct         = database.NewStruct(new(models.RoutineStep))
	routineTemplateStruct     = database.NewStruct(new(models.RoutineTemplate))
	templateStepStruct        = database.NewStruct(new(models.RoutineTemplateStep))
	templateStepProductStruct = database.NewStruct(new(models.RoutineTemplateStepProduct))
	stepRuleStruct            = database.NewStruct(new(models.RoutineStepRule))
)

// CatalogRepository reads the editor-maintained reference tables. It never writes.
type CatalogRepository struct {
	*Repository
}

func NewCatalogRepository(db database.DB, logger ectologger.Logger) *CatalogRepository {
	return &CatalogRepository{
		Repository: NewRepository(db, logger),
	}
}

func (r *CatalogRepository) ListNeeds(ctx context.Context) ([]models.Need, error) {
	return listAll[models.Need](ctx, r.Repository, "CatalogRepository.ListNeeds",
		models.Need{}.TableName(), needStruct, "sort_order NULLS LAST", "id")
}

func (r *CatalogRepository) ListTextures(ctx context.Context) ([]models.Texture, error) {
	return listAll[models.Texture](ctx, r.Repository, "CatalogRepository.ListTextures",
		models.Texture{}.TableName(), textureStruct, "id")
}

func (r *CatalogRepository) ListProductAreas(ctx context.Context) ([]models.ProductArea, error) {
	return listAll[models.ProductArea](ctx, r.Repository, "CatalogRepository.ListProductAreas",
		models.ProductArea{}.TableName(), productAreaStruct, "id")
}

func (r *CatalogRepository) ListTimings(ctx context.Context) ([]models.Timing, error) {
	return listAll[models.Timing](ctx, r.Repository, "CatalogRepository.ListTimings",
		models.Timing{}.TableName(), timingStruct, "id")
}

func (r *CatalogRepository) ListSkinTypes(ctx context.Context) ([]models.SkinType, error) {
	return listAll[models.SkinType](ctx, r.Repository, "CatalogRepository.ListSkinTypes",
		models.SkinType{}.TableName(), skinTypeStruct, "id")
}

func (r *CatalogRepository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return listAll[models.Brand](ctx, r.Repository, "CatalogRepository.ListBrands",
		models.Brand{}.TableName(), brandStruct, "id")
}

func (r *CatalogRepository) ListBrandLines(ctx context.Context) ([]models.BrandLine, error) {
	return listAll[models.BrandLine](ctx, r.Repository, "CatalogRepository.ListBrandLines",
		models.BrandLine{}.TableName(), brandLineStruct, "id")
}

func (r *CatalogRepository) ListRoutineSteps(ctx context.Context) ([]models.RoutineStep, error) {
	return listAll[models.RoutineStep](ctx, r.Repository, "CatalogRepository.ListRoutineSteps",
		models.RoutineStep{}.TableName(), routineStepStruct, "default_order NULLS LAST", "id")
}

func (r *CatalogRepository) ListRoutineTemplates(ctx context.Context) ([]models.RoutineTemplate, error) {
	return listAll[models.RoutineTemplate](ctx, r.Repository, "CatalogRepository.ListRoutineTemplates",
		models.RoutineTemplate{}.TableName(), routineTemplateStruct, "id")
}

// ListRoutineTemplateSteps keeps insertion order so equal step orders stay stable downstream
func (r *CatalogRepository) ListRoutineTemplateSteps(ctx context.Context) ([]models.RoutineTemplateStep, error) {
	return listAll[models.RoutineTemplateStep](ctx, r.Repository, "CatalogRepository.ListRoutineTemplateSteps",
		models.RoutineTemplateStep{}.TableName(), templateStepStruct, "created_at", "id")
}

func (r *CatalogRepository) ListRoutineTemplateStepProducts(ctx context.Context) ([]models.RoutineTemplateStepProduct, error) {
	return listAll[models.RoutineTemplateStepProduct](ctx, r.Repository, "CatalogRepository.ListRoutineTemplateStepProducts",
		models.RoutineTemplateStepProduct{}.TableName(), templateStepProductStruct, "created_at", "id")
}

func (r *CatalogRepository) ListRoutineStepRules(ctx context.Context) ([]models.RoutineStepRule, error) {
	return listAll[models.RoutineStepRule](ctx, r.Repository, "CatalogRepository.ListRoutineStepRules",
		models.RoutineStepRule{}.TableName(), stepRuleStruct, "id")
}
