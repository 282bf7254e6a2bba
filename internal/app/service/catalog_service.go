package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/cache"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	tagsCacheKey           = "tags"
	ingredientsCachePrefix = "ingredients:"
)

// CatalogService serves tags and ingredients, the read-mostly reference
// data recipes are built from.
type CatalogService interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTag(id uint) (*model.Tag, error)
	ListIngredients(ctx context.Context, namePrefix string) ([]model.Ingredient, error)
	GetIngredient(id uint) (*model.Ingredient, error)

	ImportTags(ctx context.Context, tags []model.Tag) (int64, error)
	ImportIngredients(ctx context.Context, ingredients []model.Ingredient) (int64, error)
}

type catalogService struct {
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
	cache          cache.Cache
}

func NewCatalogService(
	tagRepo repository.TagRepository,
	ingredientRepo repository.IngredientRepository,
	c cache.Cache,
) CatalogService {
	if c == nil {
		c = cache.NewNoopCache()
	}
	return &catalogService{
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		cache:          c,
	}
}

func (s *catalogService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return cache.ReadThrough(ctx, s.cache, "tags", tagsCacheKey, s.tagRepo.FindAll)
}

func (s *catalogService) GetTag(id uint) (*model.Tag, error) {
	tag, err := s.tagRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}

func (s *catalogService) ListIngredients(ctx context.Context, namePrefix string) ([]model.Ingredient, error) {
	prefix := strings.ToLower(strings.TrimSpace(namePrefix))
	return cache.ReadThrough(ctx, s.cache, "ingredients", ingredientsCachePrefix+prefix, func() ([]model.Ingredient, error) {
		return s.ingredientRepo.FindAll(prefix)
	})
}

func (s *catalogService) GetIngredient(id uint) (*model.Ingredient, error) {
	ingredient, err := s.ingredientRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return ingredient, nil
}

func (s *catalogService) ImportTags(ctx context.Context, tags []model.Tag) (int64, error) {
	created, err := s.tagRepo.CreateIfMissing(tags)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, tagsCacheKey)

	logger.Info("Tags imported", map[string]interface{}{
		"submitted": len(tags),
		"created":   created,
	})
	return created, nil
}

func (s *catalogService) ImportIngredients(ctx context.Context, ingredients []model.Ingredient) (int64, error) {
	created, err := s.ingredientRepo.CreateIfMissing(ingredients)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, ingredientsCachePrefix)

	logger.Info("Ingredients imported", map[string]interface{}{
		"submitted": len(ingredients),
		"created":   created,
	})
	return created, nil
}

func (s *catalogService) invalidate(ctx context.Context, prefix string) {
	if err := s.cache.DeletePrefix(ctx, prefix); err != nil {
		logger.Warn("Failed to invalidate catalog cache", map[string]interface{}{
			"prefix": prefix,
			"error":  err.Error(),
		})
	}
}
