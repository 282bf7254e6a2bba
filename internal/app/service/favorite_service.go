package service

import (
	"errors"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

type FavoriteService interface {
	// Add favorites a recipe and returns it. Favoriting twice fails with
	// ErrAlreadyFavorited.
	Add(userID, recipeID uint) (*model.Recipe, error)
	// Remove fails with ErrNotFavorited when there is nothing to remove.
	Remove(userID, recipeID uint) error
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	recipeRepo   repository.RecipeRepository
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, recipeRepo repository.RecipeRepository) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		recipeRepo:   recipeRepo,
	}
}

// findRecipe loads a recipe for the toggle endpoints.
func findRecipe(recipeRepo repository.RecipeRepository, recipeID uint) (*model.Recipe, error) {
	recipe, err := recipeRepo.FindByID(recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *favoriteService) Add(userID, recipeID uint) (*model.Recipe, error) {
	recipe, err := findRecipe(s.recipeRepo, recipeID)
	if err != nil {
		return nil, err
	}

	if _, err := s.favoriteRepo.Create(userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Warn("Recipe already in favorites", map[string]interface{}{
				"user_id":   userID,
				"recipe_id": recipeID,
			})
			return nil, ErrAlreadyFavorited
		}
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	logger.Info("Recipe added to favorites", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return recipe, nil
}

func (s *favoriteService) Remove(userID, recipeID uint) error {
	exists, err := s.recipeRepo.Exists(recipeID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRecipeNotFound
	}

	if err := s.favoriteRepo.Delete(userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFavorited
		}
		logger.Error("Failed to remove favorite", err, map[string]interface{}{
			"user_id":   userID,
			"recipe_id": recipeID,
		})
		return err
	}

	logger.Info("Recipe removed from favorites", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return nil
}
