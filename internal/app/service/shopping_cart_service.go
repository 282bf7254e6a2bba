package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/metrics"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

// ShoppingListHeader is the first line of every exported shopping list.
const ShoppingListHeader = "Shopping list:"

type ShoppingCartService interface {
	// Add puts a recipe in the cart and returns it. Adding twice fails with
	// ErrAlreadyInCart.
	Add(userID, recipeID uint) (*model.Recipe, error)
	// Remove fails with ErrNotInCart when the recipe is not in the cart.
	Remove(userID, recipeID uint) error
	// ShoppingList renders the summed ingredients of every carted recipe.
	ShoppingList(userID uint) (string, error)
}

type shoppingCartService struct {
	cartRepo   repository.ShoppingCartRepository
	recipeRepo repository.RecipeRepository
}

func NewShoppingCartService(cartRepo repository.ShoppingCartRepository, recipeRepo repository.RecipeRepository) ShoppingCartService {
	return &shoppingCartService{
		cartRepo:   cartRepo,
		recipeRepo: recipeRepo,
	}
}

func (s *shoppingCartService) Add(userID, recipeID uint) (*model.Recipe, error) {
	recipe, err := findRecipe(s.recipeRepo, recipeID)
	if err != nil {
		return nil, err
	}

	if _, err := s.cartRepo.Create(userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Warn("Recipe already in shopping cart", map[string]interface{}{
				"user_id":   userID,
				"recipe_id": recipeID,
			})
			return nil, ErrAlreadyInCart
		}
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	logger.Info("Recipe added to shopping cart", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return recipe, nil
}

func (s *shoppingCartService) Remove(userID, recipeID uint) error {
	exists, err := s.recipeRepo.Exists(recipeID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRecipeNotFound
	}

	if err := s.cartRepo.Delete(userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotInCart
		}
		logger.Error("Failed to remove recipe from shopping cart", err, map[string]interface{}{
			"user_id":   userID,
			"recipe_id": recipeID,
		})
		return err
	}

	logger.Info("Recipe removed from shopping cart", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
	return nil
}

func (s *shoppingCartService) ShoppingList(userID uint) (string, error) {
	lines, err := s.cartRepo.AggregateIngredients(userID)
	if err != nil {
		logger.Error("Failed to build shopping list", err, map[string]interface{}{
			"user_id": userID,
		})
		return "", err
	}

	metrics.ShoppingListDownloads.Inc()
	logger.Info("Shopping list built", map[string]interface{}{
		"user_id": userID,
		"lines":   len(lines),
	})
	return RenderShoppingList(lines), nil
}

// RenderShoppingList formats aggregated lines as "<name> - <total> <unit>"
// under ShoppingListHeader, one per line, in the given order.
func RenderShoppingList(lines []model.ShoppingListLine) string {
	var b strings.Builder
	b.WriteString(ShoppingListHeader)
	for _, line := range lines {
		fmt.Fprintf(&b, "\n%s - %d %s", line.Name, line.Total, line.MeasurementUnit)
	}
	return b.String()
}
