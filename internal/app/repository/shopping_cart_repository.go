package repository

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

type ShoppingCartRepository interface {
	// Create returns ErrDuplicate when the recipe is already in the cart.
	Create(userID, recipeID uint) (*model.ShoppingCartItem, error)
	// Delete returns gorm.ErrRecordNotFound when the recipe is not in the cart.
	Delete(userID, recipeID uint) error
	Exists(userID, recipeID uint) (bool, error)
	MarkedAmong(userID uint, recipeIDs []uint) (map[uint]bool, error)
	// AggregateIngredients sums the quantities of every line item of every
	// carted recipe, grouped by ingredient name and unit, ordered by name.
	AggregateIngredients(userID uint) ([]model.ShoppingListLine, error)
}

type shoppingCartRepository struct {
	db *gorm.DB
}

func NewShoppingCartRepository(db *gorm.DB) ShoppingCartRepository {
	return &shoppingCartRepository{db: db}
}

func (r *shoppingCartRepository) Create(userID, recipeID uint) (*model.ShoppingCartItem, error) {
	logger.Debug("Adding recipe to shopping cart in database", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})

	item := &model.ShoppingCartItem{UserID: userID, RecipeID: recipeID}
	if err := r.db.Omit("User", "Recipe").Create(item).Error; err != nil {
		err = translateError(err)
		if err != ErrDuplicate {
			logger.Error("Failed to add recipe to shopping cart in database", err, map[string]interface{}{
				"user_id":   userID,
				"recipe_id": recipeID,
			})
		}
		return nil, err
	}

	logger.Debug("Recipe added to shopping cart in database", map[string]interface{}{
		"cart_item_id": item.ID,
	})
	return item, nil
}

func (r *shoppingCartRepository) Delete(userID, recipeID uint) error {
	logger.Debug("Removing recipe from shopping cart in database", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})

	result := r.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&model.ShoppingCartItem{})
	return affectedOrNotFound(result)
}

func (r *shoppingCartRepository) Exists(userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.ShoppingCartItem{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check shopping cart in database", err, map[string]interface{}{
			"user_id":   userID,
			"recipe_id": recipeID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *shoppingCartRepository) MarkedAmong(userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return markedAmong(r.db.Model(&model.ShoppingCartItem{}), userID, recipeIDs)
}

func (r *shoppingCartRepository) AggregateIngredients(userID uint) ([]model.ShoppingListLine, error) {
	logger.Debug("Aggregating shopping cart ingredients in database", map[string]interface{}{
		"user_id": userID,
	})

	lines := []model.ShoppingListLine{}
	err := r.db.Table("shopping_cart_items").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.quantity) AS total").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_cart_items.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&lines).Error
	if err != nil {
		logger.Error("Failed to aggregate shopping cart ingredients in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Shopping cart ingredients aggregated in database", map[string]interface{}{
		"user_id": userID,
		"lines":   len(lines),
	})
	return lines, nil
}
