package repository

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	// Create returns ErrDuplicate when the pair already exists.
	Create(userID, recipeID uint) (*model.Favorite, error)
	// Delete returns gorm.ErrRecordNotFound when the pair does not exist.
	Delete(userID, recipeID uint) error
	Exists(userID, recipeID uint) (bool, error)
	// MarkedAmong returns which of recipeIDs the user has favorited.
	MarkedAmong(userID uint, recipeIDs []uint) (map[uint]bool, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(userID, recipeID uint) (*model.Favorite, error) {
	logger.Debug("Adding favorite in database", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})

	favorite := &model.Favorite{UserID: userID, RecipeID: recipeID}
	if err := r.db.Omit("User", "Recipe").Create(favorite).Error; err != nil {
		err = translateError(err)
		if err != ErrDuplicate {
			logger.Error("Failed to add favorite in database", err, map[string]interface{}{
				"user_id":   userID,
				"recipe_id": recipeID,
			})
		}
		return nil, err
	}

	logger.Debug("Favorite added in database", map[string]interface{}{
		"favorite_id": favorite.ID,
	})
	return favorite, nil
}

func (r *favoriteRepository) Delete(userID, recipeID uint) error {
	logger.Debug("Removing favorite from database", map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})

	result := r.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&model.Favorite{})
	return affectedOrNotFound(result)
}

func (r *favoriteRepository) Exists(userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check favorite in database", err, map[string]interface{}{
			"user_id":   userID,
			"recipe_id": recipeID,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *favoriteRepository) MarkedAmong(userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return markedAmong(r.db.Model(&model.Favorite{}), userID, recipeIDs)
}

// markedAmong plucks recipe_id from a (user_id, recipe_id) join table.
func markedAmong(table *gorm.DB, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	marked := make(map[uint]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return marked, nil
	}

	var ids []uint
	if err := table.Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).Pluck("recipe_id", &ids).Error; err != nil {
		logger.Error("Failed to look up marked recipes in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	for _, id := range ids {
		marked[id] = true
	}
	return marked, nil
}
