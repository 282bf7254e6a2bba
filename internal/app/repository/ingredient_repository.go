package repository

import (
	"strings"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ingredientBatchSize = 500

type IngredientRepository interface {
	// FindAll lists ingredients ordered by name. A non-empty prefix keeps
	// only names starting with it, ignoring case.
	FindAll(namePrefix string) ([]model.Ingredient, error)
	FindByID(id uint) (*model.Ingredient, error)
	// ExistingIDs returns the subset of ids that reference an ingredient.
	ExistingIDs(ids []uint) ([]uint, error)
	// CreateIfMissing inserts ingredients in batches, skipping any
	// (name, measurement_unit) pair already present, and reports how many
	// rows were written.
	CreateIfMissing(ingredients []model.Ingredient) (int64, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *ingredientRepository) FindAll(namePrefix string) ([]model.Ingredient, error) {
	logger.Debug("Fetching ingredients from database", map[string]interface{}{
		"name_prefix": namePrefix,
	})

	query := r.db.Model(&model.Ingredient{})
	if namePrefix != "" {
		pattern := likeEscaper.Replace(strings.ToLower(namePrefix)) + "%"
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}

	var ingredients []model.Ingredient
	if err := query.Order("name ASC").Order("measurement_unit ASC").Find(&ingredients).Error; err != nil {
		logger.Error("Failed to fetch ingredients from database", err)
		return nil, err
	}

	logger.Debug("Ingredients fetched from database", map[string]interface{}{
		"count": len(ingredients),
	})
	return ingredients, nil
}

func (r *ingredientRepository) FindByID(id uint) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := r.db.First(&ingredient, id).Error; err != nil {
		logger.Debug("Ingredient not found in database", map[string]interface{}{
			"ingredient_id": id,
		})
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) ExistingIDs(ids []uint) ([]uint, error) {
	var found []uint
	if len(ids) == 0 {
		return found, nil
	}
	if err := r.db.Model(&model.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		logger.Error("Failed to check ingredient IDs in database", err, map[string]interface{}{
			"ingredient_ids": ids,
		})
		return nil, err
	}
	return found, nil
}

func (r *ingredientRepository) CreateIfMissing(ingredients []model.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}

	logger.Debug("Creating ingredients in database", map[string]interface{}{
		"count": len(ingredients),
	})

	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&ingredients, ingredientBatchSize)
	if result.Error != nil {
		logger.Error("Failed to create ingredients in database", result.Error)
		return 0, result.Error
	}

	logger.Debug("Ingredients created in database", map[string]interface{}{
		"created": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
