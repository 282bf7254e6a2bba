package repository

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

// RecipeFilter narrows a recipe listing. Nil pointers and empty slices mean
// "no restriction".
type RecipeFilter struct {
	TagSlugs    []string // OR semantics
	AuthorID    *uint
	FavoritedBy *uint
	InCartOf    *uint
	Offset      int
	Limit       int
}

type RecipeRepository interface {
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *gorm.DB) RecipeRepository

	Create(recipe *model.Recipe) error
	Update(recipe *model.Recipe) error
	Delete(id uint) error
	FindByID(id uint) (*model.Recipe, error)
	Exists(id uint) (bool, error)
	List(filter RecipeFilter) ([]model.Recipe, int64, error)
	// FindByAuthor returns the newest recipes of an author, at most limit
	// of them (limit <= 0 means all).
	FindByAuthor(authorID uint, limit int) ([]model.Recipe, error)
	CountByAuthors(authorIDs []uint) (map[uint]int64, error)

	// ReplaceTags deletes the recipe's tag links and inserts tagIDs.
	ReplaceTags(recipeID uint, tagIDs []uint) error
	// ReplaceIngredients deletes the recipe's line items and bulk inserts
	// items.
	ReplaceIngredients(recipeID uint, items []model.RecipeIngredient) error
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) WithTx(tx *gorm.DB) RecipeRepository {
	return &recipeRepository{db: tx}
}

func (r *recipeRepository) Create(recipe *model.Recipe) error {
	logger.Debug("Creating recipe in database", map[string]interface{}{
		"author_id": recipe.AuthorID,
		"name":      recipe.Name,
	})

	if err := r.db.Omit("Author", "RecipeTags", "Ingredients").Create(recipe).Error; err != nil {
		logger.Error("Failed to create recipe in database", err, map[string]interface{}{
			"author_id": recipe.AuthorID,
		})
		return err
	}

	logger.Debug("Recipe created in database", map[string]interface{}{
		"recipe_id": recipe.ID,
	})
	return nil
}

func (r *recipeRepository) Update(recipe *model.Recipe) error {
	logger.Debug("Updating recipe in database", map[string]interface{}{
		"recipe_id": recipe.ID,
	})

	result := r.db.Model(&model.Recipe{ID: recipe.ID}).
		Select("name", "text", "cooking_time", "image", "updated_at").
		Updates(recipe)
	if err := affectedOrNotFound(result); err != nil {
		logger.Error("Failed to update recipe in database", err, map[string]interface{}{
			"recipe_id": recipe.ID,
		})
		return err
	}
	return nil
}

func (r *recipeRepository) Delete(id uint) error {
	logger.Debug("Deleting recipe from database", map[string]interface{}{
		"recipe_id": id,
	})

	if err := affectedOrNotFound(r.db.Delete(&model.Recipe{}, id)); err != nil {
		logger.Error("Failed to delete recipe from database", err, map[string]interface{}{
			"recipe_id": id,
		})
		return err
	}

	logger.Debug("Recipe deleted from database", map[string]interface{}{
		"recipe_id": id,
	})
	return nil
}

func (r *recipeRepository) preloaded() *gorm.DB {
	return r.db.
		Preload("Author").
		Preload("RecipeTags", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_tags.tag_id ASC")
		}).
		Preload("RecipeTags.Tag").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id ASC")
		}).
		Preload("Ingredients.Ingredient")
}

func (r *recipeRepository) FindByID(id uint) (*model.Recipe, error) {
	logger.Debug("Finding recipe by ID in database", map[string]interface{}{
		"recipe_id": id,
	})

	var recipe model.Recipe
	if err := r.preloaded().First(&recipe, id).Error; err != nil {
		logger.Debug("Recipe not found in database", map[string]interface{}{
			"recipe_id": id,
			"error":     err.Error(),
		})
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) filtered(filter RecipeFilter) *gorm.DB {
	query := r.db.Model(&model.Recipe{})

	if len(filter.TagSlugs) > 0 {
		tagged := r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if filter.FavoritedBy != nil {
		favorited := r.db.Model(&model.Favorite{}).Select("recipe_id").Where("user_id = ?", *filter.FavoritedBy)
		query = query.Where("recipes.id IN (?)", favorited)
	}
	if filter.InCartOf != nil {
		carted := r.db.Model(&model.ShoppingCartItem{}).Select("recipe_id").Where("user_id = ?", *filter.InCartOf)
		query = query.Where("recipes.id IN (?)", carted)
	}
	return query
}

// List returns one page of recipes matching filter, newest first, together
// with the total number of matches.
func (r *recipeRepository) List(filter RecipeFilter) ([]model.Recipe, int64, error) {
	logger.Debug("Listing recipes in database", map[string]interface{}{
		"tags":   filter.TagSlugs,
		"offset": filter.Offset,
		"limit":  filter.Limit,
	})

	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		logger.Error("Failed to count recipes in database", err)
		return nil, 0, err
	}

	var ids []uint
	err := r.filtered(filter).
		Order("recipes.id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Pluck("recipes.id", &ids).Error
	if err != nil {
		logger.Error("Failed to list recipe IDs in database", err)
		return nil, 0, err
	}

	recipes := []model.Recipe{}
	if len(ids) > 0 {
		if err := r.preloaded().Where("id IN ?", ids).Order("id DESC").Find(&recipes).Error; err != nil {
			logger.Error("Failed to load recipes in database", err)
			return nil, 0, err
		}
	}

	logger.Debug("Recipes listed in database", map[string]interface{}{
		"count": len(recipes),
		"total": total,
	})
	return recipes, total, nil
}

func (r *recipeRepository) FindByAuthor(authorID uint, limit int) ([]model.Recipe, error) {
	query := r.db.Where("author_id = ?", authorID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	recipes := []model.Recipe{}
	if err := query.Find(&recipes).Error; err != nil {
		logger.Error("Failed to find recipes by author in database", err, map[string]interface{}{
			"author_id": authorID,
		})
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) CountByAuthors(authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := r.db.Model(&model.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to count recipes by author in database", err)
		return nil, err
	}

	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}

func (r *recipeRepository) ReplaceTags(recipeID uint, tagIDs []uint) error {
	logger.Debug("Replacing recipe tags in database", map[string]interface{}{
		"recipe_id": recipeID,
		"tag_ids":   tagIDs,
	})

	if err := r.db.Where("recipe_id = ?", recipeID).Delete(&model.RecipeTag{}).Error; err != nil {
		logger.Error("Failed to clear recipe tags in database", err, map[string]interface{}{
			"recipe_id": recipeID,
		})
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]model.RecipeTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, model.RecipeTag{RecipeID: recipeID, TagID: tagID})
	}
	if err := r.db.Omit("Tag").Create(&links).Error; err != nil {
		logger.Error("Failed to create recipe tags in database", err, map[string]interface{}{
			"recipe_id": recipeID,
		})
		return translateError(err)
	}
	return nil
}

func (r *recipeRepository) ReplaceIngredients(recipeID uint, items []model.RecipeIngredient) error {
	logger.Debug("Replacing recipe ingredients in database", map[string]interface{}{
		"recipe_id": recipeID,
		"count":     len(items),
	})

	if err := r.db.Where("recipe_id = ?", recipeID).Delete(&model.RecipeIngredient{}).Error; err != nil {
		logger.Error("Failed to clear recipe ingredients in database", err, map[string]interface{}{
			"recipe_id": recipeID,
		})
		return err
	}
	if len(items) == 0 {
		return nil
	}

	rows := make([]model.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rows = append(rows, model.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
		})
	}
	if err := r.db.Omit("Ingredient").Create(&rows).Error; err != nil {
		logger.Error("Failed to create recipe ingredients in database", err, map[string]interface{}{
			"recipe_id": recipeID,
		})
		return translateError(err)
	}
	return nil
}
