package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/metrics"
	"github.com/ikkim/foodgram-backend/internal/storage"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/ikkim/foodgram-backend/pkg/util"
	"gorm.io/gorm"
)

// ImageUploader stores recipe images and hands back storage keys.
type ImageUploader interface {
	Upload(ctx context.Context, dataURI string) (string, error)
	Remove(ctx context.Context, key string)
}

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID  uint
	IsAdmin bool
}

// RecipeView is a recipe annotated for a particular viewer. All flags are
// false for anonymous viewers.
type RecipeView struct {
	Recipe           *model.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// RecipeQuery selects a page of recipes. The favorited and in-cart flags
// only apply to authenticated viewers.
type RecipeQuery struct {
	TagSlugs         []string
	AuthorID         *uint
	IsFavorited      bool
	IsInShoppingCart bool
	Page             util.PageRequest
}

type RecipeService interface {
	Create(ctx context.Context, authorID uint, input RecipeInput) (*RecipeView, error)
	Update(ctx context.Context, actor Actor, recipeID uint, input RecipeInput) (*RecipeView, error)
	Delete(ctx context.Context, actor Actor, recipeID uint) error
	Get(viewerID *uint, recipeID uint) (*RecipeView, error)
	List(viewerID *uint, query RecipeQuery) ([]RecipeView, int64, error)
}

type recipeService struct {
	db             *gorm.DB
	recipeRepo     repository.RecipeRepository
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
	favoriteRepo   repository.FavoriteRepository
	cartRepo       repository.ShoppingCartRepository
	followRepo     repository.FollowRepository
	images         ImageUploader
}

func NewRecipeService(
	db *gorm.DB,
	recipeRepo repository.RecipeRepository,
	tagRepo repository.TagRepository,
	ingredientRepo repository.IngredientRepository,
	favoriteRepo repository.FavoriteRepository,
	cartRepo repository.ShoppingCartRepository,
	followRepo repository.FollowRepository,
	images ImageUploader,
) RecipeService {
	return &recipeService{
		db:             db,
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		favoriteRepo:   favoriteRepo,
		cartRepo:       cartRepo,
		followRepo:     followRepo,
		images:         images,
	}
}

// validate runs the full write validation: payload shape, then tag
// existence, then ingredient existence. Nothing is written.
func (s *recipeService) validate(input RecipeInput, requireImage bool) error {
	if err := ValidateRecipeInput(input, requireImage); err != nil {
		return err
	}

	tags, err := s.tagRepo.FindByIDs(input.Tags)
	if err != nil {
		return err
	}
	if len(tags) != len(input.Tags) {
		found := make(map[uint]bool, len(tags))
		for _, tag := range tags {
			found[tag.ID] = true
		}
		for _, id := range input.Tags {
			if !found[id] {
				return newValidationError("tags", fmt.Sprintf("Tag %d does not exist.", id))
			}
		}
	}

	ids := make([]uint, 0, len(input.Ingredients))
	for _, line := range input.Ingredients {
		ids = append(ids, line.ID)
	}
	existing, err := s.ingredientRepo.ExistingIDs(ids)
	if err != nil {
		return err
	}
	if len(existing) != len(ids) {
		found := make(map[uint]bool, len(existing))
		for _, id := range existing {
			found[id] = true
		}
		for _, id := range ids {
			if !found[id] {
				return fmt.Errorf("%w: id %d", ErrIngredientNotFound, id)
			}
		}
	}
	return nil
}

func lineItems(input RecipeInput) []model.RecipeIngredient {
	items := make([]model.RecipeIngredient, 0, len(input.Ingredients))
	for _, line := range input.Ingredients {
		items = append(items, model.RecipeIngredient{IngredientID: line.ID, Quantity: line.Quantity})
	}
	return items
}

// writeRecipe persists the recipe row, its tag set and its line items in one
// transaction. create selects insert versus update of the recipe row.
func (s *recipeService) writeRecipe(recipe *model.Recipe, input RecipeInput, create bool) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	repo := s.recipeRepo.WithTx(tx)

	var err error
	if create {
		err = repo.Create(recipe)
	} else {
		err = repo.Update(recipe)
	}
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := repo.ReplaceTags(recipe.ID, input.Tags); err != nil {
		tx.Rollback()
		return err
	}

	if err := repo.ReplaceIngredients(recipe.ID, lineItems(input)); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (s *recipeService) uploadImage(ctx context.Context, dataURI string) (string, error) {
	key, err := s.images.Upload(ctx, dataURI)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return "", newValidationError("image", err.Error())
		}
		return "", err
	}
	return key, nil
}

func writeOutcome(err error) string {
	var vErr *ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &vErr), errors.Is(err, ErrIngredientNotFound):
		return "invalid"
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrRecipeNotFound):
		return "rejected"
	}
	return "error"
}

func (s *recipeService) Create(ctx context.Context, authorID uint, input RecipeInput) (view *RecipeView, err error) {
	defer func() { metrics.RecordRecipeWrite("create", writeOutcome(err)) }()

	logger.Info("Creating recipe", map[string]interface{}{
		"author_id":   authorID,
		"name":        input.Name,
		"tags":        len(input.Tags),
		"ingredients": len(input.Ingredients),
	})

	if err := s.validate(input, true); err != nil {
		logger.Warn("Recipe creation rejected", map[string]interface{}{
			"author_id": authorID,
			"error":     err.Error(),
		})
		return nil, err
	}

	imageKey, err := s.uploadImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		Image:       imageKey,
	}

	if err := s.writeRecipe(recipe, input, true); err != nil {
		logger.Error("Failed to create recipe", err, map[string]interface{}{
			"author_id": authorID,
		})
		s.images.Remove(ctx, imageKey)
		return nil, err
	}

	logger.Info("Recipe created successfully", map[string]interface{}{
		"recipe_id": recipe.ID,
		"author_id": authorID,
	})
	return s.Get(&authorID, recipe.ID)
}

func (s *recipeService) findForMutation(actor Actor, recipeID uint) (*model.Recipe, error) {
	recipe, err := s.recipeRepo.FindByID(recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != actor.UserID && !actor.IsAdmin {
		logger.Warn("Recipe mutation by non-author rejected", map[string]interface{}{
			"recipe_id": recipeID,
			"user_id":   actor.UserID,
		})
		return nil, ErrForbidden
	}
	return recipe, nil
}

func (s *recipeService) Update(ctx context.Context, actor Actor, recipeID uint, input RecipeInput) (view *RecipeView, err error) {
	defer func() { metrics.RecordRecipeWrite("update", writeOutcome(err)) }()

	logger.Info("Updating recipe", map[string]interface{}{
		"recipe_id": recipeID,
		"user_id":   actor.UserID,
	})

	recipe, err := s.findForMutation(actor, recipeID)
	if err != nil {
		return nil, err
	}

	if err := s.validate(input, false); err != nil {
		logger.Warn("Recipe update rejected", map[string]interface{}{
			"recipe_id": recipeID,
			"error":     err.Error(),
		})
		return nil, err
	}

	oldImage := recipe.Image
	newImage := ""
	if input.Image != "" {
		if newImage, err = s.uploadImage(ctx, input.Image); err != nil {
			return nil, err
		}
	}

	updated := &model.Recipe{
		ID:          recipe.ID,
		AuthorID:    recipe.AuthorID,
		Name:        input.Name,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		Image:       oldImage,
	}
	if newImage != "" {
		updated.Image = newImage
	}

	if err := s.writeRecipe(updated, input, false); err != nil {
		if newImage != "" {
			s.images.Remove(ctx, newImage)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Recipe deleted during update", map[string]interface{}{
				"recipe_id": recipeID,
			})
			return nil, ErrRecipeNotFound
		}
		logger.Error("Failed to update recipe", err, map[string]interface{}{
			"recipe_id": recipeID,
		})
		return nil, err
	}
	if newImage != "" {
		s.images.Remove(ctx, oldImage)
	}

	logger.Info("Recipe updated successfully", map[string]interface{}{
		"recipe_id": recipeID,
	})
	return s.Get(&actor.UserID, recipeID)
}

func (s *recipeService) Delete(ctx context.Context, actor Actor, recipeID uint) (err error) {
	defer func() { metrics.RecordRecipeWrite("delete", writeOutcome(err)) }()

	recipe, err := s.findForMutation(actor, recipeID)
	if err != nil {
		return err
	}

	if err := s.recipeRepo.Delete(recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		logger.Error("Failed to delete recipe", err, map[string]interface{}{
			"recipe_id": recipeID,
		})
		return err
	}
	s.images.Remove(ctx, recipe.Image)

	logger.Info("Recipe deleted", map[string]interface{}{
		"recipe_id": recipeID,
		"user_id":   actor.UserID,
	})
	return nil
}

func (s *recipeService) Get(viewerID *uint, recipeID uint) (*RecipeView, error) {
	recipe, err := s.recipeRepo.FindByID(recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	view := &RecipeView{Recipe: recipe}
	if viewerID == nil {
		return view, nil
	}

	if view.IsFavorited, err = s.favoriteRepo.Exists(*viewerID, recipe.ID); err != nil {
		return nil, err
	}
	if view.IsInShoppingCart, err = s.cartRepo.Exists(*viewerID, recipe.ID); err != nil {
		return nil, err
	}
	if view.AuthorSubscribed, err = s.followRepo.Exists(*viewerID, recipe.AuthorID); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *recipeService) List(viewerID *uint, query RecipeQuery) ([]RecipeView, int64, error) {
	filter := repository.RecipeFilter{
		TagSlugs: query.TagSlugs,
		AuthorID: query.AuthorID,
		Offset:   query.Page.Offset(),
		Limit:    query.Page.Limit,
	}
	if viewerID != nil {
		if query.IsFavorited {
			filter.FavoritedBy = viewerID
		}
		if query.IsInShoppingCart {
			filter.InCartOf = viewerID
		}
	}

	recipes, total, err := s.recipeRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.annotate(viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// annotate attaches the viewer's favorite, cart and subscription flags.
func (s *recipeService) annotate(viewerID *uint, recipes []model.Recipe) ([]RecipeView, error) {
	views := make([]RecipeView, len(recipes))
	for i := range recipes {
		views[i].Recipe = &recipes[i]
	}
	if viewerID == nil || len(recipes) == 0 {
		return views, nil
	}

	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := s.favoriteRepo.MarkedAmong(*viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	carted, err := s.cartRepo.MarkedAmong(*viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	followed, err := s.followRepo.FollowedAmong(*viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	for i := range views {
		views[i].IsFavorited = favorited[recipes[i].ID]
		views[i].IsInShoppingCart = carted[recipes[i].ID]
		views[i].AuthorSubscribed = followed[recipes[i].AuthorID]
	}
	return views, nil
}
