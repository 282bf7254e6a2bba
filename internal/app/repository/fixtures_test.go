package repository

import (
	"fmt"
	"testing"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, conn *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hashedpassword",
		Role:         model.RoleUser,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func createTag(t *testing.T, conn *gorm.DB, name, color string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Name: name, Color: color, Slug: name}
	require.NoError(t, conn.Create(tag).Error)
	return tag
}

func createIngredient(t *testing.T, conn *gorm.DB, name, unit string) *model.Ingredient {
	t.Helper()
	ingredient := &model.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, conn.Create(ingredient).Error)
	return ingredient
}

func createRecipe(t *testing.T, conn *gorm.DB, authorID uint, name string, tagIDs []uint, items []model.RecipeIngredient) *model.Recipe {
	t.Helper()
	repo := NewRecipeRepository(conn)
	recipe := &model.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Text:        "Mix and cook",
		CookingTime: 15,
		Image:       "recipes/test.jpg",
	}
	require.NoError(t, repo.Create(recipe))
	require.NoError(t, repo.ReplaceTags(recipe.ID, tagIDs))
	require.NoError(t, repo.ReplaceIngredients(recipe.ID, items))
	return recipe
}
