package db

import (
	"testing"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_Isolated(t *testing.T) {
	a, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(a)
	b, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(b)

	require.NoError(t, a.Create(&model.Tag{Name: "Lunch", Color: "#FF0000", Slug: "lunch"}).Error)

	var count int64
	require.NoError(t, b.Model(&model.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSetupTestDB_CascadesRecipeDelete(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(conn)

	user := model.User{Email: "cook@example.com", Username: "cook", FirstName: "C", LastName: "K", PasswordHash: "hash"}
	require.NoError(t, conn.Create(&user).Error)
	tag := model.Tag{Name: "Lunch", Color: "#FF0000", Slug: "lunch"}
	require.NoError(t, conn.Create(&tag).Error)
	ing := model.Ingredient{Name: "flour", MeasurementUnit: "g"}
	require.NoError(t, conn.Create(&ing).Error)

	recipe := model.Recipe{AuthorID: user.ID, Name: "Bread", Text: "Bake", CookingTime: 30, Image: "recipes/a.jpg"}
	require.NoError(t, conn.Create(&recipe).Error)
	require.NoError(t, conn.Create(&model.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error)
	require.NoError(t, conn.Create(&model.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ing.ID, Quantity: 2}).Error)
	require.NoError(t, conn.Create(&model.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error)

	require.NoError(t, conn.Delete(&model.Recipe{}, recipe.ID).Error)

	for _, m := range []interface{}{&model.RecipeTag{}, &model.RecipeIngredient{}, &model.Favorite{}} {
		var count int64
		require.NoError(t, conn.Model(m).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	}
}

func TestTruncateAllTables(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(conn)

	require.NoError(t, conn.Create(&model.Ingredient{Name: "salt", MeasurementUnit: "g"}).Error)
	require.NoError(t, TruncateAllTables(conn))

	var count int64
	require.NoError(t, conn.Model(&model.Ingredient{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
