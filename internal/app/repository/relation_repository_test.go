package repository

import (
	"testing"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFavoriteRepository_Toggle(t *testing.T) {
	f := setupRecipeTest(t)
	repo := NewFavoriteRepository(f.conn)
	recipe := createRecipe(t, f.conn, f.author.ID, "Soup", []uint{f.lunch.ID}, nil)

	_, err := repo.Create(f.reader.ID, recipe.ID)
	require.NoError(t, err)

	_, err = repo.Create(f.reader.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrDuplicate)

	var count int64
	require.NoError(t, f.conn.Model(&model.Favorite{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	marked, err := repo.MarkedAmong(f.reader.ID, []uint{recipe.ID, 9999})
	require.NoError(t, err)
	assert.True(t, marked[recipe.ID])
	assert.False(t, marked[9999])

	require.NoError(t, repo.Delete(f.reader.ID, recipe.ID))
	assert.ErrorIs(t, repo.Delete(f.reader.ID, recipe.ID), gorm.ErrRecordNotFound)

	exists, err := repo.Exists(f.reader.ID, recipe.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestShoppingCartRepository_AggregateIngredients(t *testing.T) {
	f := setupRecipeTest(t)
	repo := NewShoppingCartRepository(f.conn)
	milk := createIngredient(t, f.conn, "milk", "ml")

	a := createRecipe(t, f.conn, f.author.ID, "A", []uint{f.lunch.ID},
		[]model.RecipeIngredient{{IngredientID: f.flour.ID, Quantity: 2}, {IngredientID: milk.ID, Quantity: 100}})
	b := createRecipe(t, f.conn, f.author.ID, "B", []uint{f.lunch.ID},
		[]model.RecipeIngredient{{IngredientID: f.flour.ID, Quantity: 3}})
	createRecipe(t, f.conn, f.author.ID, "C", []uint{f.lunch.ID},
		[]model.RecipeIngredient{{IngredientID: f.sugar.ID, Quantity: 7}})

	lines, err := repo.AggregateIngredients(f.reader.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	for _, id := range []uint{a.ID, b.ID} {
		_, err := repo.Create(f.reader.ID, id)
		require.NoError(t, err)
	}
	_, err = repo.Create(f.reader.ID, a.ID)
	assert.ErrorIs(t, err, ErrDuplicate)

	lines, err = repo.AggregateIngredients(f.reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.ShoppingListLine{
		{Name: "flour", MeasurementUnit: "g", Total: 5},
		{Name: "milk", MeasurementUnit: "ml", Total: 100},
	}, lines)

	other, err := repo.AggregateIngredients(f.author.ID)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFollowRepository(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewFollowRepository(conn)
	reader := createUser(t, conn, "reader")
	zed := createUser(t, conn, "zed")
	amy := createUser(t, conn, "amy")

	_, err := repo.Create(reader.ID, zed.ID)
	require.NoError(t, err)
	_, err = repo.Create(reader.ID, amy.ID)
	require.NoError(t, err)
	_, err = repo.Create(reader.ID, amy.ID)
	assert.ErrorIs(t, err, ErrDuplicate)

	authors, total, err := repo.ListAuthors(reader.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, authors, 2)
	assert.Equal(t, "amy", authors[0].Username)

	followed, err := repo.FollowedAmong(reader.ID, []uint{zed.ID, amy.ID, reader.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{zed.ID: true, amy.ID: true}, followed)

	require.NoError(t, repo.Delete(reader.ID, zed.ID))
	assert.ErrorIs(t, repo.Delete(reader.ID, zed.ID), gorm.ErrRecordNotFound)

	exists, err := repo.Exists(reader.ID, amy.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}
