package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
	}{
		{
			name:     "record not found",
			err:      gorm.ErrRecordNotFound,
			context:  "recipe",
			wantCode: ResourceNotFound,
		},
		{
			name:     "postgres duplicate email",
			err:      errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`),
			context:  "create user",
			wantCode: AuthEmailAlreadyExists,
		},
		{
			name:     "sqlite duplicate favorite",
			err:      errors.New("UNIQUE constraint failed: favorites.user_id, favorites.recipe_id"),
			context:  "favorite",
			wantCode: RecipeAlreadyFavorited,
		},
		{
			name:     "translated duplicate",
			err:      fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey),
			context:  "create",
			wantCode: ResourceAlreadyExists,
		},
		{
			name:     "foreign key ingredient",
			err:      errors.New(`insert or update on table "recipe_ingredients" violates foreign key constraint "fk_recipe_ingredients_ingredient" ingredient_id`),
			context:  "create recipe",
			wantCode: IngredientNotFound,
		},
		{
			name:     "unknown",
			err:      errors.New("something odd"),
			context:  "update recipe",
			wantCode: InternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: follows.user_id")))
	assert.False(t, IsDuplicateKey(errors.New("record not found")))
}

func TestGetNotFoundMessage(t *testing.T) {
	assert.Equal(t, "Recipe not found", getNotFoundMessage("get recipe"))
	assert.Equal(t, "User not found", getNotFoundMessage("user"))
	assert.Equal(t, "Not found", getNotFoundMessage(""))
}
