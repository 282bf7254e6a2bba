package repository

import (
	"testing"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Create(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	tests := []struct {
		name    string
		user    *model.User
		wantErr error
	}{
		{
			name: "Valid user",
			user: &model.User{
				Email: "cook@example.com", Username: "cook",
				FirstName: "Test", LastName: "Cook", PasswordHash: "hash",
			},
		},
		{
			name: "Duplicate email",
			user: &model.User{
				Email: "cook@example.com", Username: "other",
				FirstName: "Other", LastName: "Cook", PasswordHash: "hash",
			},
			wantErr: ErrDuplicate,
		},
		{
			name: "Duplicate username",
			user: &model.User{
				Email: "other@example.com", Username: "cook",
				FirstName: "Other", LastName: "Cook", PasswordHash: "hash",
			},
			wantErr: ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID)
			assert.Equal(t, model.RoleUser, tt.user.Role)
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewUserRepository(conn)
	user := createUser(t, conn, "cook")

	found, err := repo.FindByEmail("cook@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail("missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_List(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewUserRepository(conn)
	for _, name := range []string{"alice", "bob", "carol"} {
		createUser(t, conn, name)
	}

	users, total, err := repo.List(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewUserRepository(conn)
	user := createUser(t, conn, "cook")

	require.NoError(t, repo.UpdatePassword(user.ID, "newhash"))
	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", found.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword(9999, "x"), gorm.ErrRecordNotFound)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewUserRepository(conn)
	author := createUser(t, conn, "author")
	reader := createUser(t, conn, "reader")
	tag := createTag(t, conn, "lunch", "#FF0000")
	flour := createIngredient(t, conn, "flour", "g")
	recipe := createRecipe(t, conn, author.ID, "Bread", []uint{tag.ID},
		[]model.RecipeIngredient{{IngredientID: flour.ID, Quantity: 2}})

	_, err := NewFavoriteRepository(conn).Create(reader.ID, recipe.ID)
	require.NoError(t, err)
	_, err = NewFollowRepository(conn).Create(reader.ID, author.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(author.ID))

	for _, m := range []interface{}{&model.Recipe{}, &model.Favorite{}, &model.Follow{}, &model.RecipeIngredient{}} {
		var count int64
		require.NoError(t, conn.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}
}
