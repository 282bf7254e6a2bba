package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/db"
	"github.com/ikkim/foodgram-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeImages struct {
	uploaded []string
	removed  []string
}

func (f *fakeImages) Upload(_ context.Context, dataURI string) (string, error) {
	if dataURI == "not-an-image" {
		return "", fmt.Errorf("%w: expected a base64 image data URI", storage.ErrInvalidImage)
	}
	key := fmt.Sprintf("recipes/%d.png", len(f.uploaded)+1)
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeImages) Remove(_ context.Context, key string) {
	f.removed = append(f.removed, key)
}

type testEnv struct {
	db     *gorm.DB
	images *fakeImages

	recipes   RecipeService
	favorites FavoriteService
	cart      ShoppingCartService
	users     UserService

	author *model.User
	reader *model.User
	admin  *model.User

	breakfast *model.Tag
	lunch     *model.Tag
	flour     *model.Ingredient
	sugar     *model.Ingredient
	water     *model.Ingredient
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	recipeRepo := repository.NewRecipeRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	ingredientRepo := repository.NewIngredientRepository(testDB)
	favoriteRepo := repository.NewFavoriteRepository(testDB)
	cartRepo := repository.NewShoppingCartRepository(testDB)
	followRepo := repository.NewFollowRepository(testDB)
	images := &fakeImages{}

	env := &testEnv{
		db:        testDB,
		images:    images,
		recipes:   NewRecipeService(testDB, recipeRepo, tagRepo, ingredientRepo, favoriteRepo, cartRepo, followRepo, images),
		favorites: NewFavoriteService(favoriteRepo, recipeRepo),
		cart:      NewShoppingCartService(cartRepo, recipeRepo),
		users:     NewUserService(repository.NewUserRepository(testDB), followRepo, recipeRepo),
	}

	env.author = env.createUser(t, "author", model.RoleUser)
	env.reader = env.createUser(t, "reader", model.RoleUser)
	env.admin = env.createUser(t, "admin", model.RoleAdmin)

	env.breakfast = &model.Tag{Name: "Breakfast", Color: "#FF0000", Slug: "breakfast"}
	env.lunch = &model.Tag{Name: "Lunch", Color: "#00FF00", Slug: "lunch"}
	require.NoError(t, testDB.Create(env.breakfast).Error)
	require.NoError(t, testDB.Create(env.lunch).Error)

	env.flour = &model.Ingredient{Name: "flour", MeasurementUnit: "g"}
	env.sugar = &model.Ingredient{Name: "sugar", MeasurementUnit: "g"}
	env.water = &model.Ingredient{Name: "water", MeasurementUnit: "ml"}
	for _, ing := range []*model.Ingredient{env.flour, env.sugar, env.water} {
		require.NoError(t, testDB.Create(ing).Error)
	}
	return env
}

func (env *testEnv) createUser(t *testing.T, username string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env *testEnv) input(name string, lines ...RecipeIngredientInput) RecipeInput {
	return RecipeInput{
		Name:        name,
		Text:        "Mix everything and cook.",
		CookingTime: 10,
		Image:       "data:image/png;base64,AAAA",
		Tags:        []uint{env.lunch.ID},
		Ingredients: lines,
	}
}

func (env *testEnv) createRecipe(t *testing.T, name string, lines ...RecipeIngredientInput) *RecipeView {
	t.Helper()
	view, err := env.recipes.Create(context.Background(), env.author.ID, env.input(name, lines...))
	require.NoError(t, err)
	return view
}

func (env *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(m).Count(&n).Error)
	return n
}
