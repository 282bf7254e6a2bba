package controller

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	apperrors "github.com/ikkim/foodgram-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeController_CreateAndGet(t *testing.T) {
	env := setupAPI(t)
	_, token := env.register("author")

	created := env.createRecipe(token, "Soup", RecipeIngredientRequest{ID: env.water.ID, Quantity: 200})
	assert.Equal(t, "Soup", created.Name)
	assert.False(t, created.IsFavorited)
	assert.False(t, created.IsInShoppingCart)
	assert.Contains(t, created.Image, "/media/recipes/")
	assert.Equal(t, "author", created.Author.Username)
	require.Len(t, created.Ingredients, 1)
	assert.Equal(t, RecipeIngredientResponse{
		ID:              env.water.ID,
		Name:            "water",
		MeasurementUnit: "ml",
		Quantity:        200,
	}, created.Ingredients[0])
	require.Len(t, created.Tags, 1)
	assert.Equal(t, "lunch", created.Tags[0].Slug)

	w := env.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d/", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decode[RecipeResponse](t, w)
	assert.Equal(t, created.Ingredients, fetched.Ingredients)
	assert.Equal(t, created.Tags, fetched.Tags)

	w = env.do(http.MethodGet, "/api/recipes/9999/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.RecipeNotFound, decode[apperrors.ErrorResponse](t, w).Error)
}

func TestRecipeController_CreateRejections(t *testing.T) {
	env := setupAPI(t)
	_, token := env.register("author")

	tests := []struct {
		name       string
		mutate     func(r *RecipeRequest)
		wantStatus int
		wantField  string
	}{
		{
			name:       "zero cooking time",
			mutate:     func(r *RecipeRequest) { r.CookingTime = 0 },
			wantStatus: http.StatusBadRequest,
			wantField:  "cooking_time",
		},
		{
			name:       "no tags",
			mutate:     func(r *RecipeRequest) { r.Tags = nil },
			wantStatus: http.StatusBadRequest,
			wantField:  "tags",
		},
		{
			name: "duplicate ingredient",
			mutate: func(r *RecipeRequest) {
				r.Ingredients = append(r.Ingredients, r.Ingredients[0])
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "ingredients",
		},
		{
			name:       "missing image",
			mutate:     func(r *RecipeRequest) { r.Image = "" },
			wantStatus: http.StatusBadRequest,
			wantField:  "image",
		},
		{
			name:       "broken image",
			mutate:     func(r *RecipeRequest) { r.Image = "data:image/png;base64,AAAA" },
			wantStatus: http.StatusBadRequest,
			wantField:  "image",
		},
		{
			name:       "image over pixel budget",
			mutate:     func(r *RecipeRequest) { r.Image = pngDataURIOfSize(t, 200, 100) },
			wantStatus: http.StatusBadRequest,
			wantField:  "image",
		},
		{
			name: "unknown ingredient",
			mutate: func(r *RecipeRequest) {
				r.Ingredients = []RecipeIngredientRequest{{ID: 9999, Quantity: 1}}
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := env.recipePayload("Broken", RecipeIngredientRequest{ID: env.flour.ID, Quantity: 1})
			tt.mutate(&req)

			w := env.do(http.MethodPost, "/api/recipes/", token, req)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantField != "" {
				assert.Contains(t, decode[apperrors.ValidationError](t, w).Fields, tt.wantField)
			}
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)

	w := env.do(http.MethodPost, "/api/recipes/", "", env.recipePayload("Anon", RecipeIngredientRequest{ID: env.flour.ID, Quantity: 1}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/recipes/", token, "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecipeController_BodyTooLarge(t *testing.T) {
	env := setupAPI(t)
	_, token := env.register("author")
	created := env.createRecipe(token, "Small", RecipeIngredientRequest{ID: env.flour.ID, Quantity: 1})

	req := env.recipePayload("Huge", RecipeIngredientRequest{ID: env.flour.ID, Quantity: 1})
	req.Text = strings.Repeat("a", testMaxBody+1)

	w := env.do(http.MethodPost, "/api/recipes/", token, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	assert.Equal(t, apperrors.UploadTooLarge, decode[apperrors.ErrorResponse](t, w).Error)

	w = env.do(http.MethodPatch, fmt.Sprintf("/api/recipes/%d/", created.ID), token, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecipeController_UpdateAndDelete(t *testing.T) {
	env := setupAPI(t)
	_, authorToken := env.register("author")
	_, otherToken := env.register("other")

	created := env.createRecipe(authorToken, "Cake",
		RecipeIngredientRequest{ID: env.flour.ID, Quantity: 2},
		RecipeIngredientRequest{ID: env.water.ID, Quantity: 3},
	)
	path := fmt.Sprintf("/api/recipes/%d/", created.ID)

	update := env.recipePayload("Cake v2", RecipeIngredientRequest{ID: env.flour.ID, Quantity: 5})
	update.Image = ""

	w := env.do(http.MethodPatch, path, otherToken, update)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPatch, path, authorToken, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[RecipeResponse](t, w)
	assert.Equal(t, "Cake v2", updated.Name)
	assert.Equal(t, created.Image, updated.Image)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, 5, updated.Ingredients[0].Quantity)

	w = env.do(http.MethodDelete, path, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodDelete, path, authorToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeController_FavoriteAndCart(t *testing.T) {
	env := setupAPI(t)
	_, authorToken := env.register("author")
	_, readerToken := env.register("reader")

	pancakes := env.createRecipe(authorToken, "Pancakes",
		RecipeIngredientRequest{ID: env.flour.ID, Quantity: 2},
		RecipeIngredientRequest{ID: env.water.ID, Quantity: 100},
	)
	bread := env.createRecipe(authorToken, "Bread", RecipeIngredientRequest{ID: env.flour.ID, Quantity: 3})

	favPath := fmt.Sprintf("/api/recipes/%d/favorite/", pancakes.ID)
	w := env.do(http.MethodPost, favPath, readerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	short := decode[ShortRecipeResponse](t, w)
	assert.Equal(t, "Pancakes", short.Name)
	assert.Equal(t, 10, short.CookingTime)

	w = env.do(http.MethodPost, favPath, readerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.RecipeAlreadyFavorited, decode[apperrors.ErrorResponse](t, w).Error)

	w = env.do(http.MethodPost, "/api/recipes/9999/favorite/", readerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, id := range []uint{pancakes.ID, bread.ID} {
		w = env.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart/", id), readerToken, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = env.do(http.MethodGet, "/api/recipes/download_shopping_cart/", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=shopping_list.txt", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "Shopping list:\nflour - 5 g\nwater - 100 ml", w.Body.String())

	w = env.do(http.MethodGet, "/api/recipes/download_shopping_cart/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d/", pancakes.ID), readerToken, nil)
	view := decode[RecipeResponse](t, w)
	assert.True(t, view.IsFavorited)
	assert.True(t, view.IsInShoppingCart)

	w = env.do(http.MethodDelete, favPath, readerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(http.MethodDelete, favPath, readerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.RecipeNotFavorited, decode[apperrors.ErrorResponse](t, w).Error)

	cartPath := fmt.Sprintf("/api/recipes/%d/shopping_cart/", bread.ID)
	w = env.do(http.MethodDelete, cartPath, readerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(http.MethodDelete, cartPath, readerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeController_ListFilters(t *testing.T) {
	env := setupAPI(t)
	author, authorToken := env.register("author")
	_, readerToken := env.register("reader")

	soup := env.createRecipe(authorToken, "Soup", RecipeIngredientRequest{ID: env.water.ID, Quantity: 200})
	env.createRecipe(authorToken, "Bread", RecipeIngredientRequest{ID: env.flour.ID, Quantity: 300})

	w := env.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite/", soup.ID), readerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name      string
		query     string
		token     string
		wantNames []string
	}{
		{name: "newest first", query: "", wantNames: []string{"Bread", "Soup"}},
		{name: "favorited", query: "?is_favorited=1", token: readerToken, wantNames: []string{"Soup"}},
		{name: "favorited anonymous ignored", query: "?is_favorited=1", wantNames: []string{"Bread", "Soup"}},
		{name: "in cart", query: "?is_in_shopping_cart=1", token: readerToken, wantNames: []string{}},
		{name: "tag slug", query: "?tags=lunch", wantNames: []string{"Bread", "Soup"}},
		{name: "unknown tag", query: "?tags=dinner", wantNames: []string{}},
		{name: "author", query: fmt.Sprintf("?author=%d", author.ID), wantNames: []string{"Bread", "Soup"}},
		{name: "page size", query: "?limit=1&page=2", wantNames: []string{"Soup"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, "/api/recipes/"+tt.query, tt.token, nil)
			require.Equal(t, http.StatusOK, w.Code)
			page := decode[PageResponse[RecipeResponse]](t, w)

			names := []string{}
			for _, r := range page.Results {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}

	w = env.do(http.MethodGet, "/api/recipes/?author=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
