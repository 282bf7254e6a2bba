package controller

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/ikkim/foodgram-backend/config"
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	"github.com/ikkim/foodgram-backend/internal/db"
	"github.com/ikkim/foodgram-backend/internal/middleware"
	"github.com/ikkim/foodgram-backend/internal/storage"
	"github.com/ikkim/foodgram-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret    = "test-secret"
	testMaxPixels = 10_000
	testMaxBody   = 256 << 10
)

type apiEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	auth   service.AuthService

	lunch *model.Tag
	flour *model.Ingredient
	water *model.Ingredient
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	recipeRepo := repository.NewRecipeRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	ingredientRepo := repository.NewIngredientRepository(testDB)
	favoriteRepo := repository.NewFavoriteRepository(testDB)
	cartRepo := repository.NewShoppingCartRepository(testDB)
	followRepo := repository.NewFollowRepository(testDB)

	images := storage.NewImageUploader(storage.NewLocalStorage(t.TempDir(), "/media"), 1280, testMaxPixels)

	authService := service.NewAuthService(userRepo, testSecret, time.Hour)
	userService := service.NewUserService(userRepo, followRepo, recipeRepo)
	catalogService := service.NewCatalogService(tagRepo, ingredientRepo, nil)
	recipeService := service.NewRecipeService(testDB, recipeRepo, tagRepo, ingredientRepo, favoriteRepo, cartRepo, followRepo, images)
	favoriteService := service.NewFavoriteService(favoriteRepo, recipeRepo)
	cartService := service.NewShoppingCartService(cartRepo, recipeRepo)

	pagination := config.PaginationConfig{DefaultPageSize: 6, MaxPageSize: 100}
	authCtrl := NewAuthController(authService)
	userCtrl := NewUserController(authService, userService, images, pagination)
	catalogCtrl := NewCatalogController(catalogService)
	recipeCtrl := NewRecipeController(recipeService, favoriteService, cartService, images, pagination)

	authMW := middleware.NewAuthMiddleware(testSecret)
	router := gin.New()
	api := router.Group("/api")

	api.POST("/auth/token/login/", authCtrl.Login)
	api.POST("/auth/token/logout/", authMW.Authenticate(), authCtrl.Logout)

	users := api.Group("/users")
	users.POST("/", userCtrl.Register)
	users.GET("/", authMW.OptionalAuthenticate(), userCtrl.List)
	users.GET("/me/", authMW.Authenticate(), userCtrl.Me)
	users.POST("/set_password/", authMW.Authenticate(), userCtrl.SetPassword)
	users.GET("/subscriptions/", authMW.Authenticate(), userCtrl.Subscriptions)
	users.GET("/:id/", authMW.OptionalAuthenticate(), userCtrl.Get)
	users.POST("/:id/subscribe/", authMW.Authenticate(), userCtrl.Subscribe)
	users.DELETE("/:id/subscribe/", authMW.Authenticate(), userCtrl.Unsubscribe)

	api.GET("/tags/", catalogCtrl.ListTags)
	api.GET("/tags/:id/", catalogCtrl.GetTag)
	api.GET("/ingredients/", catalogCtrl.ListIngredients)
	api.GET("/ingredients/:id/", catalogCtrl.GetIngredient)

	recipes := api.Group("/recipes")
	recipes.GET("/", authMW.OptionalAuthenticate(), recipeCtrl.List)
	recipes.POST("/", authMW.Authenticate(), middleware.BodyLimit(testMaxBody), recipeCtrl.Create)
	recipes.GET("/download_shopping_cart/", authMW.Authenticate(), recipeCtrl.DownloadShoppingCart)
	recipes.GET("/:id/", authMW.OptionalAuthenticate(), recipeCtrl.Get)
	recipes.PATCH("/:id/", authMW.Authenticate(), middleware.BodyLimit(testMaxBody), recipeCtrl.Update)
	recipes.DELETE("/:id/", authMW.Authenticate(), recipeCtrl.Delete)
	recipes.POST("/:id/favorite/", authMW.Authenticate(), recipeCtrl.AddFavorite)
	recipes.DELETE("/:id/favorite/", authMW.Authenticate(), recipeCtrl.RemoveFavorite)
	recipes.POST("/:id/shopping_cart/", authMW.Authenticate(), recipeCtrl.AddToCart)
	recipes.DELETE("/:id/shopping_cart/", authMW.Authenticate(), recipeCtrl.RemoveFromCart)

	env := &apiEnv{t: t, db: testDB, router: router, auth: authService}

	env.lunch = &model.Tag{Name: "Lunch", Color: "#00FF00", Slug: "lunch"}
	require.NoError(t, testDB.Create(env.lunch).Error)
	env.flour = &model.Ingredient{Name: "flour", MeasurementUnit: "g"}
	env.water = &model.Ingredient{Name: "water", MeasurementUnit: "ml"}
	require.NoError(t, testDB.Create(env.flour).Error)
	require.NoError(t, testDB.Create(env.water).Error)
	return env
}

// register creates a user through the service and returns a bearer token.
func (e *apiEnv) register(username string) (*model.User, string) {
	e.t.Helper()
	user, err := e.auth.Register(service.RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
	})
	require.NoError(e.t, err)

	token, err := util.GenerateAccessToken(user.ID, user.Email, string(user.Role), testSecret, time.Hour)
	require.NoError(e.t, err)
	return user, token.Token
}

func (e *apiEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	return pngDataURIOfSize(t, 4, 4)
}

func pngDataURIOfSize(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func (e *apiEnv) recipePayload(name string, lines ...RecipeIngredientRequest) RecipeRequest {
	return RecipeRequest{
		Name:        name,
		Text:        "Cook it.",
		CookingTime: 10,
		Image:       pngDataURI(e.t),
		Tags:        []uint{e.lunch.ID},
		Ingredients: lines,
	}
}

func (e *apiEnv) createRecipe(token, name string, lines ...RecipeIngredientRequest) RecipeResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/recipes/", token, e.recipePayload(name, lines...))
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[RecipeResponse](e.t, w)
}
