package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/config"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	apperrors "github.com/ikkim/foodgram-backend/internal/errors"
	"github.com/ikkim/foodgram-backend/internal/middleware"
)

const shoppingListFilename = "shopping_list.txt"

type RecipeController struct {
	recipeService   service.RecipeService
	favoriteService service.FavoriteService
	cartService     service.ShoppingCartService
	images          ImageURLs
	pagination      config.PaginationConfig
}

func NewRecipeController(
	recipeService service.RecipeService,
	favoriteService service.FavoriteService,
	cartService service.ShoppingCartService,
	images ImageURLs,
	pagination config.PaginationConfig,
) *RecipeController {
	return &RecipeController{
		recipeService:   recipeService,
		favoriteService: favoriteService,
		cartService:     cartService,
		images:          images,
		pagination:      pagination,
	}
}

type RecipeIngredientRequest struct {
	ID       uint `json:"id"`
	Quantity int  `json:"quantity"`
}

// RecipeRequest carries no binding rules; the service validates the payload
// in a fixed order and reports the first failing field.
type RecipeRequest struct {
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
	Image       string                    `json:"image"`
	Tags        []uint                    `json:"tags"`
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
}

func (r RecipeRequest) toInput() service.RecipeInput {
	lines := make([]service.RecipeIngredientInput, 0, len(r.Ingredients))
	for _, l := range r.Ingredients {
		lines = append(lines, service.RecipeIngredientInput{ID: l.ID, Quantity: l.Quantity})
	}
	return service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Image:       r.Image,
		Tags:        r.Tags,
		Ingredients: lines,
	}
}

func isTruthy(v string) bool {
	return v == "1" || v == "true" || v == "True"
}

// List GET /api/recipes/
func (ctrl *RecipeController) List(c *gin.Context) {
	req := pageRequest(c, ctrl.pagination)
	query := service.RecipeQuery{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      isTruthy(c.Query("is_favorited")),
		IsInShoppingCart: isTruthy(c.Query("is_in_shopping_cart")),
		Page:             req,
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid author")
			return
		}
		id := uint(authorID)
		query.AuthorID = &id
	}

	views, total, err := ctrl.recipeService.List(middleware.ViewerID(c), query)
	if err != nil {
		respondServiceError(c, err, "list recipes")
		return
	}

	results := make([]RecipeResponse, 0, len(views))
	for i := range views {
		results = append(results, toRecipeResponse(&views[i], ctrl.images))
	}
	c.JSON(http.StatusOK, newPage(c, req, total, results))
}

// Get GET /api/recipes/:id/
func (ctrl *RecipeController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := ctrl.recipeService.Get(middleware.ViewerID(c), id)
	if err != nil {
		respondServiceError(c, err, "recipe")
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(view, ctrl.images))
}

// Create POST /api/recipes/
func (ctrl *RecipeController) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := ctrl.recipeService.Create(c.Request.Context(), userID, req.toInput())
	if err != nil {
		respondServiceError(c, err, "create recipe")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Recipe created", map[string]interface{}{
		"recipe_id": view.Recipe.ID,
	})
	c.JSON(http.StatusCreated, toRecipeResponse(view, ctrl.images))
}

// Update PATCH /api/recipes/:id/
func (ctrl *RecipeController) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	actor := service.Actor{UserID: userID, IsAdmin: middleware.IsAdmin(c)}
	view, err := ctrl.recipeService.Update(c.Request.Context(), actor, id, req.toInput())
	if err != nil {
		respondServiceError(c, err, "update recipe")
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(view, ctrl.images))
}

// Delete DELETE /api/recipes/:id/
func (ctrl *RecipeController) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor := service.Actor{UserID: userID, IsAdmin: middleware.IsAdmin(c)}
	if err := ctrl.recipeService.Delete(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err, "delete recipe")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFavorite POST /api/recipes/:id/favorite/
func (ctrl *RecipeController) AddFavorite(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, err := ctrl.favoriteService.Add(userID, id)
	if err != nil {
		respondServiceError(c, err, "favorite")
		return
	}
	c.JSON(http.StatusCreated, toShortRecipe(recipe, ctrl.images))
}

// RemoveFavorite DELETE /api/recipes/:id/favorite/
func (ctrl *RecipeController) RemoveFavorite(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.favoriteService.Remove(userID, id); err != nil {
		respondServiceError(c, err, "favorite")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddToCart POST /api/recipes/:id/shopping_cart/
func (ctrl *RecipeController) AddToCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, err := ctrl.cartService.Add(userID, id)
	if err != nil {
		respondServiceError(c, err, "shopping cart")
		return
	}
	c.JSON(http.StatusCreated, toShortRecipe(recipe, ctrl.images))
}

// RemoveFromCart DELETE /api/recipes/:id/shopping_cart/
func (ctrl *RecipeController) RemoveFromCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cartService.Remove(userID, id); err != nil {
		respondServiceError(c, err, "shopping cart")
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart GET /api/recipes/download_shopping_cart/
func (ctrl *RecipeController) DownloadShoppingCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	text, err := ctrl.cartService.ShoppingList(userID)
	if err != nil {
		respondServiceError(c, err, "shopping list")
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+shoppingListFilename)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
