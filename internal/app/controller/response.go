package controller

import (
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/config"
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	"github.com/ikkim/foodgram-backend/pkg/util"
)

// ImageURLs resolves stored image keys to public URLs.
type ImageURLs interface {
	URL(key string) string
}

type UserResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Quantity        int    `json:"quantity"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []model.Tag                `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// ShortRecipeResponse is returned by the favorite and cart toggles and in
// subscription previews.
type ShortRecipeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type SubscriptionResponse struct {
	UserResponse
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

// PageResponse is the envelope of every paginated list.
type PageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func toUserResponse(user *model.User, subscribed bool) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

func toRecipeResponse(view *service.RecipeView, images ImageURLs) RecipeResponse {
	r := view.Recipe
	ingredients := make([]RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Quantity:        line.Quantity,
		})
	}

	return RecipeResponse{
		ID:               r.ID,
		Tags:             r.Tags(),
		Author:           toUserResponse(&r.Author, view.AuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      view.IsFavorited,
		IsInShoppingCart: view.IsInShoppingCart,
		Name:             r.Name,
		Image:            images.URL(r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func toShortRecipe(r *model.Recipe, images ImageURLs) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       images.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

func toSubscriptionResponse(view *service.SubscriptionView, images ImageURLs) SubscriptionResponse {
	recipes := make([]ShortRecipeResponse, 0, len(view.Recipes))
	for i := range view.Recipes {
		recipes = append(recipes, toShortRecipe(&view.Recipes[i], images))
	}
	return SubscriptionResponse{
		UserResponse: toUserResponse(view.User, view.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: view.RecipesCount,
	}
}

// pageRequest reads page and limit from the query string.
func pageRequest(c *gin.Context, cfg config.PaginationConfig) util.PageRequest {
	return util.ParsePageRequest(c.Query("page"), c.Query("limit"), cfg.DefaultPageSize, cfg.MaxPageSize)
}

// requestURL rebuilds the absolute URL of the current request for page links.
func requestURL(c *gin.Context) *url.URL {
	u := *c.Request.URL
	u.Host = c.Request.Host
	u.Scheme = "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	return &u
}

func newPage[T any](c *gin.Context, req util.PageRequest, total int64, results []T) PageResponse[T] {
	next, previous := util.PageLinks(requestURL(c), req, total)
	if results == nil {
		results = []T{}
	}
	return PageResponse[T]{
		Count:    total,
		Next:     next,
		Previous: previous,
		Results:  results,
	}
}
