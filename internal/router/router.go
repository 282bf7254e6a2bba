package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/config"
	"github.com/ikkim/foodgram-backend/internal/app/controller"
	"github.com/ikkim/foodgram-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	authController    *controller.AuthController
	userController    *controller.UserController
	catalogController *controller.CatalogController
	recipeController  *controller.RecipeController
	authMiddleware    *middleware.AuthMiddleware
	loginLimiter      *middleware.RateLimiter
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	catalogController *controller.CatalogController,
	recipeController *controller.RecipeController,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		userController:    userController,
		catalogController: catalogController,
		recipeController:  recipeController,
		authMiddleware:    authMiddleware,
		loginLimiter:      loginLimiter,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	controller.RegisterValidators()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Foodgram API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.config.Storage.Driver == "local" {
		router.Static(r.config.Storage.MediaURL, r.config.Storage.MediaDir)
	}

	authenticated := r.authMiddleware.Authenticate()
	optional := r.authMiddleware.OptionalAuthenticate()
	recipeBody := middleware.BodyLimit(r.config.Storage.MaxBodyBytes)

	api := router.Group("/api")
	{
		auth := api.Group("/auth/token")
		{
			auth.POST("/login/", middleware.RateLimit(r.loginLimiter), r.authController.Login)
			auth.POST("/logout/", authenticated, r.authController.Logout)
		}

		users := api.Group("/users")
		{
			users.POST("/", r.userController.Register)
			users.GET("/", optional, r.userController.List)
			users.GET("/me/", authenticated, r.userController.Me)
			users.POST("/set_password/", authenticated, r.userController.SetPassword)
			users.GET("/subscriptions/", authenticated, r.userController.Subscriptions)
			users.GET("/:id/", optional, r.userController.Get)
			users.POST("/:id/subscribe/", authenticated, r.userController.Subscribe)
			users.DELETE("/:id/subscribe/", authenticated, r.userController.Unsubscribe)
		}

		tags := api.Group("/tags")
		{
			tags.GET("/", r.catalogController.ListTags)
			tags.GET("/:id/", r.catalogController.GetTag)
		}

		ingredients := api.Group("/ingredients")
		{
			ingredients.GET("/", r.catalogController.ListIngredients)
			ingredients.GET("/:id/", r.catalogController.GetIngredient)
		}

		recipes := api.Group("/recipes")
		{
			recipes.GET("/", optional, r.recipeController.List)
			recipes.POST("/", authenticated, recipeBody, r.recipeController.Create)
			recipes.GET("/download_shopping_cart/", authenticated, r.recipeController.DownloadShoppingCart)
			recipes.GET("/:id/", optional, r.recipeController.Get)
			recipes.PATCH("/:id/", authenticated, recipeBody, r.recipeController.Update)
			recipes.DELETE("/:id/", authenticated, r.recipeController.Delete)
			recipes.POST("/:id/favorite/", authenticated, r.recipeController.AddFavorite)
			recipes.DELETE("/:id/favorite/", authenticated, r.recipeController.RemoveFavorite)
			recipes.POST("/:id/shopping_cart/", authenticated, r.recipeController.AddToCart)
			recipes.DELETE("/:id/shopping_cart/", authenticated, r.recipeController.RemoveFromCart)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
