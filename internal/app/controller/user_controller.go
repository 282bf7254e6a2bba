package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/config"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	"github.com/ikkim/foodgram-backend/internal/middleware"
)

type UserController struct {
	authService service.AuthService
	userService service.UserService
	images      ImageURLs
	pagination  config.PaginationConfig
}

func NewUserController(
	authService service.AuthService,
	userService service.UserService,
	images ImageURLs,
	pagination config.PaginationConfig,
) *UserController {
	return &UserController{
		authService: authService,
		userService: userService,
		images:      images,
		pagination:  pagination,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,max=150"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,max=150"`
}

// Register creates an account
// POST /api/users/
func (ctrl *UserController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ctrl.authService.Register(service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondServiceError(c, err, "register user")
		return
	}

	resp := toUserResponse(user, false)
	c.JSON(http.StatusCreated, gin.H{
		"id":         resp.ID,
		"email":      resp.Email,
		"username":   resp.Username,
		"first_name": resp.FirstName,
		"last_name":  resp.LastName,
	})
}

// List returns a page of users
// GET /api/users/
func (ctrl *UserController) List(c *gin.Context) {
	req := pageRequest(c, ctrl.pagination)

	views, total, err := ctrl.userService.List(middleware.ViewerID(c), req)
	if err != nil {
		respondServiceError(c, err, "list users")
		return
	}

	results := make([]UserResponse, 0, len(views))
	for _, v := range views {
		results = append(results, toUserResponse(v.User, v.IsSubscribed))
	}
	c.JSON(http.StatusOK, newPage(c, req, total, results))
}

// Get returns one user profile
// GET /api/users/:id/
func (ctrl *UserController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := ctrl.userService.Get(middleware.ViewerID(c), id)
	if err != nil {
		respondServiceError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, toUserResponse(view.User, view.IsSubscribed))
}

// Me returns the authenticated user
// GET /api/users/me/
func (ctrl *UserController) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		respondServiceError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user, false))
}

// SetPassword changes the caller's password
// POST /api/users/set_password/
func (ctrl *UserController) SetPassword(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ctrl.authService.SetPassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err, "set password")
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads the subscription preview size; 0 selects the default.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Subscribe follows an author
// POST /api/users/:id/subscribe/
func (ctrl *UserController) Subscribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	authorID, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := ctrl.userService.Subscribe(userID, authorID, recipesLimit(c))
	if err != nil {
		respondServiceError(c, err, "subscribe")
		return
	}
	c.JSON(http.StatusCreated, toSubscriptionResponse(view, ctrl.images))
}

// Unsubscribe stops following an author
// DELETE /api/users/:id/subscribe/
func (ctrl *UserController) Unsubscribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	authorID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.userService.Unsubscribe(userID, authorID); err != nil {
		respondServiceError(c, err, "unsubscribe")
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists followed authors with recipe previews
// GET /api/users/subscriptions/
func (ctrl *UserController) Subscriptions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	req := pageRequest(c, ctrl.pagination)

	views, total, err := ctrl.userService.Subscriptions(userID, req, recipesLimit(c))
	if err != nil {
		respondServiceError(c, err, "subscriptions")
		return
	}

	results := make([]SubscriptionResponse, 0, len(views))
	for i := range views {
		results = append(results, toSubscriptionResponse(&views[i], ctrl.images))
	}
	c.JSON(http.StatusOK, newPage(c, req, total, results))
}
