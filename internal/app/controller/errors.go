package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	apperrors "github.com/ikkim/foodgram-backend/internal/errors"
	"github.com/ikkim/foodgram-backend/internal/middleware"
)

// serviceErrors maps service sentinels to a status and error code.
var serviceErrors = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrRecipeNotFound, http.StatusNotFound, apperrors.RecipeNotFound},
	{service.ErrIngredientNotFound, http.StatusNotFound, apperrors.IngredientNotFound},
	{service.ErrTagNotFound, http.StatusNotFound, apperrors.TagNotFound},
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.UserNotFound},
	{service.ErrNotFavorited, http.StatusNotFound, apperrors.RecipeNotFavorited},
	{service.ErrNotInCart, http.StatusNotFound, apperrors.RecipeNotInCart},
	{service.ErrNotFollowing, http.StatusNotFound, apperrors.FollowNotFound},

	{service.ErrAlreadyFavorited, http.StatusConflict, apperrors.RecipeAlreadyFavorited},
	{service.ErrAlreadyInCart, http.StatusConflict, apperrors.RecipeAlreadyInCart},
	{service.ErrAlreadyFollowing, http.StatusConflict, apperrors.FollowAlreadyExists},
	{service.ErrEmailAlreadyExists, http.StatusConflict, apperrors.AuthEmailAlreadyExists},
	{service.ErrUsernameAlreadyExists, http.StatusConflict, apperrors.AuthUsernameExists},

	{service.ErrCannotFollowSelf, http.StatusBadRequest, apperrors.FollowSelf},
	{service.ErrWrongPassword, http.StatusBadRequest, apperrors.AuthWrongPassword},

	{service.ErrForbidden, http.StatusForbidden, apperrors.AuthzAuthorOnly},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.AuthInvalidCredentials},
}

// respondServiceError writes the response for an error returned by a
// service. Unknown errors are classified by apperrors.ParseAndRespond.
func respondServiceError(c *gin.Context, err error, operation string) {
	log := middleware.GetLoggerFromContext(c)

	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		log.Warn("Request rejected by validation", map[string]interface{}{
			"operation": operation,
			"field":     vErr.Field,
			"error":     vErr.Message,
		})
		apperrors.RespondWithValidationError(c, map[string]string{vErr.Field: vErr.Message})
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			log.Warn("Request rejected", map[string]interface{}{
				"operation": operation,
				"error":     err.Error(),
			})
			apperrors.RespondWithError(c, m.status, m.code, err.Error())
			return
		}
	}

	log.Error("Request failed", err, map[string]interface{}{
		"operation": operation,
	})
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, operation)
}

// respondBindError turns a request binding failure into a 400. Struct tag
// failures are reported per field.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
		"error": err.Error(),
	})

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge, apperrors.UploadTooLarge,
			"Request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
		return
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		apperrors.RespondWithValidationError(c, fields)
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Malformed request body")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. Letters, digits and @/./+/-/_ only."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "min":
		return "Ensure this field has at least " + fe.Param() + " characters."
	}
	return "Invalid value."
}

// parseID reads a positive numeric path parameter, answering 400 when it is
// malformed.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+param)
		return 0, false
	}
	return uint(id), true
}

// requireUser returns the authenticated user id, answering 401 otherwise.
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}
