package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a classified error: a code plus a safe message.
type ErrorInfo struct {
	Code    string
	Message string
}

// IsDuplicateKey reports whether err is a unique-constraint violation from
// either postgres or sqlite.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint")
}

// IsForeignKeyViolation reports whether err is a foreign-key violation.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// ParseError classifies a raw error into a code and a message that is safe to
// return to clients. context names the operation ("create recipe", "user").
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Internal server error"}
	}

	errStrLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: getNotFoundMessage(context)}
	}

	// 23505
	if IsDuplicateKey(err) {
		return parseDuplicateKeyError(errStrLower)
	}

	// 23503
	if IsForeignKeyViolation(err) {
		return parseForeignKeyError(errStrLower)
	}

	// 23502
	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	// 23514
	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input"}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "Storage is temporarily unavailable, please try again later",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "users.email") || strings.Contains(errLower, "idx_users_email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "A user with that email already exists"}
	case strings.Contains(errLower, "users.username") || strings.Contains(errLower, "idx_users_username"):
		return ErrorInfo{Code: AuthUsernameExists, Message: "A user with that username already exists"}
	case strings.Contains(errLower, "favorites"):
		return ErrorInfo{Code: RecipeAlreadyFavorited, Message: "Recipe is already in favorites"}
	case strings.Contains(errLower, "shopping_cart"):
		return ErrorInfo{Code: RecipeAlreadyInCart, Message: "Recipe is already in the shopping cart"}
	case strings.Contains(errLower, "follows"):
		return ErrorInfo{Code: FollowAlreadyExists, Message: "Already subscribed to this user"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func parseForeignKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{Code: ResourceConflict, Message: "Resource is still referenced and cannot be deleted"}
	}
	if strings.Contains(errLower, "ingredient_id") {
		return ErrorInfo{Code: IngredientNotFound, Message: "Ingredient does not exist"}
	}
	if strings.Contains(errLower, "tag_id") {
		return ErrorInfo{Code: TagNotFound, Message: "Tag does not exist"}
	}
	if strings.Contains(errLower, "recipe_id") {
		return ErrorInfo{Code: RecipeNotFound, Message: "Recipe does not exist"}
	}
	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "author_id") {
		return ErrorInfo{Code: UserNotFound, Message: "User does not exist"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "Referenced resource does not exist"}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "recipe"):
		return "Recipe not found"
	case strings.Contains(contextLower, "ingredient"):
		return "Ingredient not found"
	case strings.Contains(contextLower, "tag"):
		return "Tag not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}
	return "Not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Failed to create resource, please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update resource, please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete resource, please try again later"
	}
	return "Internal server error, please try again later"
}

// ParseAndRespond classifies err and writes it with the given status.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
