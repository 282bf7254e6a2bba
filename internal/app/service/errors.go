package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrWrongPassword         = errors.New("current password is incorrect")
	ErrUserNotFound          = errors.New("user not found")

	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrForbidden          = errors.New("only the author can modify this recipe")

	ErrAlreadyFavorited = errors.New("recipe is already in favorites")
	ErrNotFavorited     = errors.New("recipe is not in favorites")
	ErrAlreadyInCart    = errors.New("recipe is already in the shopping cart")
	ErrNotInCart        = errors.New("recipe is not in the shopping cart")

	ErrCannotFollowSelf = errors.New("cannot subscribe to yourself")
	ErrAlreadyFollowing = errors.New("already subscribed to this user")
	ErrNotFollowing     = errors.New("not subscribed to this user")
)

// ValidationError rejects input before anything is written. Field names the
// offending request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
