package service

import (
	"fmt"
	"strings"
)

const (
	maxRecipeNameLength = 200
)

// RecipeIngredientInput is one requested line item.
type RecipeIngredientInput struct {
	ID       uint
	Quantity int
}

// RecipeInput is a full recipe payload. Create and update both require the
// complete tag and ingredient lists; Image is a base64 data URI and may be
// empty on update to keep the current image.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       string
	Tags        []uint
	Ingredients []RecipeIngredientInput
}

// ValidateRecipeInput runs the checks that need no storage access, in order,
// and returns the first failure.
func ValidateRecipeInput(input RecipeInput, requireImage bool) error {
	if strings.TrimSpace(input.Name) == "" {
		return newValidationError("name", "This field is required.")
	}
	if len([]rune(input.Name)) > maxRecipeNameLength {
		return newValidationError("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxRecipeNameLength))
	}
	if strings.TrimSpace(input.Text) == "" {
		return newValidationError("text", "This field is required.")
	}

	if input.CookingTime < 1 {
		return newValidationError("cooking_time", "Cooking time must be at least 1 minute.")
	}

	if err := validateTagIDs(input.Tags); err != nil {
		return err
	}
	if err := validateIngredientLines(input.Ingredients); err != nil {
		return err
	}

	if requireImage && strings.TrimSpace(input.Image) == "" {
		return newValidationError("image", "This field is required.")
	}
	return nil
}

func validateTagIDs(tags []uint) error {
	if len(tags) == 0 {
		return newValidationError("tags", "At least one tag is required.")
	}
	seen := make(map[uint]struct{}, len(tags))
	for _, id := range tags {
		if _, dup := seen[id]; dup {
			return newValidationError("tags", fmt.Sprintf("Tag %d is listed more than once.", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}

func validateIngredientLines(lines []RecipeIngredientInput) error {
	if len(lines) == 0 {
		return newValidationError("ingredients", "At least one ingredient is required.")
	}
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if _, dup := seen[line.ID]; dup {
			return newValidationError("ingredients", fmt.Sprintf("Ingredient %d is listed more than once.", line.ID))
		}
		seen[line.ID] = struct{}{}
		if line.Quantity < 1 {
			return newValidationError("ingredients", fmt.Sprintf("Quantity of ingredient %d must be at least 1.", line.ID))
		}
	}
	return nil
}
