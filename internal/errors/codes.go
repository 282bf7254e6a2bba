package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"
	AuthWrongPassword      = "AUTH_WRONG_PASSWORD" // set_password with wrong current password
	AuthTooManyRequests    = "AUTH_TOO_MANY_REQUESTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden  = "AUTHZ_FORBIDDEN"
	AuthzAuthorOnly = "AUTHZ_AUTHOR_ONLY" // recipe mutations

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Recipes (RECIPE_) ====================
	RecipeNotFound         = "RECIPE_NOT_FOUND"
	RecipeAlreadyFavorited = "RECIPE_ALREADY_FAVORITED"
	RecipeNotFavorited     = "RECIPE_NOT_FAVORITED"
	RecipeAlreadyInCart    = "RECIPE_ALREADY_IN_CART"
	RecipeNotInCart        = "RECIPE_NOT_IN_CART"
	IngredientNotFound     = "INGREDIENT_NOT_FOUND"
	TagNotFound            = "TAG_NOT_FOUND"

	// ==================== Subscriptions (FOLLOW_) ====================
	UserNotFound        = "USER_NOT_FOUND"
	FollowSelf          = "FOLLOW_SELF"
	FollowAlreadyExists = "FOLLOW_ALREADY_EXISTS"
	FollowNotFound      = "FOLLOW_NOT_FOUND"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidImage = "UPLOAD_INVALID_IMAGE"
	UploadFailed       = "UPLOAD_FAILED"
	UploadTooLarge     = "UPLOAD_TOO_LARGE"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
