package repository

import (
	"errors"
	"fmt"

	apperrors "github.com/ikkim/foodgram-backend/internal/errors"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when an insert hits a unique constraint. It is how
// concurrent duplicate favorites, cart items and follows resolve to a single
// winner.
var ErrDuplicate = errors.New("duplicate record")

// ErrMissingReference is returned when an insert points at a row that no
// longer exists, typically a recipe deleted between lookup and insert.
var ErrMissingReference = errors.New("referenced record does not exist")

func translateError(err error) error {
	if apperrors.IsDuplicateKey(err) {
		return ErrDuplicate
	}
	if apperrors.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", ErrMissingReference, err)
	}
	return err
}

// affectedOrNotFound turns an update or delete that matched no row into
// gorm.ErrRecordNotFound.
func affectedOrNotFound(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
