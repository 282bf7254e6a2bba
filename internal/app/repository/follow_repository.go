package repository

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
)

type FollowRepository interface {
	// Create returns ErrDuplicate when userID already follows authorID.
	Create(userID, authorID uint) (*model.Follow, error)
	// Delete returns gorm.ErrRecordNotFound when there is no such follow.
	Delete(userID, authorID uint) error
	Exists(userID, authorID uint) (bool, error)
	// FollowedAmong returns which of authorIDs userID follows.
	FollowedAmong(userID uint, authorIDs []uint) (map[uint]bool, error)
	// ListAuthors returns one page of the users userID follows, ordered by
	// username, with the total count.
	ListAuthors(userID uint, offset, limit int) ([]model.User, int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(userID, authorID uint) (*model.Follow, error) {
	logger.Debug("Creating follow in database", map[string]interface{}{
		"user_id":   userID,
		"author_id": authorID,
	})

	follow := &model.Follow{UserID: userID, AuthorID: authorID}
	if err := r.db.Omit("User", "Author").Create(follow).Error; err != nil {
		err = translateError(err)
		if err != ErrDuplicate {
			logger.Error("Failed to create follow in database", err, map[string]interface{}{
				"user_id":   userID,
				"author_id": authorID,
			})
		}
		return nil, err
	}
	return follow, nil
}

func (r *followRepository) Delete(userID, authorID uint) error {
	logger.Debug("Deleting follow from database", map[string]interface{}{
		"user_id":   userID,
		"author_id": authorID,
	})

	result := r.db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&model.Follow{})
	return affectedOrNotFound(result)
}

func (r *followRepository) Exists(userID, authorID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *followRepository) FollowedAmong(userID uint, authorIDs []uint) (map[uint]bool, error) {
	followed := make(map[uint]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return followed, nil
	}

	var ids []uint
	err := r.db.Model(&model.Follow{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		logger.Error("Failed to look up follows in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	for _, id := range ids {
		followed[id] = true
	}
	return followed, nil
}

func (r *followRepository) ListAuthors(userID uint, offset, limit int) ([]model.User, int64, error) {
	logger.Debug("Listing followed authors in database", map[string]interface{}{
		"user_id": userID,
		"offset":  offset,
		"limit":   limit,
	})

	followed := func() *gorm.DB {
		return r.db.Model(&model.Follow{}).Select("author_id").Where("user_id = ?", userID)
	}

	var total int64
	if err := r.db.Model(&model.User{}).Where("id IN (?)", followed()).Count(&total).Error; err != nil {
		logger.Error("Failed to count followed authors in database", err)
		return nil, 0, err
	}

	authors := []model.User{}
	err := r.db.Where("id IN (?)", followed()).
		Order("username ASC").
		Offset(offset).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		logger.Error("Failed to list followed authors in database", err)
		return nil, 0, err
	}

	return authors, total, nil
}
