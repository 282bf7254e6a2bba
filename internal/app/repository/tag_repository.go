package repository

import (
	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository interface {
	FindAll() ([]model.Tag, error)
	FindByID(id uint) (*model.Tag, error)
	FindByIDs(ids []uint) ([]model.Tag, error)
	// CreateIfMissing inserts tags whose name, color or slug is not taken
	// yet and reports how many rows were written.
	CreateIfMissing(tags []model.Tag) (int64, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindAll() ([]model.Tag, error) {
	logger.Debug("Fetching all tags from database")

	var tags []model.Tag
	if err := r.db.Order("name ASC").Find(&tags).Error; err != nil {
		logger.Error("Failed to fetch tags from database", err)
		return nil, err
	}

	logger.Debug("Tags fetched from database", map[string]interface{}{
		"count": len(tags),
	})
	return tags, nil
}

func (r *tagRepository) FindByID(id uint) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.First(&tag, id).Error; err != nil {
		logger.Debug("Tag not found in database", map[string]interface{}{
			"tag_id": id,
		})
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindByIDs(ids []uint) ([]model.Tag, error) {
	var tags []model.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.Where("id IN ?", ids).Order("name ASC").Find(&tags).Error; err != nil {
		logger.Error("Failed to fetch tags by IDs from database", err, map[string]interface{}{
			"tag_ids": ids,
		})
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) CreateIfMissing(tags []model.Tag) (int64, error) {
	if len(tags) == 0 {
		return 0, nil
	}

	logger.Debug("Creating tags in database", map[string]interface{}{
		"count": len(tags),
	})

	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags)
	if result.Error != nil {
		logger.Error("Failed to create tags in database", result.Error)
		return 0, result.Error
	}

	logger.Debug("Tags created in database", map[string]interface{}{
		"created": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
