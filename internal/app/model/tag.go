package model

// Tag labels recipes ("breakfast", "lunch"). Name, color and slug are each
// unique.
type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"type:varchar(200);uniqueIndex;not null" json:"name"`
	Color string `gorm:"type:varchar(7);uniqueIndex;not null" json:"color"` // #RRGGBB
	Slug  string `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug"`
}

func (Tag) TableName() string {
	return "tags"
}

// RecipeTag is the many-to-many link between recipes and tags.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey;index" json:"recipe_id"`
	TagID    uint `gorm:"primaryKey;index" json:"tag_id"`

	Tag Tag `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tag,omitempty"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}
