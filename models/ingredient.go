package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// One ingredient-list entry for a catalog product, in label order.
type Ingredient struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductID string `gorm:"type:varchar(36);index;not null" json:"product_id"`

	RawIngredient string                      `gorm:"type:text;not null" json:"raw_ingredient"`
	NormText      string                      `gorm:"type:text" json:"norm_text"`
	AllergenTags  datatypes.JSONSlice[string] `json:"allergen_tags"`

	OrderIndex int `gorm:"not null;default:0" json:"order_index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
