package models

import (
	"time"

	"gorm.io/gorm"
)

// Per-serving nutrition facts for one catalog product.
type Nutrition struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProductID string `gorm:"type:varchar(36);index;not null" json:"product_id"`

	PerServingGrams float64 `json:"per_serving_grams"`
	Calories        float64 `json:"calories"`
	CarbsG          float64 `json:"carbs_g"`
	SugarG          float64 `json:"sugar_g"`
	ProteinG        float64 `json:"protein_g"`
	FatG            float64 `json:"fat_g"`
	SatFatG         float64 `json:"sat_fat_g"`
	TransFatG       float64 `json:"trans_fat_g"`
	SodiumMg        float64 `json:"sodium_mg"`
	CholesterolMg   float64 `json:"cholesterol_mg"`

	LabelVersion int `gorm:"not null;default:1" json:"label_version"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
