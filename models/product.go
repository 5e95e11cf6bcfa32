package models

import (
	"time"

	"gorm.io/gorm"
)

// A catalog entry, looked up by barcode in the barcode_image scan mode.
type Product struct {
	ID      string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Barcode string `gorm:"type:varchar(32);uniqueIndex" json:"barcode"`
	// 'EAN13' | 'UPC' | ... — inert metadata, never branched on
	BarcodeKind string `gorm:"type:varchar(16)" json:"barcode_kind"`

	Brand    string `gorm:"type:varchar(128)" json:"brand"`
	Name     string `gorm:"type:varchar(256)" json:"name"`
	Category string `gorm:"type:varchar(128)" json:"category"`
	SizeText string `gorm:"type:varchar(64)" json:"size_text"`
	ImageURL string `gorm:"type:text" json:"image_url"`
	Country  string `gorm:"type:varchar(64)" json:"country"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
