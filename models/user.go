package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID    string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	// bcrypt hash, never serialized
	Password string `gorm:"not null" json:"-"`
	Name     string `json:"name"`

	// Personalization profile. Habits holds the diet type (single-valued in
	// practice), Conditions the medical conditions, Allergies the allergens.
	Habits     datatypes.JSONSlice[string] `json:"habits"`
	Conditions datatypes.JSONSlice[string] `json:"conditions"`
	Allergies  datatypes.JSONSlice[string] `json:"allergies"`

	ProfileImageURL string `gorm:"type:varchar(500)" json:"profile_image_url"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
