package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Scan decisions as returned by the analysis step.
const (
	DecisionAvoid   = "avoid"
	DecisionCaution = "caution"
	DecisionOK      = "ok"
)

// Caution factor levels.
const (
	LevelRed    = "red"
	LevelYellow = "yellow"
	LevelGreen  = "green"
)

// CautionFactor is one named risk element flagged by the analysis,
// e.g. {"key": "peanut", "level": "red"}.
type CautionFactor struct {
	Key   string `json:"key"`
	Level string `json:"level"`
}

// ScanRecord is one scan event: the analysis outputs plus a snapshot of the
// user's profile as it was at scan time.
type ScanRecord struct {
	ID        string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string  `gorm:"type:varchar(36);index;not null" json:"user_id"`
	ProductID *string `gorm:"type:varchar(36);index" json:"product_id"`

	ScannedAt time.Time `gorm:"not null;index" json:"scanned_at"`

	// User-editable display overrides. Dirty flips to true on the first
	// manual rename; from then on DisplayName wins over ProductName.
	DisplayName     *string `gorm:"type:varchar(256)" json:"display_name"`
	DisplayCategory *string `gorm:"type:varchar(128)" json:"display_category"`
	ImageURL        *string `gorm:"type:text" json:"image_url"`
	Dirty           bool    `gorm:"not null;default:false" json:"dirty"`

	// The model's own extraction, kept apart from the display fields so a
	// rename never destroys the AI's raw reading.
	ProductName       *string           `gorm:"type:varchar(256)" json:"product_name"`
	ProductNutrition  datatypes.JSONMap `json:"product_nutrition"`
	ProductIngredient *string           `gorm:"type:text" json:"product_ingredient"`

	Decision       string `gorm:"type:varchar(16)" json:"decision"`
	AITotalScore   int    `json:"ai_total_score"`
	AITotalSummary string `gorm:"type:varchar(255)" json:"ai_total_summary"`

	AIAllergyBrief    *string `gorm:"type:varchar(64)" json:"ai_allergy_brief"`
	AIAllergyReport   *string `gorm:"type:text" json:"ai_allergy_report"`
	AIConditionBrief  *string `gorm:"type:varchar(64)" json:"ai_condition_brief"`
	AIConditionReport *string `gorm:"type:text" json:"ai_condition_report"`
	AIAlterBrief      *string `gorm:"type:varchar(64)" json:"ai_alter_brief"`
	AIAlterReport     *string `gorm:"type:text" json:"ai_alter_report"`
	AIVeganBrief      *string `gorm:"type:varchar(64)" json:"ai_vegan_brief"`
	AIVeganReport     *string `gorm:"type:text" json:"ai_vegan_report"`
	AITotalReport     *string `gorm:"type:text" json:"ai_total_report"`

	CautionFactors datatypes.JSONSlice[CautionFactor] `json:"caution_factors"`

	// Profile snapshot captured at scan time, not a live reference.
	Conditions datatypes.JSONSlice[string] `json:"conditions"`
	Allergies  datatypes.JSONSlice[string] `json:"allergies"`
	Habits     datatypes.JSONSlice[string] `json:"habits"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
