package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Severity ordering: none < info < warning < danger.
const (
	SeverityNone    = "none"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// DailyScore is the per-user per-day aggregate, derived entirely from that
// day's scan records. The incremental scan path only bumps the tallies and
// sets Dirty; Score is recomputed lazily on read.
type DailyScore struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	LocalDate time.Time `gorm:"primaryKey" json:"local_date"`

	Score          int                                `gorm:"not null" json:"score"`
	NumScans       int                                `gorm:"not null;default:0" json:"num_scans"`
	MaxSeverity    *string                            `gorm:"type:varchar(16)" json:"max_severity"`
	DecisionCounts datatypes.JSONType[map[string]int] `json:"decision_counts"`

	FormulaVersion int        `gorm:"not null;default:1" json:"formula_version"`
	Dirty          bool       `gorm:"not null;default:false" json:"dirty"`
	LastComputedAt *time.Time `json:"last_computed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"`
}
