package services

import (
	"errors"
	"math"
	"time"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Neutral baseline written by recompute when a day has no scans. Distinct
// from the incremental path's 0 placeholder: 0 means "needs computing",
// 77 means "nothing happened today". Both values are product policy.
const (
	neutralDailyScore     = 77
	placeholderDailyScore = 0
)

const formulaVersion = 1

var severityRank = map[string]int{
	models.SeverityNone:    0,
	models.SeverityInfo:    1,
	models.SeverityWarning: 2,
	models.SeverityDanger:  3,
}

type DailyScoreService struct {
	db *gorm.DB
}

func NewDailyScoreService(db *gorm.DB) *DailyScoreService {
	return &DailyScoreService{db: db}
}

// DayStart truncates t to local-date midnight (UTC wall clock).
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *DailyScoreService) get(userID string, localDate time.Time) (*models.DailyScore, error) {
	var uds models.DailyScore
	err := s.db.
		Where("user_id = ? AND local_date = ?", userID, DayStart(localDate)).
		First(&uds).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &uds, nil
}

// UpdateOnScan folds one completed scan into the day's aggregate. This is the
// hot write path: it bumps num_scans / max_severity / decision_counts and
// marks the row dirty, but never computes score. severity may be empty.
func (s *DailyScoreService) UpdateOnScan(userID string, localDate time.Time, severity, decisionKey string) (*models.DailyScore, error) {
	day := DayStart(localDate)

	uds, err := s.get(userID, day)
	if err != nil {
		return nil, err
	}

	if uds == nil {
		counts := map[string]int{}
		if decisionKey != "" {
			counts[decisionKey] = 1
		}
		created := models.DailyScore{
			UserID:         userID,
			LocalDate:      day,
			Score:          placeholderDailyScore,
			NumScans:       1,
			DecisionCounts: datatypes.NewJSONType(counts),
			FormulaVersion: formulaVersion,
			Dirty:          true,
		}
		if severity != "" {
			created.MaxSeverity = &severity
		}
		createErr := s.db.Create(&created).Error
		if createErr == nil {
			return &created, nil
		}
		// A concurrent scan won the first-row race: read theirs and
		// continue on the increment path instead of failing.
		if uds, err = s.get(userID, day); err != nil {
			return nil, err
		}
		if uds == nil {
			return nil, createErr
		}
	}

	counts := map[string]int{}
	for k, v := range uds.DecisionCounts.Data() {
		counts[k] = v
	}
	if decisionKey != "" {
		counts[decisionKey]++
	}

	maxSeverity := uds.MaxSeverity
	if severity != "" {
		if maxSeverity == nil || severityRank[severity] > severityRank[*maxSeverity] {
			maxSeverity = &severity
		}
	}

	// Explicit patch: this path is allowed to touch exactly these columns.
	patch := map[string]any{
		"num_scans":       uds.NumScans + 1,
		"max_severity":    maxSeverity,
		"decision_counts": datatypes.NewJSONType(counts),
		"dirty":           true,
	}
	if err := s.db.Model(&models.DailyScore{}).
		Where("user_id = ? AND local_date = ?", userID, day).
		Updates(patch).Error; err != nil {
		return nil, err
	}
	return s.get(userID, day)
}

type scanScoreStats struct {
	Count    int64    `gorm:"column:cnt"`
	AvgScore *float64 `gorm:"column:avg_score"`
}

// RecomputeScoreForDay recomputes the day's score from its underlying scans.
// Idempotent: two consecutive calls with no new scans yield the same score.
func (s *DailyScoreService) RecomputeScoreForDay(userID string, localDate time.Time) (*models.DailyScore, error) {
	day := DayStart(localDate)
	now := time.Now().UTC()

	uds, err := s.get(userID, day)
	if err != nil {
		return nil, err
	}

	if uds == nil {
		// First read of a day nobody scanned on: materialize the neutral
		// baseline so the home screen has something to show.
		created := models.DailyScore{
			UserID:         userID,
			LocalDate:      day,
			Score:          neutralDailyScore,
			NumScans:       0,
			DecisionCounts: datatypes.NewJSONType(map[string]int{}),
			FormulaVersion: formulaVersion,
			Dirty:          false,
			LastComputedAt: &now,
		}
		createErr := s.db.Create(&created).Error
		if createErr == nil {
			return &created, nil
		}
		// lost the creation race; recompute over the winner's row
		if uds, err = s.get(userID, day); err != nil {
			return nil, err
		}
		if uds == nil {
			return nil, createErr
		}
	}

	var stats scanScoreStats
	dayEnd := day.Add(24 * time.Hour)
	if err := s.db.Model(&models.ScanRecord{}).
		Select("COUNT(*) AS cnt, AVG(ai_total_score) AS avg_score").
		Where("user_id = ? AND scanned_at >= ? AND scanned_at < ?", userID, day, dayEnd).
		Scan(&stats).Error; err != nil {
		return nil, err
	}

	// Guards against a dirty row whose scans have since been deleted.
	score := neutralDailyScore
	if uds.NumScans > 0 && stats.Count > 0 && stats.AvgScore != nil {
		score = int(math.Round(math.Max(0, math.Min(100, *stats.AvgScore))))
	}

	patch := map[string]any{
		"score":            score,
		"dirty":            false,
		"last_computed_at": now,
		"formula_version":  formulaVersion,
	}
	if err := s.db.Model(&models.DailyScore{}).
		Where("user_id = ? AND local_date = ?", userID, day).
		Updates(patch).Error; err != nil {
		return nil, err
	}
	return s.get(userID, day)
}

// Get exposes the raw row for read paths that decide whether to recompute.
func (s *DailyScoreService) Get(userID string, localDate time.Time) (*models.DailyScore, error) {
	return s.get(userID, localDate)
}
