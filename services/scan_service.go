package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanResult identifies what one scan produced. Nutrition/ingredient ids are
// only resolved when a catalog product exists.
type ScanResult struct {
	ScanID       string  `json:"scan_id"`
	ProductID    *string `json:"product_id"`
	NutritionID  *string `json:"nutrition_id"`
	IngredientID *string `json:"ingredient_id"`
}

// ScanImage is an uploaded image, already read out of the multipart form.
type ScanImage struct {
	Data        []byte
	ContentType string
}

// ScanSummary is one row of the by-date history list.
type ScanSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	RiskLevel string    `json:"risk_level"`
	Summary   string    `json:"summary"`
	Score     int       `json:"score"`
	ImageURL  string    `json:"image_url"`
	ScannedAt time.Time `json:"scanned_at"`
}

// ScanService drives a scan from intake to persisted record: it assembles
// whatever context the mode allows, runs the analysis, saves the ScanRecord
// and feeds the daily aggregate.
type ScanService struct {
	db          *gorm.DB
	ai          *AIAnalysisService
	dailyScores *DailyScoreService
	images      ImageStorage
	hub         *RealtimeHub
}

func NewScanService(db *gorm.DB, ai *AIAnalysisService, dailyScores *DailyScoreService, images ImageStorage, hub *RealtimeHub) *ScanService {
	return &ScanService{db: db, ai: ai, dailyScores: dailyScores, images: images, hub: hub}
}

// FromBarcodeAndImage requires a pre-existing catalog entry for the barcode.
// A supplied image becomes the product's image before analysis runs.
func (s *ScanService) FromBarcodeAndImage(ctx context.Context, userID, barcode string, image *ScanImage) (*ScanResult, error) {
	var product models.Product
	err := s.db.Where("barcode = ?", barcode).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if image != nil {
		url, err := s.images.Upload(ctx, image.Data, image.ContentType, "products/"+product.ID)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]any{"image_url": url}).Error; err != nil {
			return nil, err
		}
		product.ImageURL = url
	}

	scan, err := s.analyzeAndSave(ctx, userID, &product, image, "", ModeBarcodeImage)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{ScanID: scan.ID, ProductID: &product.ID}
	var nutrition models.Nutrition
	if err := s.db.Where("product_id = ?", product.ID).First(&nutrition).Error; err == nil {
		result.NutritionID = &nutrition.ID
	}
	var ingredient models.Ingredient
	if err := s.db.Where("product_id = ?", product.ID).Order("order_index ASC").First(&ingredient).Error; err == nil {
		result.IngredientID = &ingredient.ID
	}
	return result, nil
}

// FromNutritionText analyzes raw label text; no catalog lookup happens.
func (s *ScanService) FromNutritionText(ctx context.Context, userID, nutritionText string, image *ScanImage) (*ScanResult, error) {
	scan, err := s.analyzeAndSave(ctx, userID, nil, image, nutritionText, ModeNutritionLabel)
	if err != nil {
		return nil, err
	}
	return &ScanResult{ScanID: scan.ID}, nil
}

// FromImage leaves everything to the model: it must both recognize the
// product and assess it from the picture alone.
func (s *ScanService) FromImage(ctx context.Context, userID string, image *ScanImage) (*ScanResult, error) {
	if image == nil || len(image.Data) == 0 {
		return nil, ErrImageRequired
	}
	scan, err := s.analyzeAndSave(ctx, userID, nil, image, "", ModeImage)
	if err != nil {
		return nil, err
	}
	return &ScanResult{ScanID: scan.ID}, nil
}

func (s *ScanService) analyzeAndSave(ctx context.Context, userID string, product *models.Product, image *ScanImage, nutritionText, mode string) (*models.ScanRecord, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	input := AnalysisInput{Mode: mode, User: &user, NutritionText: nutritionText}

	var scanImageURL *string
	if image != nil && len(image.Data) > 0 {
		input.ImageDataURL = fmt.Sprintf("data:%s;base64,%s",
			image.ContentType, base64.StdEncoding.EncodeToString(image.Data))
		// in barcode mode the image was already attached to the product
		if mode != ModeBarcodeImage {
			url, err := s.images.Upload(ctx, image.Data, image.ContentType, "scans/"+userID)
			if err != nil {
				return nil, err
			}
			scanImageURL = &url
		}
	}

	if mode == ModeBarcodeImage {
		input.Product = product
		var nutrition models.Nutrition
		if err := s.db.Where("product_id = ?", product.ID).First(&nutrition).Error; err == nil {
			input.Nutrition = &nutrition
		}
		if err := s.db.Where("product_id = ?", product.ID).
			Order("order_index ASC").Find(&input.Ingredients).Error; err != nil {
			return nil, err
		}
	}

	scannedAt := time.Now().UTC()

	// Display placeholder, independent of how the analysis turns out: the
	// record must always carry a human-readable label.
	var displayName, displayCategory *string
	if mode == ModeBarcodeImage {
		if product.Name != "" {
			displayName = &product.Name
		}
		if product.Category != "" {
			displayCategory = &product.Category
		}
	} else {
		ordinal, err := s.countScansForDay(userID, scannedAt)
		if err != nil {
			return nil, err
		}
		name := ordinalPlaceholder(scannedAt, int(ordinal)+1)
		displayName = &name
	}

	result := s.ai.Analyze(ctx, input)

	scan := models.ScanRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		ScannedAt: scannedAt,

		DisplayName:     displayName,
		DisplayCategory: displayCategory,
		ImageURL:        scanImageURL,
		Dirty:           false,

		ProductName:      result.ProductName,
		ProductNutrition: result.ProductNutrition,

		Decision:       result.Decision,
		AITotalScore:   result.AITotalScore,
		AITotalSummary: result.AITotalSummary,

		AIAllergyBrief:    result.AIAllergyBrief,
		AIAllergyReport:   result.AIAllergyReport,
		AIConditionBrief:  result.AIConditionBrief,
		AIConditionReport: result.AIConditionReport,
		AIAlterBrief:      result.AIAlterBrief,
		AIAlterReport:     result.AIAlterReport,
		AIVeganBrief:      result.AIVeganBrief,
		AIVeganReport:     result.AIVeganReport,
		AITotalReport:     result.AITotalReport,

		CautionFactors: result.CautionFactors,

		Conditions: user.Conditions,
		Allergies:  user.Allergies,
		Habits:     user.Habits,
	}
	if product != nil {
		scan.ProductID = &product.ID
	}
	if len(result.ProductIngredients) > 0 {
		joined := strings.Join(result.ProductIngredients, ", ")
		scan.ProductIngredient = &joined
	}

	if err := s.db.Create(&scan).Error; err != nil {
		return nil, err
	}

	severity := severityForScan(result.Decision, result.CautionFactors)
	if _, err := s.dailyScores.UpdateOnScan(userID, scannedAt, severity, result.Decision); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastScanEvent(userID, map[string]any{
			"kind":     "scan.completed",
			"scan_id":  scan.ID,
			"decision": scan.Decision,
			"score":    scan.AITotalScore,
		})
	}
	return &scan, nil
}

// severityForScan derives the per-scan severity fed into the daily
// aggregate's max_severity ranking: the worst of what the decision and the
// caution factors imply.
func severityForScan(decision string, factors []models.CautionFactor) string {
	severity := models.SeverityNone
	switch decision {
	case models.DecisionAvoid:
		severity = models.SeverityDanger
	case models.DecisionCaution:
		severity = models.SeverityWarning
	}
	for _, f := range factors {
		var fs string
		switch f.Level {
		case models.LevelRed:
			fs = models.SeverityDanger
		case models.LevelYellow:
			fs = models.SeverityWarning
		default:
			fs = models.SeverityInfo
		}
		if severityRank[fs] > severityRank[severity] {
			severity = fs
		}
	}
	return severity
}

func ordinalPlaceholder(t time.Time, n int) string {
	return fmt.Sprintf("%d월 %d일 %d번", int(t.Month()), t.Day(), n)
}

func (s *ScanService) countScansForDay(userID string, t time.Time) (int64, error) {
	day := DayStart(t)
	var count int64
	err := s.db.Model(&models.ScanRecord{}).
		Where("user_id = ? AND scanned_at >= ? AND scanned_at < ?", userID, day, day.Add(24*time.Hour)).
		Count(&count).Error
	return count, err
}

// Get returns one non-deleted scan record.
func (s *ScanService) Get(scanID string) (*models.ScanRecord, error) {
	var scan models.ScanRecord
	err := s.db.First(&scan, "id = ?", scanID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrScanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// UpdateNameCategory applies a manual rename. Dirty flips to true so reads
// prefer the user's label over the AI's from now on.
func (s *ScanService) UpdateNameCategory(scanID, name, category string) (*models.ScanRecord, error) {
	scan, err := s.Get(scanID)
	if err != nil {
		return nil, err
	}
	patch := map[string]any{"dirty": true}
	if name != "" {
		patch["display_name"] = name
	}
	if category != "" {
		patch["display_category"] = category
	}
	if err := s.db.Model(&models.ScanRecord{}).
		Where("id = ?", scan.ID).
		Updates(patch).Error; err != nil {
		return nil, err
	}
	return s.Get(scanID)
}

// SoftDelete hides the scan and marks its day's aggregate stale.
func (s *ScanService) SoftDelete(scanID string) error {
	scan, err := s.Get(scanID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.ScanRecord{}, "id = ?", scanID).Error; err != nil {
		return err
	}
	if err := s.db.Model(&models.DailyScore{}).
		Where("user_id = ? AND local_date = ?", scan.UserID, DayStart(scan.ScannedAt)).
		Updates(map[string]any{"dirty": true}).Error; err != nil {
		log.Printf("[scan] failed to mark daily score dirty after delete: %v", err)
	}
	return nil
}

// ListByDate returns the user's scans for one local calendar date, newest
// first, with the display-name precedence applied.
func (s *ScanService) ListByDate(userID string, date time.Time) ([]ScanSummary, error) {
	day := DayStart(date)
	var scans []models.ScanRecord
	err := s.db.
		Where("user_id = ? AND scanned_at >= ? AND scanned_at < ?", userID, day, day.Add(24*time.Hour)).
		Order("scanned_at DESC").
		Find(&scans).Error
	if err != nil {
		return nil, err
	}

	out := make([]ScanSummary, 0, len(scans))
	for _, scan := range scans {
		out = append(out, ScanSummary{
			ID:        scan.ID,
			Name:      resolveDisplayName(&scan),
			Category:  resolveDisplayCategory(&scan),
			RiskLevel: DecisionToRiskLevel(scan.Decision),
			Summary:   scan.AITotalSummary,
			Score:     scan.AITotalScore,
			ImageURL:  derefOrEmpty(scan.ImageURL),
			ScannedAt: scan.ScannedAt,
		})
	}
	return out, nil
}

// resolveDisplayName: a user rename (dirty) always wins; otherwise the AI's
// product name, then the stored placeholder.
func resolveDisplayName(scan *models.ScanRecord) string {
	if scan.Dirty && scan.DisplayName != nil && *scan.DisplayName != "" {
		return *scan.DisplayName
	}
	if scan.ProductName != nil && *scan.ProductName != "" {
		return *scan.ProductName
	}
	return derefOrEmpty(scan.DisplayName)
}

func resolveDisplayCategory(scan *models.ScanRecord) string {
	if scan.DisplayCategory != nil && *scan.DisplayCategory != "" {
		return *scan.DisplayCategory
	}
	return "Uncategorized"
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
