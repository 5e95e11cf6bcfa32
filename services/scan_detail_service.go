package services

import (
	"errors"
	"time"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"

	"gorm.io/gorm"
)

// Risk levels and face expressions shown in the detail view.
const (
	RiskRed    = "red"
	RiskYellow = "yellow"
	RiskGreen  = "green"

	FaceNo     = "NO"
	FaceNotBad = "NOT BAD"
	FaceGood   = "GOOD"
)

// DecisionToRiskLevel is total: anything that isn't an explicit avoid or
// caution (including unrecognized or empty values) lands on green.
func DecisionToRiskLevel(decision string) string {
	switch decision {
	case models.DecisionAvoid:
		return RiskRed
	case models.DecisionCaution:
		return RiskYellow
	}
	return RiskGreen
}

func RiskLevelToFace(riskLevel string) string {
	switch riskLevel {
	case RiskRed:
		return FaceNo
	case RiskYellow:
		return FaceNotBad
	}
	return FaceGood
}

// CautionLevelToEvaluation fails safe: an unrecognized level reads as
// CAUTION rather than being dropped.
func CautionLevelToEvaluation(level string) string {
	switch level {
	case models.LevelRed:
		return FaceNo
	case models.LevelGreen:
		return "OK"
	case models.LevelYellow:
		return "CAUTION"
	}
	return "CAUTION"
}

type ProductView struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	ImageURL string `json:"image_url"`
}

type ReportBlock struct {
	Kind   string `json:"kind"`
	Brief  string `json:"brief,omitempty"`
	Report string `json:"report"`
	Face   string `json:"face"`
}

type CautionFactorView struct {
	Factor     string `json:"factor"`
	Evaluation string `json:"evaluation"`
}

type ScanPart struct {
	Summary        string              `json:"summary"`
	Score          int                 `json:"score"`
	RiskLevel      string              `json:"risk_level"`
	TotalReport    string              `json:"total_report"`
	Reports        []ReportBlock       `json:"reports"`
	Alternatives   []ReportBlock       `json:"alternatives"`
	CautionFactors []CautionFactorView `json:"caution_factors"`
}

type IngredientView struct {
	Text string `json:"text"`
}

type ScanDetail struct {
	Product    ProductView     `json:"product"`
	Scan       ScanPart        `json:"scan"`
	Nutrition  any             `json:"nutrition"`
	Ingredient *IngredientView `json:"ingredient"`
}

// ScanDetailService projects a stored scan into the user-facing detail view.
type ScanDetailService struct {
	db *gorm.DB
}

func NewScanDetailService(db *gorm.DB) *ScanDetailService {
	return &ScanDetailService{db: db}
}

func (s *ScanDetailService) GetFullScan(scanID string) (*ScanDetail, error) {
	var scan models.ScanRecord
	err := s.db.First(&scan, "id = ?", scanID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrScanNotFound
	}
	if err != nil {
		return nil, err
	}

	var product *models.Product
	if scan.ProductID != nil {
		var p models.Product
		if err := s.db.First(&p, "id = ?", *scan.ProductID).Error; err == nil {
			product = &p
		}
	}

	detail := &ScanDetail{
		Product:   s.buildProductView(&scan, product),
		Scan:      ProjectScanPart(&scan),
		Nutrition: s.buildNutritionView(&scan, product),
	}
	detail.Ingredient = s.buildIngredientView(&scan, product)
	return detail, nil
}

// ProjectScanPart maps the record's analysis outputs into report blocks.
// Pure function.
func ProjectScanPart(scan *models.ScanRecord) ScanPart {
	risk := DecisionToRiskLevel(scan.Decision)
	face := RiskLevelToFace(risk)

	part := ScanPart{
		Summary:     scan.AITotalSummary,
		Score:       scan.AITotalScore,
		RiskLevel:   risk,
		TotalReport: derefOrEmpty(scan.AITotalReport),
	}

	// negative-framing blocks share the decision's face
	if r := derefOrEmpty(scan.AIAllergyReport); r != "" {
		part.Reports = append(part.Reports, ReportBlock{
			Kind: "allergy", Brief: derefOrEmpty(scan.AIAllergyBrief), Report: r, Face: face,
		})
	}
	if r := derefOrEmpty(scan.AIConditionReport); r != "" {
		part.Reports = append(part.Reports, ReportBlock{
			Kind: "condition", Brief: derefOrEmpty(scan.AIConditionBrief), Report: r, Face: face,
		})
	}
	if r := derefOrEmpty(scan.AIVeganReport); r != "" {
		part.Reports = append(part.Reports, ReportBlock{
			Kind: "vegan", Brief: derefOrEmpty(scan.AIVeganBrief), Report: r, Face: face,
		})
	}
	// a suggestion, not a risk: always GOOD
	if r := derefOrEmpty(scan.AIAlterReport); r != "" {
		part.Alternatives = append(part.Alternatives, ReportBlock{
			Kind: "alternative", Brief: derefOrEmpty(scan.AIAlterBrief), Report: r, Face: FaceGood,
		})
	}

	for _, cf := range scan.CautionFactors {
		part.CautionFactors = append(part.CautionFactors, CautionFactorView{
			Factor:     cf.Key,
			Evaluation: CautionLevelToEvaluation(cf.Level),
		})
	}
	return part
}

func (s *ScanDetailService) buildProductView(scan *models.ScanRecord, product *models.Product) ProductView {
	if product != nil {
		return ProductView{
			Name:     product.Name,
			Category: product.Category,
			ImageURL: product.ImageURL,
		}
	}

	// No catalog product: synthesize a view from the scan's own fields.
	name := resolveDisplayName(scan)
	if name == "" {
		order := s.scanOrderForDay(scan)
		name = ordinalPlaceholder(scan.ScannedAt, order)
	}
	return ProductView{
		Name:     name,
		Category: resolveDisplayCategory(scan),
		ImageURL: derefOrEmpty(scan.ImageURL),
	}
}

// scanOrderForDay positions the scan among the user's same-day scans ordered
// by (scanned_at, id) ascending, 1-indexed.
func (s *ScanDetailService) scanOrderForDay(scan *models.ScanRecord) int {
	day := DayStart(scan.ScannedAt)
	var scans []models.ScanRecord
	if err := s.db.Select("id").
		Where("user_id = ? AND scanned_at >= ? AND scanned_at < ?", scan.UserID, day, day.Add(24*time.Hour)).
		Order("scanned_at ASC, id ASC").
		Find(&scans).Error; err != nil {
		return 1
	}
	for i, sc := range scans {
		if sc.ID == scan.ID {
			return i + 1
		}
	}
	return 1
}

func (s *ScanDetailService) buildNutritionView(scan *models.ScanRecord, product *models.Product) any {
	if product != nil {
		var nutrition models.Nutrition
		if err := s.db.Where("product_id = ?", product.ID).First(&nutrition).Error; err == nil {
			return nutrition
		}
	}
	if len(scan.ProductNutrition) > 0 {
		return map[string]any(scan.ProductNutrition)
	}
	return nil
}

func (s *ScanDetailService) buildIngredientView(scan *models.ScanRecord, product *models.Product) *IngredientView {
	if product != nil {
		var ingredients []models.Ingredient
		if err := s.db.Where("product_id = ?", product.ID).
			Order("order_index ASC").Find(&ingredients).Error; err == nil && len(ingredients) > 0 {
			text := ingredients[0].RawIngredient
			for _, ing := range ingredients[1:] {
				text += ", " + ing.RawIngredient
			}
			return &IngredientView{Text: text}
		}
	}
	if t := derefOrEmpty(scan.ProductIngredient); t != "" {
		return &IngredientView{Text: t}
	}
	return nil
}
