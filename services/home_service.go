package services

import (
	"time"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"

	"gorm.io/gorm"
)

type HomeScanItem struct {
	ScanID    string `json:"scan_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	RiskLevel string `json:"riskLevel"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
}

type HomeView struct {
	Scan       []HomeScanItem `json:"scan"`
	TodayScore int            `json:"todayScore"`
}

// HomeService assembles the home screen: today's score (recomputed lazily
// when the aggregate is dirty or missing) plus the two most recent
// distinct-product scans of the day.
type HomeService struct {
	db          *gorm.DB
	dailyScores *DailyScoreService
}

func NewHomeService(db *gorm.DB, dailyScores *DailyScoreService) *HomeService {
	return &HomeService{db: db, dailyScores: dailyScores}
}

func (s *HomeService) GetHome(userID string) (*HomeView, error) {
	today := time.Now().UTC()

	uds, err := s.dailyScores.Get(userID, today)
	if err != nil {
		return nil, err
	}
	if uds == nil || uds.Dirty {
		if uds, err = s.dailyScores.RecomputeScoreForDay(userID, today); err != nil {
			return nil, err
		}
	}

	day := DayStart(today)
	var scans []models.ScanRecord
	if err := s.db.
		Where("user_id = ? AND scanned_at >= ? AND scanned_at < ?", userID, day, day.Add(24*time.Hour)).
		Order("scanned_at DESC").
		Find(&scans).Error; err != nil {
		return nil, err
	}

	items := make([]HomeScanItem, 0, 2)
	seenProducts := map[string]bool{}
	for _, scan := range scans {
		if len(items) == 2 {
			break
		}
		if scan.ProductID != nil {
			if seenProducts[*scan.ProductID] {
				continue
			}
			seenProducts[*scan.ProductID] = true
		}
		items = append(items, s.buildScanItem(&scan))
	}

	return &HomeView{Scan: items, TodayScore: uds.Score}, nil
}

func (s *HomeService) buildScanItem(scan *models.ScanRecord) HomeScanItem {
	item := HomeScanItem{
		ScanID:    scan.ID,
		Name:      resolveDisplayName(scan),
		Category:  resolveDisplayCategory(scan),
		RiskLevel: DecisionToRiskLevel(scan.Decision),
		Summary:   scan.AITotalSummary,
		URL:       derefOrEmpty(scan.ImageURL),
	}
	if scan.ProductID != nil {
		var product models.Product
		if err := s.db.First(&product, "id = ?", *scan.ProductID).Error; err == nil {
			if !scan.Dirty {
				if product.Name != "" {
					item.Name = product.Name
				}
				if product.Category != "" {
					item.Category = product.Category
				}
			}
			if product.ImageURL != "" {
				item.URL = product.ImageURL
			}
		}
	}
	return item
}
