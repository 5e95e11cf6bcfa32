package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Nutrition{},
		&models.Ingredient{},
		&models.ScanRecord{},
		&models.DailyScore{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, allergies ...string) *models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.NewString(),
		Email:     uuid.NewString() + "@example.com",
		Password:  "x",
		Name:      "tester",
		Allergies: datatypes.NewJSONSlice(allergies),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedProduct(t *testing.T, db *gorm.DB, barcode string) *models.Product {
	t.Helper()
	product := models.Product{
		ID:       uuid.NewString(),
		Barcode:  barcode,
		Brand:    "TestBrand",
		Name:     "Choco Pie",
		Category: "Snacks",
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

// stubReasoner scripts the model side of an analysis.
type stubReasoner struct {
	response   string
	err        error
	lastPrompt string
	lastImage  string
}

func (s *stubReasoner) Complete(_ context.Context, prompt, imageDataURL string) (string, error) {
	s.lastPrompt = prompt
	s.lastImage = imageDataURL
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

// memoryImageStorage records uploads and hands back deterministic URLs.
type memoryImageStorage struct {
	prefixes []string
}

func (m *memoryImageStorage) Upload(_ context.Context, _ []byte, _ string, keyPrefix string) (string, error) {
	m.prefixes = append(m.prefixes, keyPrefix)
	return "https://cdn.test/" + keyPrefix, nil
}

func validAIResponse(decision string, score int) string {
	return fmt.Sprintf(`{
		"decision": %q,
		"ai_total_score": %d,
		"ai_total_summary": "summary",
		"ai_allergy_brief": "우유 포함",
		"ai_allergy_report": "우유가 원재료에 직접 포함되어 있습니다.",
		"ai_condition_brief": null,
		"ai_condition_report": null,
		"ai_alter_brief": null,
		"ai_alter_report": null,
		"ai_vegan_brief": null,
		"ai_vegan_report": null,
		"ai_total_report": "전체 평가입니다.",
		"product_name": "Choco Pie",
		"product_nutrition": {"calories": "200kcal"},
		"product_ingredients": ["wheat", "milk"],
		"caution_factors": [{"key": "milk", "level": "red"}]
	}`, decision, score)
}
