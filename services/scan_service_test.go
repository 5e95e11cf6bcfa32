package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newScanService(db *gorm.DB, reasoner ReasoningClient, images ImageStorage) *ScanService {
	return NewScanService(db, NewAIAnalysisService(reasoner), NewDailyScoreService(db), images, nil)
}

func TestFromBarcodeUnknownBarcode(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "milk")
	svc := newScanService(db, &stubReasoner{response: validAIResponse("ok", 80)}, &memoryImageStorage{})

	_, err := svc.FromBarcodeAndImage(context.Background(), "u-none", "0000000000000", nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestFromBarcodePersistsScanAndFeedsDailyScore(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "milk")
	product := seedProduct(t, db, "8801234567890")
	reasoner := &stubReasoner{response: validAIResponse("avoid", 15)}
	svc := newScanService(db, reasoner, &memoryImageStorage{})

	result, err := svc.FromBarcodeAndImage(context.Background(), user.ID, product.Barcode, nil)
	require.NoError(t, err)
	require.NotNil(t, result.ProductID)
	assert.Equal(t, product.ID, *result.ProductID)

	scan, err := svc.Get(result.ScanID)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionAvoid, scan.Decision)
	assert.Equal(t, 15, scan.AITotalScore)
	require.NotNil(t, scan.DisplayName)
	assert.Equal(t, product.Name, *scan.DisplayName)
	assert.False(t, scan.Dirty)
	assert.Equal(t, []string{"milk"}, []string(scan.Allergies))

	// the avoid decision plus a red caution factor rank as danger
	uds, err := NewDailyScoreService(db).Get(user.ID, scan.ScannedAt)
	require.NoError(t, err)
	require.NotNil(t, uds)
	assert.Equal(t, 1, uds.NumScans)
	assert.True(t, uds.Dirty)
	assert.Equal(t, 0, uds.Score)
	require.NotNil(t, uds.MaxSeverity)
	assert.Equal(t, models.SeverityDanger, *uds.MaxSeverity)
}

func TestFromBarcodeAttachesImageToProduct(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "8801234567890")
	images := &memoryImageStorage{}
	svc := newScanService(db, &stubReasoner{response: validAIResponse("ok", 80)}, images)

	image := &ScanImage{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"}
	_, err := svc.FromBarcodeAndImage(context.Background(), user.ID, product.Barcode, image)
	require.NoError(t, err)

	require.Len(t, images.prefixes, 1)
	assert.Equal(t, "products/"+product.ID, images.prefixes[0])

	var updated models.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Equal(t, "https://cdn.test/products/"+product.ID, updated.ImageURL)
}

func TestFallbackResultIsPersisted(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	svc := newScanService(db, &stubReasoner{err: errors.New("model down")}, &memoryImageStorage{})

	result, err := svc.FromNutritionText(context.Background(), user.ID, "나트륨 120mg", nil)
	require.NoError(t, err)

	scan, err := svc.Get(result.ScanID)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionCaution, scan.Decision)
	assert.Equal(t, 50, scan.AITotalScore)
	assert.Equal(t, "Error, fallback", scan.AITotalSummary)
	require.NotNil(t, scan.AITotalReport)
	assert.Equal(t, "AI 분석 실패. 기본값 적용.", *scan.AITotalReport)
}

func TestNutritionTextScanGetsOrdinalPlaceholder(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	// no product_name in the response, so the placeholder is what reads show
	svc := newScanService(db, &stubReasoner{response: `{"decision": "ok", "ai_total_score": 70, "ai_total_summary": "s"}`}, &memoryImageStorage{})

	first, err := svc.FromNutritionText(context.Background(), user.ID, "당류 9g", nil)
	require.NoError(t, err)
	second, err := svc.FromNutritionText(context.Background(), user.ID, "당류 9g", nil)
	require.NoError(t, err)

	scan1, err := svc.Get(first.ScanID)
	require.NoError(t, err)
	scan2, err := svc.Get(second.ScanID)
	require.NoError(t, err)

	require.NotNil(t, scan1.DisplayName)
	require.NotNil(t, scan2.DisplayName)
	assert.Equal(t, ordinalPlaceholder(scan1.ScannedAt, 1), *scan1.DisplayName)
	assert.Equal(t, ordinalPlaceholder(scan2.ScannedAt, 2), *scan2.DisplayName)
}

func TestOrdinalPlaceholderFormat(t *testing.T) {
	at := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "11월 3일 4번", ordinalPlaceholder(at, 4))
}

func TestFromImageRequiresImage(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	svc := newScanService(db, &stubReasoner{response: validAIResponse("ok", 80)}, &memoryImageStorage{})

	_, err := svc.FromImage(context.Background(), user.ID, nil)
	assert.ErrorIs(t, err, ErrImageRequired)

	_, err = svc.FromImage(context.Background(), user.ID, &ScanImage{})
	assert.ErrorIs(t, err, ErrImageRequired)
}

func TestFromImageUploadsAndPassesDataURL(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	reasoner := &stubReasoner{response: validAIResponse("ok", 80)}
	images := &memoryImageStorage{}
	svc := newScanService(db, reasoner, images)

	result, err := svc.FromImage(context.Background(), user.ID, &ScanImage{Data: []byte("png-bytes"), ContentType: "image/png"})
	require.NoError(t, err)

	assert.Contains(t, reasoner.lastImage, "data:image/png;base64,")
	require.Len(t, images.prefixes, 1)
	assert.Equal(t, "scans/"+user.ID, images.prefixes[0])

	scan, err := svc.Get(result.ScanID)
	require.NoError(t, err)
	require.NotNil(t, scan.ImageURL)
	assert.Equal(t, "https://cdn.test/scans/"+user.ID, *scan.ImageURL)
}

func TestScanUnknownUser(t *testing.T) {
	db := testDB(t)
	svc := newScanService(db, &stubReasoner{response: validAIResponse("ok", 80)}, &memoryImageStorage{})

	_, err := svc.FromNutritionText(context.Background(), "ghost", "당류 9g", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRenameWinsOverAIProductName(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	svc := newScanService(db, &stubReasoner{response: validAIResponse("ok", 80)}, &memoryImageStorage{})

	result, err := svc.FromNutritionText(context.Background(), user.ID, "당류 9g", nil)
	require.NoError(t, err)

	// before the rename the AI's product name wins
	scan, err := svc.Get(result.ScanID)
	require.NoError(t, err)
	assert.Equal(t, "Choco Pie", resolveDisplayName(scan))

	renamed, err := svc.UpdateNameCategory(result.ScanID, "내 과자", "Snacks")
	require.NoError(t, err)
	assert.True(t, renamed.Dirty)
	assert.Equal(t, "내 과자", resolveDisplayName(renamed))
	assert.Equal(t, "Snacks", resolveDisplayCategory(renamed))
}

func TestSoftDeleteHidesScanAndDirtiesDay(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	svc := newScanService(db, &stubReasoner{response: validAIResponse("ok", 80)}, &memoryImageStorage{})
	dailyScores := NewDailyScoreService(db)

	result, err := svc.FromNutritionText(context.Background(), user.ID, "당류 9g", nil)
	require.NoError(t, err)

	scan, err := svc.Get(result.ScanID)
	require.NoError(t, err)
	_, err = dailyScores.RecomputeScoreForDay(user.ID, scan.ScannedAt)
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(result.ScanID))

	_, err = svc.Get(result.ScanID)
	assert.ErrorIs(t, err, ErrScanNotFound)

	uds, err := dailyScores.Get(user.ID, scan.ScannedAt)
	require.NoError(t, err)
	require.NotNil(t, uds)
	assert.True(t, uds.Dirty)
}

func TestListByDateAppliesPrecedenceAndOrder(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	svc := newScanService(db, &stubReasoner{response: validAIResponse("ok", 80)}, &memoryImageStorage{})

	first, err := svc.FromNutritionText(context.Background(), user.ID, "당류 9g", nil)
	require.NoError(t, err)
	// nudge the second scan later so the ordering is unambiguous
	second, err := svc.FromNutritionText(context.Background(), user.ID, "당류 9g", nil)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.ScanRecord{}).
		Where("id = ?", second.ScanID).
		Updates(map[string]any{"scanned_at": time.Now().UTC().Add(time.Minute)}).Error)

	list, err := svc.ListByDate(user.ID, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ScanID, list[0].ID)
	assert.Equal(t, first.ScanID, list[1].ID)
	assert.Equal(t, "Choco Pie", list[0].Name)
	assert.Equal(t, RiskGreen, list[0].RiskLevel)
}

func TestSeverityForScan(t *testing.T) {
	assert.Equal(t, models.SeverityNone, severityForScan(models.DecisionOK, nil))
	assert.Equal(t, models.SeverityWarning, severityForScan(models.DecisionCaution, nil))
	assert.Equal(t, models.SeverityDanger, severityForScan(models.DecisionAvoid, nil))

	// a red factor escalates an otherwise ok scan
	assert.Equal(t, models.SeverityDanger, severityForScan(models.DecisionOK,
		[]models.CautionFactor{{Key: "milk", Level: models.LevelRed}}))
	// green factors only reach info
	assert.Equal(t, models.SeverityInfo, severityForScan(models.DecisionOK,
		[]models.CautionFactor{{Key: "sugar", Level: models.LevelGreen}}))
	// the decision's severity is kept when factors rank lower
	assert.Equal(t, models.SeverityWarning, severityForScan(models.DecisionCaution,
		[]models.CautionFactor{{Key: "sugar", Level: models.LevelGreen}}))
}
