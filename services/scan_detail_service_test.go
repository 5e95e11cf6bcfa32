package services

import (
	"testing"
	"time"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionToRiskLevel(t *testing.T) {
	assert.Equal(t, RiskRed, DecisionToRiskLevel(models.DecisionAvoid))
	assert.Equal(t, RiskYellow, DecisionToRiskLevel(models.DecisionCaution))
	assert.Equal(t, RiskGreen, DecisionToRiskLevel(models.DecisionOK))
	assert.Equal(t, RiskGreen, DecisionToRiskLevel(""))
	assert.Equal(t, RiskGreen, DecisionToRiskLevel("weird"))
}

func TestRiskLevelToFace(t *testing.T) {
	assert.Equal(t, FaceNo, RiskLevelToFace(RiskRed))
	assert.Equal(t, FaceNotBad, RiskLevelToFace(RiskYellow))
	assert.Equal(t, FaceGood, RiskLevelToFace(RiskGreen))
	assert.Equal(t, FaceGood, RiskLevelToFace("weird"))
}

func TestCautionLevelToEvaluation(t *testing.T) {
	assert.Equal(t, "NO", CautionLevelToEvaluation(models.LevelRed))
	assert.Equal(t, "CAUTION", CautionLevelToEvaluation(models.LevelYellow))
	assert.Equal(t, "OK", CautionLevelToEvaluation(models.LevelGreen))
	assert.Equal(t, "CAUTION", CautionLevelToEvaluation("weird"))
}

func strp(s string) *string { return &s }

func TestProjectScanPartSkipsEmptyReports(t *testing.T) {
	scan := &models.ScanRecord{
		Decision:        models.DecisionAvoid,
		AITotalScore:    15,
		AITotalSummary:  "위험",
		AITotalReport:   strp("전체 평가"),
		AIAllergyBrief:  strp("우유 포함"),
		AIAllergyReport: strp("우유가 직접 포함"),
		AIAlterBrief:    strp("대체 간식"),
		AIAlterReport:   strp("두유 과자를 권장"),
		CautionFactors: []models.CautionFactor{
			{Key: "milk", Level: models.LevelRed},
			{Key: "sugar", Level: models.LevelYellow},
		},
	}

	part := ProjectScanPart(scan)

	assert.Equal(t, RiskRed, part.RiskLevel)
	assert.Equal(t, "전체 평가", part.TotalReport)

	// only the allergy block exists; condition and vegan reports are empty
	require.Len(t, part.Reports, 1)
	assert.Equal(t, "allergy", part.Reports[0].Kind)
	assert.Equal(t, FaceNo, part.Reports[0].Face)

	require.Len(t, part.Alternatives, 1)
	assert.Equal(t, FaceGood, part.Alternatives[0].Face)

	require.Len(t, part.CautionFactors, 2)
	assert.Equal(t, CautionFactorView{Factor: "milk", Evaluation: "NO"}, part.CautionFactors[0])
	assert.Equal(t, CautionFactorView{Factor: "sugar", Evaluation: "CAUTION"}, part.CautionFactors[1])
}

func TestProjectScanPartSharedFace(t *testing.T) {
	scan := &models.ScanRecord{
		Decision:          models.DecisionCaution,
		AIConditionReport: strp("나트륨 주의"),
		AIVeganReport:     strp("동물성 원료 없음"),
	}

	part := ProjectScanPart(scan)

	require.Len(t, part.Reports, 2)
	for _, block := range part.Reports {
		assert.Equal(t, FaceNotBad, block.Face)
	}
}

func TestGetFullScanUnknownID(t *testing.T) {
	svc := NewScanDetailService(testDB(t))
	_, err := svc.GetFullScan("nope")
	assert.ErrorIs(t, err, ErrScanNotFound)
}

func TestGetFullScanWithCatalogProduct(t *testing.T) {
	db := testDB(t)
	svc := NewScanDetailService(db)
	user := seedUser(t, db)
	product := seedProduct(t, db, "8801234567890")

	nutrition := models.Nutrition{ID: uuid.NewString(), ProductID: product.ID, Calories: 170}
	require.NoError(t, db.Create(&nutrition).Error)
	require.NoError(t, db.Create(&models.Ingredient{
		ID: uuid.NewString(), ProductID: product.ID, RawIngredient: "wheat flour", OrderIndex: 0,
	}).Error)
	require.NoError(t, db.Create(&models.Ingredient{
		ID: uuid.NewString(), ProductID: product.ID, RawIngredient: "milk powder", OrderIndex: 1,
	}).Error)

	scan := models.ScanRecord{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		ProductID:      &product.ID,
		ScannedAt:      time.Now().UTC(),
		Decision:       models.DecisionOK,
		AITotalScore:   82,
		AITotalSummary: "괜찮음",
	}
	require.NoError(t, db.Create(&scan).Error)

	detail, err := svc.GetFullScan(scan.ID)
	require.NoError(t, err)

	assert.Equal(t, product.Name, detail.Product.Name)
	assert.Equal(t, RiskGreen, detail.Scan.RiskLevel)
	require.NotNil(t, detail.Ingredient)
	assert.Equal(t, "wheat flour, milk powder", detail.Ingredient.Text)
	got, ok := detail.Nutrition.(models.Nutrition)
	require.True(t, ok)
	assert.Equal(t, 170.0, got.Calories)
}

func TestGetFullScanSynthesizesFallbackProduct(t *testing.T) {
	db := testDB(t)
	svc := NewScanDetailService(db)
	user := seedUser(t, db)

	// two unnamed scans in one day: the second one's placeholder is "2번"
	day := DayStart(time.Now().UTC())
	older := models.ScanRecord{
		ID: uuid.NewString(), UserID: user.ID,
		ScannedAt: day.Add(9 * time.Hour),
		Decision:  models.DecisionOK, AITotalScore: 80, AITotalSummary: "s",
	}
	require.NoError(t, db.Create(&older).Error)

	scan := models.ScanRecord{
		ID: uuid.NewString(), UserID: user.ID,
		ScannedAt: day.Add(10 * time.Hour),
		Decision:  models.DecisionCaution, AITotalScore: 55, AITotalSummary: "s",
		ProductIngredient: strp("밀가루, 우유"),
	}
	require.NoError(t, db.Create(&scan).Error)

	detail, err := svc.GetFullScan(scan.ID)
	require.NoError(t, err)

	assert.Equal(t, ordinalPlaceholder(scan.ScannedAt, 2), detail.Product.Name)
	assert.Equal(t, "Uncategorized", detail.Product.Category)
	require.NotNil(t, detail.Ingredient)
	assert.Equal(t, "밀가루, 우유", detail.Ingredient.Text)
	assert.Nil(t, detail.Nutrition)
}
