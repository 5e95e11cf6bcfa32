package services

import (
	"context"
	"errors"
	"testing"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func analysisUser() *models.User {
	return &models.User{
		ID:         "u1",
		Allergies:  datatypes.NewJSONSlice([]string{"milk", "peanut"}),
		Conditions: datatypes.NewJSONSlice([]string{"diabetes"}),
		Habits:     datatypes.NewJSONSlice([]string{"vegan"}),
	}
}

func TestAnalyzeFallbackOnCallError(t *testing.T) {
	svc := NewAIAnalysisService(&stubReasoner{err: errors.New("timeout")})

	got := svc.Analyze(context.Background(), AnalysisInput{Mode: ModeImage, User: analysisUser()})

	assert.Equal(t, models.DecisionCaution, got.Decision)
	assert.Equal(t, 50, got.AITotalScore)
	assert.Equal(t, "Error, fallback", got.AITotalSummary)
	require.NotNil(t, got.AITotalReport)
	assert.Equal(t, "AI 분석 실패. 기본값 적용.", *got.AITotalReport)
}

func TestAnalyzeFallbackOnInvalidJSON(t *testing.T) {
	svc := NewAIAnalysisService(&stubReasoner{response: "sorry, I cannot help with that"})

	got := svc.Analyze(context.Background(), AnalysisInput{Mode: ModeImage, User: analysisUser()})

	assert.Equal(t, models.DecisionCaution, got.Decision)
	assert.Equal(t, 50, got.AITotalScore)
	require.NotNil(t, got.AITotalReport)
	assert.Equal(t, "AI 응답 파싱 실패. 기본값 적용.", *got.AITotalReport)
}

func TestParseResultValid(t *testing.T) {
	got, diag := ParseResult(validAIResponse("avoid", 12))

	require.Empty(t, diag)
	assert.Equal(t, models.DecisionAvoid, got.Decision)
	assert.Equal(t, 12, got.AITotalScore)
	assert.Equal(t, "summary", got.AITotalSummary)
	require.NotNil(t, got.ProductName)
	assert.Equal(t, "Choco Pie", *got.ProductName)
	assert.Equal(t, []string{"wheat", "milk"}, got.ProductIngredients)
	require.Len(t, got.CautionFactors, 1)
	assert.Equal(t, "milk", got.CautionFactors[0].Key)
	assert.Equal(t, models.LevelRed, got.CautionFactors[0].Level)
}

func TestParseResultRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown decision":  `{"decision": "maybe", "ai_total_score": 50, "ai_total_summary": "s"}`,
		"missing decision":  `{"ai_total_score": 50, "ai_total_summary": "s"}`,
		"missing summary":   `{"decision": "ok", "ai_total_score": 50}`,
		"score too high":    `{"decision": "ok", "ai_total_score": 101, "ai_total_summary": "s"}`,
		"score negative":    `{"decision": "ok", "ai_total_score": -1, "ai_total_summary": "s"}`,
		"string score":      `{"decision": "ok", "ai_total_score": "90", "ai_total_summary": "s"}`,
		"bad caution level": `{"decision": "ok", "ai_total_score": 50, "ai_total_summary": "s", "caution_factors": [{"key": "milk", "level": "purple"}]}`,
		"empty caution key": `{"decision": "ok", "ai_total_score": 50, "ai_total_summary": "s", "caution_factors": [{"key": "", "level": "red"}]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got, diag := ParseResult(raw)
			assert.Nil(t, got)
			assert.NotEmpty(t, diag)
		})
	}
}

func TestBuildPromptBarcodeMode(t *testing.T) {
	product := &models.Product{Name: "Choco Pie", Brand: "Orion", Category: "Snacks"}
	nutrition := &models.Nutrition{PerServingGrams: 39, Calories: 170, SugarG: 12}
	ingredients := []models.Ingredient{{RawIngredient: "wheat flour"}, {RawIngredient: "milk powder"}}

	prompt := BuildPrompt(AnalysisInput{
		Mode:        ModeBarcodeImage,
		User:        analysisUser(),
		Product:     product,
		Nutrition:   nutrition,
		Ingredients: ingredients,
	})

	assert.Contains(t, prompt, "Choco Pie")
	assert.Contains(t, prompt, "Orion")
	assert.Contains(t, prompt, "wheat flour")
	assert.Contains(t, prompt, "milk, peanut")
	assert.Contains(t, prompt, `"decision": "avoid" | "caution" | "ok"`)
}

func TestBuildPromptNutritionLabelMode(t *testing.T) {
	prompt := BuildPrompt(AnalysisInput{
		Mode:          ModeNutritionLabel,
		User:          analysisUser(),
		NutritionText: "나트륨 120mg, 당류 9g",
	})

	assert.Contains(t, prompt, "나트륨 120mg")
	assert.NotContains(t, prompt, "Product Info")
}

func TestBuildPromptImageMode(t *testing.T) {
	prompt := BuildPrompt(AnalysisInput{Mode: ModeImage, User: analysisUser()})

	assert.Contains(t, prompt, "recognize the product")
	assert.NotContains(t, prompt, "Nutrition Label")
}

func TestBuildPromptDeterministic(t *testing.T) {
	in := AnalysisInput{Mode: ModeImage, User: analysisUser()}
	assert.Equal(t, BuildPrompt(in), BuildPrompt(in))
}
