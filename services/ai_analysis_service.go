package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"
)

// Scan entry modes.
const (
	ModeBarcodeImage   = "barcode_image"
	ModeNutritionLabel = "nutrition_label"
	ModeImage          = "image"
)

// ReasoningClient is the request/response contract with the language model.
// imageDataURL, when non-empty, is a base64 data URL included inline.
type ReasoningClient interface {
	Complete(ctx context.Context, prompt string, imageDataURL string) (string, error)
}

// AIScanResult is the validated analysis output. A scan always gets one of
// these: reasoning failures resolve to FallbackResult, never to an error.
type AIScanResult struct {
	Decision       string
	AITotalScore   int
	AITotalSummary string

	AIAllergyBrief    *string
	AIAllergyReport   *string
	AIConditionBrief  *string
	AIConditionReport *string
	AIAlterBrief      *string
	AIAlterReport     *string
	AIVeganBrief      *string
	AIVeganReport     *string
	AITotalReport     *string

	ProductName        *string
	ProductNutrition   map[string]any
	ProductIngredients []string
	CautionFactors     []models.CautionFactor
}

// Diagnostic strings stored in ai_total_report when a scan falls back.
const (
	diagCallFailed       = "AI 분석 실패. 기본값 적용."
	diagParseFailed      = "AI 응답 파싱 실패. 기본값 적용."
	diagValidationFailed = "AI 응답 포맷 오류. 기본값 적용."
)

const fallbackScore = 50

// FallbackResult is the neutral-but-cautious result used whenever the
// reasoning step fails: the scan record must still exist, but it must not
// claim confidence it doesn't have.
func FallbackResult(diagnostic string) AIScanResult {
	diag := diagnostic
	return AIScanResult{
		Decision:       models.DecisionCaution,
		AITotalScore:   fallbackScore,
		AITotalSummary: "Error, fallback",
		AITotalReport:  &diag,
	}
}

// AnalysisInput carries whatever context the current mode could assemble.
type AnalysisInput struct {
	Mode string
	User *models.User

	// barcode_image mode only
	Product     *models.Product
	Nutrition   *models.Nutrition
	Ingredients []models.Ingredient

	// nutrition_label mode only
	NutritionText string

	// any mode
	ImageDataURL string
}

type AIAnalysisService struct {
	client ReasoningClient
}

func NewAIAnalysisService(client ReasoningClient) *AIAnalysisService {
	return &AIAnalysisService{client: client}
}

// Analyze runs prompt → model → validation. All three failure points (call,
// parse, schema) collapse into the same fallback path.
func (s *AIAnalysisService) Analyze(ctx context.Context, in AnalysisInput) AIScanResult {
	prompt := BuildPrompt(in)

	raw, err := s.client.Complete(ctx, prompt, in.ImageDataURL)
	if err != nil {
		log.Printf("[AI] request failed: %v", err)
		return FallbackResult(diagCallFailed)
	}

	result, diag := ParseResult(raw)
	if diag != "" {
		return FallbackResult(diag)
	}
	return *result
}

// BuildPrompt composes the deterministic, mode-specific prompt. Pure function.
func BuildPrompt(in AnalysisInput) string {
	var b strings.Builder

	b.WriteString("You are a nutrition analysis assistant for the HealthyScanner app.\n\n")

	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- allergies: %s\n", joinOrNone(in.User.Allergies))
	fmt.Fprintf(&b, "- medical conditions: %s\n", joinOrNone(in.User.Conditions))
	fmt.Fprintf(&b, "- diet habits: %s\n", joinOrNone(in.User.Habits))
	b.WriteString("\n")

	switch in.Mode {
	case ModeBarcodeImage:
		b.WriteString("Product Info:\n")
		fmt.Fprintf(&b, "- name: %s\n", orMissing(in.Product.Name))
		fmt.Fprintf(&b, "- brand: %s\n", orMissing(in.Product.Brand))
		fmt.Fprintf(&b, "- category: %s\n", orMissing(in.Product.Category))
		b.WriteString("\nNutrition Info (per serving):\n")
		if in.Nutrition != nil {
			n := in.Nutrition
			fmt.Fprintf(&b, "- serving: %.1fg, calories: %.1fkcal\n", n.PerServingGrams, n.Calories)
			fmt.Fprintf(&b, "- carbs: %.1fg (sugar %.1fg), protein: %.1fg\n", n.CarbsG, n.SugarG, n.ProteinG)
			fmt.Fprintf(&b, "- fat: %.1fg (saturated %.1fg, trans %.1fg)\n", n.FatG, n.SatFatG, n.TransFatG)
			fmt.Fprintf(&b, "- sodium: %.1fmg, cholesterol: %.1fmg\n", n.SodiumMg, n.CholesterolMg)
		} else {
			b.WriteString("Nutrition info missing\n")
		}
		b.WriteString("\nIngredients:\n")
		if len(in.Ingredients) > 0 {
			for _, ing := range in.Ingredients {
				fmt.Fprintf(&b, "- %s\n", ing.RawIngredient)
			}
		} else {
			b.WriteString("Ingredient list missing\n")
		}

	case ModeNutritionLabel:
		b.WriteString("Nutrition Label (raw text, may be OCR output):\n")
		if in.NutritionText != "" {
			b.WriteString(in.NutritionText)
			b.WriteString("\n")
		} else {
			b.WriteString("(none)\n")
		}
		if in.ImageDataURL != "" {
			b.WriteString("\nA photo of the label is attached. Extract the product name, nutrition facts and ingredients directly from the image where the text above is incomplete.\n")
		}

	case ModeImage:
		b.WriteString("No product or nutrition context is available. A photo of the product is attached: recognize the product and extract its name, nutrition facts and ingredients directly from the image before assessing it.\n")
	}

	b.WriteString(`
---

TASK:
Analyze this product for this user.
Return STRICT JSON in exactly this format:

{
  "decision": "avoid" | "caution" | "ok",
  "ai_total_score": int,
  "ai_allergy_brief": "string or null",
  "ai_allergy_report": "string or null",
  "ai_condition_brief": "string or null",
  "ai_condition_report": "string or null",
  "ai_alter_brief": "string or null",
  "ai_alter_report": "string or null",
  "ai_vegan_brief": "string or null",
  "ai_vegan_report": "string or null",
  "ai_total_report": "string or null",
  "ai_total_summary": "string",
  "product_name": "string or null",
  "product_nutrition": {"key": "value"} or null,
  "product_ingredients": ["list", "of", "strings"] or null,
  "caution_factors": [{"key": "string", "level": "red" | "yellow" | "green"}] or null
}

Rules:
1. Always return valid JSON, nothing outside the JSON object.
2. decision must be exactly one of: "avoid", "caution", "ok".
   Use "avoid" when an allergen from the user's profile is directly present,
   "caution" for shared-facility cross-contamination warnings or when a
   nutrient conflicts with a stated condition, "ok" otherwise.
3. ai_total_score must be an integer 0~100.
4. Each *_brief is at most ~15 characters, each *_report at most ~100,
   ai_total_summary at most ~50.
5. caution_factors keys must only reference allergens or conditions that are
   actually in the user's profile. Never flag allergens the user doesn't have.
6. If unsure, produce a best guess based on the available nutrition & ingredients.
`)

	return b.String()
}

// rawAIScanResult mirrors the wire schema with pointers on required fields so
// "absent" is distinguishable from a zero value.
type rawAIScanResult struct {
	Decision       *string `json:"decision"`
	AITotalScore   *int    `json:"ai_total_score"`
	AITotalSummary *string `json:"ai_total_summary"`

	AIAllergyBrief    *string `json:"ai_allergy_brief"`
	AIAllergyReport   *string `json:"ai_allergy_report"`
	AIConditionBrief  *string `json:"ai_condition_brief"`
	AIConditionReport *string `json:"ai_condition_report"`
	AIAlterBrief      *string `json:"ai_alter_brief"`
	AIAlterReport     *string `json:"ai_alter_report"`
	AIVeganBrief      *string `json:"ai_vegan_brief"`
	AIVeganReport     *string `json:"ai_vegan_report"`
	AITotalReport     *string `json:"ai_total_report"`

	ProductName        *string                `json:"product_name"`
	ProductNutrition   map[string]any         `json:"product_nutrition"`
	ProductIngredients []string               `json:"product_ingredients"`
	CautionFactors     []models.CautionFactor `json:"caution_factors"`
}

// ParseResult parses and validates the model's raw response. On failure it
// returns a non-empty diagnostic naming which failure point was hit; no
// coercion is attempted (a string-typed score is a schema violation, not a
// number to be rescued). Pure function.
func ParseResult(raw string) (*AIScanResult, string) {
	var r rawAIScanResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		log.Printf("[AI] response is not valid JSON: %v", err)
		return nil, diagParseFailed
	}

	if r.Decision == nil || r.AITotalScore == nil || r.AITotalSummary == nil {
		log.Printf("[AI] response missing required fields")
		return nil, diagValidationFailed
	}
	switch *r.Decision {
	case models.DecisionAvoid, models.DecisionCaution, models.DecisionOK:
	default:
		log.Printf("[AI] invalid decision %q", *r.Decision)
		return nil, diagValidationFailed
	}
	if *r.AITotalScore < 0 || *r.AITotalScore > 100 {
		log.Printf("[AI] ai_total_score %d out of range", *r.AITotalScore)
		return nil, diagValidationFailed
	}
	for _, cf := range r.CautionFactors {
		if cf.Key == "" {
			log.Printf("[AI] caution factor with empty key")
			return nil, diagValidationFailed
		}
		switch cf.Level {
		case models.LevelRed, models.LevelYellow, models.LevelGreen:
		default:
			log.Printf("[AI] invalid caution factor level %q", cf.Level)
			return nil, diagValidationFailed
		}
	}

	return &AIScanResult{
		Decision:           *r.Decision,
		AITotalScore:       *r.AITotalScore,
		AITotalSummary:     *r.AITotalSummary,
		AIAllergyBrief:     r.AIAllergyBrief,
		AIAllergyReport:    r.AIAllergyReport,
		AIConditionBrief:   r.AIConditionBrief,
		AIConditionReport:  r.AIConditionReport,
		AIAlterBrief:       r.AIAlterBrief,
		AIAlterReport:      r.AIAlterReport,
		AIVeganBrief:       r.AIVeganBrief,
		AIVeganReport:      r.AIVeganReport,
		AITotalReport:      r.AITotalReport,
		ProductName:        r.ProductName,
		ProductNutrition:   r.ProductNutrition,
		ProductIngredients: r.ProductIngredients,
		CautionFactors:     r.CautionFactors,
	}, ""
}

func joinOrNone(ss []string) string {
	if len(ss) == 0 {
		return "(none)"
	}
	return strings.Join(ss, ", ")
}

func orMissing(s string) string {
	if s == "" {
		return "(missing)"
	}
	return s
}
