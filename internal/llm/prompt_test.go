package llm

import (
	"strings"
	"testing"

	"github.com/regintel/riskscan/internal/model"
)

func sampleAnalysis(topRisks int) *model.DeterministicAnalysis {
	highest := 420.0
	det := &model.DeterministicAnalysis{
		SheetName:      "Risk Değerlendirme",
		Methodology:    model.MethodologyFineKinney,
		ScoredRowCount: topRisks,
		HighestScore:   &highest,
		HighestLevel:   model.LevelVeryHigh,
		Distribution:   map[model.RiskLevel]int{},
	}
	for _, lvl := range model.AllLevels {
		det.Distribution[lvl] = 0
	}
	for i := 0; i < topRisks; i++ {
		score := float64(400 - i*10)
		det.TopRisks = append(det.TopRisks, model.RiskRow{
			Rank:           i + 1,
			Hazard:         "Yüksekte çalışma sırasında düşme",
			ActivityOrArea: "Çatı bakımı",
			RiskScore:      &score,
			RiskLevel:      model.LevelHigh,
		})
		det.Rows = append(det.Rows, det.TopRisks[i])
	}
	return det
}

func TestBuildPrompt_InstructionsPrecedeContext(t *testing.T) {
	prompt := BuildPrompt("register.xlsx", "Risk Değerlendirme", sampleAnalysis(3))

	schemaPos := strings.Index(prompt, "Required JSON schema")
	findingsPos := strings.Index(prompt, "Top findings")
	if schemaPos < 0 || findingsPos < 0 {
		t.Fatal("prompt missing required sections")
	}
	if schemaPos > findingsPos {
		t.Error("schema instructions must precede row context so truncation cuts context first")
	}
}

func TestBuildPrompt_StatesConstraints(t *testing.T) {
	prompt := BuildPrompt("register.xlsx", "Sheet1", sampleAnalysis(5))

	for _, want := range []string{
		"EXACTLY ONE JSON object",
		"top_risks must contain exactly 5 entries",
		"at least 3 concrete management actions",
		"action_plan",
		"compliance_gaps",
		"Fine-Kinney/Matrix",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_TruncatedAtCeiling(t *testing.T) {
	det := sampleAnalysis(10)
	// Blow up the row context far past the ceiling.
	long := strings.Repeat("çok uzun tehlike açıklaması ", 200)
	for i := range det.TopRisks {
		det.TopRisks[i].Observation = long
	}

	prompt := BuildPrompt("register.xlsx", "Sheet1", det)

	if got := len([]rune(prompt)); got > promptMaxLen {
		t.Errorf("prompt length = %d runes, ceiling is %d", got, promptMaxLen)
	}
	// Required instructions survive truncation.
	if !strings.Contains(prompt, "Required JSON schema") {
		t.Error("instructions lost to truncation")
	}
}
