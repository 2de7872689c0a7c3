package render

import (
	"os"
	"strings"
	"testing"

	"github.com/regintel/riskscan/internal/model"
)

func sampleEnvelope() *model.Envelope {
	high := 540.0
	low := 12.0
	return &model.Envelope{
		Success:          true,
		Type:             model.ReportType,
		FileName:         "register.xlsx",
		PrimarySheetName: "Risk Değerlendirme",
		Analysis: &model.AnalysisReport{
			DocumentSummary: "Fall from height dominates the register.",
			Stats: model.ReportStats{
				TotalFindings:  2,
				ScoredFindings: 2,
				HighestScore:   &high,
				HighestLevel:   model.LevelVeryHigh,
				Methodology:    model.MethodologyFineKinney,
				Distribution: map[model.RiskLevel]int{
					model.LevelAcceptableLow: 1,
					model.LevelVeryHigh:      1,
				},
			},
			TopRisks: []model.RiskRecommendation{
				{Rank: 1, Hazard: "Yüksekte çalışma | düşme", RiskScore: &high, RiskLevel: model.LevelVeryHigh,
					Recommendation: "Install guardrails.", References: []string{"ISO 45001"}},
				{Rank: 2, Hazard: "Kaygan zemin", RiskScore: &low, RiskLevel: model.LevelAcceptableLow},
			},
			ActionPlan: []string{"Stop roof work", "Fit guardrails", "Re-train crew"},
			AIUsed:     true,
			Warnings:   []string{"header row could not be identified with confidence; assuming the first row"},
		},
		Meta: model.ResponseMeta{RequestID: "req-1", AIUsed: true},
	}
}

func TestMarkdown_Content(t *testing.T) {
	md := NewRenderer(true).Markdown(sampleEnvelope())

	for _, want := range []string{
		"# Risk Register Analysis",
		"register.xlsx",
		"Fall from height dominates",
		"| Very High | 1 |",
		"| 1 | Yüksekte çalışma \\| düşme |",
		"Install guardrails.",
		"ISO 45001",
		"1. Stop roof work",
		"## Warnings",
		"AI-assisted",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdown_NoFooter(t *testing.T) {
	md := NewRenderer(false).Markdown(sampleEnvelope())
	if strings.Contains(md, "Generated by riskscan") {
		t.Error("footer rendered despite being disabled")
	}
}

func TestMarkdown_NilScore(t *testing.T) {
	env := sampleEnvelope()
	env.Analysis.TopRisks[1].RiskScore = nil
	md := NewRenderer(false).Markdown(env)
	if !strings.Contains(md, "| 2 | Kaygan zemin |  | - | Acceptable/Low |") {
		t.Errorf("nil score not rendered as dash:\n%s", md)
	}
}

func TestRenderJSON_Roundtrip(t *testing.T) {
	path := t.TempDir() + "/report.json"
	if err := NewRenderer(true).RenderJSON(sampleEnvelope(), path); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), `"primarySheetName": "Risk Değerlendirme"`) {
		t.Error("expected envelope fields in JSON output")
	}
}
