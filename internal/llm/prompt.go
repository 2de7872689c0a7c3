package llm

import (
	"fmt"
	"strings"

	"github.com/regintel/riskscan/internal/model"
)

// promptMaxLen bounds request cost. Truncation cuts from the end, so the
// builder writes required instructions first and optional row context last.
const promptMaxLen = 24000

// minSummaryLen is the minimum executive-summary length demanded from the
// model; the reconciler enforces the same bound on the way back.
const minSummaryLen = 120

// minActionPlanItems is the minimum number of management actions demanded
// from the model.
const minActionPlanItems = 3

// BuildPrompt renders the single instruction string for the generation
// service: output mandate and schema first, then the deterministic
// aggregates, then the top-ranked findings.
func BuildPrompt(fileName, sheetName string, det *model.DeterministicAnalysis) string {
	var b strings.Builder

	b.WriteString("You are reviewing an occupational risk register that has already been scored deterministically.\n")
	b.WriteString("Respond with EXACTLY ONE JSON object. No markdown, no code fences, no prose before or after.\n\n")

	b.WriteString("Required JSON schema:\n")
	b.WriteString(`{
  "document_type": "risk_register",
  "confidence": "low" | "medium" | "high",
  "document_summary": "executive summary, at least ` + fmt.Sprintf("%d", minSummaryLen) + ` characters",
  "stats": {"total_findings": n, "scored_findings": n, "highest_score": n, "highest_level": "...", "methodology": "..."},
  "top_risks": [{"rank": n, "hazard": "...", "activity_or_area": "...", "risk_score": n, "risk_level": "...", "recommendation": "...", "references": ["relevant legal or standard reference"]}],
  "compliance_gaps": ["..."],
  "action_plan": ["..."]
}`)
	b.WriteString("\n\nConstraints:\n")
	fmt.Fprintf(&b, "- top_risks must contain exactly %d entries, one per finding below, keeping the given ranks and scores unchanged.\n", len(det.TopRisks))
	fmt.Fprintf(&b, "- action_plan must contain at least %d concrete management actions.\n", minActionPlanItems)
	b.WriteString("- Cite occupational health and safety legislation or standards (e.g. 6331 sayılı Kanun, ISO 45001) in references where applicable.\n")
	b.WriteString("- Do not invent findings or change any numeric value.\n\n")

	fmt.Fprintf(&b, "File: %s\nSheet: %s\nMethodology: %s\n", fileName, sheetName, det.Methodology)
	fmt.Fprintf(&b, "Findings: %d total, %d with numeric scores\n", len(det.Rows), det.ScoredRowCount)
	if det.HighestScore != nil {
		fmt.Fprintf(&b, "Highest score: %.4g (%s)\n", *det.HighestScore, det.HighestLevel)
	}

	b.WriteString("Severity distribution:\n")
	for _, lvl := range model.AllLevels {
		fmt.Fprintf(&b, "- %s: %d\n", lvl, det.Distribution[lvl])
	}

	b.WriteString("\nTop findings (deterministic ranking):\n")
	for _, r := range det.TopRisks {
		score := "unscored"
		if r.RiskScore != nil {
			score = fmt.Sprintf("%.4g", *r.RiskScore)
		}
		fmt.Fprintf(&b, "%d. [%s, score %s] %s", r.Rank, r.RiskLevel, score, r.Hazard)
		if r.ActivityOrArea != "" {
			fmt.Fprintf(&b, " (activity/area: %s)", r.ActivityOrArea)
		}
		if r.Observation != "" {
			fmt.Fprintf(&b, "; observation: %s", r.Observation)
		}
		b.WriteString("\n")
	}

	prompt := b.String()
	if runes := []rune(prompt); len(runes) > promptMaxLen {
		prompt = string(runes[:promptMaxLen])
	}
	return prompt
}
