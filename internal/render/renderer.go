package render

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/regintel/riskscan/internal/model"
)

// Renderer writes an analysis envelope to files and to the terminal.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full envelope as indented JSON.
func (r *Renderer) RenderJSON(env *model.Envelope, path string) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report.
func (r *Renderer) RenderMarkdown(env *model.Envelope, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(env)), 0644)
}

// Markdown builds the Markdown body for one envelope.
func (r *Renderer) Markdown(env *model.Envelope) string {
	var b strings.Builder

	b.WriteString("# Risk Register Analysis\n\n")
	fmt.Fprintf(&b, "**File:** %s\n\n", env.FileName)
	fmt.Fprintf(&b, "**Sheet:** %s\n\n", env.PrimarySheetName)

	if env.Analysis == nil {
		b.WriteString("No analysis available.\n")
		return b.String()
	}
	report := env.Analysis

	b.WriteString("## Summary\n\n")
	b.WriteString(report.DocumentSummary)
	b.WriteString("\n\n")

	b.WriteString("## Findings\n\n")
	fmt.Fprintf(&b, "- Total findings: %d\n", report.Stats.TotalFindings)
	fmt.Fprintf(&b, "- Scored findings: %d\n", report.Stats.ScoredFindings)
	if report.Stats.HighestScore != nil {
		fmt.Fprintf(&b, "- Highest score: %s (%s)\n", formatScore(report.Stats.HighestScore), levelLabel(report.Stats.HighestLevel))
	}
	fmt.Fprintf(&b, "- Methodology: %s\n\n", report.Stats.Methodology)

	b.WriteString("### Risk distribution\n\n")
	b.WriteString("| Level | Findings |\n|---|---|\n")
	for _, level := range model.AllLevels {
		if n := report.Stats.Distribution[level]; n > 0 {
			fmt.Fprintf(&b, "| %s | %d |\n", levelLabel(level), n)
		}
	}
	b.WriteString("\n")

	if len(report.TopRisks) > 0 {
		b.WriteString("## Top risks\n\n")
		b.WriteString("| # | Hazard | Activity/Area | Score | Level |\n|---|---|---|---|---|\n")
		for _, risk := range report.TopRisks {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				risk.Rank, escapeCell(risk.Hazard), escapeCell(risk.ActivityOrArea),
				formatScore(risk.RiskScore), levelLabel(risk.RiskLevel))
		}
		b.WriteString("\n")

		for _, risk := range report.TopRisks {
			if risk.Recommendation == "" {
				continue
			}
			fmt.Fprintf(&b, "**%d. %s**\n\n%s\n\n", risk.Rank, escapeCell(risk.Hazard), risk.Recommendation)
			if len(risk.References) > 0 {
				fmt.Fprintf(&b, "_References: %s_\n\n", strings.Join(risk.References, ", "))
			}
		}
	}

	if len(report.ComplianceGaps) > 0 {
		b.WriteString("## Compliance gaps\n\n")
		for _, gap := range report.ComplianceGaps {
			fmt.Fprintf(&b, "- %s\n", gap)
		}
		b.WriteString("\n")
	}

	if len(report.ActionPlan) > 0 {
		b.WriteString("## Action plan\n\n")
		for i, step := range report.ActionPlan {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		b.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "---\n\nGenerated by riskscan (request %s", env.Meta.RequestID)
		if report.AIUsed {
			b.WriteString(", AI-assisted")
		}
		b.WriteString(")\n")
	}

	return b.String()
}

// RenderSummary prints a short result digest to stderr.
func (r *Renderer) RenderSummary(env *model.Envelope) {
	if env.Analysis == nil {
		return
	}
	report := env.Analysis
	fmt.Fprintf(os.Stderr, "Findings: %d (%d scored)\n", report.Stats.TotalFindings, report.Stats.ScoredFindings)
	if report.Stats.HighestScore != nil {
		fmt.Fprintf(os.Stderr, "Highest risk: %s (%s)\n", formatScore(report.Stats.HighestScore), levelLabel(report.Stats.HighestLevel))
	}
	if report.AIUsed {
		fmt.Fprintf(os.Stderr, "AI analysis: enabled\n")
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *score), "0"), ".")
}

func levelLabel(level model.RiskLevel) string {
	switch level {
	case model.LevelAcceptableLow:
		return "Acceptable/Low"
	case model.LevelNotable:
		return "Notable"
	case model.LevelSignificant:
		return "Significant"
	case model.LevelHigh:
		return "High"
	case model.LevelVeryHigh:
		return "Very High"
	default:
		return "Undetermined"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
