package reconcile

import (
	"fmt"
	"strings"

	"github.com/regintel/riskscan/internal/model"
)

// minSummaryLen mirrors the bound the prompt demands from the model: a
// shorter summary means the model did not actually engage with the content.
const minSummaryLen = 120

// Reconciler validates AI output against the deterministic analysis and
// produces the final report. Deterministic aggregate numbers are always
// authoritative: they are injected over whatever the AI produced.
type Reconciler struct{}

// NewReconciler creates a Reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile merges the AI object with the deterministic analysis. A nil or
// invalid object yields the fully deterministic fallback report; the
// returned warnings name each reason the AI content was discarded.
func (r *Reconciler) Reconcile(det *model.DeterministicAnalysis, obj map[string]interface{}) (*model.AnalysisReport, []string) {
	if obj == nil {
		return r.Fallback(det), nil
	}

	if reason := validate(det, obj); reason != "" {
		return r.Fallback(det), []string{fmt.Sprintf("AI output failed validation (%s); deterministic report returned", reason)}
	}

	report := &model.AnalysisReport{
		DocumentType:    stringField(obj, "document_type"),
		Confidence:      stringField(obj, "confidence"),
		DocumentSummary: stringField(obj, "document_summary"),
		Stats:           statsFrom(det),
		TopRisks:        mergeTopRisks(det, obj),
		ComplianceGaps:  stringSlice(obj, "compliance_gaps"),
		ActionPlan:      stringSlice(obj, "action_plan"),
		AIUsed:          true,
	}
	return report, nil
}

// Fallback builds the fully deterministic report used whenever the AI step
// produced nothing usable.
func (r *Reconciler) Fallback(det *model.DeterministicAnalysis) *model.AnalysisReport {
	return &model.AnalysisReport{
		DocumentType:    "risk_register",
		Confidence:      fallbackConfidence(det),
		DocumentSummary: executiveSummary(det),
		Stats:           statsFrom(det),
		TopRisks:        deterministicTopRisks(det),
		ComplianceGaps:  []string{},
		ActionPlan:      []string{},
		AIUsed:          false,
	}
}

// validate checks the minimal structural expectations on the AI object.
// It returns an empty string on success, otherwise the failure reason.
func validate(det *model.DeterministicAnalysis, obj map[string]interface{}) string {
	summary := stringField(obj, "document_summary")
	if len([]rune(summary)) < minSummaryLen {
		return fmt.Sprintf("summary shorter than %d characters", minSummaryLen)
	}

	risks, ok := obj["top_risks"].([]interface{})
	if !ok || len(risks) != len(det.TopRisks) {
		return fmt.Sprintf("top_risks length %d does not match deterministic %d", len(risks), len(det.TopRisks))
	}

	if !hasHighestScore(obj) {
		return "missing highest-score statistic"
	}
	return ""
}

func hasHighestScore(obj map[string]interface{}) bool {
	if _, ok := obj["highest_score"]; ok {
		return true
	}
	if stats, ok := obj["stats"].(map[string]interface{}); ok {
		if _, ok := stats["highest_score"]; ok {
			return true
		}
	}
	return false
}

// statsFrom copies the deterministic aggregates into the report stats
// block. The AI never contributes numbers here.
func statsFrom(det *model.DeterministicAnalysis) model.ReportStats {
	dist := make(map[model.RiskLevel]int, len(det.Distribution))
	for k, v := range det.Distribution {
		dist[k] = v
	}
	return model.ReportStats{
		TotalFindings:  len(det.Rows),
		ScoredFindings: det.ScoredRowCount,
		HighestScore:   det.HighestScore,
		HighestLevel:   det.HighestLevel,
		Methodology:    det.Methodology,
		Distribution:   dist,
	}
}

// mergeTopRisks keeps the deterministic ranking, scores and levels, and
// attaches the AI's recommendation text and references by rank.
func mergeTopRisks(det *model.DeterministicAnalysis, obj map[string]interface{}) []model.RiskRecommendation {
	recommendations := deterministicTopRisks(det)

	risks, _ := obj["top_risks"].([]interface{})
	byRank := make(map[int]map[string]interface{}, len(risks))
	for _, raw := range risks {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if rank, ok := entry["rank"].(float64); ok {
			byRank[int(rank)] = entry
		}
	}

	for i := range recommendations {
		entry, ok := byRank[recommendations[i].Rank]
		if !ok {
			continue
		}
		if rec, ok := entry["recommendation"].(string); ok {
			recommendations[i].Recommendation = strings.TrimSpace(rec)
		}
		if refs, ok := entry["references"].([]interface{}); ok {
			for _, r := range refs {
				if s, ok := r.(string); ok && strings.TrimSpace(s) != "" {
					recommendations[i].References = append(recommendations[i].References, strings.TrimSpace(s))
				}
			}
		}
	}
	return recommendations
}

func deterministicTopRisks(det *model.DeterministicAnalysis) []model.RiskRecommendation {
	out := make([]model.RiskRecommendation, 0, len(det.TopRisks))
	for _, r := range det.TopRisks {
		out = append(out, model.RiskRecommendation{
			Rank:           r.Rank,
			Hazard:         r.Hazard,
			ActivityOrArea: r.ActivityOrArea,
			RiskScore:      r.RiskScore,
			RiskLevel:      r.RiskLevel,
		})
	}
	return out
}

// executiveSummary renders the templated multi-sentence summary from the
// deterministic aggregates.
func executiveSummary(det *model.DeterministicAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The uploaded risk register contains %d findings, assessed with the %s methodology.", len(det.Rows), det.Methodology)

	if det.HighestScore != nil {
		fmt.Fprintf(&b, " The highest recorded risk score is %.4g, classified as %s.", *det.HighestScore, levelLabel(det.HighestLevel))
	} else {
		b.WriteString(" No numeric risk scores were present; findings were assessed qualitatively.")
	}

	urgent := det.Distribution[model.LevelHigh] + det.Distribution[model.LevelVeryHigh]
	if urgent > 0 {
		fmt.Fprintf(&b, " %d findings fall into the high or very high bands and require priority treatment.", urgent)
	} else {
		b.WriteString(" No findings reached the high or very high bands.")
	}

	if lvl, count := dominantBucket(det.Distribution); count > 0 {
		fmt.Fprintf(&b, " The largest group of findings (%d) is classified as %s.", count, levelLabel(lvl))
	}

	return b.String()
}

// dominantBucket returns the most populated severity band, preferring the
// more severe band on ties so the summary never understates.
func dominantBucket(dist map[model.RiskLevel]int) (model.RiskLevel, int) {
	best := model.LevelUndetermined
	bestCount := 0
	for _, lvl := range model.AllLevels {
		if dist[lvl] >= bestCount && dist[lvl] > 0 {
			best = lvl
			bestCount = dist[lvl]
		}
	}
	return best, bestCount
}

func fallbackConfidence(det *model.DeterministicAnalysis) string {
	switch {
	case det.ScoredRowCount == 0:
		return "low"
	case det.HeaderTrusted:
		return "high"
	default:
		return "medium"
	}
}

func levelLabel(lvl model.RiskLevel) string {
	switch lvl {
	case model.LevelAcceptableLow:
		return "acceptable/low"
	case model.LevelNotable:
		return "notable"
	case model.LevelSignificant:
		return "significant"
	case model.LevelHigh:
		return "high"
	case model.LevelVeryHigh:
		return "very high"
	default:
		return "undetermined"
	}
}

func stringField(obj map[string]interface{}, key string) string {
	if s, ok := obj[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func stringSlice(obj map[string]interface{}, key string) []string {
	out := []string{}
	raw, ok := obj[key].([]interface{})
	if !ok {
		return out
	}
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
