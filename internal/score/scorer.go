package score

import (
	"sort"

	"github.com/regintel/riskscan/internal/model"
	"github.com/regintel/riskscan/internal/resolve"
)

// Fine-Kinney severity bands. Band edges are fixed methodology, not tuning:
// probability x exposure x severity products fall into these ranges.
const (
	thresholdAcceptable  = 20
	thresholdNotable     = 70
	thresholdSignificant = 200
	thresholdHigh        = 400
)

// topRiskCount bounds the ranked list carried into prompts and reports.
const topRiskCount = 10

// Scorer computes the deterministic analysis. It is a pure function of its
// input rows: identical rows yield byte-identical output, which makes it the
// system's fallback of record whenever the AI step fails.
type Scorer struct{}

// NewScorer creates a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Classify maps a numeric score to its severity band. A nil score is
// Undetermined, never zero.
func Classify(score *float64) model.RiskLevel {
	if score == nil {
		return model.LevelUndetermined
	}
	switch {
	case *score <= thresholdAcceptable:
		return model.LevelAcceptableLow
	case *score <= thresholdNotable:
		return model.LevelNotable
	case *score <= thresholdSignificant:
		return model.LevelSignificant
	case *score <= thresholdHigh:
		return model.LevelHigh
	default:
		return model.LevelVeryHigh
	}
}

// Calculate builds the full deterministic analysis for the resolved rows.
func (s *Scorer) Calculate(sheetName string, headerRow int, headerTrusted bool, cm model.ColumnMap, resolved []resolve.ResolvedRow) *model.DeterministicAnalysis {
	rows := make([]model.RiskRow, 0, len(resolved))
	distribution := make(map[model.RiskLevel]int, len(model.AllLevels))
	for _, lvl := range model.AllLevels {
		distribution[lvl] = 0
	}

	scored := 0
	var highest *float64
	highestLevel := model.LevelUndetermined

	for _, rr := range resolved {
		var scorePtr *float64
		if v, ok := resolve.ParseScore(rr.ScoreText); ok {
			value := v
			scorePtr = &value
			scored++
		}

		level := Classify(scorePtr)
		distribution[level]++

		if scorePtr != nil && (highest == nil || *scorePtr > *highest) {
			highest = scorePtr
			highestLevel = level
		}

		rows = append(rows, model.RiskRow{
			RowIndex:       rr.RowIndex,
			Hazard:         rr.Hazard,
			ActivityOrArea: rr.Activity,
			Observation:    rr.Observation,
			RiskScore:      scorePtr,
			RiskLevel:      level,
		})
	}

	methodology := model.MethodologyQualitative
	if scored > 0 {
		methodology = model.MethodologyFineKinney
	}

	return &model.DeterministicAnalysis{
		SheetName:      sheetName,
		HeaderRowIndex: headerRow,
		HeaderTrusted:  headerTrusted,
		ColumnMap:      cm,
		Methodology:    methodology,
		Rows:           rows,
		ScoredRowCount: scored,
		HighestScore:   highest,
		HighestLevel:   highestLevel,
		Distribution:   distribution,
		TopRisks:       topRisks(rows),
	}
}

// topRisks sorts descending by score with nil scores last, takes the first
// topRiskCount rows and stamps contiguous ranks starting at 1. Ties keep
// row order so the result is reproducible.
func topRisks(rows []model.RiskRow) []model.RiskRow {
	sorted := make([]model.RiskRow, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(a, b int) bool {
		sa, sb := sorted[a].RiskScore, sorted[b].RiskScore
		switch {
		case sa == nil:
			return false
		case sb == nil:
			return true
		default:
			return *sa > *sb
		}
	})

	if len(sorted) > topRiskCount {
		sorted = sorted[:topRiskCount]
	}
	for i := range sorted {
		sorted[i].Rank = i + 1
	}
	return sorted
}
