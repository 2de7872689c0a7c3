package resolve

import (
	"strings"

	"github.com/regintel/riskscan/internal/model"
)

// roleKeyword couples a header term with its match weight. Weights are
// load-bearing business logic tuned against field spreadsheets, not
// incidental constants: changing them changes which columns win.
type roleKeyword struct {
	term   string
	weight int
}

var (
	hazardKeywords = []roleKeyword{
		{"tehlike", 10},
		{"hazard", 10},
		{"tehlike tanımı", 9},
		{"risk kaynağı", 8},
		{"risk tanımı", 8},
		{"danger", 6},
	}
	activityKeywords = []roleKeyword{
		{"faaliyet", 10},
		{"activity", 10},
		{"bölüm", 8},
		{"area", 8},
		{"location", 7},
		{"lokasyon", 7},
		{"alan", 6},
		{"department", 6},
	}
	observationKeywords = []roleKeyword{
		{"gözlem", 10},
		{"observation", 10},
		{"tespit", 9},
		{"açıklama", 7},
		{"description", 7},
		{"mevcut durum", 7},
	}
	scoreKeywords = []roleKeyword{
		{"risk skoru", 12},
		{"risk score", 12},
		{"risk puanı", 11},
		{"skor", 9},
		{"score", 9},
		{"puan", 8},
		{"toplam", 6},
		{"total", 6},
	}
)

// distractorTokens disqualify date, sequence and id columns that would
// otherwise substring-match a role ("Risk No", "Tarih", "Revizyon No").
// Short tokens are matched whole-word to avoid accidental hits inside
// ordinary words.
var (
	distractorExactTokens = []string{"no", "id", "s.no", "sıra", "ref", "index"}
	distractorSubstrings  = []string{"tarih", "date", "termin", "deadline", "revizyon", "revision", "sıra no"}
)

const (
	exactMatchMultiplier = 20
	substringMultiplier  = 5
	distractorPenalty    = -80
	// minConfidence leaves a role unresolved rather than guessing from a
	// marginal match.
	minConfidence = 5
)

// Resolver maps detected headers to semantic roles and materializes data
// rows with the hazard fallback chain applied.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveColumns computes the best column for each semantic role from the
// header row. Unresolved roles stay at model.Unresolved; the hazard/score
// collision guard and structural priors are applied before returning.
func (r *Resolver) ResolveColumns(header []string) model.ColumnMap {
	cm := model.NewColumnMap()
	cm.Hazard = bestColumn(header, hazardKeywords)
	cm.Activity = bestColumn(header, activityKeywords)
	cm.Observation = bestColumn(header, observationKeywords)
	cm.Score = bestColumn(header, scoreKeywords)

	// The hazard description and the numeric score can never share a
	// column; a collision means the header matching went wrong and the
	// structural priors take over.
	if cm.Hazard == model.Unresolved || (cm.Score != model.Unresolved && cm.Hazard == cm.Score) {
		cm.Hazard = hazardStructuralPrior(cm, len(header))
	}

	return cm
}

// bestColumn scores each header cell for one role and returns the winning
// index, or model.Unresolved when nothing clears minConfidence.
func bestColumn(header []string, keywords []roleKeyword) int {
	bestIdx := model.Unresolved
	bestScore := 0

	for i, cell := range header {
		text := normalizeHeader(cell)
		if text == "" {
			continue
		}

		score := 0
		for _, kw := range keywords {
			if text == kw.term {
				score += kw.weight * exactMatchMultiplier
			} else if strings.Contains(text, kw.term) {
				score += len(kw.term) * substringMultiplier
			}
		}
		if score > 0 && isDistractor(text) {
			score += distractorPenalty
		}

		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestScore <= minConfidence {
		return model.Unresolved
	}
	return bestIdx
}

// hazardStructuralPrior re-guesses the hazard column from fixed positions:
// registers in practice put the hazard description in the second or third
// physical column. Whichever is not already claimed wins.
func hazardStructuralPrior(cm model.ColumnMap, width int) int {
	for _, candidate := range []int{1, 2} {
		if candidate >= width {
			continue
		}
		if candidate == cm.Activity || candidate == cm.Score {
			continue
		}
		return candidate
	}
	if width > 0 {
		return 0
	}
	return model.Unresolved
}

func normalizeHeader(cell string) string {
	return strings.ToLower(strings.TrimSpace(cell))
}

func isDistractor(text string) bool {
	for _, sub := range distractorSubstrings {
		if strings.Contains(text, sub) {
			return true
		}
	}
	for _, tok := range strings.Fields(text) {
		tok = strings.Trim(tok, ".:;()")
		for _, d := range distractorExactTokens {
			if tok == d {
				return true
			}
		}
	}
	return false
}
