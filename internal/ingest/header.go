package ingest

import (
	"strings"

	"github.com/regintel/riskscan/internal/model"
)

// headerKeywords is the bilingual (English/Turkish) vocabulary used to judge
// header-likelihood. Risk registers in the field mix both languages freely,
// so every term carries its local equivalent.
var headerKeywords = []string{
	"hazard", "tehlike",
	"risk",
	"activity", "faaliyet",
	"area", "bölüm", "alan",
	"probability", "likelihood", "olasılık", "ihtimal",
	"severity", "şiddet", "siddet",
	"exposure", "frequency", "frekans", "maruziyet",
	"score", "skor", "puan",
	"control", "measure", "önlem", "kontrol",
	"owner", "responsible", "sorumlu",
	"deadline", "termin",
	"observation", "gözlem", "tespit",
}

const (
	// sparseRowPenalty discourages mostly-empty rows from winning: a real
	// header names at least a few columns.
	sparseRowPenalty = 2
	sparseRowMinimum = 3

	// headerTrustThreshold is the minimum score needed to trust a detected
	// header. Below it the detector still answers (row 0) but flags the
	// result so callers treat it as low-confidence.
	headerTrustThreshold = 2
)

// HeaderDetector scores candidate rows for header-likelihood within a
// bounded scan window.
type HeaderDetector struct {
	scanRows int
}

// NewHeaderDetector creates a detector scanning at most scanRows rows.
func NewHeaderDetector(scanRows int) *HeaderDetector {
	if scanRows <= 0 {
		scanRows = 30
	}
	return &HeaderDetector{scanRows: scanRows}
}

// Detect returns the best-scoring header candidate and whether the score
// cleared the trust threshold. It never fails: when nothing clears the
// threshold it defaults to row 0 with trusted=false.
func (d *HeaderDetector) Detect(rows [][]string) (model.HeaderCandidate, bool) {
	best := model.HeaderCandidate{RowIndex: 0, Score: 0}
	first := true

	limit := len(rows)
	if limit > d.scanRows {
		limit = d.scanRows
	}

	for i := 0; i < limit; i++ {
		score := scoreHeaderRow(rows[i])
		// Strictly greater: ties resolve to the lowest row index.
		if first || score > best.Score {
			best = model.HeaderCandidate{RowIndex: i, Score: score}
			first = false
		}
	}

	if best.Score < headerTrustThreshold {
		return model.HeaderCandidate{RowIndex: 0, Score: best.Score}, false
	}
	return best, true
}

func scoreHeaderRow(row []string) int {
	score := 0
	nonEmpty := 0

	for _, cell := range row {
		text := strings.ToLower(strings.TrimSpace(cell))
		if text == "" {
			continue
		}
		nonEmpty++
		for _, kw := range headerKeywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
	}

	if nonEmpty < sparseRowMinimum {
		score -= sparseRowPenalty
	}
	return score
}
