package ingest

import (
	"sort"
	"strings"

	"github.com/regintel/riskscan/internal/model"
)

// Semantic header groups. A sheet whose detected header row names these
// concepts is far more likely to be the actual risk register than a cover
// page or a lookup table, so each group present adds structural bonus points.
var (
	hazardTerms      = []string{"hazard", "tehlike"}
	riskTerms        = []string{"risk"}
	probabilityTerms = []string{"probability", "likelihood", "olasılık", "ihtimal"}
	exposureTerms    = []string{"exposure", "frequency", "frekans", "maruziyet"}
	severityTerms    = []string{"severity", "şiddet", "siddet"}
	scoreTerms       = []string{"score", "skor", "puan"}
)

const (
	bonusHazardHeader    = 3
	bonusRiskHeader      = 2
	bonusProbability     = 2
	bonusExposure        = 2
	bonusSeverity        = 2
	bonusAggregateScore  = 3
	bonusModerateRowMass = 1 // >= 15 sampled rows
	bonusLargeRowMass    = 1 // >= 40 sampled rows, on top of the moderate bonus
)

// Selection is the outcome of primary-sheet selection.
type Selection struct {
	SheetIndex    int
	SheetName     string
	Header        model.HeaderCandidate
	HeaderTrusted bool
	Scores        []model.SheetScore
	// Uncertain is set when every sheet scored zero; the choice is then
	// best-effort workbook order and callers must warn downstream.
	Uncertain bool
}

// Selector ranks sheets and picks the most probable risk register.
type Selector struct {
	detector   *HeaderDetector
	maxSheets  int
	sampleRows int
	sampleCols int
}

// NewSelector creates a Selector with the given scan bounds.
func NewSelector(cfg model.IngestConfig) *Selector {
	s := &Selector{
		detector:   NewHeaderDetector(cfg.HeaderScanRows),
		maxSheets:  cfg.MaxSheets,
		sampleRows: cfg.SampleRows,
		sampleCols: cfg.SampleCols,
	}
	if s.maxSheets <= 0 {
		s.maxSheets = 8
	}
	if s.sampleRows <= 0 {
		s.sampleRows = 60
	}
	if s.sampleCols <= 0 {
		s.sampleCols = 30
	}
	return s
}

// Select scores every sheet (capped at maxSheets) and returns the winner.
// The workbook is assumed non-empty; selection always succeeds.
func (s *Selector) Select(wb *model.Workbook) Selection {
	limit := len(wb.Sheets)
	if limit > s.maxSheets {
		limit = s.maxSheets
	}

	scores := make([]model.SheetScore, 0, limit)
	headers := make([]model.HeaderCandidate, limit)
	trusted := make([]bool, limit)

	for i := 0; i < limit; i++ {
		sample := s.sample(wb.Sheets[i].Rows)
		header, ok := s.detector.Detect(sample)
		headers[i] = header
		trusted[i] = ok

		total := header.Score
		if len(sample) > 0 {
			total += structuralBonus(rowAt(sample, header.RowIndex))
		}
		if len(sample) >= 15 {
			total += bonusModerateRowMass
		}
		if len(sample) >= 40 {
			total += bonusLargeRowMass
		}

		scores = append(scores, model.SheetScore{
			SheetIndex:  i,
			SheetName:   wb.Sheets[i].Name,
			Header:      header,
			Total:       total,
			SampledRows: len(sample),
		})
	}

	ranked := make([]model.SheetScore, len(scores))
	copy(ranked, scores)
	// Stable keeps workbook order for ties.
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Total > ranked[b].Total
	})

	winner := ranked[0]
	uncertain := true
	for _, sc := range scores {
		if sc.Total > 0 {
			uncertain = false
			break
		}
	}

	return Selection{
		SheetIndex:    winner.SheetIndex,
		SheetName:     winner.SheetName,
		Header:        headers[winner.SheetIndex],
		HeaderTrusted: trusted[winner.SheetIndex],
		Scores:        ranked,
		Uncertain:     uncertain,
	}
}

// sample bounds a sheet to sampleRows x sampleCols so oversized sheets
// cannot dominate scan cost.
func (s *Selector) sample(rows [][]string) [][]string {
	limit := len(rows)
	if limit > s.sampleRows {
		limit = s.sampleRows
	}
	out := make([][]string, limit)
	for i := 0; i < limit; i++ {
		row := rows[i]
		if len(row) > s.sampleCols {
			row = row[:s.sampleCols]
		}
		out[i] = row
	}
	return out
}

func structuralBonus(header []string) int {
	bonus := 0
	if headerHasAny(header, hazardTerms) {
		bonus += bonusHazardHeader
	}
	if headerHasAny(header, riskTerms) {
		bonus += bonusRiskHeader
	}
	if headerHasAny(header, probabilityTerms) {
		bonus += bonusProbability
	}
	if headerHasAny(header, exposureTerms) {
		bonus += bonusExposure
	}
	if headerHasAny(header, severityTerms) {
		bonus += bonusSeverity
	}
	if hasAggregateScoreHeader(header) {
		bonus += bonusAggregateScore
	}
	return bonus
}

func headerHasAny(header []string, terms []string) bool {
	for _, cell := range header {
		text := strings.ToLower(cell)
		for _, t := range terms {
			if strings.Contains(text, t) {
				return true
			}
		}
	}
	return false
}

// hasAggregateScoreHeader looks for a combined risk-score column ("Risk
// Skoru", "Risk Score", "Toplam Puan"), distinct from the probability and
// severity sub-score columns.
func hasAggregateScoreHeader(header []string) bool {
	for _, cell := range header {
		text := strings.ToLower(cell)
		if !headerHasAny([]string{text}, scoreTerms) {
			continue
		}
		if strings.Contains(text, "risk") || strings.Contains(text, "toplam") || strings.Contains(text, "total") {
			return true
		}
	}
	return false
}

func rowAt(rows [][]string, idx int) []string {
	if idx < 0 || idx >= len(rows) {
		return nil
	}
	return rows[idx]
}
