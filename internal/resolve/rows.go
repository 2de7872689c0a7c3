package resolve

import (
	"strconv"
	"strings"

	"github.com/regintel/riskscan/internal/model"
)

// ResolvedRow is one data row with semantic cells extracted. ScoreText is
// the raw cell; numeric parsing belongs to the scorer.
type ResolvedRow struct {
	RowIndex    int
	Hazard      string
	Activity    string
	Observation string
	ScoreText   string
}

const (
	// hazardMaxLen bounds the hazard text carried into reports.
	hazardMaxLen = 200
	// hazardPlaceholder is the absolute last resort of the fallback chain.
	// Findings must never surface with an empty hazard, even from rows that
	// carry no usable text at all.
	hazardPlaceholder = "Belirtilmemiş tehlike (satırdan metin çıkarılamadı)"
	// minCellsPerRow treats sparser rows as blank/structural, not findings.
	minCellsPerRow = 2
	// adjacentSearchMinLen filters out codes and abbreviations when probing
	// neighboring cells for hazard text.
	adjacentSearchMinLen = 3
)

// ResolveRows materializes every data row below the header. Rows with fewer
// than minCellsPerRow non-empty cells are skipped; every returned row has a
// non-empty, non-numeric hazard.
func (r *Resolver) ResolveRows(sheet model.Sheet, headerRow int, cm model.ColumnMap) []ResolvedRow {
	var out []ResolvedRow

	for i := headerRow + 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if countNonEmpty(row) < minCellsPerRow {
			continue
		}

		activity := cellAt(row, cm.Activity)
		observation := cellAt(row, cm.Observation)

		out = append(out, ResolvedRow{
			RowIndex:    i,
			Hazard:      hazardFor(row, cm, activity, observation),
			Activity:    strings.TrimSpace(activity),
			Observation: strings.TrimSpace(observation),
			ScoreText:   cellAt(row, cm.Score),
		})
	}

	return out
}

// hazardFor walks the fallback chain until it produces non-empty text. The
// ordering is deliberate policy: the system always surfaces something
// actionable per row, trading precision for coverage. Downstream scoring
// assumes the result is never blank.
func hazardFor(row []string, cm model.ColumnMap, activity, observation string) string {
	hazard := strings.TrimSpace(cellAt(row, cm.Hazard))

	// 1. Mapped cell, unless it is empty or just a number.
	if hazard != "" && !isNumeric(hazard) {
		return truncate(hazard, hazardMaxLen)
	}

	// 2. Adjacent columns and the activity/observation cells.
	if cm.Hazard != model.Unresolved {
		for _, c := range []int{cm.Hazard - 1, cm.Hazard + 1} {
			if text := usableText(cellAt(row, c)); text != "" {
				return truncate(text, hazardMaxLen)
			}
		}
	}
	for _, cell := range []string{activity, observation} {
		if text := usableText(cell); text != "" {
			return truncate(text, hazardMaxLen)
		}
	}

	// 3. Concatenated activity and observation.
	combined := strings.TrimSpace(strings.TrimSpace(activity) + " " + strings.TrimSpace(observation))
	if combined != "" && !isNumeric(combined) {
		return truncate(combined, hazardMaxLen)
	}

	// 4. Longest textual cell anywhere in the row.
	longest := ""
	for _, cell := range row {
		text := strings.TrimSpace(cell)
		if isNumeric(text) {
			continue
		}
		if len(text) > len(longest) {
			longest = text
		}
	}
	if longest != "" {
		return truncate(longest, hazardMaxLen)
	}

	// 5. Fixed placeholder.
	return truncate(hazardPlaceholder, hazardMaxLen)
}

// usableText accepts a cell as hazard text when it is non-empty, not a
// number, and long enough to be a description rather than a code.
func usableText(cell string) string {
	text := strings.TrimSpace(cell)
	if len([]rune(text)) <= adjacentSearchMinLen || isNumeric(text) {
		return ""
	}
	return text
}

// isNumeric reports whether text parses as a locale-tolerant number.
func isNumeric(text string) bool {
	_, ok := ParseScore(text)
	return ok
}

// ParseScore parses a cell as a number, accepting both comma and dot
// decimal separators. Non-numeric cells report ok=false, never zero.
func ParseScore(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	text = strings.ReplaceAll(text, ",", ".")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func countNonEmpty(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
