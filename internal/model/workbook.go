package model

// Workbook is an immutable, sheet-indexed snapshot of an uploaded spreadsheet.
// Cells are raw text as rendered by the spreadsheet engine; the pipeline never
// mutates a Workbook after parsing.
type Workbook struct {
	FileName string  `json:"fileName"`
	Sheets   []Sheet `json:"sheets"`
}

// Sheet is a 2-D grid of string cells belonging to one worksheet.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Cell returns the cell at (row, col), or "" when out of range. Rows in
// spreadsheet exports are frequently ragged, so bounds are always checked.
func (s Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// HeaderCandidate is a scored header-row hypothesis within one sheet.
type HeaderCandidate struct {
	RowIndex int `json:"rowIndex"`
	Score    int `json:"score"`
}

// SheetScore is the ranking record produced for each sheet during
// primary-sheet selection.
type SheetScore struct {
	SheetIndex int             `json:"sheetIndex"`
	SheetName  string          `json:"sheetName"`
	Header     HeaderCandidate `json:"header"`
	Total      int             `json:"total"`
	SampledRows int            `json:"sampledRows"`
}

// ColumnMap maps semantic roles to column indices in the primary sheet.
// An index of -1 means the role could not be resolved with confidence.
type ColumnMap struct {
	Hazard      int `json:"hazard"`
	Activity    int `json:"activity"`
	Observation int `json:"observation"`
	Score       int `json:"score"`
}

// Unresolved marks a semantic role with no confident column match.
const Unresolved = -1

// NewColumnMap returns a ColumnMap with every role unresolved.
func NewColumnMap() ColumnMap {
	return ColumnMap{
		Hazard:      Unresolved,
		Activity:    Unresolved,
		Observation: Unresolved,
		Score:       Unresolved,
	}
}
