package model

// RiskLevel classifies a numeric risk score into one of the fixed
// Fine-Kinney severity bands. Undetermined covers rows whose score cell
// could not be parsed as a number.
type RiskLevel string

const (
	LevelAcceptableLow RiskLevel = "acceptable_low"
	LevelNotable       RiskLevel = "notable"
	LevelSignificant   RiskLevel = "significant"
	LevelHigh          RiskLevel = "high"
	LevelVeryHigh      RiskLevel = "very_high"
	LevelUndetermined  RiskLevel = "undetermined"
)

// AllLevels lists every level in ascending severity order, Undetermined last.
// Distribution maps are initialized over this set so that every band is
// always present, zero or not.
var AllLevels = []RiskLevel{
	LevelAcceptableLow,
	LevelNotable,
	LevelSignificant,
	LevelHigh,
	LevelVeryHigh,
	LevelUndetermined,
}

// RiskRow is one finding derived from a data row of the primary sheet.
// Hazard is guaranteed non-empty by the column-resolution fallback chain.
type RiskRow struct {
	Rank           int       `json:"rank,omitempty"`
	RowIndex       int       `json:"rowIndex"`
	Hazard         string    `json:"hazard"`
	ActivityOrArea string    `json:"activityOrArea,omitempty"`
	Observation    string    `json:"observation,omitempty"`
	RiskScore      *float64  `json:"riskScore"`
	RiskLevel      RiskLevel `json:"riskLevel"`
}

// Methodology names recognized in reports.
const (
	MethodologyFineKinney  = "Fine-Kinney/Matrix"
	MethodologyQualitative = "Qualitative"
)

// DeterministicAnalysis is the rule-based computation that is always
// available regardless of external-service availability. It is computed once
// per request and treated as immutable afterwards; its aggregate numbers are
// authoritative over anything the AI step produces.
type DeterministicAnalysis struct {
	SheetName      string            `json:"sheetName"`
	HeaderRowIndex int               `json:"headerRowIndex"`
	HeaderTrusted  bool              `json:"headerTrusted"`
	ColumnMap      ColumnMap         `json:"columnMap"`
	Methodology    string            `json:"methodology"`
	Rows           []RiskRow         `json:"rows"`
	ScoredRowCount int               `json:"scoredRowCount"`
	HighestScore   *float64          `json:"highestScore"`
	HighestLevel   RiskLevel         `json:"highestLevel"`
	Distribution   map[RiskLevel]int `json:"distribution"`
	TopRisks       []RiskRow         `json:"topRisks"`
}
