package model

// ReportStats mirrors the deterministic aggregates inside the externally
// visible report. These numbers always come from DeterministicAnalysis;
// AI-generated figures are never allowed to replace them.
type ReportStats struct {
	TotalFindings  int               `json:"totalFindings"`
	ScoredFindings int               `json:"scoredFindings"`
	HighestScore   *float64          `json:"highestScore"`
	HighestLevel   RiskLevel         `json:"highestLevel"`
	Methodology    string            `json:"methodology"`
	Distribution   map[RiskLevel]int `json:"distribution"`
}

// RiskRecommendation is one ranked finding in the final report, optionally
// enriched with AI-authored remediation text and standard references.
type RiskRecommendation struct {
	Rank           int       `json:"rank"`
	Hazard         string    `json:"hazard"`
	ActivityOrArea string    `json:"activityOrArea,omitempty"`
	RiskScore      *float64  `json:"riskScore"`
	RiskLevel      RiskLevel `json:"riskLevel"`
	Recommendation string    `json:"recommendation,omitempty"`
	References     []string  `json:"references,omitempty"`
}

// AnalysisReport is the externally visible result of one pipeline run.
// Constructed at the end of the pipeline, never persisted by this subsystem.
type AnalysisReport struct {
	DocumentType    string               `json:"documentType,omitempty"`
	Confidence      string               `json:"confidence,omitempty"`
	DocumentSummary string               `json:"documentSummary"`
	Stats           ReportStats          `json:"stats"`
	TopRisks        []RiskRecommendation `json:"topRisks"`
	ComplianceGaps  []string             `json:"complianceGaps"`
	ActionPlan      []string             `json:"actionPlan"`
	AIUsed          bool                 `json:"aiUsed"`
	Warnings        []string             `json:"warnings,omitempty"`
}

// ResponseMeta carries per-request diagnostics in every envelope.
type ResponseMeta struct {
	RequestID  string `json:"requestId"`
	DurationMs int64  `json:"durationMs"`
	SheetCount int    `json:"sheetCount,omitempty"`
	AIUsed     bool   `json:"aiUsed"`
}

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Envelope is the single response shape returned by the analyze endpoint.
type Envelope struct {
	Success          bool                   `json:"success"`
	Type             string                 `json:"type,omitempty"`
	FileName         string                 `json:"fileName,omitempty"`
	PrimarySheetName string                 `json:"primarySheetName,omitempty"`
	Analysis         *AnalysisReport        `json:"analysis,omitempty"`
	Deterministic    *DeterministicAnalysis `json:"deterministic,omitempty"`
	Warnings         []string               `json:"warnings,omitempty"`
	Error            *ErrorBody             `json:"error,omitempty"`
	Meta             ResponseMeta           `json:"meta"`
}

// ReportType is the fixed envelope type for risk-register analyses.
const ReportType = "risk-analysis"
