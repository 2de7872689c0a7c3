package pipeline

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/regintel/riskscan/internal/ingest"
	"github.com/regintel/riskscan/internal/llm"
	"github.com/regintel/riskscan/internal/model"
	"github.com/regintel/riskscan/internal/reconcile"
	"github.com/regintel/riskscan/internal/resolve"
	"github.com/regintel/riskscan/internal/score"
)

// Pipeline drives one upload through ingestion, resolution, deterministic
// scoring, AI orchestration and reconciliation. Each run is a synchronous
// top-to-bottom transformation over an immutable workbook snapshot; the
// pipeline itself holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	reader       *ingest.Reader
	selector     *ingest.Selector
	resolver     *resolve.Resolver
	scorer       *score.Scorer
	orchestrator *llm.Orchestrator
	reconciler   *reconcile.Reconciler
	log          hclog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithOrchestrator injects a pre-built orchestrator (tests use this to
// script provider behavior).
func WithOrchestrator(o *llm.Orchestrator) Option {
	return func(p *Pipeline) { p.orchestrator = o }
}

// New creates a Pipeline from configuration.
func New(cfg *model.Config, log hclog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		reader:     ingest.NewReader(cfg.Limits.MaxFileBytes),
		selector:   ingest.NewSelector(cfg.Ingest),
		resolver:   resolve.NewResolver(),
		scorer:     score.NewScorer(),
		reconciler: reconcile.NewReconciler(),
		log:        log,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.orchestrator == nil {
		p.orchestrator = llm.NewOrchestrator(cfg.LLM, log.Named("llm"))
	}
	return p
}

// RunResult is the complete outcome of one pipeline run.
type RunResult struct {
	FileName         string
	PrimarySheetName string
	SheetCount       int
	Deterministic    *model.DeterministicAnalysis
	Analysis         *model.AnalysisReport
	Warnings         []string
	AIUsed           bool
}

// Analyze transforms one uploaded document into one report. Input errors
// (bad bytes, empty workbook) abort; every AI-side failure degrades to the
// deterministic analysis with a warning. The returned error is non-nil only
// for input errors and fatal configuration errors.
func (p *Pipeline) Analyze(ctx context.Context, data []byte, filename string) (*RunResult, error) {
	wb, err := p.reader.Read(data, filename)
	if err != nil {
		return nil, err
	}

	sel := p.selector.Select(wb)
	sheet := wb.Sheets[sel.SheetIndex]

	var warnings []string
	if sel.Uncertain {
		warnings = append(warnings, "primary sheet selection is uncertain: no sheet resembled a risk register")
	}
	if !sel.HeaderTrusted {
		warnings = append(warnings, "header row could not be identified with confidence; assuming the first row")
	}

	headerRow := []string{}
	if sel.Header.RowIndex < len(sheet.Rows) {
		headerRow = sheet.Rows[sel.Header.RowIndex]
	}

	cm := p.resolver.ResolveColumns(headerRow)
	if cm.Score == model.Unresolved {
		warnings = append(warnings, "no risk score column detected; findings are unscored")
	}

	rows := p.resolver.ResolveRows(sheet, sel.Header.RowIndex, cm)
	if len(rows) == 0 {
		warnings = append(warnings, "no risk rows found in the primary sheet")
	}

	det := p.scorer.Calculate(sheet.Name, sel.Header.RowIndex, sel.HeaderTrusted, cm, rows)

	p.log.Debug("deterministic analysis complete",
		"sheet", sheet.Name,
		"rows", len(det.Rows),
		"scored", det.ScoredRowCount,
		"methodology", det.Methodology)

	var aiObject map[string]interface{}
	if p.orchestrator.Enabled() && len(rows) > 0 {
		prompt := llm.BuildPrompt(wb.FileName, sheet.Name, det)
		aiResult, err := p.orchestrator.Run(ctx, prompt)
		if err != nil {
			// Fatal configuration errors surface with their own code so
			// operators can tell "misconfigured" from "degraded".
			return nil, err
		}
		warnings = append(warnings, aiResult.Warnings...)
		aiObject = aiResult.Object
	}

	report, reconcileWarnings := p.reconciler.Reconcile(det, aiObject)
	warnings = append(warnings, reconcileWarnings...)
	report.Warnings = warnings

	return &RunResult{
		FileName:         wb.FileName,
		PrimarySheetName: sheet.Name,
		SheetCount:       len(wb.Sheets),
		Deterministic:    det,
		Analysis:         report,
		Warnings:         warnings,
		AIUsed:           report.AIUsed,
	}, nil
}
