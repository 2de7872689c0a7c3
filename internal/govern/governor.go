package govern

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/regintel/riskscan/internal/model"
	"github.com/regintel/riskscan/internal/pipeline"
)

// Request is one governed analysis request. Identity is the caller's
// network address (or tenant id when the upstream auth layer supplies one);
// Entitled carries the pre-resolved entitlement assertion when present.
type Request struct {
	Identity string
	Entitled *bool
	FileName string
	Data     []byte
}

// Governor applies rate limiting, entitlement and file checks in that
// order, then drives the pipeline and assembles the response envelope.
// Governance failures reject before any parsing cost is paid.
type Governor struct {
	limiter  *RateLimiter
	entitler Entitler
	maxBytes int64
	pipe     *pipeline.Pipeline
	log      hclog.Logger
	nowFunc  func() time.Time
}

// NewGovernor creates a Governor.
func NewGovernor(cfg *model.Config, limiter *RateLimiter, entitler Entitler, pipe *pipeline.Pipeline, log hclog.Logger) *Governor {
	return &Governor{
		limiter:  limiter,
		entitler: entitler,
		maxBytes: cfg.Limits.MaxFileBytes,
		pipe:     pipe,
		log:      log,
		nowFunc:  time.Now,
	}
}

// Process runs one request end to end and always returns an envelope.
func (g *Governor) Process(ctx context.Context, req Request) *model.Envelope {
	start := g.nowFunc()
	requestID := uuid.NewString()

	log := g.log.With("request_id", requestID, "identity", req.Identity)

	// 1. Rate limit, before any file is touched.
	if err := g.limiter.Allow(req.Identity); err != nil {
		log.Info("request rejected by rate limiter")
		return g.errorEnvelope(requestID, start, err)
	}

	// 2. Entitlement.
	entitled := false
	if req.Entitled != nil {
		entitled = *req.Entitled
	} else {
		ok, err := g.entitler.IsEntitled(ctx, req.Identity)
		if err != nil {
			log.Warn("entitlement resolution failed", "error", err)
		}
		entitled = ok
	}
	if !entitled {
		log.Info("request rejected: caller not entitled")
		return g.errorEnvelope(requestID, start, model.ErrNotEntitled)
	}

	// 3. File checks, still before parsing.
	if err := ValidateUpload(req.FileName, int64(len(req.Data)), g.maxBytes); err != nil {
		return g.errorEnvelope(requestID, start, err)
	}

	// 4. Pipeline.
	result, err := g.pipe.Analyze(ctx, req.Data, req.FileName)
	if err != nil {
		log.Warn("pipeline failed", "error", err)
		return g.errorEnvelope(requestID, start, err)
	}

	log.Info("analysis complete",
		"sheet", result.PrimarySheetName,
		"rows", len(result.Deterministic.Rows),
		"ai_used", result.AIUsed,
		"warnings", len(result.Warnings))

	return &model.Envelope{
		Success:          true,
		Type:             model.ReportType,
		FileName:         result.FileName,
		PrimarySheetName: result.PrimarySheetName,
		Analysis:         result.Analysis,
		Deterministic:    result.Deterministic,
		Warnings:         result.Warnings,
		Meta: model.ResponseMeta{
			RequestID:  requestID,
			DurationMs: g.nowFunc().Sub(start).Milliseconds(),
			SheetCount: result.SheetCount,
			AIUsed:     result.AIUsed,
		},
	}
}

func (g *Governor) errorEnvelope(requestID string, start time.Time, err error) *model.Envelope {
	code := model.CodeFor(err)
	message := err.Error()
	if code == model.CodeInternal {
		// Never leak internals; the request id is enough for correlation.
		message = "unexpected error while processing the request"
	}
	return &model.Envelope{
		Success: false,
		Error:   &model.ErrorBody{Code: code, Message: message},
		Meta: model.ResponseMeta{
			RequestID:  requestID,
			DurationMs: g.nowFunc().Sub(start).Milliseconds(),
		},
	}
}
