package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"github.com/regintel/riskscan/internal/model"
	"github.com/regintel/riskscan/internal/util"
)

// Clock abstracts time so retry/backoff tests run without real elapsed
// time. Sleep must honor context cancellation.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// callState is the orchestrator's per-request state machine.
type callState int

const (
	stateIdle callState = iota
	stateCalling
	stateSuccess
	stateRetryableFailure
	stateFatalFailure
)

func (s callState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateCalling:
		return "calling"
	case stateSuccess:
		return "success"
	case stateRetryableFailure:
		return "retryable_failure"
	case stateFatalFailure:
		return "fatal_failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of one orchestrated generation run. Object is nil
// whenever the AI step degraded; Warnings explains each degradation.
type Result struct {
	Object   map[string]interface{}
	RawText  string
	Model    string
	Warnings []string
}

// Orchestrator drives the external generation call with an overall timeout,
// bounded retries, cooldowns and quota classification. The provider is
// constructed lazily so a missing credential surfaces on first use rather
// than at startup.
type Orchestrator struct {
	cfg     model.LLMConfig
	clock   Clock
	limiter *rate.Limiter
	log     hclog.Logger

	mu       sync.Mutex
	provider Provider
	initErr  error
	initDone bool
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithProvider injects a ready provider, bypassing lazy construction.
func WithProvider(p Provider) Option {
	return func(o *Orchestrator) {
		o.provider = p
		o.initDone = true
	}
}

// WithClock injects a test clock.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// NewOrchestrator creates an Orchestrator from configuration.
func NewOrchestrator(cfg model.LLMConfig, log hclog.Logger, opts ...Option) *Orchestrator {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	o := &Orchestrator{
		cfg:     cfg,
		clock:   realClock{},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Enabled reports whether a generation backend is configured at all.
func (o *Orchestrator) Enabled() bool {
	if o.initDone {
		return o.provider != nil
	}
	return o.cfg.Provider != ""
}

// Run executes the generation state machine for one prompt. The returned
// error is non-nil only for fatal configuration failures (missing
// credential, unresolvable model); every degradable failure is converted to
// a warning and a nil Object so the caller falls back deterministically.
func (o *Orchestrator) Run(ctx context.Context, prompt string) (*Result, error) {
	res := &Result{}

	provider, err := o.providerLazy()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		res.Warnings = append(res.Warnings, "AI analysis disabled: no generation provider configured")
		return res, nil
	}

	timeout := o.cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	attempts := o.cfg.Attempts
	if attempts <= 0 {
		attempts = 2
	}

	state := stateIdle
	for attempt := 1; attempt <= attempts; attempt++ {
		state = stateCalling

		if err := o.limiter.Wait(ctx); err != nil {
			res.Warnings = append(res.Warnings, timeoutWarning(timeout))
			return res, nil
		}

		resp, err := provider.Generate(ctx, GenerateRequest{
			Prompt:    prompt,
			Model:     o.cfg.Model,
			MaxTokens: o.cfg.MaxTokens,
		})

		switch {
		case err == nil:
			obj := util.ExtractJSON(resp.Text)
			if obj != nil {
				state = stateSuccess
				res.Object = obj
				res.RawText = resp.Text
				res.Model = resp.Model
				return res, nil
			}
			// Model answered but not with parseable JSON; cool down and
			// give it one more chance if attempts remain.
			state = stateRetryableFailure
			o.log.Warn("model output was not parseable JSON", "attempt", attempt)
			if attempt < attempts {
				if serr := o.clock.Sleep(ctx, o.parseCooldown()); serr != nil {
					res.Warnings = append(res.Warnings, timeoutWarning(timeout))
					return res, nil
				}
				continue
			}
			res.Warnings = append(res.Warnings, "AI output could not be parsed as JSON; deterministic analysis returned")

		case errors.Is(err, model.ErrModelNotFound):
			// Misconfiguration, not degradation: no retry, distinct code.
			state = stateFatalFailure
			return nil, err

		case errors.Is(err, ErrQuotaExhausted):
			state = stateRetryableFailure
			o.log.Warn("generation quota exhausted", "attempt", attempt)
			if attempt < attempts {
				if serr := o.clock.Sleep(ctx, o.quotaCooldown()); serr != nil {
					res.Warnings = append(res.Warnings, timeoutWarning(timeout))
					return res, nil
				}
				continue
			}
			res.Warnings = append(res.Warnings, "AI quota exhausted after retries; deterministic analysis returned")

		case errors.Is(err, ErrEmptyResponse):
			state = stateRetryableFailure
			o.log.Warn("model returned an empty response", "attempt", attempt)
			if attempt < attempts {
				continue
			}
			res.Warnings = append(res.Warnings, "AI returned empty responses; deterministic analysis returned")

		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			state = stateRetryableFailure
			res.Warnings = append(res.Warnings, timeoutWarning(timeout))
			return res, nil

		default:
			state = stateRetryableFailure
			o.log.Warn("generation call failed", "attempt", attempt, "error", err)
			if attempt < attempts {
				continue
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("AI call failed: %v; deterministic analysis returned", err))
		}
	}

	o.log.Debug("generation attempts exhausted", "final_state", state.String())
	return res, nil
}

func (o *Orchestrator) providerLazy() (Provider, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.initDone {
		o.provider, o.initErr = NewProvider(o.cfg)
		o.initDone = true
	}
	return o.provider, o.initErr
}

func (o *Orchestrator) parseCooldown() time.Duration {
	if o.cfg.ParseCooldown > 0 {
		return o.cfg.ParseCooldown
	}
	return 30 * time.Second
}

func (o *Orchestrator) quotaCooldown() time.Duration {
	if o.cfg.QuotaCooldown > 0 {
		return o.cfg.QuotaCooldown
	}
	return 35 * time.Second
}

func timeoutWarning(timeout time.Duration) string {
	return fmt.Sprintf("AI analysis timed out after %s; deterministic analysis returned", timeout)
}
