package orchestrator

import (
	"context"
	"fmt"
	"time"

	"pixshop/internal/domain"
	"pixshop/internal/infra"
)

// Provider executes a request against one remote image service.
type Provider interface {
	Name() string
	Execute(ctx context.Context, req domain.Request) domain.Result
}

// Recorder receives attempt and outcome observations.
type Recorder interface {
	ObserveAttempt(provider string, op domain.Operation, kind domain.FailureKind, elapsed time.Duration)
	ObserveOutcome(op domain.Operation, source domain.Source, kind domain.FailureKind)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAttempt(string, domain.Operation, domain.FailureKind, time.Duration) {}
func (nopRecorder) ObserveOutcome(domain.Operation, domain.Source, domain.FailureKind)         {}

// Orchestrator tries the primary provider and falls back to the secondary one
// when the primary fails. The two calls are strictly sequential.
type Orchestrator struct {
	primary   Provider
	secondary Provider
	logger    *infra.Logger
	recorder  Recorder
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(l *infra.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// New wires a primary with an optional secondary provider. A nil secondary
// means every primary failure is final.
func New(primary, secondary Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		primary:   primary,
		secondary: secondary,
		logger:    infra.NopLogger(),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type state int

const (
	tryPrimary state = iota
	trySecondary
	succeeded
	exhausted
)

// Run executes req and returns either an image or an AllProvidersExhausted
// failure whose headline is the primary's message.
func (o *Orchestrator) Run(ctx context.Context, req domain.Request) domain.Result {
	op := req.Operation()
	var (
		result        domain.Result
		primaryFail   *domain.Failure
		secondaryFail *domain.Failure
	)
	for st := tryPrimary; ; {
		switch st {
		case tryPrimary:
			result = o.attempt(ctx, o.primary, req)
			if result.OK() {
				result = result.WithSource(domain.SourcePrimary)
				st = succeeded
				continue
			}
			primaryFail = result.Failure()
			o.logger.Warn().
				Str("operation", op.String()).
				Str("provider", providerName(o.primary)).
				Str("kind", primaryFail.Kind.String()).
				Str("reason", primaryFail.Text()).
				Msg("orchestrator: primary provider failed, trying fallback")
			st = trySecondary

		case trySecondary:
			if o.secondary == nil {
				st = exhausted
				continue
			}
			result = o.attempt(ctx, o.secondary, req)
			if result.OK() {
				result = result.WithSource(domain.SourceSecondary)
				st = succeeded
				continue
			}
			secondaryFail = result.Failure()
			o.logger.Error().
				Str("operation", op.String()).
				Str("provider", providerName(o.secondary)).
				Str("kind", secondaryFail.Kind.String()).
				Str("reason", secondaryFail.Text()).
				Msg("orchestrator: fallback provider also failed")
			st = exhausted

		case succeeded:
			o.recorder.ObserveOutcome(op, result.Source(), 0)
			return result

		case exhausted:
			o.recorder.ObserveOutcome(op, "", domain.AllProvidersExhausted)
			return domain.Failed(exhaustedFailure(op, primaryFail, secondaryFail))
		}
	}
}

func (o *Orchestrator) attempt(ctx context.Context, p Provider, req domain.Request) domain.Result {
	if p == nil {
		return domain.Failed(domain.NewFailure(domain.TransportError, "", "provider not configured", nil))
	}
	start := time.Now()
	result := p.Execute(ctx, req)
	var kind domain.FailureKind
	if f := result.Failure(); f != nil {
		kind = f.Kind
	}
	o.recorder.ObserveAttempt(p.Name(), req.Operation(), kind, time.Since(start))
	return result
}

// exhaustedFailure keeps the primary's message as the headline. The
// secondary's message is used only when the primary left none.
func exhaustedFailure(op domain.Operation, primary, secondary *domain.Failure) *domain.Failure {
	msg := primary.Text()
	if msg == "" {
		msg = secondary.Text()
	}
	if msg == "" {
		msg = fmt.Sprintf("The AI %s failed with both primary and fallback services.", op.Task())
	}
	var (
		provider string
		cause    error
	)
	if primary != nil {
		provider = primary.Provider
		cause = primary
	}
	f := domain.NewFailure(domain.AllProvidersExhausted, provider, msg, cause)
	f.Primary = primary
	f.Secondary = secondary
	return f
}

func providerName(p Provider) string {
	if p == nil {
		return ""
	}
	return p.Name()
}
