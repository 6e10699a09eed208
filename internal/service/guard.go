package service

import (
	"context"
	"log/slog"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/domain/route"
	"github.com/revanth-rampal/trail/internal/observability/metrics"
	"github.com/revanth-rampal/trail/internal/observability/statsd"
)

// GuardOptions groups dependencies for Guard.
type GuardOptions struct {
	Policy *route.Policy // Required
	Obs    Observability
}

// Guard evaluates navigations against the route policy and records the outcome.
type Guard struct {
	policy  *route.Policy
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewGuard constructs a Guard. It panics if Policy is nil.
func NewGuard(opts GuardOptions) *Guard {
	if opts.Policy == nil {
		panic("NewGuard: Policy is required")
	}
	return &Guard{
		policy:  opts.Policy,
		logger:  opts.Obs.logger("guard"),
		metrics: opts.Obs.Metrics,
	}
}

// Policy returns the route policy the guard evaluates.
func (g *Guard) Policy() *route.Policy { return g.policy }

// Evaluate decides what to do with a navigation to path for the session in snap.
func (g *Guard) Evaluate(ctx context.Context, snap domainauth.Snapshot, path string) route.Decision {
	d := g.policy.Decide(snap, path)
	group := g.policy.RequiredGroup(path)
	metrics.EmitGuardDecision(g.metrics, d.Kind.String(), group.String())

	if d.Kind == route.RedirectToLogin && snap.Authenticated() {
		g.logger.InfoContext(ctx, "access denied",
			"path", route.Normalize(path),
			"role", snap.Role(),
			"required_group", group.String(),
		)
	}
	return d
}

// Watch evaluates the current path now and again after every session transition, passing
// each decision to onDecision. The initial evaluation runs on the calling goroutine and may
// overlap a delivery from another goroutine. It returns a func that stops watching.
func (g *Guard) Watch(
	ctx context.Context,
	src SessionSource,
	currentPath func() string,
	onDecision func(route.Decision),
) (stop func()) {
	evaluate := func(snap domainauth.Snapshot) {
		onDecision(g.Evaluate(ctx, snap, currentPath()))
	}

	unsubscribe := src.Subscribe(evaluate)
	evaluate(src.Session())
	return unsubscribe
}
