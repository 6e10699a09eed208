package metrics

import (
	"time"

	obserrors "github.com/revanth-rampal/trail/internal/observability/errors"
	"github.com/revanth-rampal/trail/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// LoginMetric captures one Authenticate or Login call.
type LoginMetric struct {
	Role     string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitLogin emits the login attempt counter and, when measured, its latency.
func EmitLogin(sink statsd.Sink, in LoginMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"role":   in.Role,
		"result": in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("login.attempt", 1, tags)
	if in.Duration > 0 {
		sink.Timing("login.duration", in.Duration, CloneTags(tags))
	}
}

// SessionTransition captures a session store status change.
type SessionTransition struct {
	From string
	To   string
	// Cause names the operation: login, logout, restore.
	Cause string
}

// EmitSessionTransition counts a status change of a session store.
func EmitSessionTransition(sink statsd.Sink, in SessionTransition) {
	if sink == nil {
		return
	}
	sink.Count("session.transition", 1, map[string]string{
		"from":  in.From,
		"to":    in.To,
		"cause": in.Cause,
	})
}

// EmitGuardDecision counts one route guard evaluation.
func EmitGuardDecision(sink statsd.Sink, decision, group string) {
	if sink == nil {
		return
	}
	sink.Count("guard.decision", 1, map[string]string{
		"decision": decision,
		"group":    group,
	})
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
