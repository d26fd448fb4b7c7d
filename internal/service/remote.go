package service

import (
	"fmt"
	"time"

	"github.com/cropadvisor/backend/internal/domain"
)

// FallbackMode selects what serves a request when the remote branch fails
type FallbackMode string

const (
	// FallbackCalculator runs the local rule-based calculator
	FallbackCalculator FallbackMode = "calculator"
	// FallbackStatic returns the fixed default recommendation
	FallbackStatic FallbackMode = "static"
)

// RemoteConfig is the explicit configuration of the remote prediction
// collaborator. It is passed to the services that need it; there is no
// package-level reachability state.
type RemoteConfig struct {
	Enabled  bool
	BaseURL  string
	Timeout  time.Duration
	Fallback FallbackMode
}

// DefaultRemoteTimeout bounds one remote request cycle
const DefaultRemoteTimeout = 5 * time.Second

// Remote failure reasons, also used as metric label values
const (
	ReasonDisabled  = "disabled"
	ReasonTransport = "transport"
	ReasonTimeout   = "timeout"
	ReasonStatus    = "status"
	ReasonRejected  = "rejected"
	ReasonMalformed = "malformed"
)

// RemoteError describes why the remote branch produced no usable result
type RemoteError struct {
	Op         string
	Reason     string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("ml_bridge: %s failed (%s)", e.Op, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error { return e.Err }

// RemoteOutcome is either a remote recommendation or the RemoteError that
// prevented one. The zero value is not meaningful; use RemoteSuccess or
// RemoteFailure.
type RemoteOutcome struct {
	value domain.RecommendationResult
	err   *RemoteError
}

// RemoteSuccess wraps a usable remote result
func RemoteSuccess(v domain.RecommendationResult) RemoteOutcome {
	return RemoteOutcome{value: v}
}

// RemoteFailure wraps the reason the remote branch failed
func RemoteFailure(err *RemoteError) RemoteOutcome {
	return RemoteOutcome{err: err}
}

// Ok reports whether the outcome holds a remote result
func (o RemoteOutcome) Ok() bool { return o.err == nil }

// Err returns the failure, nil on success
func (o RemoteOutcome) Err() *RemoteError { return o.err }

// OrElse returns the remote result tagged SourceRemote, or runs fallback
// when the remote branch failed. Errors from fallback pass through unchanged.
func (o RemoteOutcome) OrElse(fallback func() (domain.Recommendation, error)) (domain.Recommendation, error) {
	if o.Ok() {
		return domain.Recommendation{Result: o.value, Source: domain.SourceRemote}, nil
	}
	return fallback()
}
