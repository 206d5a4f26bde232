package model

import (
	"context"
	"encoding/json"
	"errors"
)

// FailureKind classifies why a stage fell back to its default value
type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureSourceUnavailable FailureKind = "source_unavailable"
	FailureRateLimited       FailureKind = "rate_limited"
	FailureMalformed         FailureKind = "malformed_response"
	FailureModelUnavailable  FailureKind = "model_unavailable"
	FailureTimeout           FailureKind = "timeout"
)

var (
	// ErrRateLimited is returned by a collaborator that answered HTTP 429
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformedResponse marks model or API output that could not be parsed
	ErrMalformedResponse = errors.New("malformed response")
)

// Result carries a stage's value. When Degraded is set, Value holds the
// stage's fallback and Kind/Err say what went wrong.
type Result[T any] struct {
	Value    T
	Degraded bool
	Kind     FailureKind
	Err      error
}

// OK wraps a successful value
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fallback wraps a default value substituted after err.
// The kind is derived from err where possible, otherwise def is used.
func Fallback[T any](v T, def FailureKind, err error) Result[T] {
	return Result[T]{
		Value:    v,
		Degraded: true,
		Kind:     Classify(err, def),
		Err:      err,
	}
}

// Classify maps an error to a FailureKind, using def when nothing more specific applies
func Classify(err error, def FailureKind) FailureKind {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case err == nil:
		return def
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, ErrRateLimited):
		return FailureRateLimited
	case errors.Is(err, ErrMalformedResponse),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		return FailureMalformed
	}
	return def
}

// StageOutcome records one degradation inside a check
type StageOutcome struct {
	Stage string      `json:"stage"`          // e.g. "rephrase", "sentiment"
	Item  string      `json:"item,omitempty"` // paper title, source name, language
	Kind  FailureKind `json:"kind"`
	Error string      `json:"error,omitempty"`
}

// Outcome builds a StageOutcome from a degraded result; ok is false when r did not degrade
func Outcome[T any](stage, item string, r Result[T]) (StageOutcome, bool) {
	if !r.Degraded {
		return StageOutcome{}, false
	}
	o := StageOutcome{Stage: stage, Item: item, Kind: r.Kind}
	if r.Err != nil {
		o.Error = r.Err.Error()
	}
	return o, true
}

// Stage names used in StageOutcome
const (
	StageRephrase    = "rephrase"
	StageSearch      = "search"
	StageEnrich      = "enrich"
	StageAbstract    = "abstract"
	StageSummary     = "summary"
	StageMetadata    = "metadata"
	StageSentiment   = "sentiment"
	StageTranslate   = "translate"
	StageCommunities = "communities"
)
