package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrDisabled is returned when no provider is configured
var ErrDisabled = errors.New("language model disabled")

// Kind names a model session. Each kind gets one cached handle.
type Kind string

const (
	KindLanguageModel Kind = "language-model"
	KindSummarizer    Kind = "summarizer"
	KindRewriter      Kind = "rewriter"
)

// Factory builds a provider handle from configuration
type Factory func(Config) (Provider, error)

// Sessions owns lazily created provider handles, one per Kind.
// Handles hold no per-request data and live as long as the Sessions value.
type Sessions struct {
	base    Config
	models  map[Kind]string
	factory Factory

	mu      sync.Mutex
	handles map[Kind]Provider
}

// NewSessions creates a session set backed by NewProvider
func NewSessions(base Config, models map[Kind]string) *Sessions {
	return NewSessionsWithFactory(base, models, NewProvider)
}

// NewSessionsWithFactory creates a session set whose handles come from factory
func NewSessionsWithFactory(base Config, models map[Kind]string, factory Factory) *Sessions {
	return &Sessions{
		base:    base,
		models:  models,
		factory: factory,
		handles: make(map[Kind]Provider),
	}
}

// NewStaticSessions serves every kind from one provider
func NewStaticSessions(p Provider) *Sessions {
	return NewSessionsWithFactory(Config{Provider: p.Name()}, nil, func(Config) (Provider, error) {
		return p, nil
	})
}

// Session returns the cached handle for kind, creating it on first use
func (s *Sessions) Session(kind Kind) (Provider, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.handles[kind]; ok {
		return p, nil
	}

	cfg := s.base
	if m := s.models[kind]; m != "" {
		cfg.Model = m
	}
	p, err := s.build(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s session: %w", kind, err)
	}
	s.handles[kind] = p
	return p, nil
}

// Fresh returns a new, uncached handle. Translation binds one session to
// one target language, so those sessions are never reused.
func (s *Sessions) Fresh() (Provider, error) {
	if s == nil {
		return nil, ErrDisabled
	}
	return s.build(s.base)
}

// Complete sends req on the session for kind and returns the text
func (s *Sessions) Complete(ctx context.Context, kind Kind, req CompletionRequest) (string, error) {
	p, err := s.Session(kind)
	if err != nil {
		return "", err
	}
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Enabled reports whether a provider is configured at all
func (s *Sessions) Enabled() bool {
	return s != nil && s.base.Provider != ""
}

func (s *Sessions) build(cfg Config) (Provider, error) {
	if cfg.Provider == "" {
		return nil, ErrDisabled
	}
	p, err := s.factory(cfg)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrDisabled
	}
	return p, nil
}
