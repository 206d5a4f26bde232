// Package llmtest provides a scriptable llm.Provider for tests
package llmtest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ppiankov/claimcheck/internal/llm"
)

// Func answers one completion request
type Func func(ctx context.Context, req llm.CompletionRequest) (string, error)

// Provider is an llm.Provider whose answers come from a Func.
// It is safe for concurrent use.
type Provider struct {
	Respond Func

	calls    atomic.Int32
	mu       sync.Mutex
	requests []llm.CompletionRequest
}

// New returns a provider answering with fn
func New(fn Func) *Provider {
	return &Provider{Respond: fn}
}

// Static returns a provider that always answers text
func Static(text string) *Provider {
	return New(func(context.Context, llm.CompletionRequest) (string, error) {
		return text, nil
	})
}

// Failing returns a provider that always fails with err
func Failing(err error) *Provider {
	return New(func(context.Context, llm.CompletionRequest) (string, error) {
		return "", err
	})
}

func (p *Provider) Name() string { return "llmtest" }

func (p *Provider) IsAvailable(ctx context.Context) bool { return true }

func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	text, err := p.Respond(ctx, req)
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Text: text, Model: "llmtest"}, nil
}

// Calls returns how many completions were requested
func (p *Provider) Calls() int {
	return int(p.calls.Load())
}

// Requests returns a copy of every request seen so far
func (p *Provider) Requests() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.CompletionRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// Sessions wraps p in an llm.Sessions serving every kind
func (p *Provider) Sessions() *llm.Sessions {
	return llm.NewStaticSessions(p)
}
