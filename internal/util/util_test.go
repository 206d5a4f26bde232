package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewProxyFunc_Explicit(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "", "eutils.ncbi.nlm.nih.gov")

	req, _ := http.NewRequest(http.MethodGet, "https://api.semanticscholar.org/graph/v1/paper/search", nil)
	got, err := proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Host != "proxy.local:3128" {
		t.Errorf("expected proxy.local:3128, got %v", got)
	}

	req, _ = http.NewRequest(http.MethodGet, "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi", nil)
	got, err = proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected NO_PROXY host to bypass proxy, got %v", got)
	}
}

func TestNewTransport(t *testing.T) {
	tr := NewTransport("http://proxy.local:3128", "", "")
	if tr.Proxy == nil {
		t.Fatal("expected proxy func on transport")
	}
	u, _ := url.Parse("http://www.reddit.com/r/nutrition/about.json")
	got, _ := tr.Proxy(&http.Request{URL: u})
	if got == nil || got.Host != "proxy.local:3128" {
		t.Errorf("unexpected proxy: %v", got)
	}
}

func TestRobotsChecker(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches.Add(1)
			_, _ = fmt.Fprint(w, "User-agent: claimcheck\nDisallow: /private/\nCrawl-delay: 2\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "claimcheck/0.3 (+https://github.com/ppiankov/claimcheck)")
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/r/nutrition/about.json")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Error("expected public path to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("expected 2s crawl delay, got %v", delay)
	}

	allowed, _, _ = checker.CanFetch(ctx, server.URL+"/private/x")
	if allowed {
		t.Error("expected disallowed path")
	}
	if fetches.Load() != 1 {
		t.Errorf("expected robots.txt to be fetched once, got %d", fetches.Load())
	}
}

func TestRobotsChecker_MissingFileAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "claimcheck")
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/anything")
	if err != nil || !allowed {
		t.Errorf("expected allow on 404 robots.txt, got %v %v", allowed, err)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := []struct{ in, want string }{
		{"claimcheck/0.3 (+https://github.com/ppiankov/claimcheck)", "claimcheck"},
		{"curl", "curl"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeUserAgent(tt.in); got != tt.want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
