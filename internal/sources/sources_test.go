package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/claimcheck/internal/cache"
	"github.com/ppiankov/claimcheck/internal/model"
)

func newTestClient(c cache.Cache) *Client {
	return NewClient(ClientOptions{
		Timeout:   5 * time.Second,
		UserAgent: "claimcheck-test",
		MaxBytes:  1 << 20,
		Cache:     c,
	})
}

const esummaryBody = `{
  "header": {"type": "esummary"},
  "result": {
    "uids": ["111", "222"],
    "111": {
      "uid": "111",
      "title": "Vitamin D supplementation and <i>acute</i> respiratory infections",
      "authors": [{"name": "Martineau AR"}, {"name": "Jolliffe DA"}],
      "fulljournalname": "BMJ",
      "pubdate": "2017 Feb 15",
      "articleids": [{"idtype": "pubmed", "value": "111"}, {"idtype": "doi", "value": "10.1136/bmj.i6583"}]
    },
    "222": {
      "uid": "222",
      "title": "Cholecalciferol and the common cold",
      "authors": [],
      "source": "J Nutr",
      "pubdate": "2021",
      "articleids": []
    }
  }
}`

const efetchBody = `<?xml version="1.0"?>
<PubmedArticleSet><PubmedArticle><MedlineCitation><Article>
<Abstract>
<AbstractText Label="BACKGROUND" NlmCategory="BACKGROUND">Colds are common &amp; costly.</AbstractText>
<AbstractText Label="RESULTS">Supplementation reduced risk (OR 0.88, <i>p</i>&lt;0.001).</AbstractText>
</Abstract>
</Article></MedlineCitation></PubmedArticle></PubmedArticleSet>`

func newPubMedServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("db") != "pubmed" {
			t.Errorf("expected db=pubmed, got %q", q.Get("db"))
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
			if q.Get("sort") != "relevance" || q.Get("retmax") != "10" {
				t.Errorf("unexpected search params: %v", q)
			}
			if q.Get("term") == "nothing" {
				_, _ = fmt.Fprint(w, `{"esearchresult":{"count":"0","idlist":[]}}`)
				return
			}
			_, _ = fmt.Fprint(w, `{"esearchresult":{"count":"2","idlist":["111","222"]}}`)
		case strings.HasSuffix(r.URL.Path, "/esummary.fcgi"):
			if q.Get("id") != "111,222" {
				t.Errorf("expected batch id list, got %q", q.Get("id"))
			}
			_, _ = fmt.Fprint(w, esummaryBody)
		case strings.HasSuffix(r.URL.Path, "/efetch.fcgi"):
			_, _ = fmt.Fprint(w, efetchBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestPubMed_SearchAndSummaries(t *testing.T) {
	server := newPubMedServer(t)
	defer server.Close()

	pm := NewPubMed(newTestClient(nil), server.URL, "", "claimcheck", "")
	ctx := context.Background()

	ids, err := pm.Search(ctx, "vitamin d common cold", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "111" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	papers, err := pm.Summaries(ctx, ids)
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}

	first := papers[0]
	if first.Title != "Vitamin D supplementation and acute respiratory infections" {
		t.Errorf("unexpected title: %q", first.Title)
	}
	if first.DOI != "10.1136/bmj.i6583" || first.Year != "2017" || first.Journal != "BMJ" {
		t.Errorf("unexpected metadata: %+v", first)
	}
	if first.Source != model.SourcePubMed || first.URL != "https://pubmed.ncbi.nlm.nih.gov/111/" {
		t.Errorf("unexpected source/url: %s %s", first.Source, first.URL)
	}
	if first.HasCitations() || first.HasAbstract() {
		t.Error("esummary carries neither citations nor abstract")
	}
	if papers[1].Journal != "J Nutr" || papers[1].DOI != "" {
		t.Errorf("expected journal fallback to source, got %+v", papers[1])
	}
}

func TestPubMed_EmptyResultsAreNotErrors(t *testing.T) {
	server := newPubMedServer(t)
	defer server.Close()

	pm := NewPubMed(newTestClient(nil), server.URL, "", "", "")

	ids, err := pm.Search(context.Background(), "nothing", 10)
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected empty id list without error, got %v %v", ids, err)
	}

	papers, err := pm.Summaries(context.Background(), nil)
	if err != nil || papers != nil {
		t.Errorf("expected no request and no error for empty ids, got %v %v", papers, err)
	}
}

func TestPubMed_Abstract(t *testing.T) {
	server := newPubMedServer(t)
	defer server.Close()

	pm := NewPubMed(newTestClient(nil), server.URL, "", "", "")
	abstract, err := pm.Abstract(context.Background(), "111")
	if err != nil {
		t.Fatal(err)
	}

	want := "BACKGROUND: Colds are common & costly. RESULTS: Supplementation reduced risk (OR 0.88, p<0.001)."
	if abstract != want {
		t.Errorf("unexpected abstract:\n got: %q\nwant: %q", abstract, want)
	}
}

func TestExtractAbstract_NoAbstract(t *testing.T) {
	if got := ExtractAbstract("<PubmedArticle><Article></Article></PubmedArticle>"); got != "" {
		t.Errorf("expected empty abstract, got %q", got)
	}
}

func TestSemanticScholar_SearchDropsMissingAbstracts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graph/v1/paper/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("fields") != paperFields {
			t.Errorf("unexpected fields %q", r.URL.Query().Get("fields"))
		}
		if r.Header.Get("x-api-key") != "s2-key" {
			t.Errorf("expected api key header")
		}
		_, _ = fmt.Fprint(w, `{"total": 2, "data": [
			{"paperId": "abc", "title": "Vitamin D and colds", "abstract": "A trial.", "year": 2020,
			 "venue": "Lancet", "citationCount": 120, "influentialCitationCount": 12,
			 "externalIds": {"DOI": "10.1/xyz", "PubMed": "999"}, "authors": [{"name": "Smith J"}]},
			{"paperId": "def", "title": "No abstract here", "abstract": null, "year": null}
		]}`)
	}))
	defer server.Close()

	s2 := NewSemanticScholar(newTestClient(nil), server.URL, "s2-key")
	papers, err := s2.Search(context.Background(), "vitamin d colds", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 1 {
		t.Fatalf("expected 1 paper with abstract, got %d", len(papers))
	}

	p := papers[0]
	if p.Source != model.SourceSemanticScholar || p.DOI != "10.1/xyz" || p.PMID != "999" {
		t.Errorf("unexpected ids: %+v", p)
	}
	if p.Year != "2020" || *p.Citations != 120 || p.InfluentialCount() != 12 {
		t.Errorf("unexpected counts: %+v", p)
	}
	if p.URL != "https://www.semanticscholar.org/paper/abc" {
		t.Errorf("expected url fallback, got %s", p.URL)
	}
}

func TestSemanticScholar_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s2 := NewSemanticScholar(newTestClient(nil), server.URL, "")
	_, err := s2.Search(context.Background(), "anything", 10)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if model.Classify(err, model.FailureSourceUnavailable) != model.FailureRateLimited {
		t.Error("expected rate_limited classification")
	}
}

func TestSemanticScholar_LookupByDOI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graph/v1/paper/DOI:10.1136/bmj.i6583" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = fmt.Fprint(w, `{"paperId": "p1", "title": "T", "citationCount": 40, "influentialCitationCount": 3}`)
	}))
	defer server.Close()

	s2 := NewSemanticScholar(newTestClient(nil), server.URL, "")
	p, err := s2.Lookup(context.Background(), DOIKey("10.1136/bmj.i6583"))
	if err != nil {
		t.Fatal(err)
	}
	if *p.Citations != 40 || *p.InfluentialCitations != 3 {
		t.Errorf("unexpected counts: %+v", p)
	}
}

func TestClient_CachesSuccessfulBodies(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("fail") != "" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	client := newTestClient(cache.NewMemoryCache(time.Minute, time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		body, err := client.Get(ctx, server.URL+"/x", nil)
		if err != nil || string(body) != "ok" {
			t.Fatalf("unexpected result: %q %v", body, err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 upstream hit, got %d", hits.Load())
	}

	for i := 0; i < 2; i++ {
		_, err := client.Get(ctx, server.URL+"/x?fail=1", nil)
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
			t.Fatalf("expected StatusError 502, got %v", err)
		}
	}
	if hits.Load() != 3 {
		t.Errorf("failed responses must not be cached, got %d hits", hits.Load())
	}
}

func TestRedact(t *testing.T) {
	got := redact("https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi?api_key=secret&term=x")
	if strings.Contains(got, "secret") {
		t.Errorf("api key leaked: %s", got)
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<p>one</p><p>two</p>", "one two"},
		{"a &amp; b &lt; c", "a & b < c"},
		{"10<sup>3</sup> cells", "103 cells"},
		{"  spaced \n\t out  ", "spaced out"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripMarkup(tt.in); got != tt.want {
			t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
