package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
)

// paperFields is the field list requested from the Graph API
const paperFields = "title,authors,year,venue,abstract,citationCount,influentialCitationCount,externalIds,url"

// SemanticScholar queries the Semantic Scholar Graph API
type SemanticScholar struct {
	client  *Client
	baseURL string
	apiKey  string
}

// NewSemanticScholar creates a client for baseURL (e.g. https://api.semanticscholar.org)
func NewSemanticScholar(client *Client, baseURL, apiKey string) *SemanticScholar {
	return &SemanticScholar{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// Name identifies the source in logs and stage outcomes
func (s *SemanticScholar) Name() string { return string(model.SourceSemanticScholar) }

type s2Paper struct {
	PaperID  string `json:"paperId"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Venue    string `json:"venue"`
	Year     *int   `json:"year"`
	URL      string `json:"url"`
	Authors  []struct {
		Name string `json:"name"`
	} `json:"authors"`
	CitationCount            *int `json:"citationCount"`
	InfluentialCitationCount *int `json:"influentialCitationCount"`
	ExternalIDs              struct {
		DOI    string `json:"DOI"`
		PubMed string `json:"PubMed"`
	} `json:"externalIds"`
}

func (p s2Paper) paper() model.Paper {
	authors := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	var year string
	if p.Year != nil {
		year = strconv.Itoa(*p.Year)
	}

	link := p.URL
	if link == "" && p.PaperID != "" {
		link = "https://www.semanticscholar.org/paper/" + p.PaperID
	}

	return model.Paper{
		Title:                strings.TrimSpace(p.Title),
		Authors:              authors,
		Journal:              p.Venue,
		Year:                 year,
		Source:               model.SourceSemanticScholar,
		DOI:                  p.ExternalIDs.DOI,
		PMID:                 p.ExternalIDs.PubMed,
		PaperID:              p.PaperID,
		URL:                  link,
		Abstract:             strings.TrimSpace(p.Abstract),
		Citations:            p.CitationCount,
		InfluentialCitations: p.InfluentialCitationCount,
	}
}

// Search returns up to limit papers. Papers without an abstract are dropped.
func (s *SemanticScholar) Search(ctx context.Context, query string, limit int) ([]model.Paper, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", paperFields)

	body, err := s.client.Get(ctx, s.baseURL+"/graph/v1/paper/search?"+params.Encode(), s.header())
	if err != nil {
		return nil, fmt.Errorf("semantic scholar search: %w", err)
	}

	var resp struct {
		Data []s2Paper `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("semantic scholar search: %w: %w", model.ErrMalformedResponse, err)
	}

	papers := make([]model.Paper, 0, len(resp.Data))
	for _, d := range resp.Data {
		p := d.paper()
		if !p.HasAbstract() {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// Lookup fetches one paper by Graph API id, e.g. "DOI:10.1000/x" or "PMID:123"
func (s *SemanticScholar) Lookup(ctx context.Context, id string) (*model.Paper, error) {
	params := url.Values{}
	params.Set("fields", paperFields)

	// DOIs keep their slashes in the path
	escaped := strings.ReplaceAll(url.PathEscape(id), "%2F", "/")
	endpoint := s.baseURL + "/graph/v1/paper/" + escaped + "?" + params.Encode()
	body, err := s.client.Get(ctx, endpoint, s.header())
	if err != nil {
		return nil, fmt.Errorf("semantic scholar lookup %s: %w", id, err)
	}

	var d s2Paper
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("semantic scholar lookup %s: %w: %w", id, model.ErrMalformedResponse, err)
	}
	p := d.paper()
	return &p, nil
}

// DOIKey and PMIDKey build Lookup ids
func DOIKey(doi string) string   { return "DOI:" + doi }
func PMIDKey(pmid string) string { return "PMID:" + pmid }

func (s *SemanticScholar) header() http.Header {
	if s.apiKey == "" {
		return nil
	}
	h := http.Header{}
	h.Set("x-api-key", s.apiKey)
	return h
}
