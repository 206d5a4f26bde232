package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
)

var (
	abstractTextRe = regexp.MustCompile(`(?s)<AbstractText([^>]*)>(.*?)</AbstractText>`)
	labelAttrRe    = regexp.MustCompile(`Label="([^"]*)"`)
	yearRe         = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)
)

// PubMed queries NCBI E-utilities
type PubMed struct {
	client  *Client
	baseURL string
	apiKey  string
	tool    string
	email   string
}

// NewPubMed creates a PubMed client. baseURL is the eutils root,
// e.g. https://eutils.ncbi.nlm.nih.gov/entrez/eutils.
func NewPubMed(client *Client, baseURL, apiKey, tool, email string) *PubMed {
	return &PubMed{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tool:    tool,
		email:   email,
	}
}

// Name identifies the source in logs and stage outcomes
func (p *PubMed) Name() string { return string(model.SourcePubMed) }

type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// Search returns PubMed ids ordered by relevance
func (p *PubMed) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	params := p.params()
	params.Set("term", query)
	params.Set("retmax", strconv.Itoa(limit))
	params.Set("sort", "relevance")
	params.Set("retmode", "json")

	body, err := p.client.Get(ctx, p.endpoint("esearch.fcgi", params), nil)
	if err != nil {
		return nil, fmt.Errorf("pubmed search: %w", err)
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("pubmed search: %w: %w", model.ErrMalformedResponse, err)
	}
	return resp.Result.IDList, nil
}

type esummaryDoc struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	FullJournalName string `json:"fulljournalname"`
	Source          string `json:"source"`
	PubDate         string `json:"pubdate"`
	ArticleIDs      []struct {
		IDType string `json:"idtype"`
		Value  string `json:"value"`
	} `json:"articleids"`
	Error string `json:"error"`
}

// Summaries fetches title, authors, journal, year and DOI for ids in one
// batch request. The result keeps the order of ids.
func (p *PubMed) Summaries(ctx context.Context, ids []string) ([]model.Paper, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := p.params()
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")

	body, err := p.client.Get(ctx, p.endpoint("esummary.fcgi", params), nil)
	if err != nil {
		return nil, fmt.Errorf("pubmed summaries: %w", err)
	}

	var resp struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("pubmed summaries: %w: %w", model.ErrMalformedResponse, err)
	}

	papers := make([]model.Paper, 0, len(ids))
	for _, id := range ids {
		raw, ok := resp.Result[id]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil || doc.Error != "" {
			continue
		}
		papers = append(papers, doc.paper(id))
	}
	return papers, nil
}

func (d esummaryDoc) paper(id string) model.Paper {
	journal := d.FullJournalName
	if journal == "" {
		journal = d.Source
	}

	authors := make([]string, 0, len(d.Authors))
	for _, a := range d.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	var doi string
	for _, aid := range d.ArticleIDs {
		if aid.IDType == "doi" {
			doi = aid.Value
			break
		}
	}

	return model.Paper{
		Title:   strings.TrimSpace(StripMarkup(d.Title)),
		Authors: authors,
		Journal: journal,
		Year:    yearRe.FindString(d.PubDate),
		Source:  model.SourcePubMed,
		DOI:     doi,
		PMID:    id,
		URL:     "https://pubmed.ncbi.nlm.nih.gov/" + id + "/",
	}
}

// Abstract fetches the XML record for pmid and extracts the abstract text.
// Structured abstracts keep their section labels ("METHODS: ...").
func (p *PubMed) Abstract(ctx context.Context, pmid string) (string, error) {
	params := p.params()
	params.Set("id", pmid)
	params.Set("retmode", "xml")
	params.Set("rettype", "abstract")

	body, err := p.client.Get(ctx, p.endpoint("efetch.fcgi", params), nil)
	if err != nil {
		return "", fmt.Errorf("pubmed abstract %s: %w", pmid, err)
	}
	return ExtractAbstract(string(body)), nil
}

// ExtractAbstract pulls every <AbstractText> section out of an efetch record
func ExtractAbstract(record string) string {
	var sections []string
	for _, m := range abstractTextRe.FindAllStringSubmatch(record, -1) {
		text := StripMarkup(m[2])
		if text == "" {
			continue
		}
		if label := labelAttrRe.FindStringSubmatch(m[1]); label != nil && label[1] != "" {
			text = label[1] + ": " + text
		}
		sections = append(sections, text)
	}
	return strings.Join(sections, " ")
}

func (p *PubMed) params() url.Values {
	v := url.Values{}
	v.Set("db", "pubmed")
	if p.tool != "" {
		v.Set("tool", p.tool)
	}
	if p.email != "" {
		v.Set("email", p.email)
	}
	if p.apiKey != "" {
		v.Set("api_key", p.apiKey)
	}
	return v
}

func (p *PubMed) endpoint(name string, params url.Values) string {
	return p.baseURL + "/" + name + "?" + params.Encode()
}
