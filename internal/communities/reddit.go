// Package communities builds and queries the directory of health
// discussion communities suggested next to a claim check.
package communities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/claimcheck/internal/logging"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/sources"
	"github.com/ppiankov/claimcheck/internal/util"
)

var (
	// ErrNotFound is returned for missing, private or banned subreddits
	ErrNotFound = errors.New("subreddit not found or private")

	// ErrDisallowed is returned when robots.txt forbids the fetch
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

const (
	topPostsLimit    = 50
	keywordCount     = 15
	storedKeywords   = 10
	descriptionMax   = 500
	descriptionLong  = 1000
	defaultRedditURL = "https://www.reddit.com"
)

// Builder fetches subreddit metadata from Reddit's public JSON endpoints
type Builder struct {
	client  *sources.Client
	baseURL string
	robots  *util.RobotsChecker
	workers int
	logger  *zap.Logger
}

// NewBuilder creates a Builder. Request pacing comes from the client's
// limiter; robots may be nil to skip robots.txt checks.
func NewBuilder(client *sources.Client, baseURL string, robots *util.RobotsChecker, logger *zap.Logger) *Builder {
	if baseURL == "" {
		baseURL = defaultRedditURL
	}
	return &Builder{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		robots:  robots,
		workers: 2,
		logger:  logging.OrNop(logger),
	}
}

type aboutResponse struct {
	Kind string `json:"kind"`
	Data struct {
		DisplayName         string  `json:"display_name"`
		DisplayNamePrefixed string  `json:"display_name_prefixed"`
		Title               string  `json:"title"`
		PublicDescription   string  `json:"public_description"`
		DescriptionHTML     string  `json:"description_html"`
		Description         string  `json:"description"`
		Subscribers         int     `json:"subscribers"`
		ActiveUserCount     int     `json:"active_user_count"`
		CreatedUTC          float64 `json:"created_utc"`
		SubredditType       string  `json:"subreddit_type"`
		Over18              bool    `json:"over18"`
		Quarantine          bool    `json:"quarantine"`
		URL                 string  `json:"url"`
	} `json:"data"`
	Error any `json:"error"`
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string `json:"title"`
				Score       int    `json:"score"`
				NumComments int    `json:"num_comments"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch builds one directory entry from about.json and the month's top posts
func (b *Builder) Fetch(ctx context.Context, name string) (*Entry, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "r/")
	aboutURL := fmt.Sprintf("%s/r/%s/about.json", b.baseURL, url.PathEscape(name))

	if b.robots != nil {
		if allowed, _, _ := b.robots.CanFetch(ctx, aboutURL); !allowed {
			return nil, fmt.Errorf("r/%s: %w", name, ErrDisallowed)
		}
	}

	body, err := b.client.Get(ctx, aboutURL, nil)
	if err != nil {
		var statusErr *sources.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == 403 || statusErr.StatusCode == 404) {
			return nil, fmt.Errorf("r/%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("r/%s about: %w", name, err)
	}

	var about aboutResponse
	if err := json.Unmarshal(body, &about); err != nil {
		return nil, fmt.Errorf("r/%s about: %w: %w", name, model.ErrMalformedResponse, err)
	}
	if about.Error != nil || about.Data.DisplayName == "" {
		return nil, fmt.Errorf("r/%s: %w", name, ErrNotFound)
	}

	topURL := fmt.Sprintf("%s/r/%s/top.json?limit=%d&t=month", b.baseURL, url.PathEscape(name), topPostsLimit)
	body, err = b.client.Get(ctx, topURL, nil)
	if err != nil {
		return nil, fmt.Errorf("r/%s top posts: %w", name, err)
	}

	var listing listingResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("r/%s top posts: %w: %w", name, model.ErrMalformedResponse, err)
	}

	return newEntry(about, listing), nil
}

func newEntry(about aboutResponse, listing listingResponse) *Entry {
	info := about.Data
	posts := listing.Data.Children

	titles := make([]string, 0, len(posts))
	var totalScore, totalComments int
	for _, p := range posts {
		titles = append(titles, p.Data.Title)
		totalScore += p.Data.Score
		totalComments += p.Data.NumComments
	}

	var avgScore, avgComments float64
	if len(posts) > 0 {
		avgScore = round1(float64(totalScore) / float64(len(posts)))
		avgComments = round1(float64(totalComments) / float64(len(posts)))
	}

	description, long := describe(firstNonEmpty(info.PublicDescription, info.DescriptionHTML, info.Description, info.Title), info.Title)

	prefixed := info.DisplayNamePrefixed
	if prefixed == "" {
		prefixed = "r/" + info.DisplayName
	}
	subType := info.SubredditType
	if subType == "" {
		subType = "public"
	}

	keywords := ExtractKeywords(titles, keywordCount)
	topics, goodFor := SuggestCategories(info.DisplayName, description, keywords)

	stored := keywords
	if len(stored) > storedKeywords {
		stored = stored[:storedKeywords]
	}

	return &Entry{
		Name:                info.DisplayName,
		DisplayNamePrefixed: prefixed,
		Title:               info.Title,
		Description:         description,
		DescriptionLong:     long,
		Subscribers:         info.Subscribers,
		ActiveUsers:         info.ActiveUserCount,
		CreatedUTC:          info.CreatedUTC,
		SubredditType:       subType,
		Over18:              info.Over18,
		Quarantine:          info.Quarantine,
		TopPostsAnalyzed:    len(posts),
		AvgScore:            avgScore,
		AvgComments:         avgComments,
		TotalEngagement:     totalScore + totalComments,
		Keywords:            stored,
		TopKeywords:         strings.Join(stored, ", "),
		URL:                 "https://reddit.com" + info.URL,
		PrimaryTopics:       topics,
		GoodFor:             goodFor,
	}
}

// Result is the outcome of fetching one subreddit during Build
type Result struct {
	Name  string
	Entry *Entry
	Err   error
}

// Build fetches every name and returns the directory in input order plus
// the per-name results. Failed names are logged and left out.
func (b *Builder) Build(ctx context.Context, names []string) (Directory, []Result) {
	results := make([]Result, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, name := range names {
		g.Go(func() error {
			entry, err := b.Fetch(gctx, name)
			results[i] = Result{Name: name, Entry: entry, Err: err}
			if err != nil {
				b.logger.Warn("subreddit skipped", zap.String("name", name), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	var dir Directory
	for _, r := range results {
		if r.Entry != nil {
			dir = append(dir, *r.Entry)
		}
	}
	return dir, results
}

// describe removes markup (Reddit escapes description_html) and returns
// the short and long cuts. An empty short description falls back to title.
func describe(raw, title string) (short, long string) {
	clean := sources.StripMarkup(html.UnescapeString(raw))
	short, long = cut(clean, descriptionMax), cut(clean, descriptionLong)
	if short == "" {
		short = title
	}
	return short, long
}

func cut(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return strings.TrimSpace(string(r[:n]))
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
