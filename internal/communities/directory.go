package communities

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
)

// Entry is one community in the directory
type Entry struct {
	Name                string   `json:"name"`
	DisplayNamePrefixed string   `json:"display_name_prefixed"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	DescriptionLong     string   `json:"description_long"`
	Subscribers         int      `json:"subscribers"`
	ActiveUsers         int      `json:"active_users"`
	CreatedUTC          float64  `json:"created_utc"`
	SubredditType       string   `json:"subreddit_type"`
	Over18              bool     `json:"over18"`
	Quarantine          bool     `json:"quarantine"`
	TopPostsAnalyzed    int      `json:"top_posts_analyzed"`
	AvgScore            float64  `json:"avg_score"`
	AvgComments         float64  `json:"avg_comments"`
	TotalEngagement     int      `json:"total_engagement"`
	Keywords            []string `json:"keywords"`
	TopKeywords         string   `json:"top_keywords_str"`
	URL                 string   `json:"url"`
	PrimaryTopics       []string `json:"primary_topics"`
	GoodFor             []string `json:"good_for"`
}

// Community converts the entry for attachment to a report
func (e Entry) Community() model.Community {
	return model.Community{
		Name:        e.Name,
		Title:       e.Title,
		Description: e.Description,
		Subscribers: e.Subscribers,
		URL:         e.URL,
		Topics:      e.PrimaryTopics,
		GoodFor:     e.GoodFor,
		Keywords:    e.Keywords,
	}
}

// Directory is the ordered list of known communities
type Directory []Entry

var csvColumns = []string{
	"name", "display_name_prefixed", "title", "description",
	"subscribers", "active_users", "created_utc", "subreddit_type",
	"over18", "quarantine", "top_posts_analyzed", "avg_score",
	"avg_comments", "total_engagement", "top_keywords_str",
	"primary_topics", "good_for", "url",
}

// WriteJSON writes the directory as an indented JSON array
func (d Directory) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if d == nil {
		d = Directory{}
	}
	return enc.Encode(d)
}

// WriteCSV writes one row per entry; list columns are comma-joined
func (d Directory) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}

	for _, e := range d {
		description := e.Description
		if description == "" {
			description = e.Title
		}
		row := []string{
			e.Name,
			e.DisplayNamePrefixed,
			e.Title,
			description,
			strconv.Itoa(e.Subscribers),
			strconv.Itoa(e.ActiveUsers),
			strconv.FormatFloat(e.CreatedUTC, 'f', -1, 64),
			e.SubredditType,
			strconv.FormatBool(e.Over18),
			strconv.FormatBool(e.Quarantine),
			strconv.Itoa(e.TopPostsAnalyzed),
			strconv.FormatFloat(e.AvgScore, 'f', 1, 64),
			strconv.FormatFloat(e.AvgComments, 'f', 1, 64),
			strconv.Itoa(e.TotalEngagement),
			e.TopKeywords,
			strings.Join(e.PrimaryTopics, ", "),
			strings.Join(e.GoodFor, ", "),
			e.URL,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Save writes the directory to path, as CSV when the extension is .csv
// and JSON otherwise
func (d Directory) Save(path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return d.WriteCSV(f)
	}
	return d.WriteJSON(f)
}

// Load reads a JSON directory written by Save. A missing file is an empty
// directory, not an error.
func Load(path string) (Directory, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var d Directory
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse directory %s: %w", path, err)
	}
	return d, nil
}
