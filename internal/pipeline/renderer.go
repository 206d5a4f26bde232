package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

// Renderer writes reports for people: a terminal summary, JSON and Markdown.
// It is the only place the "not reported" sentinel is produced.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderReport writes the JSON and Markdown files that have a path and then
// prints the terminal summary to w
func (r *Renderer) RenderReport(w io.Writer, report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	r.RenderSummary(w, report)
	return nil
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the Markdown report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderSummary prints the verdict for the terminal
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	v := report.Verdict()
	s := v.TruthScore

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", report.Claim.Text)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Truth score:  %d/100 (confidence %d%%, %d papers)\n", s.TruthScore, s.Confidence, s.PaperCount)
	fmt.Fprintf(w, "  Evidence:     %d%% supporting, %d%% contradicting, %d%% neutral\n",
		s.Breakdown.Positive, s.Breakdown.Negative, s.Breakdown.Neutral)
	fmt.Fprintf(w, "  Query:        %s\n", report.Query)
	fmt.Fprintln(w)

	if v.Narrative != "" {
		fmt.Fprintln(w, "Verdict")
		for _, line := range strings.Split(v.Narrative, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
		fmt.Fprintln(w)
	}

	if len(v.Papers) > 0 {
		fmt.Fprintln(w, "Papers")
		for i := range v.Papers {
			p := &v.Papers[i]
			fmt.Fprintf(w, "  %d. %s%s\n", i+1, p.Title, citation(p))
			if p.Sentiment != nil {
				fmt.Fprintf(w, "     %s (%.2f): %s\n", p.Sentiment.Sentiment, p.Sentiment.Confidence, p.Sentiment.Reason)
			}
			fmt.Fprintf(w, "     %s\n", p.URL)
		}
		fmt.Fprintln(w)
	}

	if len(report.Communities) > 0 {
		fmt.Fprintln(w, "Discuss with others")
		for _, c := range report.Communities {
			fmt.Fprintf(w, "  r/%s (%d members) %s\n", c.Name, c.Subscribers, c.URL)
		}
		fmt.Fprintln(w)
	}

	for _, o := range report.Stages {
		fmt.Fprintf(w, "  ⚠ %s degraded (%s) %s\n", o.Stage, o.Kind, o.Item)
	}
}

// Markdown renders the full report, including study details for every
// analyzed paper
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder
	s := report.TruthScore

	fmt.Fprintf(&b, "# Claim check: %s\n\n", report.Claim.Text)
	fmt.Fprintf(&b, "- **Truth score:** %d/100\n", s.TruthScore)
	fmt.Fprintf(&b, "- **Confidence:** %d%% (%d papers)\n", s.Confidence, s.PaperCount)
	fmt.Fprintf(&b, "- **Evidence:** %d%% supporting, %d%% contradicting, %d%% neutral\n",
		s.Breakdown.Positive, s.Breakdown.Negative, s.Breakdown.Neutral)
	fmt.Fprintf(&b, "- **Search query:** `%s`\n", report.Query)
	fmt.Fprintf(&b, "- **Checked:** %s\n\n", report.CheckedAt.Format("2006-01-02 15:04 MST"))

	if report.Narrative != "" {
		b.WriteString("## Verdict\n\n")
		b.WriteString(report.Narrative)
		b.WriteString("\n\n")
	}

	if len(report.Papers) > 0 {
		b.WriteString("## Papers\n\n")
	}
	for i := range report.Papers {
		p := &report.Papers[i]
		fmt.Fprintf(&b, "### %d. [%s](%s)\n\n", i+1, p.Title, p.URL)
		if c := strings.TrimPrefix(citation(p), " "); c != "" {
			fmt.Fprintf(&b, "%s\n\n", c)
		}
		if summary := p.BestSummary(); summary != "" {
			fmt.Fprintf(&b, "%s\n\n", summary)
		}
		if p.Sentiment != nil {
			fmt.Fprintf(&b, "**Stance:** %s (confidence %.2f). %s\n\n", p.Sentiment.Sentiment, p.Sentiment.Confidence, p.Sentiment.Reason)
		}
		if p.Sentiment != nil || p.StudyMetadata != nil {
			writeMetadata(&b, p.StudyMetadata.Display())
		}
	}

	if len(report.Communities) > 0 {
		b.WriteString("## Communities\n\n")
		for _, c := range report.Communities {
			fmt.Fprintf(&b, "- [r/%s](%s): %s\n", c.Name, c.URL, firstNonEmpty(c.Title, c.Description))
		}
		b.WriteString("\n")
	}

	if report.Degraded() {
		b.WriteString("## Degraded stages\n\n")
		b.WriteString("| Stage | Item | Kind |\n|---|---|---|\n")
		for _, o := range report.Stages {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", o.Stage, escapeCell(o.Item), o.Kind)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by claimcheck. Scores summarize published abstracts and are not medical advice._\n")
	}
	return b.String()
}

func writeMetadata(b *strings.Builder, d model.MetadataDisplay) {
	b.WriteString("| Detail | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Study type", d.StudyType},
		{"Sample size", d.SampleSize},
		{"Age", d.Age},
		{"Gender", d.Gender},
		{"Population", d.Population},
		{"Location", d.Location},
		{"p-value", d.PValue},
		{"Confidence interval", d.ConfidenceInterval},
		{"Effect size", d.EffectSize},
		{"Significant", d.Significant},
	}
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", row[0], escapeCell(row[1]))
	}
	b.WriteString("\n")
}

// citation formats " (Journal, Year, N citations)" with whatever is known
func citation(p *model.Paper) string {
	var parts []string
	if p.Journal != "" {
		parts = append(parts, p.Journal)
	}
	if p.Year != "" {
		parts = append(parts, p.Year)
	}
	if p.Citations != nil {
		parts = append(parts, fmt.Sprintf("%d citations", *p.Citations))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
