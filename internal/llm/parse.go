package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
)

var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*\\s*\\n?(.*?)\\n?```$")

// StripCodeFence removes a surrounding Markdown code fence, if any
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// ParseJSON decodes model output into v: code fences are stripped, then a
// strict parse is tried, then one more on the outermost {...} span.
func ParseJSON(text string, v any) error {
	body := StripCodeFence(text)
	if body == "" {
		return fmt.Errorf("empty output: %w", model.ErrMalformedResponse)
	}

	err := json.Unmarshal([]byte(body), v)
	if err == nil {
		return nil
	}

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start >= 0 && end > start {
		if json.Unmarshal([]byte(body[start:end+1]), v) == nil {
			return nil
		}
	}

	return fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
}

// CleanLine trims model prose down to a single line without quotes or fences
func CleanLine(text string) string {
	text = StripCodeFence(text)
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"'`")
	return strings.TrimSpace(text)
}
