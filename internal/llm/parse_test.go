package llm

import (
	"errors"
	"testing"

	"github.com/ppiankov/claimcheck/internal/model"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n ", `{"a":1}`},
		{"unterminated fence left alone", "```json\n{\"a\":1}", "```json\n{\"a\":1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	type out struct {
		Sentiment  string  `json:"sentiment"`
		Confidence float64 `json:"confidence"`
	}

	var v out
	if err := ParseJSON("```json\n{\"sentiment\":\"POSITIVE\",\"confidence\":0.8}\n```", &v); err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if v.Sentiment != "POSITIVE" || v.Confidence != 0.8 {
		t.Errorf("Unexpected value: %+v", v)
	}

	v = out{}
	if err := ParseJSON("Here you go: {\"sentiment\":\"NEGATIVE\",\"confidence\":0.6} hope that helps", &v); err != nil {
		t.Fatalf("Expected embedded object to parse, got %v", err)
	}
	if v.Sentiment != "NEGATIVE" {
		t.Errorf("Unexpected value: %+v", v)
	}
}

func TestParseJSON_Malformed(t *testing.T) {
	var v map[string]any
	for _, in := range []string{"", "not json at all", "{broken"} {
		err := ParseJSON(in, &v)
		if !errors.Is(err, model.ErrMalformedResponse) {
			t.Errorf("ParseJSON(%q) = %v, want ErrMalformedResponse", in, err)
		}
	}
}

func TestCleanLine(t *testing.T) {
	if got := CleanLine("\"vitamin D common cold\"\nThese keywords..."); got != "vitamin D common cold" {
		t.Errorf("Unexpected: %q", got)
	}
}
