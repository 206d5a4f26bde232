package narrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/claimcheck/internal/llm"
	"github.com/ppiankov/claimcheck/internal/model"
)

// Languages maps supported output language codes to their names
var Languages = map[string]string{
	"en": "English",
	"es": "Spanish",
	"ja": "Japanese",
	"fr": "French",
	"de": "German",
}

// SupportedLanguage reports whether lang can be requested
func SupportedLanguage(lang string) bool {
	_, ok := Languages[strings.ToLower(lang)]
	return ok
}

// Translator renders text in another language
type Translator struct {
	sessions *llm.Sessions
	timeout  time.Duration
}

// NewTranslator creates a Translator
func NewTranslator(sessions *llm.Sessions, timeout time.Duration) *Translator {
	return &Translator{sessions: sessions, timeout: timeout}
}

// Translate returns text in lang. The default language passes through
// without a model call. Each call opens a fresh session bound to its
// target language. On failure the untranslated text comes back degraded.
func (t *Translator) Translate(ctx context.Context, text, lang string) model.Result[string] {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == model.DefaultLanguage || strings.TrimSpace(text) == "" {
		return model.OK(text)
	}

	name, ok := Languages[lang]
	if !ok {
		err := fmt.Errorf("unsupported language %q", lang)
		return model.Fallback(text, model.FailureModelUnavailable, err)
	}

	session, err := t.sessions.Fresh()
	if err != nil {
		return model.Fallback(text, model.FailureModelUnavailable, err)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	resp, err := session.Complete(ctx, llm.CompletionRequest{
		System: fmt.Sprintf("Translate the user's text from English into %s. Keep the structure and numbers. Reply with the translation only.", name),
		Prompt: text,
	})
	if err != nil {
		return model.Fallback(text, model.FailureModelUnavailable, err)
	}

	translated := strings.TrimSpace(llm.StripCodeFence(resp.Text))
	if translated == "" {
		return model.Fallback(text, model.FailureMalformed, errors.New("empty translation"))
	}
	return model.OK(translated)
}
