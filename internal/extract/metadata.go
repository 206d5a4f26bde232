package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/claimcheck/internal/llm"
	"github.com/ppiankov/claimcheck/internal/model"
)

const metadataSystem = `You extract study details from research abstracts.
Respond with strict JSON only, no prose, using exactly this shape:
{"study_type": string, "sample_size": number,
 "demographics": {"age": string, "gender": string, "population": string, "location": string},
 "statistics": {"p_value": string, "confidence_interval": string, "effect_size": string, "significant": true|false|null}}
Use "not reported" for anything the abstract does not state.`

// MetadataExtractor pulls StudyMetadata out of a paper's abstract
type MetadataExtractor struct {
	caller
}

// NewMetadataExtractor creates an extractor on the language-model session
func NewMetadataExtractor(sessions *llm.Sessions, timeout time.Duration) *MetadataExtractor {
	return &MetadataExtractor{caller{sessions: sessions, kind: llm.KindLanguageModel, timeout: timeout}}
}

// rawMetadata tolerates numbers where strings are expected and vice versa
type rawMetadata struct {
	StudyType    any `json:"study_type"`
	SampleSize   any `json:"sample_size"`
	Demographics struct {
		Age        any `json:"age"`
		Gender     any `json:"gender"`
		Population any `json:"population"`
		Location   any `json:"location"`
	} `json:"demographics"`
	Statistics struct {
		PValue             any `json:"p_value"`
		ConfidenceInterval any `json:"confidence_interval"`
		EffectSize         any `json:"effect_size"`
		Significant        any `json:"significant"`
	} `json:"statistics"`
}

// Extract returns the paper's metadata, or a nil fallback when the model
// fails or answers with something other than the JSON shape
func (e *MetadataExtractor) Extract(ctx context.Context, paper model.Paper) model.Result[*model.StudyMetadata] {
	text, err := e.complete(ctx, llm.CompletionRequest{
		System: metadataSystem,
		Prompt: fmt.Sprintf("Title: %s\n\nAbstract: %s", paper.Title, clip(paper.Abstract, maxAbstractChars)),
	})
	if err != nil {
		return model.Fallback[*model.StudyMetadata](nil, model.FailureModelUnavailable, err)
	}

	var raw rawMetadata
	if err := llm.ParseJSON(text, &raw); err != nil {
		return model.Fallback[*model.StudyMetadata](nil, model.FailureMalformed, err)
	}
	return model.OK(raw.metadata())
}

func (r rawMetadata) metadata() *model.StudyMetadata {
	return &model.StudyMetadata{
		StudyType:  optString(r.StudyType),
		SampleSize: optInt(r.SampleSize),
		Demographics: model.Demographics{
			Age:        optString(r.Demographics.Age),
			Gender:     optString(r.Demographics.Gender),
			Population: optString(r.Demographics.Population),
			Location:   optString(r.Demographics.Location),
		},
		Statistics: model.Statistics{
			PValue:             optString(r.Statistics.PValue),
			ConfidenceInterval: optString(r.Statistics.ConfidenceInterval),
			EffectSize:         optString(r.Statistics.EffectSize),
			Significant:        optBool(r.Statistics.Significant),
		},
	}
}

func optString(v any) *string {
	switch t := v.(type) {
	case string:
		return model.OptionalString(t)
	case float64:
		s := strconv.FormatFloat(t, 'g', -1, 64)
		return &s
	}
	return nil
}

func optInt(v any) *int {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return nil
		}
		n := int(t)
		return &n
	case string:
		digits := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(t))
		if n, err := strconv.Atoi(digits); err == nil && n > 0 {
			return &n
		}
	}
	return nil
}

func optBool(v any) *bool {
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes":
			b = true
		case "false", "no":
			b = false
		default:
			return nil
		}
	default:
		return nil
	}
	return &b
}
