package model

import (
	"fmt"
	"strings"
)

// NotReported is rendered for any study detail the paper does not state.
// It only appears at the presentation boundary.
const NotReported = "not reported"

// StudyMetadata holds structured study details extracted from an abstract.
// A nil field means the abstract did not report it.
type StudyMetadata struct {
	StudyType    *string      `json:"study_type,omitempty"`
	SampleSize   *int         `json:"sample_size,omitempty"`
	Demographics Demographics `json:"demographics"`
	Statistics   Statistics   `json:"statistics"`
}

// Demographics describes the studied population
type Demographics struct {
	Age        *string `json:"age,omitempty"`
	Gender     *string `json:"gender,omitempty"`
	Population *string `json:"population,omitempty"`
	Location   *string `json:"location,omitempty"`
}

// Statistics holds the reported statistical results
type Statistics struct {
	PValue             *string `json:"p_value,omitempty"`
	ConfidenceInterval *string `json:"confidence_interval,omitempty"`
	EffectSize         *string `json:"effect_size,omitempty"`
	Significant        *bool   `json:"significant,omitempty"`
}

// MetadataDisplay is the flat, sentinel-filled view used by renderers
type MetadataDisplay struct {
	StudyType          string
	SampleSize         string
	Age                string
	Gender             string
	Population         string
	Location           string
	PValue             string
	ConfidenceInterval string
	EffectSize         string
	Significant        string
}

// Display renders every optional field, substituting NotReported for nil
func (m *StudyMetadata) Display() MetadataDisplay {
	if m == nil {
		m = &StudyMetadata{}
	}
	d := MetadataDisplay{
		StudyType:          orNotReported(m.StudyType),
		SampleSize:         NotReported,
		Age:                orNotReported(m.Demographics.Age),
		Gender:             orNotReported(m.Demographics.Gender),
		Population:         orNotReported(m.Demographics.Population),
		Location:           orNotReported(m.Demographics.Location),
		PValue:             orNotReported(m.Statistics.PValue),
		ConfidenceInterval: orNotReported(m.Statistics.ConfidenceInterval),
		EffectSize:         orNotReported(m.Statistics.EffectSize),
		Significant:        NotReported,
	}
	if m.SampleSize != nil {
		d.SampleSize = fmt.Sprintf("%d", *m.SampleSize)
	}
	if m.Statistics.Significant != nil {
		if *m.Statistics.Significant {
			d.Significant = "yes"
		} else {
			d.Significant = "no"
		}
	}
	return d
}

// IsEmpty reports whether nothing at all was extracted
func (m *StudyMetadata) IsEmpty() bool {
	if m == nil {
		return true
	}
	return m.StudyType == nil && m.SampleSize == nil &&
		m.Demographics == (Demographics{}) && m.Statistics == (Statistics{})
}

func orNotReported(s *string) string {
	if s == nil {
		return NotReported
	}
	return *s
}

// OptionalString maps model output onto an optional: empty strings and
// "not reported"-style placeholders become nil.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", NotReported, "n/a", "na", "none", "unknown", "null", "not specified", "not stated":
		return nil
	}
	return &s
}
