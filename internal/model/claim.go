package model

import "strings"

// Claim is a user-supplied health assertion. It lives for one check only.
type Claim struct {
	Text string `json:"text"`
}

// NewClaim trims the input and wraps it as a Claim
func NewClaim(text string) Claim {
	return Claim{Text: strings.TrimSpace(text)}
}

// IsEmpty reports whether the claim has no usable text
func (c Claim) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == ""
}

// SearchQuery is the terse keyword query derived from a claim (3-6 terms)
type SearchQuery string

func (q SearchQuery) String() string {
	return string(q)
}
