package model

import (
	"reflect"
	"testing"
)

func TestPaper_DedupKeys(t *testing.T) {
	tests := []struct {
		name  string
		paper Paper
		want  []string
	}{
		{
			name:  "title only",
			paper: Paper{Title: "  Vitamin D and Colds "},
			want:  []string{"title:vitamin d and colds"},
		},
		{
			name:  "resolver prefix stripped",
			paper: Paper{Title: "Zinc", DOI: "https://doi.org/10.1/ABC"},
			want:  []string{"title:zinc", "doi:10.1/abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.paper.DedupKeys(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DedupKeys() = %v, want %v", got, tt.want)
			}
		})
	}
}
