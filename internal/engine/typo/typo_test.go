package typo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name           string
		email          string
		wantTypo       bool
		wantSuggestion string
		wantConfMin    int
	}{
		{name: "exact misspelling", email: "user@gmial.com", wantTypo: true, wantSuggestion: "user@gmail.com", wantConfMin: 95},
		{name: "tld typo", email: "user@gmail.con", wantTypo: true, wantSuggestion: "user@gmail.com", wantConfMin: 90},
		{name: "near neighbor by edit distance", email: "user@gmaik.com", wantTypo: true, wantConfMin: 80},
		{name: "popular domain untouched", email: "user@gmail.com", wantTypo: false},
		{name: "unrelated valid domain", email: "user@example.com", wantTypo: false},
		{name: "missing at", email: "userexample.com", wantTypo: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Suggest(tt.email)
			assert.Equal(t, tt.wantTypo, res.TypoDetected)
			if tt.wantSuggestion != "" {
				assert.Equal(t, tt.wantSuggestion, res.Suggestion)
			}
			if tt.wantConfMin > 0 {
				assert.GreaterOrEqual(t, res.Confidence, tt.wantConfMin)
			}
		})
	}
}

func TestSuggest_PopularDomainsAreNeverCorrectedToANeighbor(t *testing.T) {
	c := New(nil)
	for _, domain := range Popular {
		res := c.Suggest("someone@" + domain)
		assert.False(t, res.TypoDetected, "popular domain %s must not be flagged as a typo", domain)
	}
}
