package disposable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDisposable(t *testing.T) {
	c := Load("", nil)

	tests := []struct {
		domain string
		want   bool
	}{
		{"10minutemail.com", true},
		{"mailinator.com", true},
		{"sub.mailinator.com", true}, // parent-suffix inheritance
		{"tempmail-service.com", true},
		{"throwaway123.com", true},
		{"example.tk", true},
		{"gmail.com", false},
		{"example.com", false},
		{"mycompany.io", false},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsDisposable(tt.domain))
		})
	}
}

func TestIsDisposableHeuristic_RequiresTwoMatches(t *testing.T) {
	c := Load("", nil)

	assert.False(t, c.IsDisposableHeuristic("example.com"))
	assert.False(t, c.IsDisposableHeuristic("fakeemail.com")) // only one pattern ("fake")
	assert.True(t, c.IsDisposableHeuristic("fake-trash-mail.com"))
}

func TestRiskScoreIsBounded(t *testing.T) {
	c := Load("", nil)
	score := c.RiskScore("10minutemail.com")
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}
