package health

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mailvetter/internal/engine/models"
)

func TestReputationScore_Baseline(t *testing.T) {
	h := models.DomainHealth{}
	score := reputationScore(h, "example.com")
	assert.Equal(t, 50, score)
}

func TestReputationScore_TrustedProviderAndSignals(t *testing.T) {
	h := models.DomainHealth{SPF: true, DKIM: true, DMARC: true}
	score := reputationScore(h, "gmail.com")
	// 50 + 40 (trusted) + 5 (spf) + 5 (dkim) + 10 (dmarc) = 110 -> clamp 100
	assert.Equal(t, 100, score)
}

func TestReputationScore_CorporateHeuristicBySubstring(t *testing.T) {
	h := models.DomainHealth{}
	score := reputationScore(h, "acmecorp.com")
	// not trusted, +20 corporate heuristic ("corp" substring) = 70
	assert.Equal(t, 70, score)
}

func TestReputationScore_CorporateHeuristicByUnusualTLD(t *testing.T) {
	h := models.DomainHealth{}
	score := reputationScore(h, "example.xyz")
	// not trusted, +20 corporate heuristic (unusual TLD) = 70
	assert.Equal(t, 70, score)
}

func TestReputationScore_SuspiciousTLDPenalty(t *testing.T) {
	h := models.DomainHealth{}
	score := reputationScore(h, "example.tk")
	// .tk is both an unusual TLD (+20 corporate heuristic) and a
	// suspicious TLD (-30): 50 + 20 - 30 = 40.
	assert.Equal(t, 40, score)
}

func TestReputationScore_NeverNegative(t *testing.T) {
	h := models.DomainHealth{}
	score := reputationScore(h, "sub.example.tk")
	assert.GreaterOrEqual(t, score, 0)
}

func TestIsTrustedProvider(t *testing.T) {
	assert.True(t, isTrustedProvider("gmail.com"))
	assert.True(t, isTrustedProvider("Yahoo.com"))
	assert.False(t, isTrustedProvider("example.com"))
}

func TestIsCorporateHeuristic(t *testing.T) {
	assert.True(t, isCorporateHeuristic("acmecorp.com"))
	assert.True(t, isCorporateHeuristic("mycompany.net"))
	assert.True(t, isCorporateHeuristic("example.xyz"))
	assert.False(t, isCorporateHeuristic("gmail.com"))
}

func TestHasSuspiciousTLD(t *testing.T) {
	assert.True(t, hasSuspiciousTLD("scam.tk"))
	assert.False(t, hasSuspiciousTLD("legit.com"))
	assert.False(t, hasSuspiciousTLD("no-dot"))
}
