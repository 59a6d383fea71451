package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mailvetter/internal/engine/models"
)

func fullyValidResult() *models.ValidationResult {
	return &models.ValidationResult{
		SyntaxValid:     true,
		DomainValid:     true,
		MXFound:         true,
		SMTPDeliverable: models.SMTPYes,
		DomainHealth: models.DomainHealth{
			SPF: true, DMARC: true, DKIM: true, Reputation: 90,
		},
		TLSSupported:    true,
		IsBusinessEmail: true,
	}
}

func TestScore_FullyValidClampsAtOrBelow100(t *testing.T) {
	r := fullyValidResult()
	score, breakdown := Score(r, false)
	assert.LessOrEqual(t, score, 100)
	assert.Equal(t, WeightSyntaxValid, breakdown["syntax_valid"])
	assert.Equal(t, WeightMXFound, breakdown["mx_found"])
}

func TestScore_DisposablePenaltyReducesScore(t *testing.T) {
	clean := fullyValidResult()
	cleanScore, _ := Score(clean, false)

	disposable := fullyValidResult()
	disposable.Disposable = true
	disposableScore, breakdown := Score(disposable, false)

	assert.Less(t, disposableScore, cleanScore)
	assert.Equal(t, PenaltyDisposable, breakdown["penalty_disposable"])
}

func TestScore_StrictModeUsesStrictCoefficients(t *testing.T) {
	r := fullyValidResult()
	r.Disposable = true

	nonStrictScore, nonStrictBreakdown := Score(r, false)
	strictScore, strictBreakdown := Score(r, true)

	assert.Equal(t, PenaltyDisposable, nonStrictBreakdown["penalty_disposable"])
	assert.Equal(t, PenaltyDisposableStrict, strictBreakdown["penalty_disposable"])
	assert.Less(t, strictScore, nonStrictScore)
}

func TestScore_NeverNegative(t *testing.T) {
	r := &models.ValidationResult{
		SMTPDeliverable: models.SMTPNo,
		Disposable:      true,
		IsRoleBased:     true,
		IsFreeProvider:  true,
		TypoDetected:    true,
		DomainHealth:    models.DomainHealth{Blacklisted: true, Reputation: 0},
	}
	score, _ := Score(r, false)
	assert.GreaterOrEqual(t, score, 0)

	strictScore, _ := Score(r, true)
	assert.GreaterOrEqual(t, strictScore, 0)
}

func TestStatus_DisposableIsAlwaysRisky(t *testing.T) {
	r := fullyValidResult()
	r.Disposable = true
	status, reason := Status(r, 100, 85, 65)
	assert.Equal(t, models.StatusRisky, status)
	assert.NotEmpty(t, reason)
}

func TestStatus_BlacklistedIsAlwaysInvalid(t *testing.T) {
	r := fullyValidResult()
	r.DomainHealth.Blacklisted = true
	status, _ := Status(r, 100, 85, 65)
	assert.Equal(t, models.StatusInvalid, status)
}

func TestStatus_DisposableOutranksBlacklisted(t *testing.T) {
	r := fullyValidResult()
	r.Disposable = true
	r.DomainHealth.Blacklisted = true
	status, _ := Status(r, 100, 85, 65)
	assert.Equal(t, models.StatusRisky, status)
}

func TestStatus_NoMXIsInvalid(t *testing.T) {
	r := fullyValidResult()
	r.MXFound = false
	status, _ := Status(r, 95, 85, 65)
	assert.Equal(t, models.StatusInvalid, status)
}

func TestStatus_Bands(t *testing.T) {
	r := fullyValidResult()
	valid, _ := Status(r, 90, 85, 65)
	assert.Equal(t, models.StatusValid, valid)

	risky, _ := Status(r, 70, 85, 65)
	assert.Equal(t, models.StatusRisky, risky)

	invalid, _ := Status(r, 40, 85, 65)
	assert.Equal(t, models.StatusInvalid, invalid)
}

func TestAddressReputation_NoreplyPenalized(t *testing.T) {
	clean := AddressReputation("jane.doe", 50)
	noreply := AddressReputation("noreply", 50)
	assert.Less(t, noreply, clean)
}

func TestAddressReputation_ShortLocalPartPenalized(t *testing.T) {
	short := AddressReputation("ab", 50)
	normal := AddressReputation("jane.doe", 50)
	assert.Less(t, short, normal)
}

func TestAddressReputation_DigitRunPenalized(t *testing.T) {
	clean := AddressReputation("jane.doe", 50)
	digits := AddressReputation("jane12345", 50)
	assert.Less(t, digits, clean)
}

func TestAddressReputation_BoundedRange(t *testing.T) {
	score := AddressReputation("test-demo-12345678901234567890", 0)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}
