// Package scorer implements spec.md §4.7's Heuristic Scorer: a pure
// weighted-sum function over a ValidationResult's collected factors,
// returning a score in [0,100], a breakdown map, and a Status.
//
// Structurally grounded on mailvetter's internal/validator/scoring.go
// (named Weight* constants, a breakdown map keyed by signal name, and a
// final clamp-then-band return shape) but the weights themselves are
// spec.md §4.7's exact coefficients, superseding the teacher's bespoke
// OSINT-proof weighting — see DESIGN.md's Open Question resolution.
package scorer

import (
	"regexp"
	"strings"

	"mailvetter/internal/engine/models"
)

const (
	WeightSyntaxValid = 25.0
	WeightDomainValid = 20.0
	WeightMXFound     = 25.0

	WeightSMTPYes     = 20.0
	WeightSMTPUnknown = 5.0
	WeightSMTPNo      = 0.0

	WeightSPF   = 5.0
	WeightDMARC = 7.0
	WeightDKIM  = 3.0

	// Non-strict penalty coefficients.
	PenaltyDisposable = -40.0
	PenaltyBlacklist  = -50.0
	PenaltyRoleBased  = -15.0
	PenaltyFreeEmail  = -5.0
	PenaltyTypo       = -15.0

	// Strict-mode penalty coefficients: spec.md §4.7 flips to these when
	// the result was validated with strictMode on.
	PenaltyDisposableStrict = -50.0
	PenaltyBlacklistStrict  = -60.0
	PenaltyRoleBasedStrict  = -25.0
	PenaltyFreeEmailStrict  = -10.0
	PenaltyTypoStrict       = -25.0

	WeightTLS           = 5.0
	WeightBusinessEmail = 10.0
)

var digitRun = regexp.MustCompile(`\d{5,}`)

// Score implements spec.md §4.7's weighted-sum formula against r. r must
// already carry every upstream stage's output; Score never performs I/O.
// strict selects the strict-mode penalty coefficients spec.md §4.8 says
// strictMode flips the scorer into.
func Score(r *models.ValidationResult, strict bool) (int, map[string]float64) {
	score := 0.0
	breakdown := make(map[string]float64)

	add := func(key string, amount float64) {
		if amount == 0 {
			return
		}
		score += amount
		breakdown[key] = amount
	}

	penaltyDisposable, penaltyBlacklist := PenaltyDisposable, PenaltyBlacklist
	penaltyRoleBased, penaltyFreeEmail := PenaltyRoleBased, PenaltyFreeEmail
	penaltyTypo := PenaltyTypo
	if strict {
		penaltyDisposable, penaltyBlacklist = PenaltyDisposableStrict, PenaltyBlacklistStrict
		penaltyRoleBased, penaltyFreeEmail = PenaltyRoleBasedStrict, PenaltyFreeEmailStrict
		penaltyTypo = PenaltyTypoStrict
	}

	if r.SyntaxValid {
		add("syntax_valid", WeightSyntaxValid)
	}
	if r.DomainValid {
		add("domain_valid", WeightDomainValid)
	}
	if r.MXFound {
		add("mx_found", WeightMXFound)
	}

	switch r.SMTPDeliverable {
	case models.SMTPYes:
		add("smtp_yes", WeightSMTPYes)
	case models.SMTPUnknown:
		add("smtp_unknown", WeightSMTPUnknown)
	case models.SMTPNo:
		add("smtp_no", WeightSMTPNo)
	}

	if r.DomainHealth.SPF {
		add("spf", WeightSPF)
	}
	if r.DomainHealth.DMARC {
		add("dmarc", WeightDMARC)
	}
	if r.DomainHealth.DKIM {
		add("dkim", WeightDKIM)
	}

	if r.Disposable {
		add("penalty_disposable", penaltyDisposable)
	}
	if r.DomainHealth.Blacklisted {
		add("penalty_blacklisted", penaltyBlacklist)
	}
	if r.IsRoleBased {
		add("penalty_role_based", penaltyRoleBased)
	}
	if r.IsFreeProvider {
		add("penalty_free_provider", penaltyFreeEmail)
	}
	if r.TypoDetected {
		add("penalty_typo", penaltyTypo)
	}

	if r.TLSSupported {
		add("tls_supported", WeightTLS)
	}

	// Reputation adjustment: the domain health reputation score is a
	// [0,100] signal centered at 50; a fifth of the signed delta from
	// center is folded in so a strongly reputable domain lifts the score
	// and a weak one drags it down without dominating the formula.
	repDelta := float64(r.DomainHealth.Reputation-50) / 5
	add("reputation_adjustment", repDelta)

	if r.IsBusinessEmail {
		add("business_email", WeightBusinessEmail)
	}

	final := int(score + 0.5)
	if score < 0 {
		final = int(score - 0.5)
	}
	if final > 100 {
		final = 100
	}
	if final < 0 {
		final = 0
	}

	return final, breakdown
}

// Status derives spec.md §4.8's decision table against r, evaluated
// top-down with the first matching row winning: disposable addresses are
// always risky and blacklisted domains are always invalid regardless of
// score, before the syntax/domain/MX gates and the score bands apply.
func Status(r *models.ValidationResult, score int, valid, risky int) (models.Status, string) {
	if r.Disposable {
		return models.StatusRisky, "Disposable email address detected"
	}
	if r.DomainHealth.Blacklisted {
		return models.StatusInvalid, "Domain is blacklisted"
	}
	if !r.SyntaxValid || !r.DomainValid {
		reason := r.Reason
		if reason == "" {
			reason = "syntax or domain invalid"
		}
		return models.StatusInvalid, reason
	}
	if !r.MXFound {
		return models.StatusInvalid, "Domain cannot receive emails (no MX records)"
	}

	if score >= valid {
		return models.StatusValid, "Email appears to be valid and deliverable"
	}
	if score >= risky {
		return models.StatusRisky, "Email may be risky — proceed with caution"
	}
	return models.StatusInvalid, "Email is likely invalid or undeliverable"
}

// AddressReputation implements spec.md §4.7's separate address-level
// reputation formula: 50 base, penalties for noreply/test/demo local
// parts, runs of 5+ digits, and length, plus half the signed
// domain-reputation delta.
func AddressReputation(localPart string, domainReputation int) int {
	score := 50
	lower := strings.ToLower(localPart)

	if lower == "noreply" || lower == "no-reply" || strings.HasPrefix(lower, "noreply") {
		score -= 20
	}
	if strings.Contains(lower, "test") || strings.Contains(lower, "demo") {
		score -= 15
	}
	if digitRun.MatchString(lower) {
		score -= 10
	}
	if len(lower) < 3 {
		score -= 10
	} else if len(lower) > 20 {
		score -= 5
	}

	score += (domainReputation - 50) / 2

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
