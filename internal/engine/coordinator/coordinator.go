// Package coordinator implements spec.md §4.8: the Validator Coordinator
// that runs every pipeline stage in strict order, short-circuiting once
// a stage's outcome makes downstream stages moot, and folds the result
// into a single frozen ValidationResult.
//
// Grounded on mailvetter's internal/validator/logic.go for the overall
// shape (a single VerifyEmail-style entry point assembling one result
// record stage by stage) but re-sequenced: the teacher fans every stage
// out into concurrent goroutines joined by sync.WaitGroup, while
// spec.md §5 requires the DNS/SMTP/health stages within one validation
// run to execute sequentially, because each stage's outcome can make the
// next one meaningless (no MX means no point probing SMTP).
package coordinator

import (
	"context"
	"net/url"
	"strings"
	"time"

	"mailvetter/internal/engine/disposable"
	"mailvetter/internal/engine/health"
	"mailvetter/internal/engine/models"
	"mailvetter/internal/engine/parser"
	"mailvetter/internal/engine/resolver"
	"mailvetter/internal/engine/scorer"
	"mailvetter/internal/engine/smtp"
	"mailvetter/internal/engine/typo"
	"mailvetter/internal/proxy"
)

var freeProviders = map[string]struct{}{
	"gmail.com": {}, "yahoo.com": {}, "outlook.com": {}, "hotmail.com": {},
	"aol.com": {}, "icloud.com": {}, "protonmail.com": {}, "mail.com": {},
	"live.com": {}, "gmx.com": {},
}

var roleLocalParts = map[string]struct{}{
	"admin": {}, "administrator": {}, "support": {}, "info": {}, "sales": {},
	"contact": {}, "help": {}, "webmaster": {}, "postmaster": {}, "noreply": {},
	"no-reply": {}, "billing": {}, "abuse": {}, "security": {},
}

// Coordinator wires every pipeline stage together behind one entry
// point, Validate. Opts holds the server-configured defaults; a caller
// that needs spec.md §6's per-request option overrides should use
// ValidateWithOptions instead.
type Coordinator struct {
	Disposable *disposable.Classifier
	Resolver   *resolver.Resolver
	Typo       *typo.Corrector
	SMTP       *smtp.Prober
	Health     *health.Prober
	Opts       models.Options
}

func New(d *disposable.Classifier, r *resolver.Resolver, t *typo.Corrector, s *smtp.Prober, h *health.Prober, opts models.Options) *Coordinator {
	return &Coordinator{Disposable: d, Resolver: r, Typo: t, SMTP: s, Health: h, Opts: opts}
}

// Validate runs spec.md §4.8's decision table for one address under the
// Coordinator's configured default options.
func (c *Coordinator) Validate(ctx context.Context, input string) *models.ValidationResult {
	return c.validate(ctx, input, c.Opts)
}

// ValidateWithOptions runs the same pipeline as Validate but under opts
// instead of c.Opts, so a single request can toggle checks, flip strict
// mode, or override SMTP timeout/from-domain without mutating shared
// server state (spec.md §6's "Recognized options").
func (c *Coordinator) ValidateWithOptions(ctx context.Context, input string, opts models.Options) *models.ValidationResult {
	return c.validate(ctx, input, opts)
}

func (c *Coordinator) validate(ctx context.Context, input string, opts models.Options) *models.ValidationResult {
	start := time.Now()
	r := &models.ValidationResult{Input: input}
	defer func() { r.ValidationTimeMs = time.Since(start).Milliseconds() }()

	// Stage 1: Parse.
	addr, ok := c.parseStage(r, input, opts)
	if !ok {
		return r
	}

	// Stage 2: Typo suggestion (informational; never blocks).
	if opts.CheckTypos && c.Typo != nil {
		suggestion := c.Typo.Suggest(r.NormalizedEmail)
		if suggestion.TypoDetected {
			r.TypoDetected = true
			r.Suggestion = suggestion.Suggestion
		}
		r.AddCheck("typo")
	}

	// Stage 3: Disposable classification.
	if opts.CheckDisposable && c.Disposable != nil {
		r.Disposable = c.Disposable.IsDisposable(addr.Domain)
		r.AddCheck("disposable")
		if r.Disposable && opts.RejectDisposable {
			r.Status = models.StatusInvalid
			r.Reason = "disposable email provider"
			r.Score, r.Factors.Reputation = 0, 0
			return r
		}
	}
	// IsBusinessEmail (spec.md §5) requires knowing Disposable, which
	// only the stage above populates, so it can't be derived in
	// parseStage alongside IsFreeProvider/IsRoleBased.
	r.IsBusinessEmail = !r.IsFreeProvider && !r.Disposable

	// Stage 4: Domain A/AAAA resolution.
	r.DomainValid = true
	if opts.CheckDomain {
		domainRes := c.Resolver.ResolveDomain(ctx, addr.Domain)
		r.AddCheck("domain_resolve")
		r.DomainValid = domainRes.Valid
		if !r.DomainValid {
			r.Status = models.StatusInvalid
			r.Reason = domainRes.Reason
			return r
		}
	}

	// Stage 5: MX resolution.
	r.MXFound = true
	var mxHosts []string
	var mxRecords []resolver.MXRecord
	if opts.CheckMX {
		mxRes := c.Resolver.ResolveMX(ctx, addr.Domain)
		r.AddCheck("mx_resolve")
		r.MXFound = mxRes.Found
		r.Factors.MX = mxRes.Found
		r.Factors.Deliverability = mxRes.DeliverabilityScore
		if !r.MXFound {
			r.Status = models.StatusInvalid
			r.Reason = mxRes.Reason
			return r
		}
		mxRecords = mxRes.Records
		mxHosts = make([]string, 0, len(mxRecords))
		for _, rec := range mxRecords {
			mxHosts = append(mxHosts, rec.Host)
		}
	}

	// Stage 6: SMTP probe, only when MX was found and probing is enabled.
	r.SMTPDeliverable = models.SMTPUnknown
	if opts.EnableSMTPProbe() && c.SMTP != nil && len(mxRecords) > 0 {
		var pinnedProxy *url.URL
		if proxy.Enabled() {
			pinnedProxy = proxy.Global.Next()
		}
		smtpTimeout := time.Duration(opts.SMTPTimeoutMs) * time.Millisecond
		smtpRes := c.SMTP.Probe(ctx, r.NormalizedEmail, addr.Domain, mxRecords[0].Host, pinnedProxy, smtpTimeout, opts.SMTPFromDomain)
		r.AddCheck("smtp_probe")
		r.SMTPDeliverable = smtpRes.Deliverable
		r.IsCatchAll = smtpRes.IsCatchAll
		r.SMTPServerBanner = smtpRes.Banner
		r.SMTPServerResponse = smtpRes.FinalResponse
		r.TLSSupported = smtpRes.TLSSupported
		r.Factors.SMTP = smtpRes.Deliverable == models.SMTPYes
	}

	// Stage 7: Domain health (SPF/DKIM/DMARC/blacklist/reputation).
	if c.Health != nil {
		r.DomainHealth = c.Health.Probe(ctx, addr.Domain, mxHosts)
		r.AddCheck("domain_health")
	}
	// Factors.Reputation holds the address's own reputation
	// (spec.md §4.7's reputation(address, result)), not the domain's —
	// DomainHealth.Reputation already carries that separately.
	r.Factors.Reputation = scorer.AddressReputation(addr.Local, r.DomainHealth.Reputation)

	// Stage 8: score and final status.
	score, _ := scorer.Score(r, opts.StrictMode)
	r.Score = score
	status, reason := scorer.Status(r, score, opts.ValidThreshold(), opts.RiskyThreshold())
	r.Status = status
	r.Reason = reason
	r.AddCheck("score")

	return r
}

// parseStage runs the syntax stage and populates every field it derives.
// It reports ok=false when the address was rejected (r is already
// finalized in that case) or when allowInternational forbids an
// internationalized domain the parser otherwise accepted.
func (c *Coordinator) parseStage(r *models.ValidationResult, input string, opts models.Options) (parser.Address, bool) {
	var addr parser.Address
	var err error

	if opts.CheckSyntax {
		addr, err = parser.Parse(input, opts.StrictMode)
	} else {
		// Syntax checking disabled: trust the caller's split on '@'
		// rather than enforcing spec.md §4.1's rule set.
		parts := strings.SplitN(input, "@", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			addr, err = parser.Parse(input, opts.StrictMode)
		} else {
			addr = parser.Address{Original: input, Local: parts[0], Domain: strings.ToLower(parts[1])}
		}
	}

	r.AddCheck("syntax")
	if err != nil {
		r.SyntaxValid = false
		r.Status = models.StatusInvalid
		r.Reason = err.Error()
		return parser.Address{}, false
	}

	if addr.International && !opts.AllowInternational {
		r.SyntaxValid = false
		r.Status = models.StatusInvalid
		r.Reason = "internationalized domains are not permitted"
		return parser.Address{}, false
	}

	r.SyntaxValid = true
	r.NormalizedEmail = addr.Local + "@" + addr.Domain
	r.IsInternational = addr.International
	r.HasPlusAlias = strings.Contains(addr.Local, "+")
	r.GmailNormalized = gmailNormalize(addr)
	r.IsRoleBased = isRoleBased(addr.Local)
	_, r.IsFreeProvider = freeProviders[strings.ToLower(addr.Domain)]
	return addr, true
}

func isRoleBased(local string) bool {
	_, ok := roleLocalParts[strings.ToLower(local)]
	return ok
}

// gmailNormalize strips dots and the plus-alias suffix from a Gmail
// local part, per spec.md §4.1's Gmail-specific canonicalization note.
// For non-Gmail addresses it returns the empty string.
func gmailNormalize(addr parser.Address) string {
	domain := strings.ToLower(addr.Domain)
	if domain != "gmail.com" && domain != "googlemail.com" {
		return ""
	}
	local := addr.Local
	if idx := strings.Index(local, "+"); idx != -1 {
		local = local[:idx]
	}
	local = strings.ReplaceAll(local, ".", "")
	return strings.ToLower(local) + "@gmail.com"
}
