package models

// Options controls which stages run and with what thresholds, mirroring
// the "Recognized options" table of the engine's wire contract.
type Options struct {
	CheckSyntax     bool
	CheckDomain     bool
	CheckMX         bool
	CheckSMTP       bool
	CheckDisposable bool
	CheckTypos      bool

	StrictMode         bool
	AllowInternational bool
	RejectDisposable   bool

	SMTPTimeoutMs  int
	SMTPFromDomain string

	EnableCache bool
	BatchSize   int
}

// EnableSMTPProbe reports whether the SMTP stage should run at all; it
// mirrors CheckSMTP so callers can read either name.
func (o Options) EnableSMTPProbe() bool { return o.CheckSMTP }

// OptionsInput is the wire shape of the "options" object accepted by the
// single and bulk validate endpoints (spec.md §6's "Recognized options"
// table). Every field is a pointer so a request can set only the options
// it cares about; everything else falls through to the server's
// configured defaults via Resolve.
type OptionsInput struct {
	CheckSyntax        *bool   `json:"checkSyntax,omitempty"`
	CheckDomain        *bool   `json:"checkDomain,omitempty"`
	CheckMX            *bool   `json:"checkMX,omitempty"`
	CheckSMTP          *bool   `json:"checkSMTP,omitempty"`
	CheckDisposable    *bool   `json:"checkDisposable,omitempty"`
	CheckTypos         *bool   `json:"checkTypos,omitempty"`
	StrictMode         *bool   `json:"strictMode,omitempty"`
	UseStrictMode      *bool   `json:"useStrictMode,omitempty"`
	AllowInternational *bool   `json:"allowInternational,omitempty"`
	SMTPTimeoutMs      *int    `json:"smtpTimeout,omitempty"`
	SMTPFromDomain     *string `json:"smtpFromDomain,omitempty"`
	EnableCache        *bool   `json:"enableCache,omitempty"`
	BatchSize          *int    `json:"batchSize,omitempty"`
	RejectDisposable   *bool   `json:"rejectDisposable,omitempty"`
}

// Resolve overlays every field o sets onto base and returns the merged
// Options; a nil o (no "options" object in the request) returns base
// unchanged. "strictMode" and "useStrictMode" are accepted as aliases,
// matching spec.md §6.
func (o *OptionsInput) Resolve(base Options) Options {
	if o == nil {
		return base
	}
	r := base
	if o.CheckSyntax != nil {
		r.CheckSyntax = *o.CheckSyntax
	}
	if o.CheckDomain != nil {
		r.CheckDomain = *o.CheckDomain
	}
	if o.CheckMX != nil {
		r.CheckMX = *o.CheckMX
	}
	if o.CheckSMTP != nil {
		r.CheckSMTP = *o.CheckSMTP
	}
	if o.CheckDisposable != nil {
		r.CheckDisposable = *o.CheckDisposable
	}
	if o.CheckTypos != nil {
		r.CheckTypos = *o.CheckTypos
	}
	if o.StrictMode != nil {
		r.StrictMode = *o.StrictMode
	}
	if o.UseStrictMode != nil {
		r.StrictMode = *o.UseStrictMode
	}
	if o.AllowInternational != nil {
		r.AllowInternational = *o.AllowInternational
	}
	if o.SMTPTimeoutMs != nil {
		r.SMTPTimeoutMs = *o.SMTPTimeoutMs
	}
	if o.SMTPFromDomain != nil {
		r.SMTPFromDomain = *o.SMTPFromDomain
	}
	if o.EnableCache != nil {
		r.EnableCache = *o.EnableCache
	}
	if o.BatchSize != nil {
		r.BatchSize = *o.BatchSize
	}
	if o.RejectDisposable != nil {
		r.RejectDisposable = *o.RejectDisposable
	}
	return r
}

// DefaultOptions returns the spec's documented defaults.
func DefaultOptions() Options {
	return Options{
		CheckSyntax:        true,
		CheckDomain:        true,
		CheckMX:            true,
		CheckSMTP:          true,
		CheckDisposable:    true,
		CheckTypos:         true,
		StrictMode:         false,
		AllowInternational: true,
		RejectDisposable:   false,
		SMTPTimeoutMs:      5000,
		SMTPFromDomain:     "mta1.mailvetter.com",
		EnableCache:        true,
		BatchSize:          10,
	}
}

// ValidThreshold returns the score a result must meet to be "valid".
func (o Options) ValidThreshold() int {
	if o.StrictMode {
		return 90
	}
	return 85
}

// RiskyThreshold returns the score a result must meet to avoid "invalid".
func (o Options) RiskyThreshold() int {
	if o.StrictMode {
		return 70
	}
	return 65
}
