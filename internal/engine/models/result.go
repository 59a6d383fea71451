// Package models holds the data shapes shared across every pipeline stage.
package models

// SMTPDeliverable is a ternary outcome: a boolean collapses the
// "dialogue completed but gave no definitive answer" case into either a
// false positive or a false negative, so it is modeled as a sum type.
type SMTPDeliverable string

const (
	SMTPYes     SMTPDeliverable = "yes"
	SMTPNo      SMTPDeliverable = "no"
	SMTPUnknown SMTPDeliverable = "unknown"
)

type Status string

const (
	StatusValid   Status = "valid"
	StatusRisky   Status = "risky"
	StatusInvalid Status = "invalid"
	StatusError   Status = "error"
)

// Factors is the boolean/score breakdown behind the final verdict.
type Factors struct {
	Format        bool `json:"format"`
	Domain        bool `json:"domain"`
	MX            bool `json:"mx"`
	SMTP          bool `json:"smtp"`
	Reputation    int  `json:"reputation"`
	Deliverability int `json:"deliverability"`
}

// DomainHealth is the SPF/DKIM/DMARC/blacklist sub-record.
type DomainHealth struct {
	SPF         bool `json:"spf"`
	DKIM        bool `json:"dkim"`
	DMARC       bool `json:"dmarc"`
	Blacklisted bool `json:"blacklisted"`
	Reputation  int  `json:"reputation"`
}

// ValidationResult is the pipeline's frozen output record. Every stage
// contributes fields; once the Coordinator returns it, nothing mutates it.
type ValidationResult struct {
	Input string `json:"input"`

	SyntaxValid   bool `json:"syntax_valid"`
	DomainValid   bool `json:"domain_valid"`
	MXFound       bool `json:"mx_found"`
	Disposable    bool `json:"disposable"`
	TypoDetected  bool `json:"typo_detected"`

	SMTPDeliverable SMTPDeliverable `json:"smtp_deliverable"`

	Suggestion       string `json:"suggestion,omitempty"`
	NormalizedEmail  string `json:"normalized_email"`
	GmailNormalized  string `json:"gmail_normalized,omitempty"`
	IsRoleBased      bool   `json:"is_role_based"`
	HasPlusAlias     bool   `json:"has_plus_alias"`
	IsCatchAll       bool   `json:"is_catch_all"`
	IsInternational  bool   `json:"is_international"`
	IsFreeProvider   bool   `json:"is_free_provider"`
	IsBusinessEmail  bool   `json:"is_business_email"`

	Factors      Factors      `json:"factors"`
	DomainHealth DomainHealth `json:"domain_health"`

	SMTPServerBanner   string `json:"smtp_server_banner,omitempty"`
	SMTPServerResponse string `json:"smtp_server_response,omitempty"`
	TLSSupported       bool   `json:"tls_supported"`

	Score            int      `json:"score"`
	Status           Status   `json:"status"`
	Reason           string   `json:"reason"`
	ChecksPerformed  []string `json:"checks_performed"`
	ValidationTimeMs int64    `json:"validation_time_ms"`
}

// AddCheck appends a stage name to the ordered list of checks that ran,
// in the order the Coordinator invoked them.
func (r *ValidationResult) AddCheck(name string) {
	r.ChecksPerformed = append(r.ChecksPerformed, name)
}
