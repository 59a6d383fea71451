// Package disposable implements spec.md §4.3: membership in a loaded
// blocklist plus pattern/heuristic rules for detecting burner mailbox
// providers.
//
// Grounded on mailvetter's internal/lookup/static.go for the static
// fallback set and role-account keying, and on optimode-emailkit's
// internal/disposable (file-loading shape) generalized from a
// compile-time //go:embed to the spec's "configured path, non-fatal if
// absent" external file per spec.md §6.
package disposable

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"mailvetter/internal/engine/cache"
)

// fallbackSet is used when the configured blocklist file is absent or
// unreadable; it is never empty even without any external data.
var fallbackSet = map[string]struct{}{
	"10minutemail.com":  {},
	"guerrillamail.com": {},
	"mailinator.com":    {},
	"yopmail.com":       {},
	"throwawaymail.com": {},
	"tempmail.net":      {},
	"temp-mail.org":     {},
	"sharklasers.com":   {},
	"dispostable.com":   {},
}

// suspiciousPatterns are the strict regex catalogue: a single match
// classifies the domain as disposable outright.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`temp.*mail`),
	regexp.MustCompile(`\d+min`),
	regexp.MustCompile(`throwaway`),
	regexp.MustCompile(`disposable`),
}

// heuristicPatterns are the broader, heuristic-only catalogue used by
// IsDisposableHeuristic: two or more matches classify disposable.
var heuristicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`temp`),
	regexp.MustCompile(`fake`),
	regexp.MustCompile(`trash`),
	regexp.MustCompile(`junk`),
	regexp.MustCompile(`burner`),
	regexp.MustCompile(`anon`),
	regexp.MustCompile(`minute`),
	regexp.MustCompile(`hour`),
	regexp.MustCompile(`second`),
	regexp.MustCompile(`instant`),
	regexp.MustCompile(`guerrilla`),
	regexp.MustCompile(`spam`),
	regexp.MustCompile(`mailinator`),
	regexp.MustCompile(`drop`),
}

var suspiciousTLDs = map[string]struct{}{
	".tk": {}, ".ml": {}, ".ga": {}, ".cf": {},
}

// Classifier holds an immutable, process-wide blocklist loaded once at
// startup.
type Classifier struct {
	blocklist map[string]struct{}
	cache     *cache.Store
}

// Load reads a line-delimited blocklist from path ("#" comments
// ignored). A missing or unreadable file is non-fatal: the built-in
// fallback set is used instead.
func Load(path string, c *cache.Store) *Classifier {
	set := make(map[string]struct{}, len(fallbackSet))
	for d := range fallbackSet {
		set[d] = struct{}{}
	}

	if path != "" {
		if f, err := os.Open(path); err == nil {
			defer f.Close()
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				set[strings.ToLower(line)] = struct{}{}
			}
		}
	}

	return &Classifier{blocklist: set, cache: c}
}

// IsDisposable reports whether domain (or one of its registered-parent
// suffixes) is a known disposable provider, matches a suspicious
// pattern, uses a suspicious TLD, or has a high digit ratio with "mail"
// in the name.
func (c *Classifier) IsDisposable(domain string) bool {
	if c.cache == nil {
		return c.isDisposable(domain)
	}
	v, _ := c.cache.GetOrLoad(cache.NamespaceDisposable, domain, cache.TTLDisposable, func() (interface{}, error) {
		return c.isDisposable(domain), nil
	})
	return v.(bool)
}

func (c *Classifier) isDisposable(domain string) bool {
	domain = strings.ToLower(domain)

	if _, ok := c.blocklist[domain]; ok {
		return true
	}

	// Subdomain inheritance: the registered-parent suffix (last two
	// labels) is checked against the blocklist too.
	if parent := parentSuffix(domain); parent != "" {
		if _, ok := c.blocklist[parent]; ok {
			return true
		}
	}

	for _, re := range suspiciousPatterns {
		if re.MatchString(domain) {
			return true
		}
	}

	if tld := lastLabelTLD(domain); tld != "" {
		if _, ok := suspiciousTLDs[tld]; ok {
			return true
		}
	}

	if digitRatio(domain) > 0.3 && strings.Contains(domain, "mail") {
		return true
	}

	return false
}

// IsDisposableHeuristic runs only the broader pattern catalogue,
// classifying disposable when two or more patterns match. It is exposed
// separately from IsDisposable because it trades precision for recall
// and is meant to feed the scorer as a soft signal, not a hard gate.
func (c *Classifier) IsDisposableHeuristic(domain string) bool {
	domain = strings.ToLower(domain)
	matches := 0
	for _, re := range heuristicPatterns {
		if re.MatchString(domain) {
			matches++
		}
	}
	return matches >= 2
}

// RiskScore returns a heuristic risk score in [0,100] for domain, built
// from the same signals IsDisposable inspects, for use when the
// Heuristic Scorer wants a graded input rather than a boolean gate.
func (c *Classifier) RiskScore(domain string) int {
	score := 0
	if c.IsDisposable(domain) {
		score += 60
	}
	if c.IsDisposableHeuristic(domain) {
		score += 25
	}
	if digitRatio(domain) > 0.3 {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

func parentSuffix(domain string) string {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return ""
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

func lastLabelTLD(domain string) string {
	idx := strings.LastIndex(domain, ".")
	if idx == -1 {
		return ""
	}
	return domain[idx:]
}

func digitRatio(s string) float64 {
	if s == "" {
		return 0
	}
	digits := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len(s))
}
