// Package parser implements the RFC 5321/5322 syntax stage of the
// validation pipeline: spec.md §4.1. It decomposes a raw address into an
// Address or reports the first rule that rejected it.
//
// Grounded on optimode-emailkit's internal/parse package for the
// IDNA2008 ASCII/Unicode domain conversion, generalized into the
// explicit ordered-rule scan spec.md §4.1 describes rather than
// delegating to net/mail.
package parser

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// Rejection describes why the parser refused an address.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

func reject(format string, args ...interface{}) (Address, error) {
	return Address{}, &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// Address is the parser's decomposition of a syntactically valid email
// address. The Coordinator reads it directly; later stages never
// mutate it.
type Address struct {
	Original        string
	Local           string
	Domain          string
	QuotedLocal     bool
	International   bool
	NormalizedASCII string
}

const (
	maxAddressLen = 320
	maxLocalLen   = 64
	maxDomainLen  = 253
	maxLabelLen   = 63
)

const dotAtomChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!#$%&'*+/=?^_`{|}~-"

// Parse validates s against the ordered rule list in spec.md §4.1 and
// returns its decomposition, or a *Rejection naming the first failing
// rule.
func Parse(s string, strict bool) (Address, error) {
	original := s

	// Rule 1: overall length.
	if len(s) > maxAddressLen {
		return reject("address exceeds %d bytes", maxAddressLen)
	}
	if s == "" {
		return reject("address is empty")
	}

	// No unescaped spaces (rule 6), checked before splitting so the error
	// is specific rather than a confusing downstream split failure.
	if strings.ContainsAny(s, " \t\r\n") && !strings.Contains(s, "\"") {
		return reject("address contains unescaped whitespace")
	}

	// Rule 2: exactly one '@' at the top level. A quoted local part may
	// itself contain '@', so split on the last unquoted occurrence.
	atIdx, inQuotes := -1, false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case '@':
			if !inQuotes {
				if atIdx != -1 {
					return reject("address must contain exactly one '@'")
				}
				atIdx = i
			}
		}
	}
	if atIdx == -1 {
		return reject("address is missing '@'")
	}

	local := s[:atIdx]
	domain := s[atIdx+1:]

	quoted := len(local) >= 2 && local[0] == '"' && local[len(local)-1] == '"'
	if quoted && strict {
		return reject("quoted local parts are not permitted in strict mode")
	}

	if err := validateLocal(local, quoted, strict); err != nil {
		return Address{}, err
	}

	normDomain, intl, err := validateDomain(domain)
	if err != nil {
		return Address{}, err
	}

	return Address{
		Original:        original,
		Local:           local,
		Domain:          normDomain,
		QuotedLocal:     quoted,
		International:   intl,
		NormalizedASCII: normDomain,
	}, nil
}

func validateLocal(local string, quoted, strict bool) error {
	if local == "" {
		_, err := reject("local part is empty")
		return err
	}
	if len(local) > maxLocalLen {
		_, err := reject("local part exceeds %d bytes", maxLocalLen)
		return err
	}

	if quoted {
		inner := local[1 : len(local)-1]
		for i := 0; i < len(inner); i++ {
			c := inner[i]
			if c == '"' && (i == 0 || inner[i-1] != '\\') {
				_, err := reject("quoted local part has an unescaped quote")
				return err
			}
		}
		return nil
	}

	if strict && strings.Contains(local, "+") {
		_, err := reject("plus-addressing is not permitted in strict mode")
		return err
	}

	if local[0] == '.' || local[len(local)-1] == '.' {
		_, err := reject("local part may not start or end with '.'")
		return err
	}
	if strings.Contains(local, "..") {
		_, err := reject("local part may not contain consecutive dots")
		return err
	}

	for _, c := range local {
		if c == '.' {
			continue
		}
		if !strings.ContainsRune(dotAtomChars, c) {
			_, err := reject("local part contains an invalid character %q", c)
			return err
		}
	}
	return nil
}

func validateDomain(domain string) (normalized string, international bool, err error) {
	if domain == "" {
		_, e := reject("domain part is empty")
		return "", false, e
	}
	if len(domain) > maxDomainLen {
		_, e := reject("domain part exceeds %d bytes", maxDomainLen)
		return "", false, e
	}

	if strings.HasPrefix(domain, "[") && strings.HasSuffix(domain, "]") {
		lit := domain[1 : len(domain)-1]
		if !isValidIPLiteral(lit) {
			_, e := reject("invalid IP address literal %q", domain)
			return "", false, e
		}
		return strings.ToLower(domain), false, nil
	}

	lowered := strings.ToLower(domain)

	international = false
	for _, r := range lowered {
		if r > 127 {
			international = true
			break
		}
	}

	ascii := lowered
	if international {
		a, encErr := idna.Lookup.ToASCII(lowered)
		if encErr != nil {
			_, e := reject("internationalized domain failed to encode: %v", encErr)
			return "", false, e
		}
		ascii = a
	}

	labels := strings.Split(ascii, ".")
	if len(labels) < 2 {
		_, e := reject("domain must have at least two labels")
		return "", false, e
	}
	for i, label := range labels {
		if label == "" || len(label) > maxLabelLen {
			_, e := reject("domain label %q has invalid length", label)
			return "", false, e
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			_, e := reject("domain label %q may not start or end with '-'", label)
			return "", false, e
		}
		for _, c := range label {
			if !strings.ContainsRune("abcdefghijklmnopqrstuvwxyz0123456789-", c) {
				_, e := reject("domain label %q contains an invalid character", label)
				return "", false, e
			}
		}
		if i == len(labels)-1 {
			if len(label) < 2 {
				_, e := reject("top-level domain %q must be at least 2 characters", label)
				return "", false, e
			}
			for _, c := range label {
				if c < 'a' || c > 'z' {
					_, e := reject("top-level domain %q must be alphabetic", label)
					return "", false, e
				}
			}
		}
	}

	return ascii, international, nil
}

func isValidIPLiteral(lit string) bool {
	if strings.HasPrefix(lit, "IPv6:") {
		return isValidIPv6(lit[len("IPv6:"):])
	}
	return isValidIPv4(lit)
}

func isValidIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" || len(p) > 3 {
			return false
		}
		n := 0
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
			n = n*10 + int(c-'0')
		}
		if n > 255 {
			return false
		}
	}
	return true
}

func isValidIPv6(s string) bool {
	if s == "" {
		return false
	}
	groups := strings.Split(s, ":")
	if len(groups) < 3 || len(groups) > 8 {
		return false
	}
	for _, g := range groups {
		if g == "" {
			continue // allows "::" compression
		}
		if len(g) > 4 {
			return false
		}
		for _, c := range g {
			isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
			if !isHex {
				return false
			}
		}
	}
	return true
}
