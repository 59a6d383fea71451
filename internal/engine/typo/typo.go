// Package typo implements spec.md §4.2: known-misspelling lookup plus
// bounded Levenshtein-distance suggestion against a fixed provider
// whitelist. The edit-distance routine is grounded on
// optimode-emailkit's internal/levenshtein.Distance (two-row DP, O(min
// (m,n)) memory), generalized into the corrector's confidence-tiered
// suggestion scheme.
package typo

import (
	"strings"

	"mailvetter/internal/engine/cache"
)

// Result is the corrector's verdict for one address.
type Result struct {
	TypoDetected bool
	Suggestion   string
	Corrections  []string
	Confidence   int
}

// Corrector caches lookups in the shared TTL store under the "typo"
// namespace, per spec.md §4.2 ("Results are cached per input").
type Corrector struct {
	cache *cache.Store
}

func New(c *cache.Store) *Corrector {
	return &Corrector{cache: c}
}

// Suggest implements the algorithm of spec.md §4.2 steps 1-5.
func (c *Corrector) Suggest(email string) Result {
	if c.cache == nil {
		return c.suggest(email)
	}
	v, _ := c.cache.GetOrLoad(cache.NamespaceTypo, email, cache.TTLTypo, func() (interface{}, error) {
		return c.suggest(email), nil
	})
	return v.(Result)
}

func (c *Corrector) suggest(email string) Result {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Result{Corrections: []string{"missing or malformed @ separator"}}
	}
	domain := strings.ToLower(parts[1])

	var corrections []string
	if !strings.Contains(domain, ".") {
		corrections = append(corrections, "domain has no TLD")
	}
	if strings.Contains(domain, "..") {
		corrections = append(corrections, "domain contains consecutive dots")
	}
	if strings.ContainsAny(domain, " \t") {
		corrections = append(corrections, "domain contains embedded whitespace")
	}

	// Rule 5: popular domains are never corrected, even to a near
	// neighbor, to avoid false positives like "gmail.com" -> "gmail.con".
	if isPopular(domain) {
		return Result{Corrections: corrections}
	}

	// Rule 2: exact misspelling match, confidence 95.
	if canonical, ok := misspellings[domain]; ok {
		return Result{
			TypoDetected: true,
			Suggestion:   parts[0] + "@" + canonical,
			Corrections:  corrections,
			Confidence:   95,
		}
	}

	// Rule 2 (continued): TLD-only substitution, confidence 90.
	for badTLD, goodTLD := range tldTypos {
		if strings.HasSuffix(domain, badTLD) {
			fixed := strings.TrimSuffix(domain, badTLD) + goodTLD
			if isPopular(fixed) {
				return Result{
					TypoDetected: true,
					Suggestion:   parts[0] + "@" + fixed,
					Corrections:  corrections,
					Confidence:   90,
				}
			}
		}
	}

	// Rule 3: bounded edit-distance search against the whitelist.
	best := ""
	bestDist := 3
	for _, candidate := range Popular {
		d := distance(domain, candidate)
		if d >= 1 && d <= 2 && d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	if best != "" {
		return Result{
			TypoDetected: true,
			Suggestion:   parts[0] + "@" + best,
			Corrections:  corrections,
			Confidence:   80,
		}
	}

	return Result{Corrections: corrections}
}

// distance computes the Levenshtein edit distance between two strings
// using two rolling rows, the same shape as optimode-emailkit's
// levenshtein.Distance.
func distance(s, t string) int {
	sr := []rune(s)
	tr := []rune(t)

	if len(sr) == 0 {
		return len(tr)
	}
	if len(tr) == 0 {
		return len(sr)
	}
	if len(sr) > len(tr) {
		sr, tr = tr, sr
	}

	prev := make([]int, len(sr)+1)
	curr := make([]int, len(sr)+1)
	for i := range prev {
		prev[i] = i
	}

	for j, tc := range tr {
		curr[0] = j + 1
		for i, sc := range sr {
			cost := 1
			if sc == tc {
				cost = 0
			}
			curr[i+1] = min3(curr[i]+1, prev[i+1]+1, prev[i]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(sr)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
