// Package resolver implements spec.md §4.4: DNS resolution of A/AAAA and
// MX records behind a TTL-bounded cache.
//
// Grounded on mailvetter's internal/lookup/dns.go for the
// custom-timeout net.Resolver shape, generalized with the
// singleflight-backed cache from the shared cache.Store (itself modeled
// on optimode-emailkit's internal/dnscache.Cache) so concurrent lookups
// for the same domain never duplicate work.
package resolver

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"mailvetter/internal/engine/cache"
)

// DomainResult is the verdict of an A/AAAA hostname lookup.
type DomainResult struct {
	Valid  bool
	Reason string
}

// MXRecord is a simplified MX entry, sorted ascending by preference.
type MXRecord struct {
	Host string
	Pref uint16
}

// MXResult is the verdict of an MX lookup, including the derived
// deliverability score.
type MXResult struct {
	Found               bool
	Records             []MXRecord
	DeliverabilityScore int
	Reason              string
}

var wellKnownProviders = []string{"google.com", "outlook.com", "microsoft.com", "amazon.com"}

// Resolver wraps a timeout-bounded net.Resolver and the shared cache.
type Resolver struct {
	dns   *net.Resolver
	cache *cache.Store
}

func New(c *cache.Store) *Resolver {
	return &Resolver{
		dns: &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				d := net.Dialer{Timeout: 3 * time.Second}
				return d.DialContext(ctx, network, address)
			},
		},
		cache: c,
	}
}

// ResolveDomain reports whether d has an A/AAAA record.
func (r *Resolver) ResolveDomain(ctx context.Context, d string) DomainResult {
	ascii, err := toASCII(d)
	if err != nil {
		return DomainResult{Valid: false, Reason: fmt.Sprintf("invalid domain encoding: %v", err)}
	}

	if r.cache == nil {
		return r.resolveDomain(ctx, ascii)
	}

	v, _ := r.cache.GetOrLoad(cache.NamespaceDomain, ascii, cache.TTLDomain, func() (interface{}, error) {
		return r.resolveDomain(ctx, ascii), nil
	})
	return v.(DomainResult)
}

func (r *Resolver) resolveDomain(ctx context.Context, ascii string) DomainResult {
	_, err := r.dns.LookupHost(ctx, ascii)
	if err != nil {
		return DomainResult{Valid: false, Reason: fmt.Sprintf("domain does not resolve: %v", err)}
	}
	return DomainResult{Valid: true}
}

// ResolveMX looks up MX records for d, falling back to the implicit-MX
// rule of RFC 5321 §5.1 when none exist but an A record does.
func (r *Resolver) ResolveMX(ctx context.Context, d string) MXResult {
	ascii, err := toASCII(d)
	if err != nil {
		return MXResult{Found: false, Reason: fmt.Sprintf("invalid domain encoding: %v", err)}
	}

	if r.cache == nil {
		return r.resolveMX(ctx, ascii)
	}

	v, _ := r.cache.GetOrLoad(cache.NamespaceMX, ascii, cache.TTLDomain, func() (interface{}, error) {
		return r.resolveMX(ctx, ascii), nil
	})
	return v.(MXResult)
}

func (r *Resolver) resolveMX(ctx context.Context, ascii string) MXResult {
	records, err := r.dns.LookupMX(ctx, ascii)
	if err != nil || len(records) == 0 {
		// Implicit MX: RFC 5321 §5.1 says a domain with no MX but a
		// valid A record accepts mail at that address directly.
		if _, aErr := r.dns.LookupHost(ctx, ascii); aErr == nil {
			return MXResult{
				Found:               true,
				Records:             nil,
				DeliverabilityScore: 60,
				Reason:              "no MX records; falling back to implicit A-record delivery",
			}
		}
		return MXResult{Found: false, Reason: "no MX or A records found"}
	}

	mx := make([]MXRecord, 0, len(records))
	for _, rec := range records {
		mx = append(mx, MXRecord{Host: strings.TrimSuffix(rec.Host, "."), Pref: rec.Pref})
	}
	sort.Slice(mx, func(i, j int) bool { return mx[i].Pref < mx[j].Pref })

	return MXResult{
		Found:               true,
		Records:             mx,
		DeliverabilityScore: deliverabilityScore(mx),
	}
}

func deliverabilityScore(mx []MXRecord) int {
	score := 70
	if len(mx) > 1 {
		score += 10
	}
	if len(mx) > 2 {
		score += 5
	}
hosts:
	for _, rec := range mx {
		host := strings.ToLower(rec.Host)
		for _, provider := range wellKnownProviders {
			if strings.Contains(host, provider) {
				score += 15
				break hosts
			}
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

func toASCII(domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	for _, r := range domain {
		if r > 127 {
			return idna.Lookup.ToASCII(domain)
		}
	}
	return domain, nil
}
