package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TableDriven(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		strict  bool
		wantOK  bool
		wantIntl bool
	}{
		{name: "valid simple", email: "user@example.com", wantOK: true},
		{name: "valid with plus", email: "user+tag@example.com", wantOK: true},
		{name: "valid with dots", email: "first.last@example.com", wantOK: true},
		{name: "valid quoted local", email: `"user name"@example.com`, wantOK: true},
		{name: "valid subdomain", email: "user@mail.example.co.uk", wantOK: true},
		{name: "empty", email: "", wantOK: false},
		{name: "no at sign", email: "userexample.com", wantOK: false},
		{name: "no domain", email: "user@", wantOK: false},
		{name: "no local", email: "@example.com", wantOK: false},
		{name: "double at", email: "user@@example.com", wantOK: false},
		{name: "double dot local", email: "user..name@example.com", wantOK: false},
		{name: "leading dot local", email: ".user@example.com", wantOK: false},
		{name: "trailing dot local", email: "user.@example.com", wantOK: false},
		{name: "consecutive dots domain", email: "user@exam..ple.com", wantOK: false},
		{name: "single label domain", email: "a@b", wantOK: false},
		{name: "numeric TLD", email: "user@example.123", wantOK: false},
		{name: "label starts with hyphen", email: "user@-example.com", wantOK: false},
		{name: "label ends with hyphen", email: "user@example-.com", wantOK: false},
		{name: "quoted local rejected in strict mode", email: `"user name"@example.com`, strict: true, wantOK: false},
		{name: "plus alias rejected in strict mode", email: "user+tag@example.com", strict: true, wantOK: false},
		{name: "plus alias allowed by default", email: "user+tag@example.com", wantOK: true},
		{name: "IDN german", email: "user@münchen.de", wantOK: true, wantIntl: true},
		{name: "IDN japanese", email: "user@例え.jp", wantOK: true, wantIntl: true},
		{name: "punycode is not flagged international", email: "user@xn--mnchen-3ya.de", wantOK: true, wantIntl: false},
		{name: "IPv4 literal", email: "user@[192.168.0.1]", wantOK: true},
		{name: "invalid IPv4 literal octet", email: "user@[192.168.0.999]", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := Parse(tt.email, tt.strict)
			if !tt.wantOK {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIntl, addr.International)
		})
	}
}

func TestParse_LengthBoundaries(t *testing.T) {
	local64 := strings.Repeat("a", 64)
	domain := "example.com"

	ok := local64 + "@" + domain
	_, err := Parse(ok, false)
	assert.NoError(t, err)

	local65 := strings.Repeat("a", 65)
	_, err = Parse(local65+"@"+domain, false)
	assert.Error(t, err)
}

func TestParse_DomainLengthBoundary(t *testing.T) {
	// Build a 253-byte domain out of 63-byte labels (the per-label max)
	// plus a short alphabetic TLD, then push it past 253 bytes.
	label := strings.Repeat("b", 63)
	domain := strings.Join([]string{label, label, label, strings.Repeat("c", 57), "com"}, ".")
	require.Len(t, domain, 253)

	_, err := Parse("user@"+domain, false)
	assert.NoError(t, err)

	_, err = Parse("user@"+domain+"x.com", false)
	assert.Error(t, err)
}
