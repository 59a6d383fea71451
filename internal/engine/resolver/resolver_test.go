package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliverabilityScore(t *testing.T) {
	tests := []struct {
		name string
		mx   []MXRecord
		want int
	}{
		{name: "single generic MX", mx: []MXRecord{{Host: "mail.example.com", Pref: 10}}, want: 70},
		{name: "two MX hosts", mx: []MXRecord{{Host: "a.example.com", Pref: 10}, {Host: "b.example.com", Pref: 20}}, want: 80},
		{name: "three MX hosts", mx: []MXRecord{
			{Host: "a.example.com", Pref: 10},
			{Host: "b.example.com", Pref: 20},
			{Host: "c.example.com", Pref: 30},
		}, want: 85},
		{name: "well known provider caps at combined bonus", mx: []MXRecord{{Host: "aspmx.l.google.com", Pref: 1}}, want: 85},
		{name: "well known provider plus multiple hosts clamps to 100", mx: []MXRecord{
			{Host: "mx1.outlook.com", Pref: 10},
			{Host: "mx2.outlook.com", Pref: 20},
			{Host: "mx3.outlook.com", Pref: 30},
		}, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deliverabilityScore(tt.mx))
		})
	}
}

func TestToASCII(t *testing.T) {
	ascii, err := toASCII("münchen.de")
	assert.NoError(t, err)
	assert.Equal(t, "xn--mnchen-3ya.de", ascii)

	ascii, err = toASCII("Example.COM")
	assert.NoError(t, err)
	assert.Equal(t, "example.com", ascii)
}
