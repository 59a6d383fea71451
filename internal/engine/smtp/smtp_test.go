package smtp

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatResponse(t *testing.T) {
	assert.Equal(t, "250 OK", formatResponse(250, "OK"))
	assert.Equal(t, "550 No such user", formatResponse(550, "No such user"))
}

func TestNew_Defaults(t *testing.T) {
	p := New("", 0)
	assert.Equal(t, "mta1.mailvetter.com", p.FromDomain)
	assert.Equal(t, defaultTimeout, p.Timeout)

	p2 := New("mta.example.com", 0)
	assert.Equal(t, "mta.example.com", p2.FromDomain)
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, isTimeout(&net.DNSError{IsTimeout: false, Err: "connection refused"}))
	assert.True(t, isTimeout(&net.DNSError{IsTimeout: true, Err: "i/o timeout"}))
}
