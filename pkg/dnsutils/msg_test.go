package dnsutils

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuery(t *testing.T) {
	q := NewQuery("example.com", dns.TypeMX)
	require.Len(t, q.Question, 1)
	assert.Equal(t, "example.com.", q.Question[0].Name)
	assert.Equal(t, dns.TypeMX, q.Question[0].Qtype)
	assert.Equal(t, uint16(dns.ClassINET), q.Question[0].Qclass)
	assert.True(t, q.RecursionDesired)

	opt := q.IsEdns0()
	require.NotNil(t, opt)
	assert.Equal(t, uint16(ednsUDPSize), opt.UDPSize())
}

func TestToString(t *testing.T) {
	assert.Equal(t, "PTR", QtypeToString(dns.TypePTR))
	assert.Equal(t, "65000", QtypeToString(65000))
	assert.Equal(t, "SERVFAIL", RcodeToString(dns.RcodeServerFailure))
	assert.Equal(t, "4000", RcodeToString(4000))
}
