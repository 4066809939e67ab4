package dnsutils

import (
	"strconv"

	"github.com/miekg/dns"
)

// EDNS0 UDP payload size advertised on outgoing queries.
const ednsUDPSize = 1232

// NewQuery builds a recursive query for name and qtype. name is made
// fully qualified.
func NewQuery(name string, qtype uint16) *dns.Msg {
	q := new(dns.Msg)
	q.SetQuestion(dns.Fqdn(name), qtype)
	q.RecursionDesired = true
	q.SetEdns0(ednsUDPSize, false)
	return q
}

func QtypeToString(u uint16) string {
	return uint16Conv(u, dns.TypeToString)
}

func RcodeToString(rcode int) string {
	if s, ok := dns.RcodeToString[rcode]; ok {
		return s
	}
	return strconv.Itoa(rcode)
}

func uint16Conv(u uint16, m map[uint16]string) string {
	if s, ok := m[u]; ok {
		return s
	}
	return strconv.Itoa(int(u))
}
