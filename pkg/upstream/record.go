package upstream

import (
	"github.com/miekg/dns"
)

// Record is the part of a DNS answer record the resolver consumes.
type Record struct {
	// Kind is the record type, one of dns.TypeMX, dns.TypeA, dns.TypeAAAA
	// or dns.TypePTR.
	Kind uint16

	// Name is the owner name.
	Name string

	// Priority is the MX preference. Zero for other kinds.
	Priority uint16

	// Target is the MX exchange or PTR target name in presentation form,
	// or the address text for A and AAAA records.
	Target string
}

// RecordFromRR converts rr. ok is false for record types Record cannot
// represent.
func RecordFromRR(rr dns.RR) (r Record, ok bool) {
	h := rr.Header()
	switch rr := rr.(type) {
	case *dns.MX:
		return Record{Kind: dns.TypeMX, Name: h.Name, Priority: rr.Preference, Target: rr.Mx}, true
	case *dns.A:
		return Record{Kind: dns.TypeA, Name: h.Name, Target: rr.A.String()}, true
	case *dns.AAAA:
		return Record{Kind: dns.TypeAAAA, Name: h.Name, Target: rr.AAAA.String()}, true
	case *dns.PTR:
		return Record{Kind: dns.TypePTR, Name: h.Name, Target: rr.Ptr}, true
	}
	return Record{}, false
}
