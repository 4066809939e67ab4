package dnsutils

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

const (
	v4ReverseSuffix = "in-addr.arpa."
	v6ReverseSuffix = "ip6.arpa."
	hexDigits       = "0123456789abcdef"
)

// ErrBadAddress is returned for strings that are not an IP literal.
var ErrBadAddress = errors.New("bad ip address")

// ReverseName returns the PTR lookup name for an IPv4 or IPv6 literal,
// e.g. "17.2.0.192.in-addr.arpa." for "192.0.2.17". IPv6 addresses are
// expanded to 32 nibbles in reverse order under "ip6.arpa.".
//
// An IPv4-mapped IPv6 literal such as "::ffff:192.0.2.17" is written in
// IPv6 syntax and is therefore encoded under ip6.arpa.
func ReverseName(ip string) (string, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadAddress, ip)
	}
	if addr.Zone() != "" {
		return "", fmt.Errorf("%w: %q has a zone", ErrBadAddress, ip)
	}
	return reverseName(addr), nil
}

func reverseName(addr netip.Addr) string {
	var b strings.Builder
	if addr.Is4() {
		a := addr.As4()
		b.Grow(len("255.255.255.255.") + len(v4ReverseSuffix))
		for i := len(a) - 1; i >= 0; i-- {
			b.WriteString(strconv.Itoa(int(a[i])))
			b.WriteByte('.')
		}
		b.WriteString(v4ReverseSuffix)
		return b.String()
	}

	a := addr.As16()
	b.Grow(64 + len(v6ReverseSuffix))
	for i := len(a) - 1; i >= 0; i-- {
		b.WriteByte(hexDigits[a[i]&0x0f])
		b.WriteByte('.')
		b.WriteByte(hexDigits[a[i]>>4])
		b.WriteByte('.')
	}
	b.WriteString(v6ReverseSuffix)
	return b.String()
}

// ParsePTRName is the inverse of ReverseName. It accepts names with or
// without the trailing dot, in any letter case.
func ParsePTRName(name string) (netip.Addr, error) {
	n := strings.ToLower(strings.TrimSuffix(name, "."))

	switch {
	case strings.HasSuffix(n, "."+strings.TrimSuffix(v4ReverseSuffix, ".")):
		labels := strings.Split(strings.TrimSuffix(n, ".in-addr.arpa"), ".")
		if len(labels) != 4 {
			break
		}
		var a [4]byte
		for i, l := range labels {
			v, err := strconv.ParseUint(l, 10, 8)
			if err != nil || (len(l) > 1 && l[0] == '0') {
				return netip.Addr{}, fmt.Errorf("%w: invalid label %q in %q", ErrBadAddress, l, name)
			}
			a[3-i] = byte(v)
		}
		return netip.AddrFrom4(a), nil

	case strings.HasSuffix(n, "."+strings.TrimSuffix(v6ReverseSuffix, ".")):
		labels := strings.Split(strings.TrimSuffix(n, ".ip6.arpa"), ".")
		if len(labels) != 32 {
			break
		}
		var a [16]byte
		for i, l := range labels {
			if len(l) != 1 {
				return netip.Addr{}, fmt.Errorf("%w: invalid nibble %q in %q", ErrBadAddress, l, name)
			}
			v := strings.IndexByte(hexDigits, l[0])
			if v < 0 {
				return netip.Addr{}, fmt.Errorf("%w: invalid nibble %q in %q", ErrBadAddress, l, name)
			}
			// labels[0] is the low nibble of the last byte.
			pos := 15 - i/2
			if i%2 == 0 {
				a[pos] |= byte(v)
			} else {
				a[pos] |= byte(v) << 4
			}
		}
		return netip.AddrFrom16(a), nil
	}
	return netip.Addr{}, fmt.Errorf("%w: %q is not a reverse lookup name", ErrBadAddress, name)
}
