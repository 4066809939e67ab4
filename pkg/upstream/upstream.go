package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/bseib/MXResolver/pkg/dnsutils"
)

const (
	defaultResolvConf = "/etc/resolv.conf"
	defaultPort       = "53"
	defaultTimeout    = 5 * time.Second
)

// fallbackServer is used when no nameserver is configured and the
// platform configuration cannot be read.
var fallbackServer = net.JoinHostPort("127.0.0.1", defaultPort)

var nopLogger = zap.NewNop()

var (
	// ErrBadName is returned when the query name is not a valid domain name.
	ErrBadName = errors.New("invalid domain name")

	// ErrRcode is returned when the server answers with an rcode other than
	// NOERROR or NXDOMAIN.
	ErrRcode = errors.New("server failure response")
)

// Client issues typed DNS queries.
type Client interface {
	// Query asks for records of qtype under name. A response with no
	// matching records, including NXDOMAIN, returns an empty slice and a
	// nil error. Transport failures, error rcodes and invalid names are
	// errors.
	Query(ctx context.Context, name string, qtype uint16) ([]Record, error)
}

type Opts struct {
	// Nameserver is a hostname or IP literal, optionally with a port.
	// Empty means the servers listed in ResolvConf.
	Nameserver string

	// ResolvConf is the platform resolver configuration consulted when
	// Nameserver is empty. Default is /etc/resolv.conf.
	ResolvConf string

	// Timeout bounds each exchange with a server. Default is 5s.
	Timeout time.Duration

	// Logger is the *zap.Logger for this client.
	// A nil Logger will disable logging.
	Logger *zap.Logger
}

func (opts *Opts) Init() {
	if len(opts.ResolvConf) == 0 {
		opts.ResolvConf = defaultResolvConf
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger
	}
}

var _ Client = (*DNSClient)(nil)

// DNSClient is a Client that talks plain DNS over UDP to its servers,
// retrying over TCP when a response is truncated. Servers are tried in
// order until one answers.
type DNSClient struct {
	opts    Opts
	servers []string
	udp     *dns.Client
	tcp     *dns.Client
}

func NewDNSClient(opts Opts) (*DNSClient, error) {
	opts.Init()

	var servers []string
	if len(opts.Nameserver) > 0 {
		addr, err := serverAddr(opts.Nameserver)
		if err != nil {
			return nil, err
		}
		servers = []string{addr}
	} else {
		servers = platformServers(opts.ResolvConf, opts.Logger)
	}

	return &DNSClient{
		opts:    opts,
		servers: servers,
		udp:     &dns.Client{Net: "udp", Timeout: opts.Timeout},
		tcp:     &dns.Client{Net: "tcp", Timeout: opts.Timeout},
	}, nil
}

// Servers returns the server addresses c queries, in order.
func (c *DNSClient) Servers() []string {
	return append([]string(nil), c.servers...)
}

func (c *DNSClient) Query(ctx context.Context, name string, qtype uint16) ([]Record, error) {
	if _, ok := dns.IsDomainName(name); !ok || len(name) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadName, name)
	}

	q := dnsutils.NewQuery(name, qtype)

	var lastErr error
	for _, server := range c.servers {
		r, err := c.exchange(ctx, q, server)
		if err != nil {
			c.opts.Logger.Debug("dns exchange failed",
				zap.String("server", server),
				zap.String("name", q.Question[0].Name),
				zap.String("qtype", dnsutils.QtypeToString(qtype)),
				zap.Error(err))
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		switch r.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			return nil, nil
		default:
			return nil, fmt.Errorf("%w: %s from %s for %s %s", ErrRcode,
				dnsutils.RcodeToString(r.Rcode), server, q.Question[0].Name, dnsutils.QtypeToString(qtype))
		}

		var records []Record
		for _, rr := range r.Answer {
			if rec, ok := RecordFromRR(rr); ok {
				records = append(records, rec)
			}
		}
		return records, nil
	}
	return nil, fmt.Errorf("%s %s query failed, %w", q.Question[0].Name, dnsutils.QtypeToString(qtype), lastErr)
}

func (c *DNSClient) exchange(ctx context.Context, q *dns.Msg, server string) (*dns.Msg, error) {
	r, _, err := c.udp.ExchangeContext(ctx, q, server)
	if err != nil {
		return nil, err
	}
	if r.Truncated {
		r, _, err = c.tcp.ExchangeContext(ctx, q, server)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// serverAddr turns "host" or "host:port" into "host:port". Bare IPv6
// literals are accepted with or without brackets.
func serverAddr(s string) (string, error) {
	if host, port, err := net.SplitHostPort(s); err == nil {
		if len(host) == 0 || len(port) == 0 {
			return "", fmt.Errorf("invalid nameserver address %q", s)
		}
		return s, nil
	}
	if len(s) > 1 && s[0] == '[' && s[len(s)-1] == ']' {
		s = s[1 : len(s)-1]
	}
	if len(s) == 0 {
		return "", errors.New("empty nameserver address")
	}
	return net.JoinHostPort(s, defaultPort), nil
}

func platformServers(path string, logger *zap.Logger) []string {
	cfg, err := dns.ClientConfigFromFile(path)
	if err != nil || len(cfg.Servers) == 0 {
		logger.Debug("no usable platform resolver config, using fallback server",
			zap.String("path", path),
			zap.String("server", fallbackServer),
			zap.Error(err))
		return []string{fallbackServer}
	}

	port := cfg.Port
	if len(port) == 0 {
		port = defaultPort
	}
	servers := make([]string, 0, len(cfg.Servers))
	for _, s := range cfg.Servers {
		servers = append(servers, net.JoinHostPort(s, port))
	}
	return servers
}
