// Package resolver looks up mail exchangers and reverse hostnames, caching
// results in process.
//
// Mail-exchange lookups fall back to A records when a domain publishes no
// MX records. Reverse lookups accept an IPv4 or IPv6 literal. Both share
// one LRU cache of CacheSize entries that stay fresh for CacheTTL.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/miekg/dns"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/bseib/MXResolver/pkg/cache"
	"github.com/bseib/MXResolver/pkg/cache/mem_cache"
	"github.com/bseib/MXResolver/pkg/clock"
	"github.com/bseib/MXResolver/pkg/dnsutils"
	"github.com/bseib/MXResolver/pkg/upstream"
)

const (
	CacheSize = 128
	CacheTTL  = 1800 * time.Second

	// Preference given to A records standing in for missing MX records.
	fallbackPriority = 100
)

var nopLogger = zap.NewNop()

var (
	// ErrNoRecords means a domain has neither MX nor A records.
	ErrNoRecords = errors.New("no mx or a records")

	// ErrBadAddress means a reverse lookup was asked for something that
	// is not an IP literal.
	ErrBadAddress = dnsutils.ErrBadAddress

	// ErrUpstreamFailure wraps every error reported by the dns client.
	ErrUpstreamFailure = errors.New("upstream failure")
)

type Options struct {
	// Nameserver is the upstream server, a hostname or IP literal with
	// an optional port. Empty means the platform default.
	// Ignored when Client is set.
	Nameserver string

	// Client overrides the dns client built from Nameserver.
	Client upstream.Client

	// Clock is the time source for cache ages. Default is clock.System.
	Clock clock.Clock

	// Timeout bounds each Resolve call including all of its queries.
	// Zero means only the caller's context and the client's own
	// per-exchange timeout apply.
	Timeout time.Duration

	// SingleFlight makes concurrent misses on the same key share one
	// lookup. The shared lookup ignores the cancellation of the callers
	// waiting on it; only Timeout and the client's own timeouts end it.
	SingleFlight bool

	// MetricsRegisterer, if not nil, receives the resolver's collectors.
	MetricsRegisterer prometheus.Registerer

	// Logger is the *zap.Logger for this Resolver.
	// A nil Logger will disable logging.
	Logger *zap.Logger
}

func (opts *Options) Init() error {
	if opts.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s", opts.Timeout)
	}
	if opts.Clock == nil {
		opts.Clock = clock.System
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger
	}
	if opts.Client == nil {
		c, err := upstream.NewDNSClient(upstream.Opts{
			Nameserver: opts.Nameserver,
			Logger:     opts.Logger,
		})
		if err != nil {
			return fmt.Errorf("failed to init dns client, %w", err)
		}
		opts.Client = c
	}
	return nil
}

// Resolver is safe for concurrent use. Its configuration does not change
// after NewResolver returns.
type Resolver struct {
	opts    Options
	logger  *zap.Logger
	client  upstream.Client
	cache   *mem_cache.MemCache
	sf      singleflight.Group
	metrics *metrics
}

func NewResolver(opts Options) (*Resolver, error) {
	if err := opts.Init(); err != nil {
		return nil, err
	}

	r := &Resolver{
		opts:   opts,
		logger: opts.Logger,
		client: opts.Client,
		cache:  mem_cache.NewMemCache(CacheSize, opts.Clock, opts.Logger),
	}
	r.metrics = newMetrics(r.cache.Len)
	if opts.MetricsRegisterer != nil {
		if err := r.metrics.register(opts.MetricsRegisterer); err != nil {
			return nil, fmt.Errorf("failed to register metrics, %w", err)
		}
	}
	return r, nil
}

// ResolveMailHosts returns the mail exchangers of domain, most preferred
// first. Exchangers of equal preference keep the order of the DNS answer.
// A domain without MX records is its own exchanger for each of its A
// records. Host names are fully qualified and keep their trailing dot.
//
// The error is ErrNoRecords when the domain has neither record type, or
// wraps ErrUpstreamFailure when a query fails.
func (r *Resolver) ResolveMailHosts(ctx context.Context, domain string) ([]string, error) {
	return r.resolve(ctx, opMail, domain, r.lookupMailHosts)
}

// ResolveReverseHosts returns the PTR targets of ip in answer order. The
// result is empty, with a nil error, when ip has no PTR records.
//
// The error wraps ErrBadAddress when ip is not an IPv4 or IPv6 literal,
// or ErrUpstreamFailure when the query fails.
func (r *Resolver) ResolveReverseHosts(ctx context.Context, ip string) ([]string, error) {
	return r.resolve(ctx, opReverse, ip, r.lookupReverseHosts)
}

// CacheLen returns the number of cached results, fresh or stale.
func (r *Resolver) CacheLen() int {
	return r.cache.Len()
}

type lookupFunc func(ctx context.Context, key string) ([]string, error)

func (r *Resolver) resolve(ctx context.Context, op, key string, lookup lookupFunc) ([]string, error) {
	if hosts, ok := r.cached(op, key); ok {
		return hosts, nil
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	if !r.opts.SingleFlight {
		return r.lookupAndStore(ctx, op, key, lookup)
	}

	// The shared lookup outlives any single caller: it is detached from
	// the caller's cancellation and bounded by Timeout alone. Each caller
	// stops waiting when its own ctx is done.
	ch := r.sf.DoChan(op+"\x00"+key, func() (interface{}, error) {
		sctx := context.WithoutCancel(ctx)
		if r.opts.Timeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(sctx, r.opts.Timeout)
			defer cancel()
		}
		return r.lookupAndStore(sctx, op, key, lookup)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		hosts := res.Val.([]string)
		if res.Shared {
			hosts = append(make([]string, 0, len(hosts)), hosts...)
		}
		return hosts, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s lookup for %s, %w", ErrUpstreamFailure, op, key, ctx.Err())
	}
}

// cached returns a copy of the fresh hosts under key.
func (r *Resolver) cached(op, key string) ([]string, bool) {
	e, ok := r.cache.Get(key)
	if !ok {
		r.logger.Debug("cache did not contain an answer", zap.String("op", op), zap.String("key", key))
		r.metrics.cacheMiss.WithLabelValues(op).Inc()
		return nil, false
	}
	if cache.Expired(e, CacheTTL, r.opts.Clock.Now()) {
		r.logger.Debug("cache contained an answer older than ttl",
			zap.String("op", op),
			zap.String("key", key),
			zap.Duration("ttl", CacheTTL))
		r.metrics.cacheMiss.WithLabelValues(op).Inc()
		return nil, false
	}
	r.logger.Debug("cache contained a fresh answer", zap.String("op", op), zap.String("key", key))
	r.metrics.cacheHit.WithLabelValues(op).Inc()
	return append(make([]string, 0, len(e.Hosts)), e.Hosts...), true
}

func (r *Resolver) lookupAndStore(ctx context.Context, op, key string, lookup lookupFunc) ([]string, error) {
	hosts, err := lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		r.logger.Debug("empty answer is not cached", zap.String("op", op), zap.String("key", key))
		return hosts, nil
	}
	r.logger.Debug("new lookup result", zap.String("op", op), zap.String("key", key), zap.Strings("hosts", hosts))
	r.cache.Store(key, hosts)
	return hosts, nil
}

type mxHost struct {
	priority uint16
	target   string
}

func (r *Resolver) lookupMailHosts(ctx context.Context, domain string) ([]string, error) {
	records, err := r.query(ctx, domain, dns.TypeMX)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		records, err = r.query(ctx, domain, dns.TypeA)
		if err != nil {
			return nil, err
		}
	}

	mx := make([]mxHost, 0, len(records))
	for _, rec := range records {
		switch rec.Kind {
		case dns.TypeMX:
			mx = append(mx, mxHost{priority: rec.Priority, target: rec.Target})
		case dns.TypeA:
			mx = append(mx, mxHost{priority: fallbackPriority, target: dns.Fqdn(rec.Name)})
		}
	}
	if len(mx) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoRecords, domain)
	}

	sort.SliceStable(mx, func(i, j int) bool {
		return mx[i].priority < mx[j].priority
	})

	hosts := make([]string, len(mx))
	for i, h := range mx {
		hosts[i] = h.target
	}
	return hosts, nil
}

func (r *Resolver) lookupReverseHosts(ctx context.Context, ip string) ([]string, error) {
	name, err := dnsutils.ReverseName(ip)
	if err != nil {
		return nil, err
	}

	records, err := r.query(ctx, name, dns.TypePTR)
	if err != nil {
		return nil, err
	}

	hosts := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Kind == dns.TypePTR {
			hosts = append(hosts, rec.Target)
		}
	}
	return hosts, nil
}

func (r *Resolver) query(ctx context.Context, name string, qtype uint16) ([]upstream.Record, error) {
	t := dnsutils.QtypeToString(qtype)
	r.metrics.queries.WithLabelValues(t).Inc()

	records, err := r.client.Query(ctx, name, qtype)
	if err != nil {
		r.metrics.upstreamErrors.WithLabelValues(t).Inc()
		return nil, fmt.Errorf("%w: %s query for %s, %w", ErrUpstreamFailure, t, name, err)
	}
	return records, nil
}
