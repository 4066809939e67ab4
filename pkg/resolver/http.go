package resolver

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/bseib/MXResolver/pkg/dnsutils"
)

// ServeHTTP answers GET requests with one of an "mx" (domain), an "ip"
// (address literal) or a "ptr" (reverse name, e.g. 1.2.0.192.in-addr.arpa.)
// query parameter. Hosts are written one per line.
func (r *Resolver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var (
		hosts []string
		err   error
	)
	q := req.URL.Query()
	switch {
	case len(q.Get("mx")) > 0:
		hosts, err = r.ResolveMailHosts(req.Context(), q.Get("mx"))
	case len(q.Get("ip")) > 0:
		hosts, err = r.ResolveReverseHosts(req.Context(), q.Get("ip"))
	case len(q.Get("ptr")) > 0:
		hosts, err = r.resolvePTRName(req, q.Get("ptr"))
	default:
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing mx, ip or ptr parameter"))
		return
	}

	if err != nil {
		var status int
		switch {
		case errors.Is(err, ErrBadAddress):
			status = http.StatusBadRequest
		case errors.Is(err, ErrNoRecords):
			status = http.StatusNotFound
		default:
			status = http.StatusBadGateway
			r.logger.Debug("http lookup failed", zap.String("query", req.URL.RawQuery), zap.Error(err))
		}
		w.WriteHeader(status)
		w.Write([]byte(err.Error()))
		return
	}

	if len(hosts) > 0 {
		w.Write([]byte(strings.Join(hosts, "\n") + "\n"))
	}
}

// resolvePTRName decodes a reverse name and looks it up under its address
// literal, so it shares cache entries with "ip" requests.
func (r *Resolver) resolvePTRName(req *http.Request, name string) ([]string, error) {
	addr, err := dnsutils.ParsePTRName(name)
	if err != nil {
		return nil, err
	}
	return r.ResolveReverseHosts(req.Context(), addr.String())
}
