// Package resolver provides the best-effort DNS gate used at link
// creation time. A hostname that does not resolve is rejected; nothing
// is ever re-checked after creation.
package resolver

import (
	"context"
	"net"
	"time"
)

const defaultTimeout = 3 * time.Second

// HostResolver reports whether a hostname currently resolves. It is a
// capability interface so tests can substitute a deterministic double.
type HostResolver interface {
	Resolves(ctx context.Context, hostname string) bool
}

// DNSResolver is the production HostResolver backed by the system
// resolver with a bounded per-lookup timeout.
type DNSResolver struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// NewDNS returns a DNSResolver. A non-positive timeout falls back to
// the default.
func NewDNS(timeout time.Duration) *DNSResolver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &DNSResolver{
		resolver: net.DefaultResolver,
		timeout:  timeout,
	}
}

// Resolves performs a name lookup and collapses every failure mode
// (NXDOMAIN, timeout, transport error) into false. This is a liveness
// heuristic, not a reachability guarantee.
func (r *DNSResolver) Resolves(ctx context.Context, hostname string) bool {
	if hostname == "" {
		return false
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	addrs, err := r.resolver.LookupHost(lookupCtx, hostname)
	return err == nil && len(addrs) > 0
}
