// Package fetcher extracts readable article text from news URLs.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"

	"tickermate/internal/usecase/fetch"
)

// checkURL accepts absolute http(s) article links. With denyPrivate set,
// a host that is or resolves to an internal address is refused, so a
// crafted news link cannot reach the metadata endpoint or the local
// network.
func checkURL(ctx context.Context, raw string, denyPrivate bool) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", fetch.ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme %q not allowed", fetch.ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", fetch.ErrInvalidURL)
	}
	if !denyPrivate {
		return nil
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if internalAddr(addr) {
			return fmt.Errorf("%w: %s", fetch.ErrPrivateIP, addr)
		}
		return nil
	}
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", fetch.ErrInvalidURL, host, err)
	}
	for _, addr := range addrs {
		if internalAddr(addr) {
			return fmt.Errorf("%w: %s resolves to %s", fetch.ErrPrivateIP, host, addr)
		}
	}
	return nil
}

func internalAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified()
}
