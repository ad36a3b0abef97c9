// Package fetcher fetches article pages for summary enrichment.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"newsdigest/internal/usecase/fetch"
)

// checkURL parses raw and rejects anything but http(s) with a host. When
// denyPrivate is set the host must not resolve to an internal address; IP
// literals are checked without a lookup.
func checkURL(ctx context.Context, raw string, denyPrivate bool) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", fetch.ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", fetch.ErrInvalidURL)
	}
	if !denyPrivate {
		return u, nil
	}

	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return nil, fmt.Errorf("%w: %s", fetch.ErrPrivateIP, ip)
		}
		return u, nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", fetch.ErrInvalidURL, host, err)
	}
	for _, a := range addrs {
		if isBlockedIP(a.IP) {
			return nil, fmt.Errorf("%w: %s resolves to %s", fetch.ErrPrivateIP, host, a.IP)
		}
	}
	return u, nil
}

// isBlockedIP reports loopback, RFC 1918, fc00::/7, link-local and
// unspecified addresses.
func isBlockedIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
