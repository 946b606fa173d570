// Package horosafe guards the outbound targets streamscribe is told to
// reach: the video page Chrome opens and the webhooks transcripts are
// POSTed to. Chrome may carry the user's SharePoint session, so a page URL
// pointing at a private address (cloud metadata, the local CDP port, an
// intranet admin panel) must never be opened on someone else's request.
package horosafe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// ErrSSRF is returned when a URL targets a private, loopback or
// link-local address.
var ErrSSRF = errors.New("horosafe: URL targets a private or loopback address")

// ErrUnsafeScheme is returned when a URL uses a non-HTTP(S) scheme.
var ErrUnsafeScheme = errors.New("horosafe: only http and https schemes are allowed")

// lookupTimeout bounds the DNS check in ValidateURL.
const lookupTimeout = 5 * time.Second

// lookupHost is swapped in tests.
var lookupHost = net.DefaultResolver.LookupHost

// blocked lists ranges that net/netip's predicates do not already cover.
var blocked = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"), // carrier-grade NAT
	netip.MustParsePrefix("192.0.0.0/24"),  // IETF protocol assignments
	netip.MustParsePrefix("198.18.0.0/15"), // benchmarking
	netip.MustParsePrefix("64:ff9b::/96"),  // NAT64 can embed private v4
}

// ValidateURL checks that rawURL is an absolute http(s) URL whose host
// neither is nor resolves to a private address. A host that does not
// resolve is let through: the connection will fail on its own.
func ValidateURL(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("horosafe: invalid URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrUnsafeScheme
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("horosafe: URL has no host")
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		if IsPrivate(ip) {
			return ErrSSRF
		}
		return nil
	}
	if h := strings.TrimSuffix(strings.ToLower(host), "."); h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return ErrSSRF
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	addrs, err := lookupHost(ctx, host)
	if err != nil {
		return nil
	}
	for _, a := range addrs {
		if ip, err := netip.ParseAddr(a); err == nil && IsPrivate(ip) {
			return ErrSSRF
		}
	}
	return nil
}

// IsPrivate reports whether ip is a loopback, private, link-local,
// unspecified or otherwise non-public address.
func IsPrivate(ip netip.Addr) bool {
	ip = ip.Unmap().WithZone("")
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() {
		return true
	}
	for _, p := range blocked {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// LimitedReadAll reads at most maxBytes from r and fails if there is more.
func LimitedReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("horosafe: body exceeds %d bytes", maxBytes)
	}
	return data, nil
}
