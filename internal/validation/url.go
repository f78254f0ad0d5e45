// Package validation checks user input before it reaches a route or a
// stored profile.
//
// ValidateBaseURL keeps signed requests away from private networks and cloud
// metadata services. FIELDCLIMATE_ALLOW_PRIVATE (any strconv.ParseBool true
// value) or SetAllowPrivate(true) permits private and loopback hosts, which
// is how a local mock of the API is reached. Metadata hosts stay blocked.
package validation

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// EnvAllowPrivate permits private and localhost base URLs when true.
const EnvAllowPrivate = "FIELDCLIMATE_ALLOW_PRIVATE"

// dnsTimeout bounds the lookup of a base URL host.
const dnsTimeout = 5 * time.Second

var allowPrivate atomic.Bool

func init() {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvAllowPrivate)))
	allowPrivate.Store(v)
}

// reservedPrefixes are ranges no public API host lives in.
var reservedPrefixes = mustPrefixes(
	"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", // RFC1918
	"100.64.0.0/10",   // shared address space
	"192.0.0.0/24",    // IETF protocol assignments
	"192.0.2.0/24",    // documentation
	"198.18.0.0/15",   // benchmarking
	"198.51.100.0/24", // documentation
	"203.0.113.0/24",  // documentation
	"240.0.0.0/4",     // reserved
	"fc00::/7",        // unique local
	"100::/64",        // discard
	"2001::/32",       // Teredo
	"2001:10::/28",    // ORCHID
	"2001:db8::/32",   // documentation
)

var metadataHosts = map[string]bool{
	"169.254.169.254":          true,
	"fd00:ec2::254":            true,
	"metadata.google.internal": true,
	"metadata":                 true,
	"instance-data":            true,
}

var localHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
	"0.0.0.0":   true,
	"::":        true,
}

func mustPrefixes(cidrs ...string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, cidr := range cidrs {
		out = append(out, netip.MustParsePrefix(cidr))
	}
	return out
}

// SetAllowPrivate enables or disables private and localhost base URLs.
func SetAllowPrivate(enabled bool) {
	allowPrivate.Store(enabled)
}

// AllowPrivateEnabled reports whether private and localhost URLs are allowed.
func AllowPrivateEnabled() bool {
	return allowPrivate.Load()
}

// ValidateBaseURL checks a custom API base URL: http(s) only, a host that is
// not a metadata service, and (unless allowed) not loopback or private.
// Host names are resolved and every address is checked; a name that does
// not resolve is accepted.
func ValidateBaseURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("URL must contain a hostname")
	}

	if !AllowPrivateEnabled() && isLocalhost(host) {
		return fmt.Errorf("localhost URLs are not allowed")
	}
	if isCloudMetadata(host) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		return checkAddr(addr)
	}
	return checkResolved(host)
}

func isLocalhost(host string) bool {
	host = strings.ToLower(host)
	return localHosts[host] || strings.HasSuffix(host, ".localhost")
}

func isCloudMetadata(host string) bool {
	host = strings.ToLower(host)
	return metadataHosts[host] || strings.HasSuffix(host, ".metadata.google.internal")
}

// checkAddr rejects addresses a base URL must not point at.
func checkAddr(addr netip.Addr) error {
	addr = addr.Unmap()
	switch {
	case metadataHosts[addr.String()]:
		return fmt.Errorf("cloud metadata IP address is not allowed")
	case addr.IsUnspecified():
		return fmt.Errorf("unspecified IP addresses are not allowed")
	case addr.IsLinkLocalUnicast(), addr.IsLinkLocalMulticast():
		return fmt.Errorf("link-local IP addresses are not allowed")
	case AllowPrivateEnabled():
		return nil
	case addr.IsLoopback():
		return fmt.Errorf("loopback IP addresses are not allowed")
	case addr.IsMulticast(), isReserved(addr):
		return fmt.Errorf("private IP addresses are not allowed")
	}
	return nil
}

func isReserved(addr netip.Addr) bool {
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func checkResolved(host string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil
	}
	for _, addr := range addrs {
		if err := checkAddr(addr); err != nil {
			return fmt.Errorf("domain %q resolves to forbidden IP %s: %w", host, addr, err)
		}
	}
	return nil
}
