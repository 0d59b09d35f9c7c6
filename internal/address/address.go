package address

import (
	"net"
	"strings"
)

const DefaultHost = "0.0.0.0"

// Normalize completes an address consisting of the port only, e.g. :8080, with the
// default host.
func Normalize(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return DefaultHost + addr
	}

	return addr
}

// Host strips the port off the address, if any.
func Host(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}

// IsLocalhost tells whether the address points to the local machine only, so no publicly
// trusted certificate can be obtained for it.
func IsLocalhost(addr string) bool {
	host := Host(addr)
	if strings.EqualFold(host, "localhost") {
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}
