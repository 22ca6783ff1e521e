package catalog

import (
	"net"
	"net/url"
	"strings"
)

// LinkHost returns the lower-cased authority of an absolute URL with a
// leading "www." removed, or "" when the link has no host. An explicit port
// is kept; user info is not.
func LinkHost(link string) string {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimSuffix(strings.TrimPrefix(host, "www."), ".")
	if port := parsed.Port(); port != "" {
		return net.JoinHostPort(host, port)
	}
	return host
}
