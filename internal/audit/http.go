package audit

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the caller address recorded on audit entries. Proxy
// headers win over RemoteAddr; entries that are not IP addresses, such as
// "unknown", are skipped.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, candidate := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip, ok := parseIP(candidate); ok {
			return ip
		}
	}
	if ip, ok := parseIP(r.Header.Get("X-Real-IP")); ok {
		return ip
	}
	// RemoteAddr is host:port from the listener, or a bare ip once a
	// real-ip middleware has rewritten it.
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if ip, ok := parseIP(host); ok {
		return ip
	}
	return r.RemoteAddr
}

func parseIP(value string) (string, bool) {
	value = strings.Trim(strings.TrimSpace(value), "[]")
	if value == "" {
		return "", false
	}
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return "", false
	}
	return addr.Unmap().WithZone("").String(), true
}
