package middleware

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is reported when a request carries no usable client address.
const UnknownClient = "unknown"

// ForwardedIP returns the first non-empty element of X-Forwarded-For, or
// UnknownClient. The value is client supplied; use it for display only.
func ForwardedIP(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := strings.TrimSpace(part); ip != "" {
			return ip
		}
	}
	return UnknownClient
}

// LastForwardedIP returns the last non-empty element of X-Forwarded-For, the
// hop appended by the nearest proxy, or UnknownClient.
func LastForwardedIP(r *http.Request) string {
	parts := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(parts) - 1; i >= 0; i-- {
		if ip := strings.TrimSpace(parts[i]); ip != "" {
			return ip
		}
	}
	return UnknownClient
}

// RemoteIP returns the host of the connection's remote address.
func RemoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return UnknownClient
}

// ClientKey returns the function identifying clients for rate limiting.
// Without a trusted proxy in front only the connection address counts. With
// one, the hop it appended to X-Forwarded-For is used; earlier elements are
// client supplied and ignored.
func ClientKey(trustForwarded bool) func(*http.Request) string {
	if !trustForwarded {
		return RemoteIP
	}
	return func(r *http.Request) string {
		if ip := LastForwardedIP(r); ip != UnknownClient {
			return ip
		}
		return RemoteIP(r)
	}
}

// UserAgent returns the trimmed User-Agent header, or UnknownClient.
func UserAgent(r *http.Request) string {
	if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
		return ua
	}
	return UnknownClient
}
