package middleware

import (
	"context"
	"net"
	"strings"

	"connectrpc.com/connect"
)

// WithClientIP returns a context carrying the caller's address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP returns the caller's address, or "" when unknown.
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// ClientIPInterceptor records the caller's address: the first
// X-Forwarded-For entry when present, otherwise the peer address.
func ClientIPInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ip := ClientIP(req.Header().Get("X-Forwarded-For"), req.Peer().Addr)
			return next(WithClientIP(ctx, ip), req)
		}
	}
}

// ClientIP picks the caller address from a forwarded-for header value and a
// host:port peer address.
func ClientIP(forwardedFor, peerAddr string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(peerAddr); err == nil {
		return host
	}
	return peerAddr
}
