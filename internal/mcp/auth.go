package mcp

import (
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

// AuthConfig guards the JSON-RPC and metrics routes. Loopback callers and
// allowlisted networks always pass the address check; with a token set and no
// allowlist, any address may connect but must present the bearer token.
type AuthConfig struct {
	Token     string
	Allowlist []*net.IPNet
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Ok    bool       `json:"ok"`
	Error *errorBody `json:"error"`
}

// RespondError writes a JSON error envelope.
func RespondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: &errorBody{Code: code, Message: message}})
}

// NewAuthMiddleware returns the address and bearer-token guard.
func NewAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	guard := &authMiddleware{token: cfg.Token, allowed: cfg.Allowlist}
	return guard.wrap
}

type authMiddleware struct {
	token   string
	allowed []*net.IPNet
}

func (m *authMiddleware) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := parseRemoteIP(r.RemoteAddr)
		if !m.isAllowed(ip) {
			RespondError(w, http.StatusForbidden, "FORBIDDEN_IP", "request IP not allowed")
			return
		}

		if m.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		const bearerPrefix = "Bearer "
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, bearerPrefix) {
			RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid bearer token")
			return
		}

		provided := strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.token)) != 1 {
			RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid bearer token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *authMiddleware) isAllowed(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}
	if len(m.allowed) == 0 {
		return m.token != ""
	}
	for _, network := range m.allowed {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func parseRemoteIP(remoteAddr string) net.IP {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(remoteAddr)
}
