package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/agbru/mpicalc/internal/config"
)

// SecurityConfig configures the security middleware and the request limits.
type SecurityConfig struct {
	EnableCORS     bool
	AllowedOrigins []string
	AllowedMethods []string
	// MaxBodyBytes caps the size of request bodies.
	MaxBodyBytes int64
	// MaxExprLength caps the length of a submitted script in bytes.
	MaxExprLength int
	// MaxDigits caps the length of each decimal literal (0 for no limit).
	MaxDigits int
}

// DefaultSecurityConfig returns permissive CORS settings and conservative
// request limits.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		MaxBodyBytes:   1 << 20,
		MaxExprLength:  256 << 10,
		MaxDigits:      config.DefaultMaxDigits,
	}
}

// SecurityMiddleware sets the security headers, answers CORS preflight
// requests and bounds the request body.
func SecurityMiddleware(cfg SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if cfg.EnableCORS {
			if origin, ok := allowedOrigin(cfg.AllowedOrigins, r.Header.Get("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "86400")
				if origin != "*" {
					h.Add("Vary", "Origin")
				}
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if cfg.MaxBodyBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxBodyBytes)
		}
		next(w, r)
	}
}

// allowedOrigin returns the value for Access-Control-Allow-Origin. A "*"
// entry matches every request, with or without an Origin header.
func allowedOrigin(allowed []string, origin string) (string, bool) {
	if slices.Contains(allowed, "*") {
		return "*", true
	}
	if origin != "" && slices.Contains(allowed, origin) {
		return origin, true
	}
	return "", false
}
