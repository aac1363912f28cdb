package middleware

import (
	"net/http"
	"strconv"

	"github.com/tendant/voicehub/internal/config"
)

// SecurityHeaders applies response security headers. Every response is an API
// payload, so caching is disabled unconditionally.
func SecurityHeaders(cfg config.SecurityHeadersConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	headers := map[string]string{
		"Content-Security-Policy": cfg.CSP,
		"X-Frame-Options":         cfg.FrameOptions,
		"X-Content-Type-Options":  cfg.ContentTypeOptions,
		"X-XSS-Protection":        cfg.XSSProtection,
		"Referrer-Policy":         cfg.ReferrerPolicy,
		"Permissions-Policy":      cfg.PermissionsPolicy,
	}
	if cfg.HSTSMaxAge > 0 {
		headers["Strict-Transport-Security"] = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge) + "; includeSubDomains"
	}
	for name, value := range headers {
		if value == "" {
			delete(headers, name)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for name, value := range headers {
				h.Set(name, value)
			}
			h.Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}
