package httputil

import (
	"net/http"
	"strings"
)

// AccessTokenCookie is the cookie web clients carry the access token in.
const AccessTokenCookie = "access_token"

// GetAccessTokenFromCookie extracts access token from cookie.
func GetAccessTokenFromCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// BearerToken returns the caller's access token.
// Checks Authorization header first, then falls back to cookie for web clients.
func BearerToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	if token, ok := GetAccessTokenFromCookie(r); ok {
		return token
	}
	return ""
}
