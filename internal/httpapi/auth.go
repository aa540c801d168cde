package httpapi

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

func parseBearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[len("Bearer "):])
	return tok, tok != ""
}

// openPath lists routes served without a token.
func openPath(p string) bool {
	switch p {
	case "/healthz", "/readyz", "/metrics":
		return true
	}
	return strings.HasPrefix(p, "/v1/dictionary/")
}

// authJWT returns a middleware that enforces Authorization: Bearer JWT (HS256).
// Issuer and audience are checked when non-empty. It returns nil when secret is empty.
func authJWT(secret, issuer, audience string) func(http.Handler) http.Handler {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if openPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			tok, ok := parseBearerToken(r)
			if !ok {
				writeErr(w, http.StatusUnauthorized, "missing bearer token", "unauthorized")
				return
			}
			if _, err := parser.Parse(tok, func(*jwt.Token) (any, error) { return key, nil }); err != nil {
				writeErr(w, http.StatusUnauthorized, "invalid token", "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
