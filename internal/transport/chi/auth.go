package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths stay reachable without a key so orchestrators and scrapers
// can watch the service. /ask, /tools and /mcp always need one.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/ready":   {},
	"/metrics": {},
}

// keyring holds the accepted API keys.
type keyring [][]byte

func newKeyring(apiKeys []string) keyring {
	var ring keyring
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			ring = append(ring, []byte(k))
		}
	}
	return ring
}

// accepts compares against every key so timing does not reveal which one matched.
func (k keyring) accepts(token string) bool {
	found := 0
	for _, key := range k {
		found |= subtle.ConstantTimeCompare(key, []byte(token))
	}
	return found == 1
}

// bearerToken extracts the token from the Authorization header. The scheme
// name is case-insensitive. On failure it returns the client-facing reason.
func bearerToken(r *http.Request) (token, reason string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", "authorization header must use Bearer scheme"
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", "empty bearer token"
	}
	return token, ""
}

// BearerAuthMiddleware guards the quote endpoints with static API keys.
// With no configured keys the service is open.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	ring := newKeyring(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(ring) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, reason := bearerToken(r)
			if reason != "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, reason)
				return
			}
			if !ring.accepts(token) {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
