package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/rodeoai/ingest/internal/httputil"
)

// APIKeyHeader is the header carrying the caller-supplied key.
const APIKeyHeader = "X-API-Key"

// APIKey rejects requests whose key does not match the configured
// secret. An empty configured secret disables the check entirely.
func APIKey(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if secret != "" {
			key := r.Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				httputil.WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
