package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/tokenreg/pkg/cryptox"
	"github.com/aussiebroadwan/tokenreg/pkg/slogx"
)

// AdminKeyHeader carries the operator secret for management routes.
const AdminKeyHeader = "X-Admin-Key"

// AdminKeyMiddleware only lets through requests whose X-Admin-Key matches the
// argon2id hash. An empty hash rejects everything.
func AdminKeyMiddleware(hash string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(AdminKeyHeader)
			if hash == "" || key == "" {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "admin key required")
				return
			}

			if err := cryptox.VerifySecret(key, hash); err != nil {
				slogx.FromContext(r.Context()).Warn("admin key rejected", "err", err)
				WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid admin key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
