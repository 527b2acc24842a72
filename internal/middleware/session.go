package middleware

import (
	"net/http"

	"github.com/growship/backend/internal/auth"

	"github.com/google/uuid"
)

// SessionMiddleware extracts the authenticated user from the X-User-Id
// header, as populated by the gateway in front of this service, and places
// it on the request context. The gateway may also pin the session to one
// tenant with X-Organization-Id; when present it rides along so handlers can
// refuse requests that name a different organization. Requests without a
// parseable user id are rejected before they reach a handler.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-Id")
		if raw == "" {
			http.Error(w, "missing X-User-Id header", http.StatusUnauthorized)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid X-User-Id header", http.StatusUnauthorized)
			return
		}
		ctx := auth.ContextWithActorID(r.Context(), id)

		if rawOrg := r.Header.Get("X-Organization-Id"); rawOrg != "" {
			orgID, err := uuid.Parse(rawOrg)
			if err != nil {
				http.Error(w, "invalid X-Organization-Id header", http.StatusUnauthorized)
				return
			}
			ctx = auth.ContextWithOrganizationID(ctx, orgID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
