package middleware

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/listimport/internal/logging"
	"github.com/google/uuid"
)

// UserHeader carries the caller identity set by the fronting gateway.
const UserHeader = "X-User-ID"

type userKey struct{}

// RequireUser rejects requests without a valid X-User-ID and stores the
// parsed id on the context for handlers and logging.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(UserHeader))
		if err != nil || id == uuid.Nil {
			writeJSONError(w, http.StatusUnauthorized, "missing user identity", "REQ003")
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, id)
		ctx = logging.WithUserID(ctx, id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the caller stored by RequireUser.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userKey{}).(uuid.UUID)
	return id, ok
}

// WithUserID stores id as the caller. Used by tests and internal callers
// that bypass RequireUser.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}
