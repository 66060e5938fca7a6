package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-refiner-go/pkg/utilities"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by RequireAuth.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}

// RequireAuth rejects requests without a valid, unexpired, unrevoked bearer
// token and stores the resolved Identity in the request context.
func RequireAuth(svc *AuthService, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := StripBearer(header)
			if header == "" || token == "" || token == header {
				utilities.WriteUnauthorized(w, "Not authenticated")
				return
			}
			id, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				if IsUnauthorized(err) {
					logger.Debugw("bearer rejected", "err", err, "path", r.URL.Path)
					utilities.WriteUnauthorized(w, "Could not validate credentials")
					return
				}
				logger.Errorw("bearer check failed", "err", err, "path", r.URL.Path)
				utilities.WriteError(w, http.StatusInternalServerError, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
