package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"eventmanager/internal/access"
	h "eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"
)

type contextKey string

const callerKey contextKey = "caller"

// SetCaller returns a context carrying the request's caller.
func SetCaller(ctx context.Context, caller *domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns the caller attached by Authenticate, or an
// anonymous caller when none is present.
func CallerFromContext(ctx context.Context) *domain.Caller {
	if c, ok := ctx.Value(callerKey).(*domain.Caller); ok && c != nil {
		return c
	}
	return domain.Anonymous()
}

// Authenticate attaches a caller to every request. Requests without an
// Authorization header proceed as anonymous. A header that is malformed or
// carries an invalid token is rejected with 401 on every route.
func Authenticate(verifier domain.TokenVerifier, identity domain.IdentityProvider, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			next.ServeHTTP(w, r.WithContext(SetCaller(r.Context(), domain.Anonymous())))
			return
		}
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
			return
		}
		token := strings.TrimSpace(auth[len(prefix):])
		if token == "" {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
			return
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
			return
		}
		caller, err := identity.Resolve(r.Context(), userID)
		if err != nil {
			logger.ErrorContext(r.Context(), "resolve caller", "user_id", userID, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
			return
		}
		next.ServeHTTP(w, r.WithContext(SetCaller(r.Context(), caller)))
	})
}

// Require gates next behind the level op requires: 401 for anonymous
// callers, 403 for known callers whose roles fall short.
func Require(op access.Operation, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := access.EvaluateOperation(CallerFromContext(r.Context()), op)
		if res.Allowed() {
			next(w, r)
			return
		}
		if res.Reason == access.ReasonUnauthenticated {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, res.Reason.String())
			return
		}
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, res.Reason.String())
	}
}
