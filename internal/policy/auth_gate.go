package policy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/go-employes/auth"
	"github.com/diewo77/go-employes/gate"
	"github.com/diewo77/go-employes/httpx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthGate binds the permission gate to the request's session user.
type AuthGate struct {
	Gate          *gate.Gate[uint]
	CacheResolver *gate.CachedResolver[uint]
	logger        *zap.Logger
}

// NewAuthGate resolves roles from the database, caching them for cacheTTL,
// and protects employe resources with an ownership policy that
// administrators bypass.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration, logger *zap.Logger) *AuthGate {
	cached := gate.NewCachedResolver[uint](NewDBRoleResolver(db, Roles), cacheTTL)
	ag := &AuthGate{
		Gate:          gate.New[uint](cached),
		CacheResolver: cached,
		logger:        logger,
	}
	ag.Gate.Register(ResourceEmploye, NewAdminBypassPolicy(NewOwnershipPolicy(), ag.IsAdmin))
	return ag
}

// IsAdmin reports whether userID holds every permission.
func (ag *AuthGate) IsAdmin(ctx context.Context, userID uint) bool {
	return ag.Gate.HasPermission(ctx, userID, gate.PermissionAll)
}

// Authorize checks the session user against resource:action and, when
// target is not nil, the resource policy.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resource string, target any) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return ag.Gate.Authorize(ctx, userID, action, resource, target)
}

// InvalidateUser drops the cached role of userID.
func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.CacheResolver.Invalidate(userID)
}

// RequirePermission returns middleware answering 401/403 unless the session
// user's role grants resource:action.
func (ag *AuthGate) RequirePermission(resource string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ag.Authorize(r.Context(), action, resource, nil); err != nil {
				WriteAuthError(w, err, ag.logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteAuthError maps gate errors to HTTP responses.
func WriteAuthError(w http.ResponseWriter, err error, logger *zap.Logger) {
	switch {
	case errors.Is(err, gate.ErrUnauthorized):
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, gate.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	default:
		logger.Error("authorization failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
