package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/go-employes/auth"
	"github.com/diewo77/go-employes/gate"
	"github.com/diewo77/go-employes/httpx"
	"github.com/diewo77/go-employes/internal/models"
	"github.com/diewo77/go-employes/internal/policy"
	"github.com/diewo77/go-employes/internal/serializers"
	"github.com/diewo77/go-employes/internal/services"
	"github.com/diewo77/go-employes/validation"
	"go.uber.org/zap"
)

// EmployeHandler serves the employe profile endpoints. Route level
// permissions are enforced by middleware; ownership is checked here.
type EmployeHandler struct {
	service  *services.EmployeService
	authGate *policy.AuthGate
	logger   *zap.Logger
}

// NewEmployeHandler creates the employe handler.
func NewEmployeHandler(service *services.EmployeService, authGate *policy.AuthGate, logger *zap.Logger) *EmployeHandler {
	return &EmployeHandler{service: service, authGate: authGate, logger: logger}
}

// List handles GET /users/employe/?search=&status=.
func (h *EmployeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	profiles, err := h.service.List(r.Context(), services.EmployeFilters{
		Search: q.Get("search"),
		Status: q.Get("status"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	reps, err := serializers.NewEmployeRepresentations(profiles)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reps)
}

// Me returns the session user's own profile.
func (h *EmployeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	profile, err := h.service.GetByUserID(r.Context(), uid)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeProfile(w, http.StatusOK, profile)
}

func (h *EmployeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, services.ErrEmployeNotFound.Error(), nil)
		return
	}
	profile, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.authGate.Authorize(r.Context(), gate.ActionView, policy.ResourceEmploye, profile); err != nil {
		// Profiles of other accounts answer like missing ones.
		if errors.Is(err, gate.ErrForbidden) {
			httpx.JSONError(w, http.StatusNotFound, services.ErrEmployeNotFound.Error(), nil)
			return
		}
		policy.WriteAuthError(w, err, h.logger)
		return
	}
	h.writeProfile(w, http.StatusOK, profile)
}

// Register creates the account and its profile in one step.
func (h *EmployeHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := httpx.ReadBody(r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	in, err := serializers.DecodeRegistration(body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	profile, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeProfile(w, http.StatusCreated, profile)
}

// ToggleActive flips the account's active flag. The cached role of that
// account is dropped so the change applies to its next request.
func (h *EmployeHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, services.ErrEmployeNotFound.Error(), nil)
		return
	}
	profile, err := h.service.ToggleActive(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.authGate.InvalidateUser(profile.UserID)
	h.writeProfile(w, http.StatusOK, profile)
}

func (h *EmployeHandler) writeProfile(w http.ResponseWriter, status int, p *models.EmployeProfile) {
	rep, err := serializers.NewEmployeRepresentation(p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, status, rep)
}

func (h *EmployeHandler) writeError(w http.ResponseWriter, err error) {
	if v, ok := validation.AsError(err); ok {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	switch {
	case errors.Is(err, services.ErrEmployeNotFound):
		httpx.JSONError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidStatus):
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, serializers.ErrUserHasProfile):
		httpx.JSONError(w, http.StatusConflict, "user_has_profile", nil)
	default:
		h.logger.Error("employe request failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
