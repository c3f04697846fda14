package main

import (
	"net/http"

	"github.com/diewo77/go-employes/auth"
	"github.com/diewo77/go-employes/gate"
	"github.com/diewo77/go-employes/httpx"
	"github.com/diewo77/go-employes/internal/middleware"
	"github.com/diewo77/go-employes/internal/policy"
	"go.uber.org/zap"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	handler   http.Handler
	routerCfg *RouterConfig
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *RouterConfig, logger *zap.Logger) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
	}
	app.setupRoutes()
	app.handler = middleware.RequestLogger(logger.Named("http"))(auth.Middleware(app.mux))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	ah := a.routerCfg.AuthHandler
	eh := a.routerCfg.EmployeHandler

	// Public
	a.mux.HandleFunc("GET /healthz", healthz)
	a.mux.HandleFunc("POST /auth/login/{$}", ah.Login)
	a.mux.HandleFunc("POST /auth/logout/{$}", ah.Logout)

	// Authenticated
	a.mux.Handle("GET /auth/me/{$}", auth.RequireAuth(http.HandlerFunc(ah.Me)))
	a.mux.Handle("GET /users/employe/me/{$}", auth.RequireAuth(http.HandlerFunc(eh.Me)))

	// Permission protected
	a.mux.Handle("POST /auth/register/employe/{$}",
		a.requirePermission(gate.ActionCreate, eh.Register))
	a.mux.Handle("GET /users/employe/{$}",
		a.requirePermission(gate.ActionList, eh.List))
	a.mux.Handle("GET /users/employe/{id}/{$}",
		a.requirePermission(gate.ActionView, eh.Get))
	a.mux.Handle("PATCH /users/setEmployeeInactive/{id}/{$}",
		a.requirePermission(gate.ActionUpdate, eh.ToggleActive))
}

// requirePermission wraps h with the session check and the employe
// permission for action.
func (a *App) requirePermission(action gate.Action, h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.routerCfg.AuthGate.RequirePermission(policy.ResourceEmploye, action)(h))
}

func healthz(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
