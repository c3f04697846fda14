package main

import (
	"time"

	"github.com/diewo77/go-employes/internal/handlers"
	"github.com/diewo77/go-employes/internal/policy"
	"github.com/diewo77/go-employes/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RouterConfig holds the configured handlers and the authorization gate.
type RouterConfig struct {
	AuthGate *policy.AuthGate

	AuthHandler    *handlers.AuthHandler
	EmployeHandler *handlers.EmployeHandler

	EmployeService *services.EmployeService
}

// NewRouterConfig wires the gate, services and handlers. Role lookups are
// cached for cacheTTL.
func NewRouterConfig(db *gorm.DB, cacheTTL time.Duration, logger *zap.Logger) *RouterConfig {
	authGate := policy.NewAuthGate(db, cacheTTL, logger)
	employeService := services.NewEmployeService(db, logger.Named("employe"))

	return &RouterConfig{
		AuthGate:       authGate,
		AuthHandler:    handlers.NewAuthHandler(db, logger.Named("auth")),
		EmployeHandler: handlers.NewEmployeHandler(employeService, authGate, logger.Named("employe")),
		EmployeService: employeService,
	}
}
