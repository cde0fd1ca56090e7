package routes

import (
	"github.com/gorilla/mux"

	"grc/handlers"
	"grc/metrics"
	"grc/middleware"
	"grc/websocket"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly  = []string{"GET", "OPTIONS"}
	MethodsPostOnly = []string{"POST", "OPTIONS"}
)

const (
	PathAPI     = "/api"
	PathHealth  = "/health"
	PathMetrics = "/metrics"
)

func RegisterRoutes(r *mux.Router) {
	// ====================
	// PUBLIC ENDPOINTS
	// ====================
	r.HandleFunc(PathHealth, handlers.HealthCheck).Methods(MethodsGetOnly...)
	r.Handle(PathMetrics, metrics.Handler()).Methods(MethodsGetOnly...)

	r.HandleFunc("/api/auth/login", handlers.Login).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/validate", handlers.ValidateToken).Methods(MethodsGetOnly...)

	// WebSocket authenticates its own token
	r.HandleFunc("/ws", websocket.HandleWebSocket)

	// ====================
	// PROTECTED API ROUTES (Require authentication)
	// ====================
	apiRouter := r.PathPrefix(PathAPI).Subrouter()
	apiRouter.Use(middleware.AuthMiddleware)

	apiRouter.HandleFunc("/user/me", handlers.GetCurrentUser).Methods(MethodsGetOnly...)

	// Ingestion and scanning
	apiRouter.HandleFunc("/webhook/risk-source", handlers.IngestRiskSource).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/scan/triggers", handlers.RunTriggerScan).Methods(MethodsPostOnly...)

	// Events
	apiRouter.HandleFunc("/events", handlers.ListEvents).Methods(MethodsGetOnly...)

	// Risks
	apiRouter.HandleFunc("/risks", handlers.ListRisks).Methods(MethodsGetOnly...)
	apiRouter.HandleFunc("/risks/generate", handlers.GenerateRisks).Methods(MethodsPostOnly...)
	apiRouter.HandleFunc("/risks/status/{key}", handlers.GetGenerationStatus).Methods(MethodsGetOnly...)

	// Approvals
	apiRouter.HandleFunc("/approvals/risk-generation", handlers.CreateRiskGenerationApproval).Methods(MethodsPostOnly...)
}
