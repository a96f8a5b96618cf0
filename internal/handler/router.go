package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/enerlink/parceiros-api-go/internal/chat"
	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/infra/observability"
	"github.com/enerlink/parceiros-api-go/internal/notify"
	"github.com/enerlink/parceiros-api-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract defined for the Parceiros frontend.
func NewRouter(
	portal *service.PortalService,
	filesSvc *service.FilesService,
	channel chat.Channel,
	authSvc *service.AuthService,
	events *notify.Recorder,
	metrics *observability.Metrics,
	corsOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(metricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(filesSvc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Authentication
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			if authSvc == nil {
				r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusServiceUnavailable, "auth service unavailable: backend not configured")
				}))
				return
			}
			// Public routes
			r.Post("/login", authLoginHandler(authSvc, logger))
			r.Post("/refresh", authRefreshHandler(authSvc, logger))

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(authSvc, logger))
				r.Post("/logout", authLogoutHandler(authSvc, logger))
				r.Put("/password", authChangePasswordHandler(authSvc, logger))
			})
		})

		// Business routes sit behind the JWT when auth is configured.
		business := func(r chi.Router) {
			// =============================================
			// Contacts
			// =============================================
			r.Get("/contacts", listContactsHandler(portal, logger))
			r.Post("/contacts", createContactHandler(portal, metrics, logger))
			r.Get("/contacts/{contactId}", getContactHandler(portal, logger))
			r.Patch("/contacts/{contactId}", updateContactHandler(portal, metrics, logger))
			r.Delete("/contacts/{contactId}", deleteContactHandler(portal, metrics, logger))

			// =============================================
			// Contracts
			// =============================================
			r.Get("/contracts", listContractsHandler(portal, logger))
			r.Post("/contracts", createContractHandler(portal, metrics, logger))
			r.Get("/contracts/{contractId}", getContractHandler(portal, logger))
			r.Patch("/contracts/{contractId}", updateContractHandler(portal, metrics, logger))
			r.Delete("/contracts/{contractId}", deleteContractHandler(portal, metrics, logger))

			// =============================================
			// Support requests (+ chat)
			// =============================================
			r.Get("/requests", listRequestsHandler(portal, logger))
			r.Post("/requests", createRequestHandler(portal, metrics, logger))
			r.Get("/requests/{requestId}", getRequestHandler(portal, logger))
			r.Patch("/requests/{requestId}", updateRequestHandler(portal, metrics, logger))
			r.Delete("/requests/{requestId}", deleteRequestHandler(portal, metrics, logger))
			mountChatRoutes(r, "requests", "requestId", channel, metrics, logger)

			// =============================================
			// Occurrences (+ chat)
			// =============================================
			r.Get("/occurrences", listOccurrencesHandler(portal, logger))
			r.Post("/occurrences", createOccurrenceHandler(portal, metrics, logger))
			r.Get("/occurrences/{occurrenceId}", getOccurrenceHandler(portal, logger))
			r.Patch("/occurrences/{occurrenceId}", updateOccurrenceHandler(portal, metrics, logger))
			r.Delete("/occurrences/{occurrenceId}", deleteOccurrenceHandler(portal, metrics, logger))
			mountChatRoutes(r, "occurrences", "occurrenceId", channel, metrics, logger)

			// =============================================
			// Portal users
			// =============================================
			r.Get("/users", listUsersHandler(portal, logger))
			r.Post("/users", createUserHandler(portal, metrics, logger))
			r.Get("/users/{userId}", getUserHandler(portal, logger))
			r.Patch("/users/{userId}", updateUserHandler(portal, metrics, logger))
			r.Delete("/users/{userId}", deleteUserHandler(portal, metrics, logger))

			// =============================================
			// Simulations (+ chat)
			// =============================================
			r.Get("/simulations", listSimulationsHandler(portal, logger))
			r.Post("/simulations", createSimulationHandler(portal, metrics, logger))
			r.Get("/simulations/{simulationId}", getSimulationHandler(portal, logger))
			r.Patch("/simulations/{simulationId}", updateSimulationHandler(portal, metrics, logger))
			r.Delete("/simulations/{simulationId}", deleteSimulationHandler(portal, metrics, logger))
			mountChatRoutes(r, "simulations", "simulationId", channel, metrics, logger)

			// =============================================
			// Files (partner document area)
			// =============================================
			r.Get("/files", listFilesHandler(filesSvc, logger))
			r.Get("/files/url", fileURLHandler(filesSvc, logger))
			r.Get("/files/download", fileDownloadHandler(filesSvc, logger))

			// =============================================
			// Session views
			// =============================================
			r.Get("/notifications", listNotificationsHandler(events, logger))
			r.Get("/dashboard", dashboardHandler(portal, logger))
			r.Post("/refresh", refreshHandler(portal, logger))
			r.Get("/metrics/summary", metricsSummaryHandler(metrics, logger))
		}

		if authSvc != nil {
			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(authSvc, logger))
				business(r)
			})
		} else {
			r.Group(business)
		}
	})

	return r
}

// metricsMiddleware counts requests by status and records latency per
// route pattern.
func metricsMiddleware(m *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			routePattern := chi.RouteContext(r.Context()).RoutePattern()
			if routePattern == "" {
				routePattern = "unmatched"
			}
			status := "success"
			if ww.Status() >= http.StatusInternalServerError {
				status = "error"
			}
			m.IncrRequest(status)
			m.RecordRequestDuration(r.Method+" "+routePattern, time.Since(start))
		})
	}
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler(filesSvc *service.FilesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /healthz")
		defer span.End()

		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		now := time.Now().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "parceiros-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if filesSvc != nil {
			start := time.Now()
			_, err := filesSvc.List(ctx, "health-check")
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
				logger.Warn("backend health check failed", zap.Error(err))
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// ============================================================
// Session views
// ============================================================

// listNotificationsHandler drains the pending notifications, so each
// message is delivered to the frontend exactly once.
func listNotificationsHandler(events *notify.Recorder, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/notifications")
		defer span.End()

		items := events.Drain()
		writeJSON(w, http.StatusOK, map[string]any{
			"items": items,
			"total": len(items),
		})
	}
}

func dashboardHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		writeJSON(w, http.StatusOK, portal.Dashboard(ctx))
	}
}

// refreshHandler reloads every collection from the backend. Failures
// surface through the notification stream, so the response only says
// whether every fetch succeeded.
func refreshHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/refresh")
		defer span.End()

		status := "ok"
		if err := portal.RefreshAll(ctx); err != nil {
			logger.Warn("refresh completed with errors", zap.Error(err))
			status = "partial"
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": status})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/summary")
		defer span.End()

		writeJSON(w, http.StatusOK, map[string]any{
			"error_rate": metrics.ErrorRate(),
		})
	}
}
