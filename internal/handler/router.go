package handler

import (
	"net/http"
	"time"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/infra/observability"
	"github.com/lucasmtl/incorpora-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services groups everything the router needs wired in.
type Services struct {
	Contracts *service.ContractsService
	Reports   *service.ReportsService
	Budgets   *service.BudgetsService
	Narrative *service.NarrativeService
	Auth      *service.AuthService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Everything under /v1 except /v1/auth requires a valid access token.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Budgets, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 🔐 Autenticação (public)
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
			})
		})

		// =============================================
		// Protected routes
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// 📑 Contratos
			r.Post("/contracts", createContractHandler(svcs.Contracts, logger))
			r.Get("/contracts", listContractsHandler(svcs.Contracts, logger))
			r.Get("/contracts/{contractId}", getContractHandler(svcs.Contracts, logger))
			r.Post("/contracts/{contractId}/activate", activateContractHandler(svcs.Contracts, logger))
			r.Get("/contracts/{contractId}/installments", listInstallmentsHandler(svcs.Contracts, logger))

			// 📊 Relatórios
			r.Get("/reports/cashflow", cashFlowHandler(svcs.Reports, logger))
			r.Get("/reports/projection", projectionHandler(svcs.Reports, logger))
			r.Post("/reports/narrative", narrativeHandler(svcs.Narrative, logger))
			r.Get("/dashboard/summary", dashboardSummaryHandler(svcs.Reports, logger))
			r.Get("/metrics/narrative", narrativeMetricsHandler(svcs.Narrative, logger))

			// 💰 Orçamentos
			r.Get("/budgets", listBudgetsHandler(svcs.Budgets, logger))
			r.Post("/budgets", createBudgetHandler(svcs.Budgets, logger))
			r.Put("/budgets/{budgetId}", updateBudgetHandler(svcs.Budgets, logger))
			r.Get("/budgets/assessments", budgetAssessmentsHandler(svcs.Budgets, logger))

			// 🛠 Dev Tools (testing helpers)
			r.Post("/dev/seed-records", devSeedRecordsHandler(svcs.Reports, logger))
		})
	})

	return r
}

// ============================================================
// Probes
// ============================================================

func healthzHandler(budgetsSvc *service.BudgetsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "incorpora-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if budgetsSvc != nil {
			start := time.Now()
			_, err := budgetsSvc.List(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
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
