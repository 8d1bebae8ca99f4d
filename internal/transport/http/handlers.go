// @title OpenLot API
// @version 1.0.0
// @description Multi-tenant car catalog platform
//
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/openlot/openlot/internal/appuser"
	"github.com/openlot/openlot/internal/audit"
	"github.com/openlot/openlot/internal/catalog"
	"github.com/openlot/openlot/internal/content"
	"github.com/openlot/openlot/internal/engage"
	"github.com/openlot/openlot/internal/identity"
	"github.com/openlot/openlot/internal/session"
	"github.com/openlot/openlot/internal/storage"
	"github.com/openlot/openlot/internal/tenant"
	"github.com/openlot/openlot/internal/wechat"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	tenantService   *tenant.Service
	identityService *identity.Service
	appUserService  *appuser.Service
	catalogService  *catalog.Service
	engageService   *engage.Service
	contentService  *content.Service
	sessions        *session.Manager
	wechatClients   *wechat.Registry
	uploadIssuer    storage.Issuer
	auditLogger     audit.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	tenantService *tenant.Service,
	identityService *identity.Service,
	appUserService *appuser.Service,
	catalogService *catalog.Service,
	engageService *engage.Service,
	contentService *content.Service,
	sessions *session.Manager,
	wechatClients *wechat.Registry,
	uploadIssuer storage.Issuer,
	auditLogger audit.Logger,
) *Handler {
	return &Handler{
		tenantService:   tenantService,
		identityService: identityService,
		appUserService:  appUserService,
		catalogService:  catalogService,
		engageService:   engageService,
		contentService:  contentService,
		sessions:        sessions,
		wechatClients:   wechatClients,
		uploadIssuer:    uploadIssuer,
		auditLogger:     auditLogger,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Management plane for platform and tenant admins.
		r.Route("/admin", func(r chi.Router) {
			r.Post("/auth/login", h.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Use(RequireAdmin)

				r.Get("/auth/me", h.GetCurrentAdmin)
				r.Post("/auth/change-password", h.ChangePassword)

				// Tenant lifecycle is platform-level.
				r.Route("/tenants", func(r chi.Router) {
					r.Use(RequireSuperAdmin)
					r.Post("/", h.CreateTenant)
					r.Get("/", h.ListTenants)
					r.Get("/{tenantID}", h.GetTenant)
					r.Put("/{tenantID}", h.UpdateTenant)
					r.Delete("/{tenantID}", h.DeleteTenant)
				})

				// Admin accounts.
				r.Route("/admins", func(r chi.Router) {
					r.Post("/", h.CreateAdmin)
					r.Get("/", h.ListAdmins)
					r.Delete("/{adminID}", h.DeleteAdmin)
				})

				// Everything below operates on tenant-owned data.
				r.Group(func(r chi.Router) {
					r.Use(RequireTenant)

					r.Route("/scenarios", func(r chi.Router) {
						r.Post("/", h.CreateScenario)
						r.Get("/", h.ListScenarios)
						r.Get("/{scenarioID}", h.GetScenario)
						r.Put("/{scenarioID}", h.UpdateScenario)
						r.Delete("/{scenarioID}", h.DeleteScenario)
					})
					r.Route("/categories", func(r chi.Router) {
						r.Post("/", h.CreateCategory)
						r.Get("/", h.ListCategories)
						r.Get("/{categoryID}", h.GetCategory)
						r.Put("/{categoryID}", h.UpdateCategory)
						r.Delete("/{categoryID}", h.DeleteCategory)
					})
					r.Route("/trims", func(r chi.Router) {
						r.Post("/", h.CreateTrim)
						r.Get("/", h.ListTrims)
						r.Get("/{trimID}", h.GetTrim)
						r.Put("/{trimID}", h.UpdateTrim)
						r.Delete("/{trimID}", h.DeleteTrim)
					})

					r.Route("/users", func(r chi.Router) {
						r.Get("/", h.ListAppUsers)
						r.Get("/{userID}", h.GetAppUser)
						r.Delete("/{userID}", h.DeleteAppUser)
					})

					r.Route("/messages", func(r chi.Router) {
						r.Get("/", h.ListMessages)
						r.Post("/{messageID}/reply", h.ReplyMessage)
						r.Delete("/{messageID}", h.DeleteMessage)
					})

					r.Get("/homepage", h.GetHomepage)
					r.Put("/homepage", h.SetHomepage)
					r.Get("/contact-us", h.GetContactUs)
					r.Put("/contact-us", h.SetContactUs)
					r.Route("/faqs", func(r chi.Router) {
						r.Post("/", h.CreateFAQ)
						r.Get("/", h.ListFAQs)
						r.Put("/{faqID}", h.UpdateFAQ)
						r.Delete("/{faqID}", h.DeleteFAQ)
					})

					r.Get("/upload-token", h.IssueUploadToken)
				})
			})
		})

		// Mini-program plane for end users.
		r.Route("/app", func(r chi.Router) {
			r.Get("/resolve-tenant", h.ResolveTenant)
			r.Post("/auth/login", h.AppLogin)

			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Use(RequireAppUser)
				r.Use(RequireTenant)

				r.Get("/me", h.GetCurrentAppUser)
				r.Put("/me", h.UpdateAppUserProfile)
				r.Post("/me/phone", h.BindPhone)

				r.Get("/scenarios", h.ListScenarios)
				r.Get("/scenarios/{scenarioID}", h.GetScenario)
				r.Get("/categories", h.ListCategories)
				r.Get("/categories/{categoryID}", h.GetCategory)
				r.Get("/trims", h.ListTrims)
				r.Get("/trims/{trimID}", h.GetTrim)

				r.Get("/homepage", h.GetHomepage)
				r.Get("/contact-us", h.GetContactUs)
				r.Get("/faqs", h.ListFAQs)

				r.Route("/favorites", func(r chi.Router) {
					r.Post("/", h.AddFavorite)
					r.Get("/", h.ListFavorites)
					r.Delete("/{trimID}", h.RemoveFavorite)
				})

				r.Post("/messages", h.CreateMessage)
				r.Get("/messages", h.ListOwnMessages)

				r.Get("/upload-token", h.IssueUploadToken)
			})
		})
	})

	return r
}

// HealthCheck returns the health status
// @Summary Health Check
// @Description Checks if the service is up and running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "openlot",
	})
}

// pageParams parses limit/offset query parameters with sane bounds.
func pageParams(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func respondList(w http.ResponseWriter, items any, total int) {
	respondJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
