package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jababox/jababox/internal/logger"
	"github.com/jababox/jababox/pkg/api/auth"
	"github.com/jababox/jababox/pkg/api/handlers"
	apimiddleware "github.com/jababox/jababox/pkg/api/middleware"
	"github.com/jababox/jababox/pkg/blob"
	"github.com/jababox/jababox/pkg/compress"
	"github.com/jababox/jababox/pkg/storage"
	"github.com/jababox/jababox/pkg/storage/store"
)

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET  /health - Liveness probe
//   - GET  /health/ready - Readiness probe
//   - POST /api/v1/accounts/register - Account registration
//   - POST /api/v1/auth/login - Authentication
//   - POST /api/v1/auth/refresh - Token refresh
//   - GET  /api/v1/accounts/me - Account info and quota usage
//   - POST /api/v1/accounts/me/password - Change password
//   - PUT  /api/v1/accounts/me/plan - Change quota plan
//   - GET  /api/v1/storage - List directories
//   - POST /api/v1/storage - Create directory
//   - GET/PUT/DELETE /api/v1/storage/{dir} - Directory details/rename/delete
//   - POST /api/v1/storage/{dir}/files - Upload (compress=true deflates)
//   - GET/PUT/DELETE /api/v1/storage/{dir}/files/{file} - Download/rename/delete
func NewRouter(config Config, registry *storage.Registry, coordinator *storage.Coordinator, metadata store.Store, blobs blob.Store, codec compress.Codec, jwtService *auth.JWTService) http.Handler {
	if codec == nil {
		codec = compress.NewDeflate()
	}
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	healthHandler := handlers.NewHealthHandler(metadata, blobs)
	authHandler := handlers.NewAuthHandler(registry, jwtService)
	accountHandler := handlers.NewAccountHandler(registry, coordinator)
	directoryHandler := handlers.NewDirectoryHandler(registry, coordinator)
	fileHandler := handlers.NewFileHandler(registry, coordinator, codec, config.MaxUploadBytes.Int64())

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/accounts/register", accountHandler.Register)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.JWTAuth(jwtService))

			r.Route("/accounts/me", func(r chi.Router) {
				r.Get("/", accountHandler.Me)
				r.Post("/password", accountHandler.ChangePassword)
				r.Put("/plan", accountHandler.ChangePlan)
			})

			r.Route("/storage", func(r chi.Router) {
				r.Get("/", directoryHandler.List)
				r.Post("/", directoryHandler.Create)

				r.Route("/{dir}", func(r chi.Router) {
					r.Get("/", directoryHandler.Get)
					r.Put("/", directoryHandler.Rename)
					r.Delete("/", directoryHandler.Delete)

					r.Route("/files", func(r chi.Router) {
						r.Post("/", fileHandler.Upload)
						r.Route("/{file}", func(r chi.Router) {
							r.Get("/", fileHandler.Download)
							r.Put("/", fileHandler.Rename)
							r.Delete("/", fileHandler.Delete)
						})
					})
				})
			})
		})
	})

	return r
}

// requestLogger logs each request with its id, status, and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chimiddleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		// Log healthcheck requests at DEBUG to avoid polluting logs in k8s
		if isHealthPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}

func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}
