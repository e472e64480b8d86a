// internal/wire/wire.go
package wire

import (
	"net/http"
	"strings"

	"service-marketplace/internal/adaptor"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/realtime"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/middleware"
	"service-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router *chi.Mux
}

// Deps are the process-level adapters built in main.
type Deps struct {
	usecase.Infra
	Stream  realtime.Subscriber
	Limiter *middleware.RateLimiter
	// UploadsDir is served under the public base URL when set (local storage only)
	UploadsDir string
}

// Wiring menginisialisasi semua dependencies
func Wiring(repo *repository.Repository, deps Deps, config *utils.Config, logger *zap.Logger) *App {
	// Initialize services dan handlers
	service := usecase.NewService(repo, deps.Infra, config, logger)
	handler := adaptor.NewHandler(service, deps.Stream, logger)

	// Setup router
	router := setupRouter(handler, repo, deps, config, logger)

	return &App{
		Router: router,
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	deps Deps,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	if deps.Limiter != nil {
		r.Use(middleware.RateLimit(deps.Limiter, logger))
	}

	// Apply routes
	wireAuth(r, handler.Auth, repo, logger)
	wireUser(r, handler.User, repo, logger)
	wireCatalog(r, handler.Catalog)
	wireProvider(r, handler.Provider, handler.Subscription, handler.Review, repo, config.Payment.WebhookSecret, logger)
	wireBooking(r, handler.Booking, handler.Review, repo, logger)
	wireChat(r, handler.Chat, repo, logger)
	wireReview(r, handler.Review, repo, logger)
	wireNotification(r, handler.Notification, repo, logger)

	if deps.UploadsDir != "" {
		wireUploads(r, deps.UploadsDir, config.Storage.PublicBaseURL)
	}

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

// wireUploads serves locally stored attachments as static files.
func wireUploads(r chi.Router, dir, baseURL string) {
	prefix := "/" + strings.Trim(baseURL, "/")
	if prefix == "/" {
		prefix = "/uploads"
	}

	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.Get(prefix+"/*", fs.ServeHTTP)
}
