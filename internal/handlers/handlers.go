package handlers

import (
	"PartsKeeper/internal/config"
	"PartsKeeper/internal/metrics"
	"PartsKeeper/internal/middleware"
	"PartsKeeper/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	partService *service.PartService,
	auditService *service.AuditService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithMetrics)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	partHandler := NewPartHandler(partService, userService, logger, config)
	logHandler := NewLogHandler(auditService, userService, logger)

	// User routes
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/logout", userHandler.Logout)
	r.Post("/api/user/test", userHandler.Status)

	// Parts routes
	r.Route("/api/parts", func(r chi.Router) {
		r.Get("/", partHandler.List)
		r.Post("/", partHandler.Create)
		r.Get("/export", partHandler.Export)
		r.Get("/expired", partHandler.Expired)
		r.Put("/{index}", partHandler.Renew)
		r.Delete("/{index}", partHandler.Delete)
	})

	// Logs (admin)
	r.Get("/api/logs", logHandler.List)

	r.Handle("/metrics", metrics.Handler())

	return &Handler{Router: r}
}
