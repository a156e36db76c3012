package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gift-store-api/internal/config"
	"gift-store-api/internal/handler"
	"gift-store-api/internal/middleware"
	"gift-store-api/internal/model"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Certificate *handler.CertificateHandler
	Tag         *handler.TagHandler
	Audit       *handler.AuditHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", h.Auth.Signup)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/refresh", h.Auth.Refresh)
			// Logout stays unauthenticated: a stale or malformed token
			// must still yield success.
			auth.Post("/logout", h.Auth.Logout)
		})

		api.With(authMiddleware.RequireAuth).Get("/users/me", h.User.Me)
		api.With(authMiddleware.RequireAuth, authMiddleware.RequireAuthority(model.PermAdminRead)).Get("/users", h.User.List)
		api.With(authMiddleware.RequireAuth, authMiddleware.RequireAuthority(model.PermAdminRead)).Get("/audit", h.Audit.List)

		api.Route("/certificates", func(certs chi.Router) {
			certs.Get("/", h.Certificate.List)
			certs.Get("/{id}", h.Certificate.Get)
			certs.With(authMiddleware.RequireAuth, authMiddleware.RequireAuthority(model.PermAdminCreate)).Post("/", h.Certificate.Create)
			certs.With(authMiddleware.RequireAuth, authMiddleware.RequireAuthority(model.PermAdminUpdate)).Patch("/{id}", h.Certificate.Patch)
			certs.With(authMiddleware.RequireAuth, authMiddleware.RequireAuthority(model.PermAdminDelete)).Delete("/{id}", h.Certificate.Delete)
		})

		api.Route("/tags", func(tags chi.Router) {
			tags.Get("/", h.Tag.List)
			tags.Get("/{id}", h.Tag.Get)
			tags.With(authMiddleware.RequireAuth, authMiddleware.RequireAuthority(model.PermAdminCreate)).Post("/", h.Tag.Create)
			tags.With(authMiddleware.RequireAuth, authMiddleware.RequireAuthority(model.PermAdminDelete)).Delete("/{id}", h.Tag.Delete)
		})
	})

	return r
}
