package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/careclinic/care-scheduling/internal/scheduling"
)

type RouterConfig struct {
	Service     *scheduling.Service
	PgPool      *pgxpool.Pool
	Redis       *redis.Client
	AdminSecret string
	Env         string
	Version     string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Patient endpoints
	r.Post("/patients", registerHandler(cfg.Service))
	r.Post("/login", loginHandler(cfg.Service))
	r.Post("/patients/{id}/delete", deleteAccountHandler(cfg.Service))
	r.Get("/patients/{id}/appointments", patientAppointmentsHandler(cfg.Service))

	r.Get("/slots", availableSlotsHandler(cfg.Service))
	r.Post("/appointments", bookHandler(cfg.Service))
	r.Post("/appointments/{id}/cancel", cancelHandler(cfg.Service))

	// Administrator endpoints, gated on the shared admin secret
	r.Group(func(admin chi.Router) {
		admin.Use(AdminSecretMiddleware(cfg.AdminSecret))

		admin.Get("/admin/slots", allSlotsHandler(cfg.Service))
		admin.Post("/admin/slots", publishSlotHandler(cfg.Service))
		admin.Delete("/admin/slots/{id}", deleteSlotHandler(cfg.Service))
		admin.Get("/admin/appointments", allAppointmentsHandler(cfg.Service))
		admin.Get("/admin/appointments/summary", statusSummaryHandler(cfg.Service))
		admin.Post("/admin/appointments/{id}/complete", completeHandler(cfg.Service))
	})

	return r
}
