package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alanwtom/travora-backend/api/controllers"
	analyticscontrollers "github.com/alanwtom/travora-backend/api/controllers/analytics"
	"github.com/alanwtom/travora-backend/api/middleware"
	"github.com/alanwtom/travora-backend/internal/analytics"
	"github.com/alanwtom/travora-backend/internal/devices"
	"github.com/alanwtom/travora-backend/internal/notifications"
	"github.com/alanwtom/travora-backend/internal/preferences"
	"github.com/alanwtom/travora-backend/internal/profiles"
	"github.com/alanwtom/travora-backend/pkg/auth/session"
	"github.com/alanwtom/travora-backend/pkg/bigquery"
	"github.com/alanwtom/travora-backend/pkg/config"
	"github.com/alanwtom/travora-backend/pkg/db"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisPinger redis.Pinger,
	idempotencyStore redis.IdempotencyStore,
	bigqueryClient bigquery.Pinger,
	sessions session.AccessSessionChecker,
	notificationsService notifications.Service,
	devicesService devices.Service,
	preferencesService preferences.Service,
	profilesService profiles.Service,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger, bigqueryClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/validate", controllers.PublicValidate(logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
			r.Get("/{notificationId}/history", controllers.NotificationHistory(notificationsService, logg))
			r.Delete("/{notificationId}", controllers.DeleteNotification(notificationsService, logg))
			r.Delete("/", controllers.DeleteAllNotifications(notificationsService, logg))
		})

		r.Route("/v1/devices", func(r chi.Router) {
			r.Post("/", controllers.RegisterDevice(devicesService, logg))
			r.Delete("/", controllers.RevokeDevice(devicesService, logg))
		})

		r.Route("/v1/preferences", func(r chi.Router) {
			r.Get("/", controllers.ListPreferences(preferencesService, logg))
			r.Put("/{category}", controllers.UpdatePreference(preferencesService, logg))
		})

		r.Route("/v1/settings", func(r chi.Router) {
			r.Get("/", controllers.GetSettings(profilesService, logg))
			r.Patch("/", controllers.SetToggles(profilesService, logg))
			r.Post("/mute", controllers.SetMute(profilesService, logg))
			r.Post("/unmute", controllers.Unmute(profilesService, logg))
		})

		r.Route("/v1/analytics", func(r chi.Router) {
			r.Get("/delivery", analyticscontrollers.DeliveryAnalytics(analyticsService, logg))
		})
	})

	return r
}
