package controllers

import (
	"net/http"

	"github.com/alanwtom/travora-backend/api/responses"
	"github.com/alanwtom/travora-backend/pkg/bigquery"
	"github.com/alanwtom/travora-backend/pkg/config"
	"github.com/alanwtom/travora-backend/pkg/db"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
	"github.com/alanwtom/travora-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Travora-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every backing dependency answers a ping.
// Pingers may be nil when the binary runs without that dependency wired.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, cache redis.Pinger, warehouse bigquery.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Travora-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		probe := func(name string, ping func() error) {
			if ping == nil {
				checks[name] = "skipped"
				return
			}
			if err := ping(); err != nil {
				healthy = false
				checks[name] = "down"
				if logg != nil {
					logg.Error(logg.WithField(r.Context(), "dependency", name), "readiness probe failed", err)
				}
				return
			}
			checks[name] = "up"
		}

		ctx := r.Context()
		if database != nil {
			probe("database", func() error { return database.Ping(ctx) })
		} else {
			probe("database", nil)
		}
		if cache != nil {
			probe("redis", func() error { return cache.Ping(ctx) })
		} else {
			probe("redis", nil)
		}
		if warehouse != nil {
			probe("bigquery", func() error { return warehouse.Ping(ctx) })
		} else {
			probe("bigquery", nil)
		}

		if !healthy {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable"))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
