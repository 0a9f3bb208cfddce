package controllers

import (
	"net/http"
	"time"

	"github.com/alanwtom/travora-backend/api/responses"
	"github.com/alanwtom/travora-backend/api/validators"
	"github.com/alanwtom/travora-backend/internal/profiles"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
)

// mutePresets maps the accepted duration shorthands to concrete windows.
var mutePresets = map[string]time.Duration{
	"1h":  time.Hour,
	"8h":  8 * time.Hour,
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
}

type muteBody struct {
	Duration string     `json:"duration" validate:"omitempty,oneof=1h 8h 24h 7d"`
	Until    *time.Time `json:"until"`
}

type togglesBody struct {
	MarketingEnabled *bool `json:"marketingEnabled"`
	PushEnabled      *bool `json:"pushEnabled"`
	EmailEnabled     *bool `json:"emailEnabled"`
}

// GetSettings returns the profile-level notification settings.
func GetSettings(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profiles service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// SetMute enables the master mute, optionally bounded by a preset duration or
// an explicit expiry. Passing both is rejected; passing neither mutes until
// the user unmutes.
func SetMute(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profiles service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body muteBody
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if body.Duration != "" && body.Until != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "duration and until are mutually exclusive"))
			return
		}

		params := profiles.MuteParams{Muted: true}
		if body.Duration != "" {
			window, ok := mutePresets[body.Duration]
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown mute duration"))
				return
			}
			until := time.Now().Add(window)
			params.Until = &until
		} else if body.Until != nil {
			params.Until = body.Until
		}

		profile, err := svc.SetMute(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// Unmute clears the master mute.
func Unmute(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profiles service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.SetMute(r.Context(), userID, profiles.MuteParams{Muted: false})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// SetToggles patches the global marketing/push/email switches. Absent fields
// are left untouched.
func SetToggles(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profiles service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body togglesBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.MarketingEnabled == nil && body.PushEnabled == nil && body.EmailEnabled == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "at least one toggle required"))
			return
		}

		profile, err := svc.SetToggles(r.Context(), userID, profiles.GlobalToggles{
			MarketingEnabled: body.MarketingEnabled,
			PushEnabled:      body.PushEnabled,
			EmailEnabled:     body.EmailEnabled,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
