package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alanwtom/travora-backend/api/responses"
	"github.com/alanwtom/travora-backend/api/validators"
	"github.com/alanwtom/travora-backend/internal/preferences"
	"github.com/alanwtom/travora-backend/pkg/enums"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
)

type updatePreferenceBody struct {
	Push  *bool `json:"push" validate:"required"`
	Email *bool `json:"email" validate:"required"`
	InApp *bool `json:"inApp" validate:"required"`
}

// ListPreferences returns per-category channel flags, defaults included.
func ListPreferences(svc preferences.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preferences service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"preferences": prefs})
	}
}

// UpdatePreference upserts the channel flags for one category.
func UpdatePreference(svc preferences.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preferences service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseNotificationCategory(chi.URLParam(r, "category"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		var body updatePreferenceBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pref, err := svc.Update(r.Context(), userID, category, preferences.ChannelFlags{
			Push:  *body.Push,
			Email: *body.Email,
			InApp: *body.InApp,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pref)
	}
}
