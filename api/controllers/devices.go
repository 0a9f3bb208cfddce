package controllers

import (
	"net/http"

	"github.com/alanwtom/travora-backend/api/responses"
	"github.com/alanwtom/travora-backend/api/validators"
	"github.com/alanwtom/travora-backend/internal/devices"
	pkgerrors "github.com/alanwtom/travora-backend/pkg/errors"
	"github.com/alanwtom/travora-backend/pkg/logger"
)

type registerDeviceBody struct {
	Token    string `json:"token" validate:"required,min=1,max=512"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

type revokeDeviceBody struct {
	Token string `json:"token" validate:"required,min=1,max=512"`
}

// RegisterDevice stores a push token for the authenticated user.
func RegisterDevice(svc devices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "devices service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body registerDeviceBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		device, err := svc.Register(r.Context(), devices.RegisterParams{
			UserID:   userID,
			Token:    body.Token,
			Platform: body.Platform,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, device)
	}
}

// RevokeDevice marks a push token inactive.
func RevokeDevice(svc devices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "devices service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body revokeDeviceBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Revoke(r.Context(), userID, body.Token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "revoked"})
	}
}
