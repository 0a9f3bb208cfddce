package controllers

import (
	"net/http"

	"github.com/alanwtom/travora-backend/api/middleware"
	"github.com/alanwtom/travora-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
			payload["user_id"] = userID
		}
		responses.WriteSuccess(w, payload)
	}
}
