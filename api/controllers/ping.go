package controllers

import (
	"net/http"
	"strconv"

	"github.com/eps-tools/storefront-backend/api/middleware"
	"github.com/eps-tools/storefront-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "admin", "status": "ok"}
		if id := middleware.UserIDFromContext(r.Context()); id > 0 {
			payload["user_id"] = strconv.FormatInt(id, 10)
		}
		responses.WriteSuccess(w, payload)
	}
}
