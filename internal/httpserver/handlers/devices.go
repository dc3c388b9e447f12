package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/linkmind/linkmind/internal/httpserver/deps"
	"github.com/linkmind/linkmind/internal/httpserver/mw"
	"github.com/linkmind/linkmind/internal/logger"
)

type deviceTokenRequest struct {
	Token string `json:"token"`
}

// RegisterDevice adds a push device token for the caller. Registering the
// same token twice is a no-op.
func RegisterDevice(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())

		var req deviceTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			writeError(w, http.StatusBadRequest, "token is required")
			return
		}

		if err := d.Store.RegisterDeviceToken(r.Context(), userID, req.Token); err != nil {
			d.Logger.Error("failed to register device token", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to register device")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveDevice drops a push device token for the caller.
func RemoveDevice(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())

		var req deviceTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			writeError(w, http.StatusBadRequest, "token is required")
			return
		}

		if err := d.Store.RemoveDeviceToken(r.Context(), userID, req.Token); err != nil {
			d.Logger.Error("failed to remove device token", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to remove device")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
