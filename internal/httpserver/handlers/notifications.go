package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkmind/linkmind/internal/httpserver/deps"
	"github.com/linkmind/linkmind/internal/httpserver/mw"
	"github.com/linkmind/linkmind/internal/logger"
	"github.com/linkmind/linkmind/internal/notify"
	"github.com/linkmind/linkmind/internal/tasks"
)

type fireReminderResponse struct {
	Outcome string `json:"outcome"`
}

// FireReminder is the callback the external scheduler invokes when a
// reminder task fires. It always answers 200 for outcomes the scheduler
// must not retry (sent, skipped, not_found, failed delivery); only a
// store fault gets a 5xx so the task is retried.
func FireReminder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p tasks.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if p.UserID == "" || p.BookmarkID == "" {
			writeError(w, http.StatusBadRequest, "user_id and bookmark_id are required")
			return
		}

		outcome, err := d.Controller.HandleFire(r.Context(), p.UserID, p.BookmarkID)
		if err != nil {
			d.Logger.Error("fire callback failed",
				logger.String("bookmark_id", p.BookmarkID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to process reminder")
			return
		}

		writeJSON(w, http.StatusOK, fireReminderResponse{Outcome: string(outcome)})
	}
}

type sendNotificationRequest struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// SendNotification pushes an arbitrary message to the caller's own
// devices.
func SendNotification(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sendTo(d, w, r, mw.UserID(r.Context()))
	}
}

// SendNotificationTo pushes a message to another user's devices. This is
// the service-to-service surface and is gated by the internal CIDR
// allow-list, not user auth.
func SendNotificationTo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "userID is required")
			return
		}
		sendTo(d, w, r, userID)
	}
}

func sendTo(d deps.Deps, w http.ResponseWriter, r *http.Request, userID string) {
	var req sendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "title and body are required")
		return
	}

	result, err := d.Notifier.Send(r.Context(), userID, req.Title, req.Body, req.Data)
	if err != nil {
		d.Logger.Error("notification send failed",
			logger.String("user_id", userID),
			logger.Error(err))
		writeError(w, http.StatusBadGateway, "delivery service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type testNotificationResponse struct {
	Devices int           `json:"devices"`
	Result  notify.Result `json:"result"`
}

// TestNotification sends a test push to the caller's own devices so a
// user can verify their token registration end to end.
func TestNotification(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())

		tokens, err := d.Store.DeviceTokens(r.Context(), userID)
		if err != nil {
			d.Logger.Error("failed to list device tokens", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list devices")
			return
		}
		if len(tokens) == 0 {
			writeError(w, http.StatusNotFound, "no registered devices")
			return
		}

		result, err := d.Notifier.Send(r.Context(), userID, "Test notification",
			"Push delivery is working", map[string]string{"type": "test"})
		if err != nil {
			d.Logger.Error("test notification failed", logger.Error(err))
			writeError(w, http.StatusBadGateway, "delivery service unavailable")
			return
		}

		writeJSON(w, http.StatusOK, testNotificationResponse{
			Devices: len(tokens),
			Result:  result,
		})
	}
}
