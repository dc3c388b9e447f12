package handlers

import (
	"net/http"

	"github.com/linkmind/linkmind/internal/httpserver/deps"
	"github.com/linkmind/linkmind/internal/logger"
)

// Sweep runs one due-reminder sweep pass on demand. This is the external
// trigger path (ops, or a platform cron hitting the endpoint); the
// advisory lock inside the sweeper makes concurrent triggers harmless.
func Sweep(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := d.Sweeper.Run(r.Context())
		if err != nil {
			d.Logger.Error("sweep trigger failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "sweep failed")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
