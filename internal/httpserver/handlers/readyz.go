package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/linkmind/linkmind/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Redis string `json:"redis"`
}

// Readyz reports whether the instance can serve traffic. Redis is the
// only hard dependency: the scheduler gateway and push delivery degrade
// gracefully, but without the store nothing works.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.RedisClient == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Redis: "not initialized"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := d.RedisClient.Ping(ctx).Err(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Redis: "unreachable"})
			return
		}

		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Redis: "ok"})
	}
}
