package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkmind/linkmind/internal/httpserver/deps"
	"github.com/linkmind/linkmind/internal/httpserver/handlers"
	"github.com/linkmind/linkmind/internal/httpserver/mw"
)

func init() { Register(registerSweep) }

func registerSweep(r chi.Router, d deps.Deps) {
	r.With(mw.RequireCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).
		Post("/internal/sweep", handlers.Sweep(d))
}
