package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkmind/linkmind/internal/httpserver/deps"
	"github.com/linkmind/linkmind/internal/httpserver/handlers"
	"github.com/linkmind/linkmind/internal/httpserver/mw"
)

func init() { Register(registerDevices) }

func registerDevices(r chi.Router, d deps.Deps) {
	r.Route("/devices", func(r chi.Router) {
		r.Use(mw.UserAuth(d.AuthSecret, d.Logger))

		r.Post("/", handlers.RegisterDevice(d))
		r.Delete("/", handlers.RemoveDevice(d))
	})
}
