package routes

import (
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/linkmind/linkmind/internal/httpserver/deps"
	"github.com/linkmind/linkmind/internal/httpserver/handlers"
	"github.com/linkmind/linkmind/internal/httpserver/mw"
	"github.com/linkmind/linkmind/internal/tasks"
)

func init() { Register(registerNotifications) }

func registerNotifications(r chi.Router, d deps.Deps) {
	r.Route("/notifications", func(r chi.Router) {
		// Fire callback: invoked by the external scheduler, authenticated
		// with the per-task credential instead of a user token. The path
		// is owned by the tasks package since the gateway bakes it into
		// every task it creates.
		r.With(mw.SchedulerAuth(d.SchedulerSecret, d.CallbackBaseURL, d.Logger)).
			Post(strings.TrimPrefix(tasks.CallbackPath, "/notifications"), handlers.FireReminder(d))

		r.With(mw.UserAuth(d.AuthSecret, d.Logger)).Group(func(r chi.Router) {
			r.Post("/send", handlers.SendNotification(d))
			r.Post("/test", handlers.TestNotification(d))
		})

		// Service-to-service send, restricted by source IP. Fail-closed:
		// unreachable until CIDRs are configured.
		r.With(mw.RequireCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).
			Post("/send/{userID}", handlers.SendNotificationTo(d))
	})
}
