package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkmind/linkmind/internal/httpserver/deps"
	"github.com/linkmind/linkmind/internal/httpserver/handlers"
	"github.com/linkmind/linkmind/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/bookmarks", func(r chi.Router) {
		r.Use(mw.UserAuth(d.AuthSecret, d.Logger))

		r.Post("/", handlers.CreateBookmark(d))
		r.Get("/", handlers.ListBookmarks(d))
		r.Get("/{bookmarkID}", handlers.GetBookmark(d))
		r.Patch("/{bookmarkID}", handlers.UpdateBookmark(d))
		r.Delete("/{bookmarkID}", handlers.DeleteBookmark(d))
	})
}
