package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shelterfinder/shelterfinder/internal/handlers"
	"github.com/shelterfinder/shelterfinder/internal/ws"
)

type Handlers struct {
	Shelter *handlers.ShelterHandler
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
}

// Setup wires the API route table. protect guards bearer-only routes;
// authLimit throttles the credential endpoints.
func Setup(app *fiber.App, h Handlers, hub *ws.Hub, protect, authLimit fiber.Handler) {
	api := app.Group("/api")

	shelters := api.Group("/shelters")
	shelters.Get("/", h.Shelter.List)
	shelters.Post("/", h.Shelter.Create)
	shelters.Get("/:id", h.Shelter.Get)
	shelters.Put("/:id", h.Shelter.Update)
	shelters.Delete("/:id", h.Shelter.Delete)

	users := api.Group("/users")
	users.Post("/register", authLimit, h.Auth.Register)
	users.Get("/all", protect, h.User.ListUsers)
	users.Get("/bookmarks", protect, h.User.ListBookmarks)
	users.Post("/bookmarks/:shelterId", protect, h.User.AddBookmark)
	users.Delete("/bookmarks/:shelterId", protect, h.User.RemoveBookmark)

	auth := api.Group("/auth")
	auth.Post("/login", authLimit, h.Auth.Login)
	auth.Get("/user", protect, h.Auth.Me)

	app.Use("/ws", ws.UpgradeGate())
	app.Get("/ws", hub.Handler())
}
