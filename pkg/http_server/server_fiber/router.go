package serverfiber

import "github.com/gofiber/fiber/v2"

// Router defines the contract for registering routes on the Fiber app,
// the Fiber analog of chi_server.Router.
type Router interface {
	Register(app *fiber.App)
}
