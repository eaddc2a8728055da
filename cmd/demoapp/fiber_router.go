package main

import (
	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/actionlog/errorcode"
	"github.com/JailtonJunior94/devkit-go/pkg/events"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"

	"github.com/gofiber/fiber/v2"
)

// demoFiberRouter is demoRouter's Fiber twin: same three routes, same
// action-logging behavior, registered on a *fiber.App instead of a
// chi.Router (§6.1's "both chi and fiber variants are kept").
type demoFiberRouter struct {
	obs    observability.Observability
	events events.EventDispatcher
}

func (rt *demoFiberRouter) Register(app *fiber.App) {
	app.Get("/health-check", rt.healthCheck)
	app.Get("/orders/:id", rt.getOrder)
	app.Post("/orders", rt.createOrder)
}

func (rt *demoFiberRouter) healthCheck(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func (rt *demoFiberRouter) getOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		rt.obs.Logger().Warn(c.UserContext(), "missing order id", observability.String("error_code", "BAD_REQUEST"))
		return c.SendStatus(fiber.StatusBadRequest)
	}

	return c.JSON(fiber.Map{"id": id, "status": "pending"})
}

func (rt *demoFiberRouter) createOrder(c *fiber.Ctx) error {
	var body struct {
		ID string `json:"id"`
	}
	if err := c.BodyParser(&body); err != nil {
		exc := actionlog.NewException(actionlog.SeverityWarn, "invalid request body").WithCode(errorcode.BadRequest).WithSource(err)
		rt.obs.Logger().Warn(c.UserContext(), exc.Error(), observability.String("error_code", exc.Code))
		return c.SendStatus(fiber.StatusBadRequest)
	}

	rt.obs.Logger().Info(c.UserContext(), "context", observability.String("order_id", body.ID))

	if err := rt.events.Dispatch(c.UserContext(), orderCreatedEvent{orderID: body.ID}); err != nil {
		rt.obs.Logger().Warn(c.UserContext(), "order.created subscriber failed", observability.Error(err))
	}

	return c.SendStatus(fiber.StatusCreated)
}
