package main

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/events"
	"github.com/JailtonJunior94/devkit-go/pkg/observability/fake"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFiberApp() (*fiber.App, *demoFiberRouter) {
	provider := fake.NewProvider()
	obs := actionlog.Wrap(provider, provider.Logger(), &noopAppender{})
	rt := &demoFiberRouter{obs: obs, events: events.NewEventDispatcher()}
	app := fiber.New()
	rt.Register(app)
	return app, rt
}

func TestFiberHealthCheckReturnsOK(t *testing.T) {
	app, _ := newTestFiberApp()

	req := httptest.NewRequest("GET", "/health-check", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestFiberGetOrderRejectsEmptyID(t *testing.T) {
	app, _ := newTestFiberApp()

	req := httptest.NewRequest("GET", "/orders/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.NotEqual(t, fiber.StatusOK, resp.StatusCode)
}

func TestFiberGetOrderReturnsRequestedID(t *testing.T) {
	app, _ := newTestFiberApp()

	req := httptest.NewRequest("GET", "/orders/42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestFiberCreateOrderAcceptsValidBody(t *testing.T) {
	app, _ := newTestFiberApp()

	req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"id":"order-1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
