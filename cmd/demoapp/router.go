package main

import (
	"encoding/json"
	"net/http"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/actionlog/errorcode"
	"github.com/JailtonJunior94/devkit-go/pkg/actionlog/httpmiddleware"
	"github.com/JailtonJunior94/devkit-go/pkg/events"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"
	"github.com/JailtonJunior94/devkit-go/pkg/responses"

	"github.com/go-chi/chi/v5"
)

// demoRouter exercises the "http" action middleware with a couple of
// trivial routes and the health-check path the middleware carves out.
type demoRouter struct {
	obs    observability.Observability
	events events.EventDispatcher
}

func (rt *demoRouter) Register(router chi.Router) {
	router.Get(httpmiddleware.HealthCheckPath, rt.healthCheck)
	router.Get("/orders/{id}", rt.getOrder)
	router.Post("/orders", rt.createOrder)
}

func (rt *demoRouter) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (rt *demoRouter) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		rt.obs.Logger().Warn(r.Context(), "missing order id", observability.String("error_code", errorcode.BadRequest))
		responses.Error(w, http.StatusBadRequest, "missing order id")
		return
	}

	responses.JSON(w, http.StatusOK, map[string]string{"id": id, "status": "pending"})
}

func (rt *demoRouter) createOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		exc := actionlog.NewException(actionlog.SeverityWarn, "invalid request body").WithCode(errorcode.BadRequest).WithSource(err)
		rt.obs.Logger().Warn(r.Context(), exc.Error(), observability.String("error_code", exc.Code))
		responses.ErrorWithDetails(w, http.StatusBadRequest, "invalid request body", exc.Code)
		return
	}

	rt.obs.Logger().Info(r.Context(), "context", observability.String("order_id", body.ID))

	if err := rt.events.Dispatch(r.Context(), orderCreatedEvent{orderID: body.ID}); err != nil {
		rt.obs.Logger().Warn(r.Context(), "order.created subscriber failed", observability.Error(err))
	}

	w.WriteHeader(http.StatusCreated)
}
