package main

import (
	"context"

	"github.com/JailtonJunior94/devkit-go/pkg/events"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

const orderCreatedEventType = "order.created"

// orderCreatedEvent is dispatched after an order is accepted, exercising
// pkg/events' in-process pub-sub alongside the action-log pipeline's own
// append-only history: the two serve different purposes, one a live fan-out
// to interested handlers, the other a durable record of what happened.
type orderCreatedEvent struct {
	orderID string
}

func (e orderCreatedEvent) GetEventType() string { return orderCreatedEventType }
func (e orderCreatedEvent) GetPayload() any      { return e.orderID }

// orderCreatedLogger stands in for a downstream subscriber (a notification
// or analytics service) that reacts to orders without sitting in the HTTP
// request path itself.
type orderCreatedLogger struct {
	obs observability.Observability
}

func (h *orderCreatedLogger) Handle(ctx context.Context, event events.Event) error {
	orderID, _ := event.GetPayload().(string)
	h.obs.Logger().Info(ctx, "order.created event observed", observability.String("order_id", orderID))
	return nil
}

// newOrderEvents builds the demo's dispatcher with its single subscriber
// already registered.
func newOrderEvents(obs observability.Observability) (events.EventDispatcher, error) {
	dispatcher := events.NewEventDispatcher()
	if err := dispatcher.Register(orderCreatedEventType, &orderCreatedLogger{obs: obs}); err != nil {
		return nil, err
	}
	return dispatcher, nil
}
