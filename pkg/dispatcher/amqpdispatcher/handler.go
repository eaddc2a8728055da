package amqpdispatcher

import (
	"context"
	"fmt"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"

	amqp "github.com/rabbitmq/amqp091-go"
)

const keyHeader = "key"

func keyOf(d amqp.Delivery) *string {
	v, ok := d.Headers[keyHeader]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func toMessage[T any](d amqp.Delivery) Message[T] {
	headers := make(map[string]string, len(d.Headers))
	for k, v := range d.Headers {
		if s, ok := v.(string); ok {
			headers[k] = s
		}
	}
	return Message[T]{Key: keyOf(d), Headers: headers, raw: d.Body}
}

// singleHandler mirrors dispatcher.singleHandler: messages sharing a
// "key" header value within the same batch run in a sequential chain, everything
// else runs concurrently.
type singleHandler[S any, T any] struct {
	fn func(ctx context.Context, state S, msg Message[T]) error
}

func (h *singleHandler[S, T]) dispatch(ctx context.Context, obs observability.Observability, state S, queue string, deliveries []amqp.Delivery) {
	chains := make(map[string][]amqp.Delivery)
	var unkeyed []amqp.Delivery
	var order []string

	for _, d := range deliveries {
		key := keyOf(d)
		if key == nil {
			unkeyed = append(unkeyed, d)
			continue
		}
		if _, seen := chains[*key]; !seen {
			order = append(order, *key)
		}
		chains[*key] = append(chains[*key], d)
	}

	done := make(chan struct{}, len(unkeyed)+len(order))

	for _, d := range unkeyed {
		go func(d amqp.Delivery) {
			defer func() { done <- struct{}{} }()
			h.runOne(ctx, obs, state, queue, d)
		}(d)
	}
	for _, key := range order {
		chain := chains[key]
		go func(chain []amqp.Delivery) {
			defer func() { done <- struct{}{} }()
			for _, d := range chain {
				h.runOne(ctx, obs, state, queue, d)
			}
		}(chain)
	}

	for i := 0; i < len(unkeyed)+len(order); i++ {
		<-done
	}
}

func (h *singleHandler[S, T]) runOne(ctx context.Context, obs observability.Observability, state S, queue string, d amqp.Delivery) {
	msg := toMessage[T](d)
	var refID *string
	if id, ok := actionlog.CurrentID(ctx); ok {
		refID = &id
	}

	_ = actionlog.Enter(ctx, obs, "message", refID, func(ctx context.Context) error {
		obs.Logger().Info(ctx, "dispatching message", observability.String("queue", queue))
		return h.fn(ctx, state, msg)
	})
}

// bulkHandler mirrors dispatcher.bulkHandler: the whole batch runs under a
// single "message" action.
type bulkHandler[S any, T any] struct {
	fn func(ctx context.Context, state S, msgs []Message[T]) error
}

func (h *bulkHandler[S, T]) dispatch(ctx context.Context, obs observability.Observability, state S, queue string, deliveries []amqp.Delivery) {
	msgs := make([]Message[T], 0, len(deliveries))
	for _, d := range deliveries {
		msgs = append(msgs, toMessage[T](d))
	}

	var refID *string
	if id, ok := actionlog.CurrentID(ctx); ok {
		refID = &id
	}

	_ = actionlog.Enter(ctx, obs, "message", refID, func(ctx context.Context) error {
		obs.Logger().Info(ctx, fmt.Sprintf("dispatching message batch from %s", queue),
			observability.Int("message_count", len(msgs)))
		return h.fn(ctx, state, msgs)
	})
}
