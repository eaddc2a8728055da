package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"

	"github.com/segmentio/kafka-go"
)

// singleHandler dispatches one message at a time, each under its own
// "message" action, with per-key ordering: messages sharing a key within the
// same poll batch are chained and run sequentially in arrival order on one
// goroutine, while differently-keyed (and unkeyed) messages run concurrently.
// This mirrors the MessageNode chaining in the original's kafka consumer.
type singleHandler[S any, T any] struct {
	fn func(ctx context.Context, state S, msg Message[T]) error
}

func (h *singleHandler[S, T]) dispatch(ctx context.Context, obs observability.Observability, state S, topic string, raw []kafka.Message) {
	chains := make(map[string][]kafka.Message)
	var unkeyed []kafka.Message
	var order []string

	for _, m := range raw {
		if m.Key == nil || len(m.Key) == 0 {
			unkeyed = append(unkeyed, m)
			continue
		}
		key := string(m.Key)
		if _, seen := chains[key]; !seen {
			order = append(order, key)
		}
		chains[key] = append(chains[key], m)
	}

	done := make(chan struct{}, len(unkeyed)+len(order))

	for _, m := range unkeyed {
		go func(m kafka.Message) {
			defer func() { done <- struct{}{} }()
			h.runOne(ctx, obs, state, topic, m)
		}(m)
	}

	for _, key := range order {
		chain := chains[key]
		go func(chain []kafka.Message) {
			defer func() { done <- struct{}{} }()
			for _, m := range chain {
				h.runOne(ctx, obs, state, topic, m)
			}
		}(chain)
	}

	for i := 0; i < len(unkeyed)+len(order); i++ {
		<-done
	}
}

func (h *singleHandler[S, T]) runOne(ctx context.Context, obs observability.Observability, state S, topic string, m kafka.Message) {
	msg := toMessage[T](m)
	var refID *string
	if id, ok := actionlog.CurrentID(ctx); ok {
		refID = &id
	}

	_ = actionlog.Enter(ctx, obs, "message", refID, func(ctx context.Context) error {
		obs.Logger().Info(ctx, "dispatching message", observability.String("topic", topic))
		return h.fn(ctx, state, msg)
	})
}

// bulkHandler runs the entire batch under a single "message" action, per
// §4.5's bulk-path rule.
type bulkHandler[S any, T any] struct {
	fn func(ctx context.Context, state S, msgs []Message[T]) error
}

func (h *bulkHandler[S, T]) dispatch(ctx context.Context, obs observability.Observability, state S, topic string, raw []kafka.Message) {
	msgs := make([]Message[T], 0, len(raw))
	for _, m := range raw {
		msgs = append(msgs, toMessage[T](m))
	}

	var oldest *time.Time
	for _, m := range raw {
		if m.Time.IsZero() {
			continue
		}
		if oldest == nil || m.Time.Before(*oldest) {
			t := m.Time
			oldest = &t
		}
	}

	var refID *string
	if id, ok := actionlog.CurrentID(ctx); ok {
		refID = &id
	}

	_ = actionlog.Enter(ctx, obs, "message", refID, func(ctx context.Context) error {
		obs.Logger().Info(ctx, "context", observability.String("topic", topic))
		obs.Logger().Info(ctx, "stats", observability.Int("message_count", len(msgs)))
		if oldest != nil {
			obs.Logger().Debug(ctx, fmt.Sprintf("lag source: oldest message at %s", oldest.String()))
		}
		return h.fn(ctx, state, msgs)
	})
}
