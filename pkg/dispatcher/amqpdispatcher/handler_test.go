package amqpdispatcher

import (
	"context"
	"sync"
	"testing"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"
	"github.com/JailtonJunior94/devkit-go/pkg/observability/fake"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopAppender struct{}

func (noopAppender) Append(context.Context, actionlog.Record) {}

func newTestObservability() observability.Observability {
	provider := fake.NewProvider()
	return actionlog.Wrap(provider, provider.Logger(), &noopAppender{})
}

func TestMessagePayloadDecodesBody(t *testing.T) {
	m := Message[struct {
		OrderID string `json:"order_id"`
	}]{raw: []byte(`{"order_id":"abc"}`)}

	payload, err := m.Payload()
	require.NoError(t, err)
	assert.Equal(t, "abc", payload.OrderID)
}

func TestMessagePayloadReturnsExceptionOnInvalidJSON(t *testing.T) {
	m := Message[struct{}]{raw: []byte(`not json`)}

	_, err := m.Payload()
	require.Error(t, err)
}

func TestKeyOfReturnsNilWithoutHeader(t *testing.T) {
	d := amqp.Delivery{Headers: amqp.Table{}}
	assert.Nil(t, keyOf(d))
}

func TestKeyOfReturnsHeaderValue(t *testing.T) {
	d := amqp.Delivery{Headers: amqp.Table{keyHeader: "order-1"}}
	key := keyOf(d)
	require.NotNil(t, key)
	assert.Equal(t, "order-1", *key)
}

func TestSingleHandlerDispatchRunsKeyedDeliveriesInOrder(t *testing.T) {
	obs := newTestObservability()

	var mu sync.Mutex
	var seen []int

	h := &singleHandler[struct{}, struct{ N int }]{
		fn: func(ctx context.Context, state struct{}, msg Message[struct{ N int }]) error {
			payload, err := msg.Payload()
			require.NoError(t, err)
			mu.Lock()
			seen = append(seen, payload.N)
			mu.Unlock()
			return nil
		},
	}

	deliveries := []amqp.Delivery{
		{Headers: amqp.Table{keyHeader: "k"}, Body: []byte(`{"N":1}`)},
		{Headers: amqp.Table{keyHeader: "k"}, Body: []byte(`{"N":2}`)},
		{Headers: amqp.Table{keyHeader: "k"}, Body: []byte(`{"N":3}`)},
	}

	h.dispatch(context.Background(), obs, struct{}{}, "orders", deliveries)

	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestBulkHandlerDispatchPassesWholeBatch(t *testing.T) {
	obs := newTestObservability()

	var received []Message[struct{ N int }]
	h := &bulkHandler[struct{}, struct{ N int }]{
		fn: func(ctx context.Context, state struct{}, msgs []Message[struct{ N int }]) error {
			received = msgs
			return nil
		},
	}

	deliveries := []amqp.Delivery{
		{Body: []byte(`{"N":1}`)},
		{Body: []byte(`{"N":2}`)},
	}

	h.dispatch(context.Background(), obs, struct{}{}, "orders", deliveries)

	require.Len(t, received, 2)
}
