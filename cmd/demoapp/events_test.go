package main

import (
	"context"
	"testing"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/observability/fake"

	"github.com/stretchr/testify/require"
)

func TestNewOrderEventsDispatchesToRegisteredLogger(t *testing.T) {
	provider := fake.NewProvider()
	obs := actionlog.Wrap(provider, provider.Logger(), &noopAppender{})

	dispatcher, err := newOrderEvents(obs)
	require.NoError(t, err)

	err = dispatcher.Dispatch(context.Background(), orderCreatedEvent{orderID: "order-1"})
	require.NoError(t, err)
}
