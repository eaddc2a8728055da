package main

import (
	"context"
	"testing"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/observability/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopAppender struct{}

func (noopAppender) Append(context.Context, actionlog.Record) {}

type fakeSearchIndex struct {
	indexed []wireRecord
	failOn  string
}

func (f *fakeSearchIndex) Index(_ context.Context, record wireRecord) error {
	if record.ID == f.failOn {
		return assert.AnError
	}
	f.indexed = append(f.indexed, record)
	return nil
}

func (f *fakeSearchIndex) Close() error { return nil }

func newTestState(index SearchIndex) processorState {
	provider := fake.NewProvider()
	obs := actionlog.Wrap(provider, provider.Logger(), &noopAppender{})
	return processorState{obs: obs, index: index}
}

func TestIndexRecordWritesThroughToIndex(t *testing.T) {
	index := &fakeSearchIndex{}
	state := newTestState(index)

	indexRecord(context.Background(), state, wireRecord{ID: "abc123", Action: "order.create"})

	require.Len(t, index.indexed, 1)
	assert.Equal(t, "abc123", index.indexed[0].ID)
}

func TestIndexRecordSwallowsIndexFailure(t *testing.T) {
	index := &fakeSearchIndex{failOn: "bad-id"}
	state := newTestState(index)

	assert.NotPanics(t, func() {
		indexRecord(context.Background(), state, wireRecord{ID: "bad-id"})
	})
	assert.Empty(t, index.indexed)
}

func TestRecordStatLogsCount(t *testing.T) {
	index := &fakeSearchIndex{}
	state := newTestState(index)

	assert.NotPanics(t, func() {
		recordStat(context.Background(), state, statEvent{Name: "orders_created", Count: 3})
	})
}
