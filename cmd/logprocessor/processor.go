package main

import (
	"context"

	"github.com/JailtonJunior94/devkit-go/pkg/dispatcher"
	"github.com/JailtonJunior94/devkit-go/pkg/linq"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

// processorState is the Dispatcher's shared S: the search backend and the
// observability handle used for logging indexing failures.
type processorState struct {
	obs   observability.Observability
	index SearchIndex
}

// indexBatch is the action-log topic's bulk handler: each record in the
// batch is decoded and written to the search index; a single bad record
// does not fail the whole batch, it's logged and skipped so a poison
// message can't stall the topic.
func indexBatch(ctx context.Context, state processorState, msgs []dispatcher.Message[wireRecord]) error {
	decoded := linq.Map(msgs, func(m dispatcher.Message[wireRecord]) wireRecord {
		record, err := m.Payload()
		if err != nil {
			state.obs.Logger().Warn(ctx, "logprocessor: failed to decode record",
				observability.Error(err))
		}
		return record
	})

	// A decode failure leaves record.ID empty; filter those out rather than
	// indexing a document with no id.
	records := linq.Filter(decoded, func(r wireRecord) bool { return r.ID != "" })

	for _, record := range records {
		indexRecord(ctx, state, record)
	}
	return nil
}

// indexRecord writes one decoded record to the search index, logging and
// swallowing a failure rather than propagating it, since one bad document
// should not stall the rest of the batch.
func indexRecord(ctx context.Context, state processorState, record wireRecord) {
	if err := state.index.Index(ctx, record); err != nil {
		state.obs.Logger().Warn(ctx, "logprocessor: failed to index record",
			observability.String("record_id", record.ID),
			observability.Error(err))
	}
}
