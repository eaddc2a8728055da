package main

import (
	"context"

	"github.com/JailtonJunior94/devkit-go/pkg/dispatcher"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

// statEvent is one ad-hoc numeric measurement on the stat topic, grounded
// on the original's log_processor/kafka/stat_handler.rs: a name and a
// count, independent of the action-log topic.
type statEvent struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// handleStat is the second topic binding on the same Dispatcher
// (SPEC_FULL.md §1.2), demonstrating two simultaneous single-message
// handlers registered on one Dispatcher instance.
func handleStat(ctx context.Context, state processorState, msg dispatcher.Message[statEvent]) error {
	event, err := msg.Payload()
	if err != nil {
		return err
	}
	recordStat(ctx, state, event)
	return nil
}

// recordStat records event through the "stats" magic message so it lands in
// the enclosing "message" action's stats map (the Dispatcher already opens
// that action around handleStat's call).
func recordStat(ctx context.Context, state processorState, event statEvent) {
	state.obs.Logger().Info(ctx, "stats", observability.Int64(event.Name, event.Count))
}
