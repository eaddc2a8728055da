package actionlog

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// Appender consumes completed Action Log Records (§4.4). Append is called
// exactly once per completed action; implementations that are not naturally
// safe for concurrent use must serialize internally, since the Router
// invokes Append from whatever goroutine closed the action.
type Appender interface {
	Append(ctx context.Context, record Record)
}

// ConsoleAppender prints a one-line summary per record, and the full trace
// blob to the error stream when the result is not OK (§4.4).
type ConsoleAppender struct {
	Out io.Writer
	Err io.Writer
}

// NewConsoleAppender returns a ConsoleAppender writing to stdout/stderr.
func NewConsoleAppender() *ConsoleAppender {
	return &ConsoleAppender{Out: os.Stdout, Err: os.Stderr}
}

func (a *ConsoleAppender) Append(_ context.Context, record Record) {
	out := a.Out
	if out == nil {
		out = os.Stdout
	}

	var elapsedNanos uint64
	for _, e := range record.Stats {
		if e.Key == "elapsed" {
			elapsedNanos = e.Value
		}
	}

	fmt.Fprintf(out, "%s | %s | %s | id=%s | elapsed=%s",
		record.Date.Format(time.RFC3339Nano), record.Result, record.Action, record.ID,
		time.Duration(elapsedNanos))
	if record.RefID != nil {
		fmt.Fprintf(out, " | ref_id=%s", *record.RefID)
	}

	keys := make([]string, 0, len(record.Context))
	for _, e := range record.Context {
		keys = append(keys, e.Key)
	}
	sort.Strings(keys) // stable, deterministic summary line; full order lives in Context
	ctx := record.ContextMap()
	for _, k := range keys {
		fmt.Fprintf(out, " | %s=%s", k, ctx[k])
	}
	fmt.Fprintln(out)

	if record.Result != ResultOK && record.Trace != nil {
		errOut := a.Err
		if errOut == nil {
			errOut = os.Stderr
		}
		fmt.Fprintln(errOut, *record.Trace)
	}
}
