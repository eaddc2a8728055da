package scheduler

import "context"

// Job is the unit of work a schedule fires (§4.6). It receives the shared
// application state handed to Scheduler.Start, the same way Dispatcher
// handlers receive it. Any error it returns is recorded against the
// freshly-opened "job" action and never propagates back into the
// scheduler's own loop.
type Job[S any] func(ctx context.Context, state S) error
