// Package actionlog correlates every log event, span, statistic and error
// produced while a logical "action" is running into one Action Log Record.
//
// An action is opened with Enter, which assigns a 16-hex action id, derives
// a context.Context carrying a Collector, and guarantees the Collector is
// closed and handed to an Appender exactly once, regardless of how the body
// returns. Code running inside the action logs through the observability
// facade as usual (pkg/observability); Wrap decorates that facade so every
// event and span reaching it is routed to the owning action's Collector
// instead of (or in addition to) the console.
package actionlog
