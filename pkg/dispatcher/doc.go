// Package dispatcher is the Message Dispatcher component. It owns a single
// poll loop against Kafka, groups the messages fetched in one poll by topic,
// and hands each group to the handler registered for that topic — either a
// per-message handler (ordered per key, concurrent across keys) or a
// per-batch handler (one action wraps the whole group). See Dispatcher.Run
// for the poll/dispatch/commit cycle.
package dispatcher
