package actionlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

// Level mirrors the severities the Router forwards to a Collector. There is
// no Trace level here: pkg/observability.Logger has no Trace method, so the
// "TRACE is unconditionally dropped" rule from §4.3 is enforced simply by
// never routing Debug-below calls through anything finer than Debug.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

const errorMessageMaxLen = 200

// spanState is the bookkeeping kept for a nested span while it is open.
type spanState struct {
	start time.Time
}

// Collector is a per-action stateful aggregator (§4.2). It is owned
// exclusively by the goroutine running the action body; the Router never
// hands a Collector reference across goroutines, so no internal locking is
// needed (§5 locking discipline).
type Collector struct {
	id        string
	action    string
	date      time.Time
	start     time.Time
	result    Result
	refID     *string
	errorCode *string
	errorMsg  *string
	context   *orderedMap[string]
	stats     *orderedMap[uint64]
	logs      []string
	spans     map[string]*spanState
}

// NewCollector opens a Collector for a freshly-entered action. id and
// action are required; refID is the optional inherited correlation id.
func NewCollector(id, action string, refID *string) *Collector {
	now := time.Now().UTC()
	c := &Collector{
		id:      id,
		action:  action,
		date:    now,
		start:   time.Now(),
		result:  ResultOK,
		refID:   refID,
		context: newOrderedMap[string](),
		stats:   newOrderedMap[uint64](),
		spans:   make(map[string]*spanState),
	}
	c.logs = append(c.logs, fmt.Sprintf(
		"=== action begin ===\ntype=%s\nid=%s\ndate=%s\nthread=%s",
		action, id, now.Format("2006-01-02T15:04:05.000000000Z07:00"), collectorThreadTag(c),
	))
	if refID != nil {
		c.logs = append(c.logs, "ref_id="+*refID)
	}
	return c
}

// collectorThreadTag stands in for the original's OS thread id. Go has no
// stable goroutine identifier; the Collector's own address is used instead,
// which is unique for the lifetime of the action and serves the same
// "which execution context" diagnostic purpose.
func collectorThreadTag(c *Collector) string {
	return fmt.Sprintf("goroutine-%p", c)
}

// ID returns the action id this Collector was opened with.
func (c *Collector) ID() string {
	return c.id
}

// OnSpanOpen records a nested span's entry (§4.2).
func (c *Collector) OnSpanOpen(spanName string, fields []observability.Field) {
	c.spans[spanName] = &spanState{start: time.Now()}
	var b strings.Builder
	fmt.Fprintf(&b, "[span:%s] ", spanName)
	writeFields(&b, fields)
	b.WriteString(">>>")
	c.logs = append(c.logs, b.String())
}

// OnSpanRecord records fields attached to an already-open span.
func (c *Collector) OnSpanRecord(spanName string, fields []observability.Field) {
	var b strings.Builder
	fmt.Fprintf(&b, "[span:%s] ", spanName)
	writeFields(&b, fields)
	c.logs = append(c.logs, strings.TrimRight(b.String(), " "))
}

// OnSpanClose finalizes a nested span, contributing its elapsed time and
// count to stats.
func (c *Collector) OnSpanClose(spanName string) {
	state, ok := c.spans[spanName]
	if !ok {
		return
	}
	delete(c.spans, spanName)
	elapsed := time.Since(state.start)
	c.logs = append(c.logs, fmt.Sprintf("[span:%s] elapsed=%s <<<", spanName, elapsed))
	addUint64(c.stats, spanName+"_elapsed", uint64(elapsed.Nanoseconds()))
	addUint64(c.stats, spanName+"_count", 1)
}

// OnEvent records one log event (§4.2). level is assumed already filtered
// to Debug-or-above by the caller (the Router drops Trace before this is
// reached, and this package exposes no Trace level at all).
func (c *Collector) OnEvent(level Level, target string, line int, message string, fields []observability.Field) {
	elapsed := time.Since(c.start)
	total := elapsed / time.Second
	minutes := total / 60
	seconds := total % 60
	nanos := elapsed.Nanoseconds() % int64(time.Second)

	var b strings.Builder
	fmt.Fprintf(&b, "%02d:%02d.%09d ", minutes, seconds, nanos)
	fmt.Fprintf(&b, "%s ", level)
	if target != "" {
		fmt.Fprintf(&b, "%s:%d ", target, line)
	}

	var errorCode string
	if level == LevelWarn || level == LevelError {
		for _, f := range fields {
			if f.Key == "error_code" {
				if s, ok := f.Value.(string); ok {
					errorCode = s
				}
			}
		}
		if errorCode != "" {
			fmt.Fprintf(&b, "[%s] ", errorCode)
		}

		result := ResultWarn
		if level == LevelError {
			result = ResultError
		}
		if result > c.result {
			c.result = result
			if errorCode != "" {
				c.errorCode = &errorCode
			}
			msg := truncateMessage(message)
			c.errorMsg = &msg
		}
	}

	fmt.Fprintf(&b, "%q ", message)
	writeFieldsSkipping(&b, fields, "error_code")
	c.logs = append(c.logs, strings.TrimRight(b.String(), " "))

	// Magic messages: "context" promotes every field into the context map,
	// "stats" adds every numeric field to the named accumulator (§4.2).
	switch message {
	case "context":
		for _, f := range fields {
			c.context.set(f.Key, renderFieldValue(f.Value))
		}
	case "stats":
		for _, f := range fields {
			if n, ok := toUint64(f.Value); ok {
				addUint64(c.stats, f.Key, n)
			}
		}
	}
}

// Close finalizes the Collector per §3/§4.2 and returns the completed
// Record. After Close, the Collector must not be used again.
func (c *Collector) Close() Record {
	elapsed := time.Since(c.start)
	addUint64(c.stats, "elapsed", uint64(elapsed.Nanoseconds()))

	var trace *string
	if c.result > ResultOK {
		c.logs = append(c.logs, fmt.Sprintf("elapsed=%s\n=== action end ===\n", elapsed))
		joined := strings.Join(c.logs, "\n")
		trace = &joined
	}

	return Record{
		ID:           c.id,
		Date:         c.date,
		Action:       c.action,
		Result:       c.result,
		RefID:        c.refID,
		ErrorCode:    c.errorCode,
		ErrorMessage: c.errorMsg,
		Context:      c.context.entries(),
		Stats:        c.stats.entries(),
		Trace:        trace,
	}
}

func truncateMessage(message string) string {
	if len(message) <= errorMessageMaxLen {
		return message
	}
	return message[:errorMessageMaxLen]
}

func writeFields(b *strings.Builder, fields []observability.Field) {
	writeFieldsSkipping(b, fields, "")
}

func writeFieldsSkipping(b *strings.Builder, fields []observability.Field, skip string) {
	for _, f := range fields {
		if skip != "" && f.Key == skip {
			continue
		}
		fmt.Fprintf(b, "%s=%s ", f.Key, renderFieldValue(f.Value))
	}
}

func renderFieldValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case error:
		return val.Error()
	default:
		return fmt.Sprintf("%+v", val)
	}
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case int:
		return uint64(n), true
	case int32:
		return uint64(n), true
	case int64:
		return uint64(n), true
	case uint:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case float32:
		return uint64(n), true
	case float64:
		return uint64(n), true
	default:
		return 0, false
	}
}
