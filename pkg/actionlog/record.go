package actionlog

import (
	"encoding/json"
	"time"
)

// Result is the highest severity observed during an action.
type Result int

const (
	ResultOK Result = iota
	ResultWarn
	ResultError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "OK"
	case ResultWarn:
		return "WARN"
	case ResultError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders Result as the wire strings used by §6 (Record JSON).
func (r Result) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// Record is an immutable, fully-populated Action Log Record, produced once
// per action by Collector.Close and handed to exactly one Appender.
type Record struct {
	ID           string            `json:"id"`
	Date         time.Time         `json:"date"`
	Action       string            `json:"action"`
	Result       Result            `json:"result"`
	RefID        *string           `json:"ref_id,omitempty"`
	ErrorCode    *string           `json:"error_code,omitempty"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	Context      []mapEntry[string] `json:"-"`
	Stats        []mapEntry[uint64] `json:"-"`
	Trace        *string           `json:"trace,omitempty"`
}

// ContextMap returns Context as a plain map for callers that don't need
// insertion order (e.g. JSON export, where object key order is irrelevant).
func (r Record) ContextMap() map[string]string {
	out := make(map[string]string, len(r.Context))
	for _, e := range r.Context {
		out[e.Key] = e.Value
	}
	return out
}

// StatsMap returns Stats as a plain map, see ContextMap.
func (r Record) StatsMap() map[string]uint64 {
	out := make(map[string]uint64, len(r.Stats))
	for _, e := range r.Stats {
		out[e.Key] = e.Value
	}
	return out
}

// MarshalJSON renders context/stats as plain JSON objects (the ordered-map
// wrapper only matters for internal accumulation, not the wire format).
func (r Record) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID           string            `json:"id"`
		Date         time.Time         `json:"date"`
		Action       string            `json:"action"`
		Result       Result            `json:"result"`
		RefID        *string           `json:"ref_id,omitempty"`
		ErrorCode    *string           `json:"error_code,omitempty"`
		ErrorMessage *string           `json:"error_message,omitempty"`
		Context      map[string]string `json:"context"`
		Stats        map[string]uint64 `json:"stats"`
		Trace        *string           `json:"trace,omitempty"`
	}
	w := wire{
		ID:           r.ID,
		Date:         r.Date,
		Action:       r.Action,
		Result:       r.Result,
		RefID:        r.RefID,
		ErrorCode:    r.ErrorCode,
		ErrorMessage: r.ErrorMessage,
		Context:      r.ContextMap(),
		Stats:        r.StatsMap(),
		Trace:        r.Trace,
	}
	return json.Marshal(w)
}
