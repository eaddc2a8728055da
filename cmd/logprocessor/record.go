package main

import "time"

// wireRecord decodes an Action Log Record exactly as it appears on the wire
// (§6 "Action Log Record on the wire"). It is a standalone type rather than
// actionlog.Record: Record's Context/Stats fields are tagged json:"-" and
// only populate via its own MarshalJSON, so decoding straight into Record
// would silently leave them empty. wireRecord mirrors the wire shape
// instead, so the search index gets the fields it actually needs.
type wireRecord struct {
	ID           string            `json:"id"`
	Date         time.Time         `json:"date"`
	Action       string            `json:"action"`
	Result       string            `json:"result"`
	RefID        *string           `json:"ref_id,omitempty"`
	ErrorCode    *string           `json:"error_code,omitempty"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	Context      map[string]string `json:"context"`
	Stats        map[string]uint64 `json:"stats"`
}
