// Package main is the log exporter demo (SPEC_FULL.md §1.2), mirroring the
// original's log_exporter Kafka→bucket pipeline: it consumes the action-log
// topic in bulk and writes each batch to one ULID-named file under a local
// directory standing in for an object-storage bucket.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JailtonJunior94/devkit-go/pkg/dispatcher"
	"github.com/JailtonJunior94/devkit-go/pkg/vos"
)

// bucketExporter writes each batch of raw action-log records to one file.
type bucketExporter struct {
	dir string
}

func newBucketExporter(dir string) (*bucketExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logexporter: failed to create export directory: %w", err)
	}
	return &bucketExporter{dir: dir}, nil
}

// export writes msgs as a single JSON-lines file named by a fresh ULID, so
// filenames sort lexicographically by creation time the same way the
// original's object keys do. Records are copied through as raw JSON rather
// than decoded into actionlog.Record and re-encoded: Record's MarshalJSON
// expands context/stats from its internal ordered-map representation, but
// nothing populates that representation back from the wire form, so a
// decode-then-encode round trip would silently drop both fields.
func (e *bucketExporter) export(ctx context.Context, state struct{}, msgs []dispatcher.Message[json.RawMessage]) error {
	records := make([]json.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		raw, decodeErr := m.Payload()
		if decodeErr != nil {
			continue
		}
		records = append(records, raw)
	}
	return e.writeBatch(records)
}

// writeBatch writes records as JSON-lines to one file named by a fresh
// ULID, so filenames sort lexicographically by creation time the same way
// the original's object keys do.
func (e *bucketExporter) writeBatch(records []json.RawMessage) error {
	id, err := vos.NewULID()
	if err != nil {
		return fmt.Errorf("logexporter: failed to generate export id: %w", err)
	}

	path := filepath.Join(e.dir, id.String()+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("logexporter: failed to create export file %s: %w", path, err)
	}
	defer f.Close()

	for _, raw := range records {
		if _, writeErr := f.Write(append(raw, '\n')); writeErr != nil {
			return fmt.Errorf("logexporter: failed to write record to %s: %w", path, writeErr)
		}
	}
	return nil
}
