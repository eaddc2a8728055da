package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JailtonJunior94/devkit-go/pkg/httpclient"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

// httpSearchIndex indexes records into Elasticsearch or OpenSearch over
// their shared document API (both accept `PUT /<index>/_doc/<id>`),
// mirroring the original's elasticsearch.rs/opensearch.rs pair without
// needing two separate client libraries. No Elasticsearch/OpenSearch client
// exists anywhere in the pack, so requests go through pkg/httpclient's
// ObservableClient (retry/observability transport chain) rather than a bare
// net/http.Client (see DESIGN.md).
type httpSearchIndex struct {
	baseURL string
	index   string
	client  *httpclient.ObservableClient
}

func newHTTPSearchIndex(obs observability.Observability, baseURL, index string) (*httpSearchIndex, error) {
	client, err := httpclient.NewObservableClient(obs, httpclient.WithClientTimeout(httpclient.DefaultTimeout))
	if err != nil {
		return nil, fmt.Errorf("logprocessor: failed to build search index client: %w", err)
	}
	return &httpSearchIndex{baseURL: baseURL, index: index, client: client}, nil
}

func (s *httpSearchIndex) Index(ctx context.Context, record wireRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("logprocessor: failed to encode record %s: %w", record.ID, err)
	}

	endpoint := fmt.Sprintf("%s/%s/_doc/%s", s.baseURL, s.index, url.PathEscape(record.ID))
	resp, err := s.client.Put(ctx, endpoint, bytes.NewReader(body), httpclient.WithHeader("Content-Type", "application/json"))
	if err != nil {
		return fmt.Errorf("logprocessor: failed to reach search backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("logprocessor: search backend returned status %d for record %s", resp.StatusCode, record.ID)
	}
	return nil
}

func (s *httpSearchIndex) Close() error {
	return nil
}
