package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"
	"github.com/JailtonJunior94/devkit-go/pkg/observability/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestObservability() observability.Observability {
	provider := fake.NewProvider()
	return actionlog.Wrap(provider, provider.Logger(), &noopAppender{})
}

func TestHTTPSearchIndexPutsDocumentByID(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody wireRecord

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	index, err := newHTTPSearchIndex(newTestObservability(), server.URL, "action-log-records")
	require.NoError(t, err)
	defer index.Close()

	err = index.Index(context.Background(), wireRecord{ID: "rec-1", Action: "order.create"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/action-log-records/_doc/rec-1", gotPath)
	assert.Equal(t, "rec-1", gotBody.ID)
}

func TestHTTPSearchIndexReturnsErrorOnNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	index, err := newHTTPSearchIndex(newTestObservability(), server.URL, "action-log-records")
	require.NoError(t, err)
	defer index.Close()

	err = index.Index(context.Background(), wireRecord{ID: "rec-1"})
	assert.Error(t, err)
}
