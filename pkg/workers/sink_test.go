package workers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/workers"
)

func TestNewHTTPSink(t *testing.T) {
	t.Parallel()

	t.Run("empty endpoint", func(t *testing.T) {
		t.Parallel()
		_, err := workers.NewHTTPSink("")
		assert.ErrorIs(t, err, workers.ErrEndpointEmpty)
	})

	t.Run("valid endpoint", func(t *testing.T) {
		t.Parallel()
		sink, err := workers.NewHTTPSink("http://ingest.internal/objects")
		require.NoError(t, err)
		assert.NotNil(t, sink)
	})
}

func TestHTTPSinkIngest(t *testing.T) {
	t.Parallel()

	t.Run("posts body and metadata headers", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var gotMethod, gotBody string
		var gotHeader http.Header
		var gotLength int64

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			gotMethod = r.Method
			gotBody = string(body)
			gotHeader = r.Header.Clone()
			gotLength = r.ContentLength
			mu.Unlock()
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		sink, err := workers.NewHTTPSink(srv.URL)
		require.NoError(t, err)

		payload := "feature drift snapshot"
		err = sink.Ingest(context.Background(), workers.IngestObject{
			OrganizationID: "org-1",
			ModelID:        "model-3",
			Bucket:         "ml-artifacts",
			Key:            "org-1/model-3/predictions-0.parquet",
			Size:           int64(len(payload)),
			Body:           strings.NewReader(payload),
		})
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, payload, gotBody)
		assert.Equal(t, int64(len(payload)), gotLength)
		assert.Equal(t, "application/octet-stream", gotHeader.Get("Content-Type"))
		assert.Equal(t, "org-1", gotHeader.Get("X-Organization-ID"))
		assert.Equal(t, "model-3", gotHeader.Get("X-Model-ID"))
		assert.Equal(t, "ml-artifacts", gotHeader.Get("X-Bucket"))
		assert.Equal(t, "org-1/model-3/predictions-0.parquet", gotHeader.Get("X-Object-Key"))
	})

	t.Run("non-2xx response is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "pipeline overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		sink, err := workers.NewHTTPSink(srv.URL)
		require.NoError(t, err)

		err = sink.Ingest(context.Background(), workers.IngestObject{
			Key:  "org-1/model-3/predictions-0.parquet",
			Body: strings.NewReader("payload"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("unreachable endpoint is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		sink, err := workers.NewHTTPSink(srv.URL)
		require.NoError(t, err)

		err = sink.Ingest(context.Background(), workers.IngestObject{
			Key:  "org-1/model-3/predictions-0.parquet",
			Body: strings.NewReader("payload"),
		})
		require.Error(t, err)
	})
}

func TestSinkFunc(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("sink closed")
	var got workers.IngestObject
	sink := workers.SinkFunc(func(ctx context.Context, object workers.IngestObject) error {
		got = object
		return wantErr
	})

	err := sink.Ingest(context.Background(), workers.IngestObject{Key: "a"})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, "a", got.Key)
}
