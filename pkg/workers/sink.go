package workers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// IngestObject is one object handed to the ingestion pipeline. Body is only
// valid for the duration of the Ingest call.
type IngestObject struct {
	OrganizationID string
	ModelID        string
	Bucket         string
	Key            string
	Size           int64
	Body           io.Reader
}

// Sink receives objects read from storage. Implementations must tolerate
// seeing the same object twice: an interrupted scan is retried from the top.
type Sink interface {
	Ingest(ctx context.Context, object IngestObject) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, object IngestObject) error

func (f SinkFunc) Ingest(ctx context.Context, object IngestObject) error {
	return f(ctx, object)
}

// HTTPSink streams objects to the ingestion pipeline's HTTP endpoint. Object
// metadata travels in headers so the body can be forwarded untouched.
type HTTPSink struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSink creates a sink posting to the given endpoint.
func NewHTTPSink(endpoint string, opts ...SinkOption) (*HTTPSink, error) {
	if endpoint == "" {
		return nil, ErrEndpointEmpty
	}

	options := &sinkOptions{
		client: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(options)
	}

	return &HTTPSink{endpoint: endpoint, client: options.client}, nil
}

// SinkOption is a functional option for configuring an HTTPSink
type SinkOption func(*sinkOptions)

type sinkOptions struct {
	client *http.Client
}

// WithSinkHTTPClient sets a custom HTTP client, e.g. with a different timeout
func WithSinkHTTPClient(client *http.Client) SinkOption {
	return func(o *sinkOptions) {
		if client != nil {
			o.client = client
		}
	}
}

// Ingest posts one object. Any non-2xx response is an error so the scan is
// retried later.
func (s *HTTPSink) Ingest(ctx context.Context, object IngestObject) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, object.Body)
	if err != nil {
		return fmt.Errorf("build ingest request for %q: %w", object.Key, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Organization-ID", object.OrganizationID)
	req.Header.Set("X-Model-ID", object.ModelID)
	req.Header.Set("X-Bucket", object.Bucket)
	req.Header.Set("X-Object-Key", object.Key)
	if object.Size > 0 {
		req.ContentLength = object.Size
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post object %q: %w", object.Key, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingest endpoint returned status %d for object %q", resp.StatusCode, object.Key)
	}
	return nil
}
