package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingTransport records every outbound request and answers 200, so the
// sink can be tested against the real client without a bucket.
type capturingTransport struct {
	requests []*http.Request
	bodies   [][]byte
}

func (t *capturingTransport) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		payload, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		t.bodies = append(t.bodies, payload)
	}
	t.requests = append(t.requests, req)
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func newCapturedClient(transport *capturingTransport) *s3.Client {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.AnonymousCredentials{},
		HTTPClient:  transport,
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://s3.test")
	})
}

func TestS3SinkUploadsOneObjectPerRecord(t *testing.T) {
	transport := &capturingTransport{}
	sink := NewS3SinkWithClient(newCapturedClient(transport), "audit-bucket", "optimizer-audit")

	rec := &Record{
		ID:        "run-1",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		ModelHash: "abc123",
		Solver: SolverReport{
			Status: "optimal", StatusCode: 7, ObjectiveValue: 10, SolveTimeMs: 1.5,
		},
		ResponseStatus: "optimal",
	}
	require.NoError(t, sink.Write(context.Background(), rec))

	require.Len(t, transport.requests, 1)
	req := transport.requests[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.True(t, strings.HasPrefix(req.URL.Path, "/audit-bucket/optimizer-audit/"))
	assert.True(t, strings.HasSuffix(req.URL.Path, ".json"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	require.Len(t, transport.bodies, 1)
	var got Record
	require.NoError(t, json.Unmarshal(transport.bodies[0], &got))
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, "abc123", got.ModelHash)
	assert.Equal(t, "optimal", got.ResponseStatus)
}
