package align

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "http://localhost:8765"
	defaultTimeout     = 2 * time.Minute
	transcriptionsPath = "/transcriptions?async=false"

	// CaseSuccess marks a word the aligner located in the audio.
	CaseSuccess = "success"
)

// Client performs forced alignment of a transcript against audio.
type Client interface {
	Align(ctx context.Context, req Request) (Response, error)
}

// Request carries one audio segment and its transcript.
type Request struct {
	// Audio is a complete WAV-framed payload.
	Audio []byte
	// Transcript is the plain text spoken in the audio.
	Transcript string
}

// Response mirrors the subset of the aligner's JSON output the adjuster
// needs.
type Response struct {
	Words []AlignedWord `json:"words"`
}

// AlignedWord is one word-level alignment result. Start and End are in
// seconds relative to the submitted audio.
type AlignedWord struct {
	Case  string  `json:"case"`
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Success reports whether the aligner located this word.
func (w AlignedWord) Success() bool { return w.Case == CaseSuccess }

// HTTPClient calls a forced-alignment HTTP service.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// Option customizes an HTTP alignment client.
type Option func(*HTTPClient)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(hc *HTTPClient) {
		if client != nil {
			hc.http = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(hc *HTTPClient) {
		if timeout > 0 {
			hc.http.Timeout = timeout
		}
	}
}

// NewHTTPClient constructs a client for a forced-alignment service.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	client := &HTTPClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	if strings.TrimSpace(baseURL) != "" {
		client.baseURL = strings.TrimRight(baseURL, "/")
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Align uploads the audio and transcript and returns per-word results.
func (c *HTTPClient) Align(ctx context.Context, req Request) (Response, error) {
	if c == nil {
		return Response{}, fmt.Errorf("align client: nil client")
	}
	if len(req.Audio) == 0 {
		return Response{}, fmt.Errorf("align client: empty audio payload")
	}
	if strings.TrimSpace(req.Transcript) == "" {
		return Response{}, fmt.Errorf("align client: empty transcript")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	field, err := writer.CreateFormFile("audio", "segment.wav")
	if err != nil {
		return Response{}, fmt.Errorf("align client: create audio field: %w", err)
	}
	if _, err := field.Write(req.Audio); err != nil {
		return Response{}, fmt.Errorf("align client: write audio: %w", err)
	}
	if err := writer.WriteField("transcript", req.Transcript); err != nil {
		return Response{}, fmt.Errorf("align client: write transcript field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Response{}, fmt.Errorf("align client: close multipart writer: %w", err)
	}

	endpoint := c.baseURL + transcriptionsPath
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Response{}, fmt.Errorf("align client: build request: %w", err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(request)
	if err != nil {
		return Response{}, fmt.Errorf("align client: http request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("align client: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("align client: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed Response
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return Response{}, fmt.Errorf("align client: decode response: %w", err)
	}
	return parsed, nil
}
