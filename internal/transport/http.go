package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Options holds HTTP transport settings.
type Options struct {
	// Client is the HTTP client to use. Defaults to a client with a 30s
	// timeout.
	Client *http.Client

	// Headers are added to every request (auth tokens and the like).
	Headers http.Header

	// MaxBodyBytes limits the size of the response body. 0 means unlimited.
	MaxBodyBytes int64
}

type Option func(*Options)

func WithClient(c *http.Client) Option { return func(o *Options) { o.Client = c } }
func WithMaxBodyBytes(n int64) Option  { return func(o *Options) { o.MaxBodyBytes = n } }
func WithHeader(key, value string) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = http.Header{}
		}
		o.Headers.Add(key, value)
	}
}

type httpRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// NewHTTP returns a Func that posts {query, variables} as JSON to endpoint
// and decodes the {data, errors} envelope.
func NewHTTP(endpoint string, opts ...Option) Func {
	op := Options{Client: &http.Client{Timeout: 30 * time.Second}}
	for _, f := range opts {
		f(&op)
	}
	return func(ctx context.Context, queryText string, variables map[string]any) (*Response, error) {
		body, err := json.Marshal(httpRequest{Query: queryText, Variables: variables})
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		for k, vs := range op.Headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		res, err := op.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()
		if res.StatusCode < 200 || res.StatusCode > 299 {
			return nil, fmt.Errorf("unexpected status %d from %s", res.StatusCode, endpoint)
		}
		reader := io.Reader(res.Body)
		if op.MaxBodyBytes > 0 {
			reader = io.LimitReader(res.Body, op.MaxBodyBytes)
		}
		var envelope Response
		if err := json.NewDecoder(reader).Decode(&envelope); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return &envelope, nil
	}
}
