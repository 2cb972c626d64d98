// Package transport defines the injected wire function the runtime uses
// for network round trips, plus an HTTP implementation of it. The runtime
// never constructs a transport on its own.
package transport

import (
	"context"
)

// GraphError is one entry of the response error envelope.
type GraphError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphError) Error() string { return e.Message }

// Response is the graph query response envelope. A non-empty Errors list
// means failure regardless of transport-level success.
type Response struct {
	Data   map[string]any `json:"data"`
	Errors []GraphError   `json:"errors,omitempty"`
}

// Func takes query text plus variables and returns the response envelope.
type Func func(ctx context.Context, queryText string, variables map[string]any) (*Response, error)

// Error wraps a transport-level failure: the call itself failed before an
// envelope could be produced.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "transport: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
