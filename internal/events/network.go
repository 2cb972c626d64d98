package events

import "time"

// MakeNetworkRequest is emitted just before the transport is invoked.
// Context carries the request correlation ID.
type MakeNetworkRequest struct {
	ArtifactID string
	QueryText  string
	Variables  map[string]any
}

// ReceivedNetworkResponse is emitted after a response was processed
// successfully and written to the store.
type ReceivedNetworkResponse struct {
	ArtifactID string
	Duration   time.Duration
}

// ReceivedNetworkError is emitted when the transport rejects or the
// response envelope carries errors. No store write happened.
type ReceivedNetworkError struct {
	ArtifactID string
	Err        error
	Duration   time.Duration
}
