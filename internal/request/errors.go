package request

import (
	"fmt"

	transport "github.com/hanpama/graphcache/internal/transport"
)

// GraphResponseError reports a response envelope that resolved but carried
// a non-empty errors list. The original error payload is preserved as the
// cause chain; no data was normalized and nothing was retained.
type GraphResponseError struct {
	Errors []transport.GraphError
}

func (e *GraphResponseError) Error() string {
	if len(e.Errors) == 0 {
		return "graph response error"
	}
	if len(e.Errors) == 1 {
		return "graph response error: " + e.Errors[0].Message
	}
	return fmt.Sprintf("graph response error: %s (and %d more)", e.Errors[0].Message, len(e.Errors)-1)
}

func (e *GraphResponseError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, ge := range e.Errors {
		out[i] = ge
	}
	return out
}

// UnsupportedConfigurationError reports a fetch configuration the runtime
// rejects synchronously, before any transport call.
type UnsupportedConfigurationError struct {
	Reason string
}

func (e *UnsupportedConfigurationError) Error() string {
	return "unsupported configuration: " + e.Reason
}
