// Package zaplog attaches a structured-logging subscriber to the
// runtime's network lifecycle events.
package zaplog

import (
	"context"

	eventbus "github.com/hanpama/graphcache/internal/eventbus"
	events "github.com/hanpama/graphcache/internal/events"
	reqid "github.com/hanpama/graphcache/internal/reqid"

	"go.uber.org/zap"
)

// Attach subscribes logger to the network lifecycle events on the global
// bus and returns a detach function.
func Attach(logger *zap.Logger) (detach func()) {
	unsub := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.MakeNetworkRequest) {
			rid, _ := reqid.FromContext(ctx)
			logger.Info("make network request",
				zap.String("request_id", rid),
				zap.String("artifact", e.ArtifactID),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.ReceivedNetworkResponse) {
			rid, _ := reqid.FromContext(ctx)
			logger.Info("received network response",
				zap.String("request_id", rid),
				zap.String("artifact", e.ArtifactID),
				zap.Duration("duration", e.Duration),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.ReceivedNetworkError) {
			rid, _ := reqid.FromContext(ctx)
			logger.Error("received network error",
				zap.String("request_id", rid),
				zap.String("artifact", e.ArtifactID),
				zap.Duration("duration", e.Duration),
				zap.Error(e.Err),
			)
		}),
	}
	return func() {
		for _, u := range unsub {
			u()
		}
	}
}
