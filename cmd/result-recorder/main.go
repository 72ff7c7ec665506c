package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/healthportal/internal/handlers"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	portalHandlers *handlers.Handlers
	once           sync.Once
	initErr        error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Triggered by the predictions Pub/Sub topic.
	functions.CloudEvent("RecordPredictionEvent", recordPredictionEvent)
}

// main is required by the Go Functions Framework.
func main() {}

// recordPredictionEvent is the Cloud Function entry point.
func recordPredictionEvent(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		portalHandlers, initErr = handlers.NewFromEnv(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}
	return portalHandlers.RecordPredictionEvent(ctx, e)
}
