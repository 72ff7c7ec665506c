package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/healthportal/internal/handlers"
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

	functions.HTTP("HandleHealthReport", handleHealthReport)
}

// main is required by the Go Functions Framework.
func main() {}

// handleHealthReport renders the caller's health record PDF.
func handleHealthReport(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		portalHandlers, initErr = handlers.NewFromEnv(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: portal initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	portalHandlers.HealthReport(w, r)
}
