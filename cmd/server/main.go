package main

import (
	"log/slog"
	"net/http"
	"os"

	"tanaclip/internal/api"
	"tanaclip/internal/core"
	"tanaclip/internal/httpx"
	"tanaclip/internal/tana"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	fetcher := httpx.NewFetcher(httpx.WithUserAgent(os.Getenv("CLIPPER_USER_AGENT")))
	publisher := tana.NewClient(os.Getenv("TANA_ENDPOINT"))

	clipper := core.NewClipper(fetcher, fetcher, publisher)
	if os.Getenv("TANA_DIAGNOSE_PUBLISH") == "true" {
		slog.Info("per-node publish diagnostics enabled")
		clipper = clipper.WithDiagnostics(true)
	}

	srv := api.NewServer(clipper)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "port", port)
	if err := http.ListenAndServe(":"+port, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
