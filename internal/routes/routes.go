package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"framepruner/internal/config"
	"framepruner/internal/handler"
	"framepruner/internal/logger"
	"framepruner/internal/middleware"
	"framepruner/internal/repository"
	"framepruner/internal/websocket"
)

// SetupRoutes registers the progress stream, run history API, metrics and
// log endpoints, and wraps the mux with token authentication. runs and
// verdicts may be nil when run history is disabled.
func SetupRoutes(hub *websocket.Hub, runs repository.RunRepository, verdicts repository.VerdictRepository, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/progress", handler.ProgressWebsocketHandler(hub, logger))
	mux.HandleFunc("/api/runs", handler.GetRunsHandler(runs, logger))
	mux.HandleFunc("/api/runs/verdicts", handler.GetRunVerdictsHandler(runs, verdicts, logger))

	// Operational endpoints
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", handler.HealthHandler)

	// Log endpoints
	for _, name := range []string{"info", "warning", "error"} {
		file := name + ".log"
		mux.HandleFunc("/logs/"+name, handler.ShowLogsHandler(logger, file))
		mux.HandleFunc("/logs/"+name+"/clear", handler.ClearLogsHandler(logger, file))
	}

	return middleware.TokenAuth(cfg.APIToken)(mux)
}
