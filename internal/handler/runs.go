package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"framepruner/internal/dto"
	"framepruner/internal/logger"
	"framepruner/internal/models"
	"framepruner/internal/repository"
)

// GetRunsHandler lists past runs, newest first. Query: directory, status,
// page, limit.
func GetRunsHandler(runs repository.RunRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if runs == nil {
			http.Error(w, "Run history is disabled", http.StatusServiceUnavailable)
			return
		}

		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 20)

		list, err := runs.GetAll(&models.RunFilter{
			Directory: q.Get("directory"),
			Status:    q.Get("status"),
			Limit:     limit,
			Offset:    (page - 1) * limit,
		})
		if err != nil {
			logger.Error("Failed to list runs: %v", err)
			http.Error(w, "Failed to list runs", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []models.Run{}
		}

		writeJSON(w, dto.RunsPage{Runs: list, CurrentPage: page, Limit: limit}, logger)
	}
}

// GetRunVerdictsHandler returns one run with its verdicts. Query: id,
// discarded=true to list only discarded frames.
func GetRunVerdictsHandler(runs repository.RunRepository, verdicts repository.VerdictRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if runs == nil || verdicts == nil {
			http.Error(w, "Run history is disabled", http.StatusServiceUnavailable)
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "Missing run id", http.StatusBadRequest)
			return
		}

		run, err := runs.GetByID(id)
		if err != nil {
			logger.Error("Failed to get run %s: %v", id, err)
			http.Error(w, "Failed to get run", http.StatusInternalServerError)
			return
		}
		if run == nil {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}

		discardedOnly, _ := strconv.ParseBool(r.URL.Query().Get("discarded"))
		list, err := verdicts.GetByRunID(id, discardedOnly)
		if err != nil {
			logger.Error("Failed to get verdicts of %s: %v", id, err)
			http.Error(w, "Failed to get verdicts", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []models.Verdict{}
		}

		counts, err := verdicts.GetCategoryCounts(id)
		if err != nil {
			logger.Error("Failed to count categories of %s: %v", id, err)
			http.Error(w, "Failed to get verdicts", http.StatusInternalServerError)
			return
		}
		run.CategoryCounts = counts

		writeJSON(w, dto.RunDetail{Run: run, Verdicts: list}, logger)
	}
}

// atoiDefault parses a positive integer, falling back to def.
func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, v interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
