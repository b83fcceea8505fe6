// Package handlers exposes the crash report analysis over HTTP, for use
// outside of GitHub Actions.
package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/crashscope/core/internal/config"
	"github.com/crashscope/core/internal/triage"
)

// Analyzer runs one analysis of an issue form.
type Analyzer interface {
	Run(ctx context.Context, form triage.FormData, sections []string) triage.Result
}

type AnalyzeResponse struct {
	RunID    string   `json:"run_id"`
	Reports  int      `json:"reports"`
	Comments []string `json:"comments"`
}

// AnalyzeHandler accepts an issue form as a JSON object and answers with the
// comment lines. The sections query parameter overrides the searched fields.
func AnalyzeHandler(a Analyzer, maxBody int64, log *slog.Logger) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "http")

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		defer r.Body.Close()
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusBadRequest)
			return
		}

		form, err := triage.ParseFormData(body)
		if err != nil {
			http.Error(w, "Invalid form data: "+err.Error(), http.StatusBadRequest)
			return
		}

		res := a.Run(r.Context(), form, config.SplitList(r.URL.Query().Get("sections")))
		log.Info("analyzed issue form", "run_id", res.RunID, "reports", res.Reports)

		comments := res.Lines
		if comments == nil {
			comments = []string{}
		}
		err = writeJSON(w, http.StatusOK, AnalyzeResponse{
			RunID:    res.RunID,
			Reports:  res.Reports,
			Comments: comments,
		}, r.URL.Query().Get("pretty") == "true")
		if err != nil {
			log.Error("failed to write response", "run_id", res.RunID, "error", err)
		}
	}
}
