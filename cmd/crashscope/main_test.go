// Package main is the crashscope command. It reads crash reports out of
// modpack bug reports and comments on what it finds, either as a GitHub
// Actions step or as an HTTP service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crashscope/core/internal/config"
	"github.com/crashscope/core/internal/triage"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Run(context.Context, triage.FormData, []string) triage.Result {
	return triage.Result{RunID: "stub", Reports: 0}
}

const inlineReport = "---- Minecraft Crash Report ----\nh2\nh3\nh4\nh5\nh6\n" +
	"java.lang.RuntimeException: Chunk build failed\n\nIs Modded: true\nmap_client.txt\nJava Version: 17.0.1,"

func TestRouter(t *testing.T) {
	cfg := config.Default()
	router := newRouter(cfg, stubAnalyzer{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Run("health endpoint is accessible", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("analyze endpoint is accessible", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var response map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "stub", response["run_id"])
	})

	t.Run("preflight is answered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("unknown route returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/parse", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func clearActionEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GITHUB_OUTPUT", "RUNNER_DEBUG", "INPUT_SECTIONS", "INPUT_PACK_VERSION_FIELD", "CI"} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestActionCommand(t *testing.T) {
	t.Run("prints the comment inside a log group", func(t *testing.T) {
		clearActionEnv(t)
		form, err := json.Marshal(map[string]string{"Crash Report": inlineReport})
		require.NoError(t, err)
		t.Setenv("INPUT_FORMDATA", string(form))

		out, err := execute(t, "action", "--color", "off")

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "::group::Checking crash report\n"), out)
		assert.True(t, strings.HasSuffix(out, "::endgroup::\n"), out)
		assert.Contains(t, out, "\nFound 1 linked crash report(s)\n")
		assert.Contains(t, out, "\nPossibly an Angelica problem. Try remove this mod and see if this fixes your problem.\n")
		assert.Contains(t, out, "\n<details><summary>Stacktrace</summary>java.lang.RuntimeException: Chunk build failed</details>\n")
	})

	t.Run("writes the step output when running in actions", func(t *testing.T) {
		clearActionEnv(t)
		path := filepath.Join(t.TempDir(), "github_output")
		t.Setenv("GITHUB_OUTPUT", path)
		form, err := json.Marshal(map[string]string{"Crash Report": inlineReport})
		require.NoError(t, err)
		t.Setenv("INPUT_FORMDATA", string(form))

		out, err := execute(t, "action", "--color", "off")

		require.NoError(t, err)
		assert.NotContains(t, out, "Found 1 linked crash report(s)")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "comments<<ghadelimiter_")
		assert.Contains(t, string(data), "Found 1 linked crash report(s)\n# Primitive Automated Analysis of Crash Report inline 1\n")
	})

	t.Run("malformed form data is fatal", func(t *testing.T) {
		clearActionEnv(t)
		t.Setenv("INPUT_FORMDATA", "{not json")

		out, err := execute(t, "action", "--color", "off")

		assert.ErrorIs(t, err, triage.ErrFormData)
		assert.Contains(t, out, "::error::Unable to parse formdata input")
		assert.NotContains(t, out, "::group::")
	})

	t.Run("reads the form from a file", func(t *testing.T) {
		clearActionEnv(t)
		t.Setenv("INPUT_FORMDATA", "")
		path := filepath.Join(t.TempDir(), "form.json")
		form, err := json.Marshal(map[string]string{"Logs": inlineReport})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, form, 0o644))
		t.Cleanup(func() {
			_ = actionCmd.Flags().Set("formdata-file", "")
			_ = actionCmd.Flags().Set("sections", "")
		})

		out, err := execute(t, "action", "--color", "off", "--formdata-file", path, "--sections", "Logs")

		require.NoError(t, err)
		assert.Contains(t, out, "Found 1 linked crash report(s)")
	})
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	clearActionEnv(t)
	path := filepath.Join(t.TempDir(), "crashscope.toml")
	require.NoError(t, os.WriteFile(path, []byte("no_such_key = 1\n"), 0o644))
	t.Setenv("INPUT_FORMDATA", "{}")
	t.Cleanup(func() { _ = rootCmd.PersistentFlags().Set("config", "") })

	_, err := execute(t, "action", "--config", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_key")
}
