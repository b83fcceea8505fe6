// Package manifest resolves the official mod list of a modpack version from
// the release manifests and the asset catalogue kept on GitHub.
package manifest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crashscope/core/internal/fetch"
	"github.com/crashscope/core/internal/models"
)

const testRepo = "GTNewHorizons/DreamAssemblerXXL"

func nightlyZip(t *testing.T, release models.Release) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(nightlyManifestFile)
	require.NoError(t, err)
	require.NoError(t, json.NewEncoder(w).Encode(release))
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type githubStub struct {
	server      *httptest.Server
	assetHits   atomic.Int32
	sawAuth     atomic.Bool
	sawAPIHeads atomic.Bool
}

func newGitHubStub(t *testing.T) *githubStub {
	t.Helper()
	stub := &githubStub{}
	archive := nightlyZip(t, models.Release{
		Version:    "nightly-103",
		GithubMods: map[string]models.ModVersionInfo{"Angelica": {Version: "1.0.0", Side: models.SideClient}},
	})

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	rawBase := "/raw/" + testRepo + "/master/"
	mux.HandleFunc(rawBase+"releases/manifests/2.6.1.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.Release{Version: "2.6.1"})
	})
	mux.HandleFunc(rawBase+"releases/manifests/old/2.5.0.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, models.Release{Version: "2.5.0"})
	})
	mux.HandleFunc(rawBase+"gtnh-assets.json", func(w http.ResponseWriter, r *http.Request) {
		stub.assetHits.Add(1)
		writeJSON(w, testAssets())
	})

	apiBase := "/api/repos/" + testRepo + "/actions/"
	mux.HandleFunc(apiBase+"workflows/58547244/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer secret" {
			stub.sawAuth.Store(true)
		}
		if r.Header.Get("X-GitHub-Api-Version") == "2022-11-28" && r.Header.Get("Accept") == "application/vnd.github.v3+json" {
			stub.sawAPIHeads.Store(true)
		}
		page := workflowRuns{TotalCount: 4}
		switch r.URL.Query().Get("created") {
		case "":
			page.WorkflowRuns = []workflowRun{
				{ID: 10, RunNumber: 105, CreatedAt: "2024-01-05T00:00:00Z"},
				{ID: 9, RunNumber: 104, CreatedAt: "2024-01-04T00:00:00Z"},
			}
		case "<2024-01-04T00:00:00Z":
			page.WorkflowRuns = []workflowRun{
				{ID: 8, RunNumber: 103, CreatedAt: "2024-01-03T00:00:00Z"},
				{ID: 7, RunNumber: 102, CreatedAt: "2024-01-02T00:00:00Z"},
			}
		}
		writeJSON(w, page)
	})
	mux.HandleFunc(apiBase+"runs/10/artifacts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, artifactList{Artifacts: []artifact{{Name: "logs"}}})
	})
	mux.HandleFunc(apiBase+"runs/9/artifacts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, artifactList{Artifacts: []artifact{{Name: "nightly-manifest", Expired: true}}})
	})
	mux.HandleFunc(apiBase+"runs/8/artifacts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, artifactList{Artifacts: []artifact{
			{Name: "logs"},
			{Name: "nightly-manifest", ArchiveDownloadURL: stub.server.URL + "/download/8"},
		}})
	})
	mux.HandleFunc("/download/8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	})

	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *githubStub) source(opts Options) *GitHubSource {
	opts.APIURL = s.server.URL + "/api"
	opts.RawURL = s.server.URL + "/raw"
	opts.Repo = testRepo
	opts.Branch = "master"
	opts.WorkflowID = 58547244
	return NewGitHubSource(fetch.New(), opts, quietLogger())
}

func TestNightlySequence(t *testing.T) {
	n, err := NightlySequence("nightly-123")
	require.NoError(t, err)
	assert.Equal(t, 123, n)

	n, err = NightlySequence("nightly 45 (yesterday)")
	require.NoError(t, err)
	assert.Equal(t, 45, n)

	_, err = NightlySequence("nightly")
	assert.ErrorIs(t, err, ErrUnknownNightly)
}

func TestGitHubSourceRelease(t *testing.T) {
	stub := newGitHubStub(t)
	ctx := context.Background()

	t.Run("tagged release", func(t *testing.T) {
		r, err := stub.source(Options{}).Release(ctx, "2.6.1")
		require.NoError(t, err)
		assert.Equal(t, "2.6.1", r.Version)
	})

	t.Run("falls back to old manifests", func(t *testing.T) {
		r, err := stub.source(Options{}).Release(ctx, "2.5.0")
		require.NoError(t, err)
		assert.Equal(t, "2.5.0", r.Version)
	})

	t.Run("unknown release", func(t *testing.T) {
		_, err := stub.source(Options{}).Release(ctx, "1.0.0")
		assert.ErrorIs(t, err, fetch.ErrStatus)
	})

	t.Run("nightly from the second page of runs", func(t *testing.T) {
		r, err := stub.source(Options{Token: "secret"}).Release(ctx, "nightly-103")
		require.NoError(t, err)
		assert.Equal(t, "nightly-103", r.Version)
		assert.Equal(t, "1.0.0", r.GithubMods["Angelica"].Version)
		assert.True(t, stub.sawAuth.Load())
		assert.True(t, stub.sawAPIHeads.Load())
	})

	t.Run("nightly newer than any run", func(t *testing.T) {
		_, err := stub.source(Options{}).Release(ctx, "nightly-106")
		assert.ErrorIs(t, err, ErrUnknownNightly)
	})

	t.Run("nightly older than every page", func(t *testing.T) {
		_, err := stub.source(Options{}).Release(ctx, "nightly-99")
		assert.ErrorIs(t, err, ErrUnknownNightly)
	})

	t.Run("expired artifact", func(t *testing.T) {
		_, err := stub.source(Options{}).Release(ctx, "nightly-104")
		assert.ErrorIs(t, err, ErrNightlyExpired)
	})

	t.Run("run without manifest artifact", func(t *testing.T) {
		_, err := stub.source(Options{}).Release(ctx, "nightly-105")
		assert.ErrorIs(t, err, ErrNoManifestArtifact)
	})
}

func TestGitHubSourceAssets(t *testing.T) {
	ctx := context.Background()

	t.Run("downloads without snapshot", func(t *testing.T) {
		stub := newGitHubStub(t)
		a, err := stub.source(Options{}).Assets(ctx)
		require.NoError(t, err)
		assert.Len(t, a.GithubMods, 4)
		assert.EqualValues(t, 1, stub.assetHits.Load())
	})

	t.Run("writes then reuses the snapshot", func(t *testing.T) {
		stub := newGitHubStub(t)
		path := filepath.Join(t.TempDir(), "tmp", "assets.mp")
		opts := Options{SnapshotPath: path, WriteSnapshot: true}

		_, err := stub.source(opts).Assets(ctx)
		require.NoError(t, err)
		a, err := stub.source(opts).Assets(ctx)
		require.NoError(t, err)

		assert.EqualValues(t, 1, stub.assetHits.Load())
		info, ok := a.Mod("Angelica", models.SourceGithub)
		require.True(t, ok)
		assert.Equal(t, "Angelica", info.Name)
	})

	t.Run("read only snapshot is not written", func(t *testing.T) {
		stub := newGitHubStub(t)
		path := filepath.Join(t.TempDir(), "assets.mp")
		opts := Options{SnapshotPath: path}

		_, err := stub.source(opts).Assets(ctx)
		require.NoError(t, err)
		_, err = stub.source(opts).Assets(ctx)
		require.NoError(t, err)

		assert.EqualValues(t, 2, stub.assetHits.Load())
	})
}

func TestReadNightlyArchive(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		_, err := readNightlyArchive([]byte("plain text"))
		assert.Error(t, err)
	})

	t.Run("zip without nightly.json", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create("other.json")
		require.NoError(t, err)
		_, _ = w.Write([]byte("{}"))
		require.NoError(t, zw.Close())

		_, err = readNightlyArchive(buf.Bytes())
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), nightlyManifestFile))
	})
}
