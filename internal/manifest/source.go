// Package manifest resolves the official mod list of a modpack version from
// the release manifests and the asset catalogue kept on GitHub.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/crashscope/core/internal/fetch"
	"github.com/crashscope/core/internal/models"
)

// Source loads release manifests and the asset catalogue.
type Source interface {
	Release(ctx context.Context, version string) (*models.Release, error)
	Assets(ctx context.Context) (*models.Assets, error)
}

type Options struct {
	APIURL     string
	RawURL     string
	Repo       string
	Branch     string
	WorkflowID int64
	Token      string
	// SnapshotPath names a local copy of the asset catalogue. Empty disables it.
	SnapshotPath string
	// WriteSnapshot saves a downloaded catalogue to SnapshotPath.
	WriteSnapshot bool
}

// GitHubSource reads manifests from raw.githubusercontent.com and nightly
// manifests from workflow artifacts through the GitHub API.
type GitHubSource struct {
	fetcher  fetch.Fetcher
	opts     Options
	snapshot *Snapshot
	log      *slog.Logger
}

func NewGitHubSource(fetcher fetch.Fetcher, opts Options, log *slog.Logger) *GitHubSource {
	if log == nil {
		log = slog.Default()
	}
	s := &GitHubSource{
		fetcher: fetcher,
		opts:    opts,
		log:     log.With("component", "manifest"),
	}
	if opts.SnapshotPath != "" {
		s.snapshot = NewSnapshot(opts.SnapshotPath)
	}
	return s
}

func (s *GitHubSource) rawURL(path string) string {
	return strings.TrimRight(s.opts.RawURL, "/") + "/" + s.opts.Repo + "/" + s.opts.Branch + "/" + path
}

func (s *GitHubSource) getJSON(ctx context.Context, u string, out any, headers ...fetch.Header) error {
	resp, err := s.fetcher.Get(ctx, u, headers...)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

// Release loads the manifest of a tagged release or, for versions mentioning
// "nightly", of a nightly build.
func (s *GitHubSource) Release(ctx context.Context, version string) (*models.Release, error) {
	version = strings.TrimSpace(version)
	if strings.Contains(version, "nightly") {
		return s.nightly(ctx, version)
	}

	var release models.Release
	escaped := url.PathEscape(version)
	err := s.getJSON(ctx, s.rawURL("releases/manifests/"+escaped+".json"), &release)
	if err != nil {
		s.log.Debug("release manifest not found, trying old manifests", "version", version, "error", err)
		release = models.Release{}
		err = s.getJSON(ctx, s.rawURL("releases/manifests/old/"+escaped+".json"), &release)
	}
	if err != nil {
		return nil, fmt.Errorf("release manifest %s: %w", version, err)
	}
	return &release, nil
}

// Assets loads the catalogue, preferring the local snapshot when it exists.
func (s *GitHubSource) Assets(ctx context.Context) (*models.Assets, error) {
	if s.snapshot != nil {
		assets, ok, err := s.snapshot.Load()
		if err != nil {
			s.log.Warn("ignoring unreadable asset snapshot", "path", s.opts.SnapshotPath, "error", err)
		}
		if ok {
			return assets, nil
		}
	}

	var assets models.Assets
	if err := s.getJSON(ctx, s.rawURL("gtnh-assets.json"), &assets); err != nil {
		return nil, fmt.Errorf("asset catalogue: %w", err)
	}

	if s.snapshot != nil && s.opts.WriteSnapshot {
		if err := s.snapshot.Save(&assets); err != nil {
			s.log.Warn("could not write asset snapshot", "path", s.opts.SnapshotPath, "error", err)
		}
	}
	return &assets, nil
}
