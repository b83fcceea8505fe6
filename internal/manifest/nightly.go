// Package manifest resolves the official mod list of a modpack version from
// the release manifests and the asset catalogue kept on GitHub.
package manifest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/crashscope/core/internal/fetch"
	"github.com/crashscope/core/internal/models"
)

var (
	ErrUnknownNightly     = errors.New("could not find nightly version")
	ErrNoManifestArtifact = errors.New("could not find manifest artifact")
	ErrNightlyExpired     = errors.New("nightly is too ancient")
)

var nightlyPattern = regexp.MustCompile(`nightly\D*(\d+)`)

const nightlyManifestFile = "nightly.json"

type workflowRun struct {
	ID        int64  `json:"id"`
	RunNumber int    `json:"run_number"`
	CreatedAt string `json:"created_at"`
}

type workflowRuns struct {
	TotalCount   int           `json:"total_count"`
	WorkflowRuns []workflowRun `json:"workflow_runs"`
}

type artifact struct {
	Name               string `json:"name"`
	Expired            bool   `json:"expired"`
	ArchiveDownloadURL string `json:"archive_download_url"`
}

type artifactList struct {
	Artifacts []artifact `json:"artifacts"`
}

// NightlySequence extracts the build number from a version like "nightly-123".
func NightlySequence(version string) (int, error) {
	m := nightlyPattern.FindStringSubmatch(version)
	if m == nil {
		return 0, fmt.Errorf("%w: unrecognizable nightly version %q", ErrUnknownNightly, version)
	}
	return strconv.Atoi(m[1])
}

func (s *GitHubSource) apiHeaders() []fetch.Header {
	headers := []fetch.Header{
		{Key: "Accept", Value: "application/vnd.github.v3+json"},
		{Key: "X-GitHub-Api-Version", Value: "2022-11-28"},
	}
	if s.opts.Token != "" {
		headers = append(headers, fetch.Header{Key: "Authorization", Value: "Bearer " + s.opts.Token})
	}
	return headers
}

func (s *GitHubSource) apiURL(path string) string {
	return strings.TrimRight(s.opts.APIURL, "/") + "/repos/" + s.opts.Repo + path
}

// findRun pages through the nightly workflow runs, newest first.
func (s *GitHubSource) findRun(ctx context.Context, sequence int) (*workflowRun, error) {
	base := s.apiURL(fmt.Sprintf("/actions/workflows/%d/runs", s.opts.WorkflowID))
	query := url.Values{}

	for {
		u := base
		if len(query) > 0 {
			u += "?" + query.Encode()
		}

		var page workflowRuns
		if err := s.getJSON(ctx, u, &page, s.apiHeaders()...); err != nil {
			return nil, fmt.Errorf("list nightly runs: %w", err)
		}

		for i := range page.WorkflowRuns {
			run := page.WorkflowRuns[i]
			if run.RunNumber < sequence {
				return nil, fmt.Errorf("%w: %d", ErrUnknownNightly, sequence)
			}
			if run.RunNumber == sequence {
				return &run, nil
			}
		}

		n := len(page.WorkflowRuns)
		if n == 0 || page.TotalCount == n {
			return nil, fmt.Errorf("%w: %d", ErrUnknownNightly, sequence)
		}
		query.Set("created", "<"+page.WorkflowRuns[n-1].CreatedAt)
	}
}

func (s *GitHubSource) nightly(ctx context.Context, version string) (*models.Release, error) {
	sequence, err := NightlySequence(version)
	if err != nil {
		return nil, err
	}

	run, err := s.findRun(ctx, sequence)
	if err != nil {
		return nil, err
	}

	var list artifactList
	if err := s.getJSON(ctx, s.apiURL(fmt.Sprintf("/actions/runs/%d/artifacts", run.ID)), &list, s.apiHeaders()...); err != nil {
		return nil, fmt.Errorf("list artifacts of nightly %d: %w", sequence, err)
	}

	var found *artifact
	for i := range list.Artifacts {
		if strings.Contains(list.Artifacts[i].Name, "manifest") {
			found = &list.Artifacts[i]
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w in nightly version %d", ErrNoManifestArtifact, sequence)
	}
	if found.Expired {
		return nil, fmt.Errorf("%w: %d", ErrNightlyExpired, sequence)
	}

	resp, err := s.fetcher.Get(ctx, found.ArchiveDownloadURL, s.apiHeaders()...)
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("download manifest of nightly %d: %w", sequence, err)
	}

	return readNightlyArchive(resp.Body)
}

func readNightlyArchive(data []byte) (*models.Release, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open manifest artifact: %w", err)
	}

	f, err := zr.Open(nightlyManifestFile)
	if err != nil {
		return nil, fmt.Errorf("open %s in artifact: %w", nightlyManifestFile, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", nightlyManifestFile, err)
	}

	var release models.Release
	if err := json.Unmarshal(raw, &release); err != nil {
		return nil, fmt.Errorf("decode %s: %w", nightlyManifestFile, err)
	}
	return &release, nil
}
