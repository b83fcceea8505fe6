// Package main is the crashscope command. It reads crash reports out of
// modpack bug reports and comments on what it finds, either as a GitHub
// Actions step or as an HTTP service.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crashscope/core/internal/config"
	"github.com/crashscope/core/internal/fetch"
	"github.com/crashscope/core/internal/gha"
	"github.com/crashscope/core/internal/locator"
	"github.com/crashscope/core/internal/manifest"
	"github.com/crashscope/core/internal/triage"
)

const defaultConfigHint = config.DefaultFile + " if present"

var dotEnvFiles = []string{".env.local", ".env"}

// loadConfig layers the flags that were set on top of the file and
// environment configuration.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.Load(config.Options{File: path, DotEnv: dotEnvFiles})
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		if cfg.Debug, err = flags.GetBool("debug"); err != nil {
			return cfg, err
		}
	}
	if sections := config.SplitList(changedString(cmd, "sections")); len(sections) > 0 {
		cfg.Sections = sections
	}
	if v := changedString(cmd, "pack-version-field"); v != "" {
		cfg.PackVersionField = v
	}
	if v := changedString(cmd, "addr"); v != "" {
		cfg.HTTPAddr = v
	}

	return cfg, cfg.Validate()
}

// changedString returns the value of a flag the user set, or "" when the
// flag is unset or not defined on cmd.
func changedString(cmd *cobra.Command, name string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return ""
	}
	return strings.TrimSpace(f.Value.String())
}

func useColor(cmd *cobra.Command, w io.Writer) (bool, error) {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return gha.IsTerminal(w), nil
	}
	return false, fmt.Errorf("unknown color mode %q (want auto, on or off)", mode)
}

// newLogger logs to the console on stderr and, when annotations is set, also
// as workflow commands on stdout.
func newLogger(cmd *cobra.Command, cfg config.Config, annotations bool) (*slog.Logger, error) {
	stderr := cmd.ErrOrStderr()
	colored, err := useColor(cmd, stderr)
	if err != nil {
		return nil, err
	}

	var h slog.Handler = gha.NewConsoleHandler(stderr, cfg.Level(), colored)
	if annotations {
		h = gha.Fanout{gha.NewAnnotationHandler(cmd.OutOrStdout(), cfg.Level()), h}
	}
	return slog.New(h), nil
}

func newRunner(cfg config.Config, log *slog.Logger) *triage.Runner {
	fetcher := fetch.New(
		fetch.WithTimeout(cfg.HTTPTimeout),
		fetch.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)

	source := manifest.NewGitHubSource(fetcher, manifest.Options{
		APIURL:        cfg.GitHubAPIURL,
		RawURL:        cfg.RawContentURL,
		Repo:          cfg.ManifestRepo,
		Branch:        cfg.ManifestBranch,
		WorkflowID:    cfg.NightlyWorkflowID,
		Token:         cfg.GitHubToken,
		SnapshotPath:  cfg.AssetsSnapshot,
		WriteSnapshot: cfg.WriteSnapshot(),
	}, log)

	return triage.NewRunner(
		fetcher,
		locator.NewResolver(cfg.ModpackRepo),
		manifest.NewCache(source, log),
		triage.Options{Sections: cfg.Sections, PackVersionField: cfg.PackVersionField},
		log,
	)
}
