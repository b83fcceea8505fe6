// Package config assembles the settings of a run from defaults, an optional
// TOML file, .env files and the environment. Command-line flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/crashscope/core/internal/fetch"
	"github.com/crashscope/core/internal/gha"
)

// DefaultFile is read when present and no other file was asked for.
const DefaultFile = "crashscope.toml"

type Config struct {
	// Sections lists the issue form fields searched for crash reports.
	Sections         []string `toml:"sections"`
	PackVersionField string   `toml:"pack_version_field"`
	// FormData is the issue form as a JSON object. Only the environment sets it.
	FormData string `toml:"-"`

	ModpackRepo       string `toml:"modpack_repo"`
	ManifestRepo      string `toml:"manifest_repo"`
	ManifestBranch    string `toml:"manifest_branch"`
	NightlyWorkflowID int64  `toml:"nightly_workflow_id"`
	GitHubAPIURL      string `toml:"github_api_url"`
	RawContentURL     string `toml:"raw_content_url"`
	GitHubToken       string `toml:"-"`

	AssetsSnapshot string `toml:"assets_snapshot"`

	OutputFile string `toml:"-"`
	CI         bool   `toml:"-"`
	Debug      bool   `toml:"debug"`

	HTTPTimeout  time.Duration `toml:"http_timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`

	HTTPAddr          string `toml:"http_addr"`
	CORSAllowedOrigin string `toml:"cors_allowed_origin"`
}

func Default() Config {
	return Config{
		Sections:          []string{"Crash Report"},
		PackVersionField:  "Your Pack Version",
		ModpackRepo:       "GT-New-Horizons-Modpack",
		ManifestRepo:      "GTNewHorizons/DreamAssemblerXXL",
		ManifestBranch:    "master",
		NightlyWorkflowID: 58547244,
		GitHubAPIURL:      "https://api.github.com",
		RawContentURL:     "https://raw.githubusercontent.com",
		AssetsSnapshot:    "tmp/assets.mp",
		MaxBodyBytes:      fetch.DefaultMaxBodyBytes,
		HTTPAddr:          ":8080",
		CORSAllowedOrigin: "*",
	}
}

// SplitList splits a comma separated list, trimming entries and dropping
// empty ones.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getBool(getenv func(string) string, key string, def bool) bool {
	v := getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getInt64(getenv func(string) string, key string, def int64) int64 {
	v := getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getDuration(getenv func(string) string, key string, def time.Duration) time.Duration {
	v := getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getString(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

// LoadFile decodes a TOML file over cfg. Keys that do not map to a field are
// an error.
func LoadFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are skipped and variables already set are kept.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with the action inputs and the variables set by the
// Actions runner.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := gha.Input(getenv, "sections"); v != "" {
		cfg.Sections = SplitList(v)
	}
	if v := gha.Input(getenv, "pack version field"); v != "" {
		cfg.PackVersionField = v
	}
	cfg.FormData = getenv("INPUT_FORMDATA")

	cfg.ModpackRepo = getString(getenv, "CRASHSCOPE_MODPACK_REPO", cfg.ModpackRepo)
	cfg.ManifestRepo = getString(getenv, "CRASHSCOPE_MANIFEST_REPO", cfg.ManifestRepo)
	cfg.ManifestBranch = getString(getenv, "CRASHSCOPE_MANIFEST_BRANCH", cfg.ManifestBranch)
	cfg.NightlyWorkflowID = getInt64(getenv, "CRASHSCOPE_NIGHTLY_WORKFLOW_ID", cfg.NightlyWorkflowID)
	cfg.GitHubAPIURL = getString(getenv, "GITHUB_API_URL", cfg.GitHubAPIURL)
	cfg.RawContentURL = getString(getenv, "CRASHSCOPE_RAW_CONTENT_URL", cfg.RawContentURL)
	cfg.GitHubToken = getString(getenv, "GITHUB_TOKEN", cfg.GitHubToken)
	cfg.AssetsSnapshot = getString(getenv, "CRASHSCOPE_ASSETS_SNAPSHOT", cfg.AssetsSnapshot)

	cfg.OutputFile = getString(getenv, "GITHUB_OUTPUT", cfg.OutputFile)
	cfg.CI = getBool(getenv, "CI", cfg.CI)
	if getenv("RUNNER_DEBUG") != "" {
		cfg.Debug = true
	}

	cfg.HTTPTimeout = getDuration(getenv, "CRASHSCOPE_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.MaxBodyBytes = getInt64(getenv, "CRASHSCOPE_MAX_BODY_BYTES", cfg.MaxBodyBytes)
	cfg.HTTPAddr = getString(getenv, "HTTP_ADDR", cfg.HTTPAddr)
	cfg.CORSAllowedOrigin = getString(getenv, "CORS_ALLOWED_ORIGIN", cfg.CORSAllowedOrigin)
}

// Options tells Load where to look.
type Options struct {
	// File is a TOML file that must exist. Empty means DefaultFile if present.
	File   string
	DotEnv []string
	Getenv func(string) string
}

// Load builds the configuration: defaults, then the TOML file, then .env
// files, then the environment.
func Load(opts Options) (Config, error) {
	cfg := Default()

	path := opts.File
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if len(opts.DotEnv) > 0 {
		if err := LoadDotEnv(opts.DotEnv...); err != nil {
			return cfg, err
		}
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	ApplyEnv(&cfg, getenv)

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Sections) == 0 {
		return errors.New("no sections to search for crash reports")
	}
	if c.PackVersionField == "" {
		return errors.New("pack version field must not be empty")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout must not be negative, got %s", c.HTTPTimeout)
	}
	return nil
}

// Level is the log level the run asks for.
func (c Config) Level() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// WriteSnapshot is true outside CI, where the asset snapshot is only a
// convenience for repeated local runs.
func (c Config) WriteSnapshot() bool {
	return !c.CI
}
