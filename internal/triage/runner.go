// Package triage runs one pass over an issue: it finds the crash reports in
// the configured form sections, diagnoses each of them and delivers the
// resulting comment.
package triage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"

	"github.com/crashscope/core/internal/diagnose"
	"github.com/crashscope/core/internal/fetch"
	"github.com/crashscope/core/internal/gha"
	"github.com/crashscope/core/internal/locator"
	"github.com/crashscope/core/internal/parser"
)

// OutputName is the step output the comment is written to.
const OutputName = "comments"

type Options struct {
	Sections         []string
	PackVersionField string
}

// Result is what one run produced.
type Result struct {
	RunID   string   `json:"run_id"`
	Reports int      `json:"reports"`
	Lines   []string `json:"comments"`
}

// Runner wires the locator and the diagnostic engine together. Every call to
// Run is independent; link deduplication does not carry over between runs.
type Runner struct {
	fetcher  fetch.Fetcher
	resolver *locator.Resolver
	mods     diagnose.ModListResolver
	opts     Options
	log      *slog.Logger
}

func NewRunner(fetcher fetch.Fetcher, resolver *locator.Resolver, mods diagnose.ModListResolver, opts Options, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		fetcher:  fetcher,
		resolver: resolver,
		mods:     mods,
		opts:     opts,
		log:      log,
	}
}

// Run searches sections of form, or the configured sections when none are
// given, and diagnoses every report found.
func (r *Runner) Run(ctx context.Context, form FormData, sections []string) Result {
	if len(sections) == 0 {
		sections = r.opts.Sections
	}
	res := Result{RunID: uuid.NewString()}
	log := r.log.With("run_id", res.RunID)

	found := locator.New(r.fetcher, r.resolver, log).Locate(ctx, form.Sections(sections, log))
	res.Reports = len(found.Reports)

	out := &diagnose.Output{}
	out.Add(found.Comments...)
	if res.Reports > 0 {
		out.Add(fmt.Sprintf("Found %d linked crash report(s)", res.Reports))
	}

	engine := diagnose.NewEngine(r.mods, form[r.opts.PackVersionField], log)
	for i, report := range found.Reports {
		r.analyze(ctx, log, engine, i, report, out)
	}

	res.Lines = out.Lines()
	log.Debug("run finished", "reports", res.Reports, "lines", len(res.Lines))
	return res
}

// analyze keeps whatever the engine wrote before it failed or panicked.
func (r *Runner) analyze(ctx context.Context, log *slog.Logger, engine *diagnose.Engine, i int, report *parser.Report, out *diagnose.Output) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("error analyzing cr", "index", i, "report", report.ID(), "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
		}
	}()

	if err := engine.Analyze(ctx, report, out); err != nil {
		log.Error("error analyzing cr", "index", i, "report", report.ID(), "error", err)
	}
}

// Sink delivers the comment either as a step output or line by line.
type Sink struct {
	OutputFile string
	Stdout     io.Writer
}

// Deliver does nothing for an empty comment.
func (s Sink) Deliver(lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if s.OutputFile != "" {
		return gha.SetOutput(s.OutputFile, OutputName, strings.Join(lines, "\n"))
	}

	w := s.Stdout
	if w == nil {
		w = os.Stdout
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
