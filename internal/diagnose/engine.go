// Package diagnose runs the heuristics that turn a parsed crash report into
// a short Markdown comment for the reporter.
package diagnose

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/crashscope/core/internal/models"
	"github.com/crashscope/core/internal/parser"
)

// ErrNoPackVersion is returned when the reporter left the pack version empty.
var ErrNoPackVersion = errors.New("no pack version given")

// ModListResolver returns the mods a given pack version ships for a side.
type ModListResolver interface {
	OfficialMods(ctx context.Context, version string, side models.Side) ([]models.OfficialMod, error)
}

// NormalizePackVersion keeps the first word of the reporter's answer, lower-cased.
func NormalizePackVersion(raw string) (string, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", ErrNoPackVersion
	}
	return strings.ToLower(fields[0]), nil
}

type Engine struct {
	resolver    ModListResolver
	packVersion string
	rules       []Rule
	log         *slog.Logger
}

// NewEngine builds an engine for one issue. packVersion is the raw answer to
// the pack version question.
func NewEngine(resolver ModListResolver, packVersion string, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		resolver:    resolver,
		packVersion: packVersion,
		rules:       DefaultRules,
		log:         log.With("component", "diagnose"),
	}
}

// Analyze appends the diagnosis of one report to out. Output written before
// an error is kept.
func (e *Engine) Analyze(ctx context.Context, report *parser.Report, out *Output) error {
	out.Add("# Primitive Automated Analysis of Crash Report " + report.ID())

	facts, err := report.Facts(ctx)
	if err != nil {
		return err
	}
	if facts.Side == models.SideBoth {
		e.log.Warn("could not determine side of crash report", "report", report.ID())
	}

	if Evaluate(e.rules, facts, out) {
		return nil
	}

	official := e.officialMods(ctx, facts.Side)
	if len(official) == 0 {
		return nil
	}

	d := DiffMods(facts.Mods, official)
	if missing := FilterMissing(d.Missing, facts.IsModernJava()); len(missing) > 0 {
		out.Add(detailsList("Missing mods", missing)...)
	}
	if len(d.Added) > 0 {
		byName := facts.ModsByFilename()
		added := make([]string, 0, len(d.Added))
		for _, name := range d.Added {
			added = append(added, name+" ("+byName[name].ModName+")")
		}
		out.Add(detailsList("Added mods", added)...)
	}

	return nil
}

// officialMods never fails: any resolver problem means there is nothing to compare against.
func (e *Engine) officialMods(ctx context.Context, side models.Side) []models.OfficialMod {
	if e.resolver == nil {
		return nil
	}
	version, err := NormalizePackVersion(e.packVersion)
	if err != nil {
		e.log.Error("error fetching cr mod list", "error", err)
		return nil
	}
	mods, err := e.resolver.OfficialMods(ctx, version, side)
	if err != nil {
		e.log.Error("error fetching cr mod list", "error", err, "pack_version", version, "side", side)
		return nil
	}
	return mods
}
