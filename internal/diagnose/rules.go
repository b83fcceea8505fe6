// Package diagnose runs the heuristics that turn a parsed crash report into
// a short Markdown comment for the reporter.
package diagnose

import (
	"strings"

	"github.com/crashscope/core/internal/models"
)

// Rule is one heuristic. When a Terminal rule matches, nothing after it runs
// for that report.
type Rule struct {
	Name     string
	Terminal bool
	Matches  func(f *models.CrashFacts) bool
	Comments func(f *models.CrashFacts) []string
}

var packetNPE = []string{
	"java.lang.NullPointerException",
	"at cpw.mods.fml.common.network.internal.FMLProxyPacket.func_148833_a(FMLProxyPacket.java:101)",
}

const chunkBuildFailed = "java.lang.RuntimeException: Chunk build failed"

func say(lines ...string) func(*models.CrashFacts) []string {
	return func(*models.CrashFacts) []string {
		return lines
	}
}

func hasPrefixLines(trace, prefix []string) bool {
	if len(trace) < len(prefix) {
		return false
	}
	for i := range prefix {
		if trace[i] != prefix[i] {
			return false
		}
	}
	return true
}

// DefaultRules run in order before the mod list comparison.
var DefaultRules = []Rule{
	{
		Name:     "truncated",
		Matches:  func(f *models.CrashFacts) bool { return f.Truncated },
		Comments: say("CRASH REPORT IS TRUNCATED. This will not help to get your problem fixed!!!"),
	},
	{
		Name:     "packet-npe",
		Terminal: true,
		Matches:  func(f *models.CrashFacts) bool { return hasPrefixLines(f.StackTrace, packetNPE) },
		Comments: say("This crash report is near useless. Try post fml-client-latest.log instead."),
	},
	{
		Name:     "world-corruption",
		Terminal: true,
		Matches: func(f *models.CrashFacts) bool {
			for _, line := range f.StackTrace {
				if strings.Contains(line, "ChunkIOProvider") {
					return true
				}
			}
			return false
		},
		Comments: say("This crash report suggests world corruption. Try restore from a backup."),
	},
	{
		Name:     "chunk-build",
		Matches:  func(f *models.CrashFacts) bool { return hasPrefixLines(f.StackTrace, []string{chunkBuildFailed}) },
		Comments: say("Possibly an Angelica problem. Try remove this mod and see if this fixes your problem."),
	},
	{
		Name:    "stacktrace",
		Matches: func(*models.CrashFacts) bool { return true },
		Comments: func(f *models.CrashFacts) []string {
			return []string{Details("Stacktrace", strings.Join(f.StackTrace, "\n"))}
		},
	},
}

// Evaluate applies rules in order and reports whether a terminal rule fired.
func Evaluate(rules []Rule, f *models.CrashFacts, out *Output) (stopped bool) {
	for _, r := range rules {
		if !r.Matches(f) {
			continue
		}
		out.Add(r.Comments(f)...)
		if r.Terminal {
			return true
		}
	}
	return false
}
