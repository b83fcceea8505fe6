// Package diagnose runs the heuristics that turn a parsed crash report into
// a short Markdown comment for the reporter.
package diagnose

import (
	"sort"
	"strings"

	"github.com/crashscope/core/internal/models"
)

// ModDiff compares the filenames in a report with the official ones.
type ModDiff struct {
	Missing []string
	Added   []string
}

// DiffMods computes official minus reported and reported minus official,
// both sorted.
func DiffMods(reported []models.InstalledMod, official []models.OfficialMod) ModDiff {
	have := make(map[string]bool, len(reported))
	for _, m := range reported {
		have[m.Filename] = true
	}
	want := make(map[string]bool, len(official))
	for _, m := range official {
		want[m.Version.Filename] = true
	}

	var d ModDiff
	for name := range want {
		if !have[name] {
			d.Missing = append(d.Missing, name)
		}
	}
	for name := range have {
		if !want[name] {
			d.Added = append(d.Added, name)
		}
	}
	sort.Strings(d.Missing)
	sort.Strings(d.Added)
	return d
}

// invisibleInReports never show up in the mod table: healer has no mod
// container and CodeChickenLib has no entry point.
var invisibleInReports = []string{"healer", "codechickenlib"}

// FilterMissing drops filenames that are expected to be absent from a report.
// lwjgl3ify is only needed on Java 9 and later.
func FilterMissing(missing []string, modernJava bool) []string {
	var out []string
next:
	for _, name := range missing {
		lower := strings.ToLower(name)
		for _, s := range invisibleInReports {
			if strings.Contains(lower, s) {
				continue next
			}
		}
		if !modernJava && strings.Contains(lower, "lwjgl3ify") {
			continue
		}
		out = append(out, name)
	}
	return out
}
