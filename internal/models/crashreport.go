// Package models defines the core data structures shared by the parser, the
// diagnostic engine and the manifest resolver.
package models

import "strings"

// InstalledMod is one row of the mod state table found in a crash report.
type InstalledMod struct {
	ModID    string `json:"modid"`
	Version  string `json:"version"`
	ModName  string `json:"modname"`
	Filename string `json:"filename"`
	Errored  bool   `json:"errored"`
	Disabled bool   `json:"disabled"`
}

// CrashFacts holds everything derived from the text of a single crash report.
type CrashFacts struct {
	StackTrace  []string       `json:"stack_trace"`
	Mods        []InstalledMod `json:"mods"`
	Truncated   bool           `json:"truncated"`
	JavaVersion string         `json:"java_version,omitempty"`
	Side        Side           `json:"side"`
}

// HasJavaVersion reports whether a "Java Version:" line was found.
func (f *CrashFacts) HasJavaVersion() bool {
	return f.JavaVersion != ""
}

// IsModernJava is true for Java 9 and later, which dropped the "1." prefix.
func (f *CrashFacts) IsModernJava() bool {
	return f.HasJavaVersion() && !strings.HasPrefix(f.JavaVersion, "1.")
}

// ModsByFilename indexes the mod list by filename. Later rows win on duplicates.
func (f *CrashFacts) ModsByFilename() map[string]InstalledMod {
	out := make(map[string]InstalledMod, len(f.Mods))
	for _, m := range f.Mods {
		out[m.Filename] = m
	}
	return out
}
