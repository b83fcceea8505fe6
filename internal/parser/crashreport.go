// Package parser turns crash report text into structured facts. It handles the
// fixed header, the main stack trace, the mod state table and the environment
// markers that tell client and server reports apart.
package parser

import (
	"errors"
	"regexp"
	"strings"

	"github.com/crashscope/core/internal/models"
)

const (
	// Marker opens every crash report.
	Marker = "---- Minecraft Crash Report ----"
	// ModdedMarker appears near the end of a complete report.
	ModdedMarker = "Is Modded"

	headerLines    = 6
	modTableHeader = "States"
	clientMarker   = "map_client.txt"
	serverMarker   = "map_server.txt"
)

var javaVersionPattern = regexp.MustCompile(`Java Version: (\S+),`)

func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// MainStackTrace returns the trimmed lines following the fixed header up to
// the first blank line.
func MainStackTrace(content string) []string {
	lines := splitLines(content)
	trace := []string{}
	if len(lines) <= headerLines {
		return trace
	}

	for _, line := range lines[headerLines:] {
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		trace = append(trace, line)
	}

	return trace
}

// ModList returns the rows of the mod state table in the order they appear.
func ModList(content string) []models.InstalledMod {
	mods := []models.InstalledMod{}
	inTable := false

	for _, line := range splitLines(content) {
		if strings.Contains(line, modTableHeader) {
			inTable = true
			continue
		}
		if !inTable {
			continue
		}

		mod, err := ParseModLine(strings.TrimSpace(line))
		if errors.Is(err, ErrInvalidModLine) {
			break
		}
		if mod == nil {
			continue
		}
		mods = append(mods, *mod)
	}

	return mods
}

// IsTruncated reports whether the content stops before the "Is Modded" line.
func IsTruncated(content string) bool {
	return !strings.Contains(content, ModdedMarker)
}

// JavaVersion returns the runtime version recorded in the system details.
func JavaVersion(content string) (string, bool) {
	m := javaVersionPattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// DetectSide tells client from server reports by the mapping file they load.
// Without either marker it falls back to SideBoth and reports ok=false.
func DetectSide(content, javaVersion string) (side models.Side, ok bool) {
	modern := javaVersion != "" && !strings.HasPrefix(javaVersion, "1.")

	switch {
	case strings.Contains(content, clientMarker):
		if modern {
			return models.SideClientJava9, true
		}
		return models.SideClient, true
	case strings.Contains(content, serverMarker):
		if modern {
			return models.SideServerJava9, true
		}
		return models.SideServer, true
	}

	return models.SideBoth, false
}

// Analyze derives every fact from the content in one pass over the helpers.
func Analyze(content string) *models.CrashFacts {
	javaVersion, _ := JavaVersion(content)
	side, _ := DetectSide(content, javaVersion)

	return &models.CrashFacts{
		StackTrace:  MainStackTrace(content),
		Mods:        ModList(content),
		Truncated:   IsTruncated(content),
		JavaVersion: javaVersion,
		Side:        side,
	}
}
