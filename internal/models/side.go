// Package models defines the core data structures shared by the parser, the
// diagnostic engine and the manifest resolver.
package models

import "strings"

// Side names the environment a crash report came from, or the environments a
// mod is meant to be installed in when used inside a manifest.
type Side string

const (
	SideClient      Side = "CLIENT"
	SideServer      Side = "SERVER"
	SideBoth        Side = "BOTH"
	SideClientJava9 Side = "CLIENT_JAVA9"
	SideServerJava9 Side = "SERVER_JAVA9"
	SideBothJava9   Side = "BOTH_JAVA9"
	SideNone        Side = "NONE"
)

var allEnvironments = []Side{SideClient, SideServer, SideBoth, SideClientJava9, SideServerJava9, SideBothJava9}

// ParseSide accepts the manifest spelling of a side, case-insensitively.
func ParseSide(s string) (Side, bool) {
	side := Side(strings.ToUpper(strings.TrimSpace(s)))
	switch side {
	case SideClient, SideServer, SideBoth, SideClientJava9, SideServerJava9, SideBothJava9, SideNone:
		return side, true
	}
	return "", false
}

// ValidEnvironments lists the report sides in which a mod declared with side s
// is expected to be installed.
func (s Side) ValidEnvironments() []Side {
	switch s {
	case SideClient:
		return []Side{SideClient, SideClientJava9, SideBoth, SideBothJava9}
	case SideServer:
		return []Side{SideServer, SideServerJava9, SideBoth, SideBothJava9}
	case SideBoth:
		return append([]Side(nil), allEnvironments...)
	case SideClientJava9:
		return []Side{SideClientJava9, SideBothJava9}
	case SideServerJava9:
		return []Side{SideServerJava9, SideBothJava9}
	case SideBothJava9:
		return []Side{SideClientJava9, SideServerJava9, SideBothJava9}
	default:
		return nil
	}
}

// Includes reports whether a mod declared with side s belongs in env.
func (s Side) Includes(env Side) bool {
	for _, e := range s.ValidEnvironments() {
		if e == env {
			return true
		}
	}
	return false
}
