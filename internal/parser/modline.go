// Package parser turns crash report text into structured facts. It handles the
// fixed header, the main stack trace, the mod state table and the environment
// markers that tell client and server reports apart.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/crashscope/core/internal/models"
)

// ErrInvalidModLine is returned for a line that is not a mod state table row.
// The table has no terminator, so callers treat it as the end of the table.
var ErrInvalidModLine = errors.New("invalid mod state line")

var modLinePattern = regexp.MustCompile(
	`^(?P<status>[ULCHIJADE]+)\s+(?P<modid>[^{ \t][^{]*)\{(?P<version>[^}]+)\} \[(?P<modname>.+)\] \((?P<filename>.+)\)$`)

// loaderJar is what FML reports as the source of coremods living in the
// loader's own jar.
const loaderJar = "minecraft.jar"

type coremodRule func(modid, version string) string

func modidDashVersion(modid, version string) string {
	return modid + "-" + version + ".jar"
}

// coremods maps the coremods we know about to the real name of their jar.
var coremods = map[string]coremodRule{
	"CodeChickenCore": modidDashVersion,
	"PlayerAPI":       modidDashVersion,
}

// ParseModLine parses one trimmed row of the mod state table. It returns a nil
// mod and a nil error for rows that are valid but carry no real mod: the
// loader's pseudo entries and coremods without a known filename.
func ParseModLine(line string) (*models.InstalledMod, error) {
	m := modLinePattern.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModLine, line)
	}

	status := m[modLinePattern.SubexpIndex("status")]
	mod := models.InstalledMod{
		ModID:    m[modLinePattern.SubexpIndex("modid")],
		Version:  m[modLinePattern.SubexpIndex("version")],
		ModName:  m[modLinePattern.SubexpIndex("modname")],
		Filename: m[modLinePattern.SubexpIndex("filename")],
		Errored:  strings.Contains(status, "E"),
		Disabled: strings.Contains(status, "D"),
	}

	if mod.ModID == "FML" || mod.ModID == "Forge" {
		return nil, nil
	}

	if mod.Filename == loaderJar {
		rule, ok := coremods[mod.ModID]
		if !ok {
			return nil, nil
		}
		mod.Filename = rule(mod.ModID, mod.Version)
	}

	return &mod, nil
}
