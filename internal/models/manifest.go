// Package models defines the core data structures shared by the parser, the
// diagnostic engine and the manifest resolver.
package models

// ModVersionInfo pins a mod to a version inside a release manifest.
type ModVersionInfo struct {
	Version string `json:"version" msgpack:"version"`
	Side    Side   `json:"side,omitempty" msgpack:"side,omitempty"`
}

// Release is a modpack release manifest, either a tagged release or a nightly.
type Release struct {
	Version      string                    `json:"version"`
	LastVersion  string                    `json:"last_version,omitempty"`
	Config       string                    `json:"config,omitempty"`
	GithubMods   map[string]ModVersionInfo `json:"github_mods"`
	ExternalMods map[string]ModVersionInfo `json:"external_mods"`
}

// ModSource tells which catalogue list a mod comes from.
type ModSource string

const (
	SourceGithub ModSource = "github"
	SourceOther  ModSource = "other"
)

type ModVersion struct {
	VersionTag  string `json:"version_tag" msgpack:"version_tag"`
	Filename    string `json:"filename" msgpack:"filename"`
	DownloadURL string `json:"download_url,omitempty" msgpack:"download_url,omitempty"`
	Side        Side   `json:"side,omitempty" msgpack:"side,omitempty"`
}

type ModInfo struct {
	Name          string       `json:"name" msgpack:"name"`
	Side          Side         `json:"side,omitempty" msgpack:"side,omitempty"`
	LatestVersion string       `json:"latest_version,omitempty" msgpack:"latest_version,omitempty"`
	Versions      []ModVersion `json:"versions" msgpack:"versions"`
}

// Version finds the catalogue entry for a version tag.
func (m *ModInfo) Version(tag string) (ModVersion, bool) {
	for _, v := range m.Versions {
		if v.VersionTag == tag {
			return v, true
		}
	}
	return ModVersion{}, false
}

// Assets is the modpack asset catalogue listing every known mod and version.
type Assets struct {
	GithubMods   []ModInfo `json:"github_mods" msgpack:"github_mods"`
	ExternalMods []ModInfo `json:"external_mods" msgpack:"external_mods"`
}

// Mod looks a mod up by name in the list matching source.
func (a *Assets) Mod(name string, source ModSource) (*ModInfo, bool) {
	list := a.ExternalMods
	if source == SourceGithub {
		list = a.GithubMods
	}
	for i := range list {
		if list[i].Name == name {
			return &list[i], true
		}
	}
	return nil, false
}

// OfficialMod is one entry of the resolved official mod list.
type OfficialMod struct {
	Info    ModInfo    `json:"info"`
	Version ModVersion `json:"version"`
}
