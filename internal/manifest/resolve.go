// Package manifest resolves the official mod list of a modpack version from
// the release manifests and the asset catalogue kept on GitHub.
package manifest

import (
	"log/slog"
	"sort"

	"github.com/crashscope/core/internal/models"
)

// OfficialMods lists the mods of release that belong in environment side,
// external mods first, each group in modid order. Entries the catalogue does
// not know are skipped.
func OfficialMods(release *models.Release, assets *models.Assets, side models.Side, log *slog.Logger) []models.OfficialMod {
	if log == nil {
		log = slog.Default()
	}

	var mods []models.OfficialMod
	groups := []struct {
		pinned map[string]models.ModVersionInfo
		source models.ModSource
	}{
		{release.ExternalMods, models.SourceOther},
		{release.GithubMods, models.SourceGithub},
	}

	for _, g := range groups {
		ids := make([]string, 0, len(g.pinned))
		for id := range g.pinned {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			pin := g.pinned[id]
			pinSide, ok := models.ParseSide(string(pin.Side))
			if !ok {
				if pin.Side != "" {
					log.Warn("unknown mod side in manifest", "mod", id, "side", pin.Side)
				}
				continue
			}
			if !pinSide.Includes(side) {
				continue
			}

			info, ok := assets.Mod(id, g.source)
			if !ok {
				log.Warn("mod missing from asset catalogue", "mod", id, "source", g.source)
				continue
			}
			version, ok := info.Version(pin.Version)
			if !ok {
				log.Warn("mod version missing from asset catalogue", "mod", id, "version", pin.Version)
				continue
			}
			mods = append(mods, models.OfficialMod{Info: *info, Version: version})
		}
	}

	return mods
}
