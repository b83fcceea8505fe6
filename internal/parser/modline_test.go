// Package parser turns crash report text into structured facts. It handles the
// fixed header, the main stack trace, the mod state table and the environment
// markers that tell client and server reports apart.
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModLine(t *testing.T) {
	t.Run("regular mod", func(t *testing.T) {
		mod, err := ParseModLine("UCHIJAAAA\tNotEnoughItems{2.5.4-GTNH} [NotEnoughItems] (NotEnoughItems-2.5.4-GTNH.jar)")

		require.NoError(t, err)
		require.NotNil(t, mod)
		assert.Equal(t, "NotEnoughItems", mod.ModID)
		assert.Equal(t, "2.5.4-GTNH", mod.Version)
		assert.Equal(t, "NotEnoughItems", mod.ModName)
		assert.Equal(t, "NotEnoughItems-2.5.4-GTNH.jar", mod.Filename)
		assert.False(t, mod.Errored)
		assert.False(t, mod.Disabled)
	})

	t.Run("status flags", func(t *testing.T) {
		tests := []struct {
			status   string
			errored  bool
			disabled bool
		}{
			{"UCHIJAAAA", false, false},
			{"UCHIJAAAE", true, false},
			{"UD", false, true},
			{"UCE", true, false},
			{"LDE", true, true},
		}

		for _, tt := range tests {
			t.Run(tt.status, func(t *testing.T) {
				mod, err := ParseModLine(tt.status + " foo{1.0} [Foo] (foo.jar)")
				require.NoError(t, err)
				require.NotNil(t, mod)
				assert.Equal(t, tt.errored, mod.Errored)
				assert.Equal(t, tt.disabled, mod.Disabled)
			})
		}
	})

	t.Run("names with spaces and brackets", func(t *testing.T) {
		mod, err := ParseModLine("UCHIJAAAA\tGalacticraft Core{3.0.12} [Galacticraft [Core]] (GalacticraftCore (1).jar)")

		require.NoError(t, err)
		require.NotNil(t, mod)
		assert.Equal(t, "Galacticraft Core", mod.ModID)
		assert.Equal(t, "Galacticraft [Core]", mod.ModName)
		assert.Equal(t, "GalacticraftCore (1).jar", mod.Filename)
	})

	t.Run("loader pseudo mods are dropped", func(t *testing.T) {
		for _, line := range []string{
			"UCHIJAAAA\tFML{7.10.99.99} [Forge Mod Loader] (forge-1.7.10.jar)",
			"UCHIJAAAA\tForge{10.13.4.1614} [Minecraft Forge] (forge-1.7.10.jar)",
			"UCE\tForge{1} [x] (minecraft.jar)",
		} {
			mod, err := ParseModLine(line)
			assert.NoError(t, err)
			assert.Nil(t, mod)
		}
	})

	t.Run("known coremod filename is rebuilt", func(t *testing.T) {
		mod, err := ParseModLine("UCHIJAAAA\tCodeChickenCore{1.2.3} [CodeChicken Core] (minecraft.jar)")

		require.NoError(t, err)
		require.NotNil(t, mod)
		assert.Equal(t, "CodeChickenCore-1.2.3.jar", mod.Filename)
	})

	t.Run("player api coremod", func(t *testing.T) {
		mod, err := ParseModLine("UCHIJAAAA\tPlayerAPI{1.4.2} [Player API] (minecraft.jar)")

		require.NoError(t, err)
		require.NotNil(t, mod)
		assert.Equal(t, "PlayerAPI-1.4.2.jar", mod.Filename)
	})

	t.Run("unknown coremod is dropped", func(t *testing.T) {
		mod, err := ParseModLine("UCHIJAAAA\tmcp{9.05} [Minecraft Coder Pack] (minecraft.jar)")

		assert.NoError(t, err)
		assert.Nil(t, mod)
	})

	t.Run("invalid lines", func(t *testing.T) {
		for _, line := range []string{
			"",
			"GL info: ' Vendor: 'NVIDIA Corporation'",
			"UCHIJAAAA\t{1.0} [x] (x.jar)",
			"UCHIJAAAA\tfoo{} [x] (x.jar)",
			"XYZ\tfoo{1.0} [Foo] (foo.jar)",
			"UCHIJAAAA\tfoo{1.0} [Foo]",
			"UCHIJAAAA\tfoo{1.0}[Foo] (foo.jar)",
		} {
			mod, err := ParseModLine(line)
			assert.ErrorIs(t, err, ErrInvalidModLine, line)
			assert.Nil(t, mod)
		}
	})
}
