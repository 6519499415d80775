package relevance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	require.InDelta(t, 1, Score("super mario bros nes", "Super Mario Bros. NES PAL Cartridge"), 0.0001)
	require.InDelta(t, 1, Score("", "anything"), 0.0001)
	require.Equal(t, float64(0), Score("nes", ""))

	unrelated := Score("zelda oracle gbc", "Super Mario Bros NES")
	require.Less(t, unrelated, 0.7)

	// a misspelling still scores higher than an unrelated title
	misspelled := Score("zelda oracle gbc", "Zelda Oracel of Seasons GBC")
	require.Greater(t, misspelled, unrelated)
	require.Greater(t, misspelled, 0.9)
}

func TestFilter(t *testing.T) {
	titles := []string{
		"Teenage Mutant Hero Turtles NES PAL",
		"Trolls NES PAL A",
		"Zelda Oracle of Ages GBC",
	}
	identity := func(s string) string { return s }

	kept := Filter(titles, identity, "teenage mutant hero turtles nes", 0.9)
	require.Len(t, kept, 1)
	require.Equal(t, titles[0], kept[0].Item)
	require.InDelta(t, 1, kept[0].Score, 0.0001)

	all := Filter(titles, identity, "teenage mutant hero turtles nes", 0)
	require.Len(t, all, 3)
	for i, s := range all {
		require.Equal(t, titles[i], s.Item)
	}
}

func TestExclude(t *testing.T) {
	identity := func(s string) string { return s }
	items := Filter([]string{
		"Super Mario Bros NES PAL Cartridge",
		"Super Mario Bros NES Box Only",
		"Super Mario Bros NES (Reproduction)",
	}, identity, "", 0)

	kept := Exclude(items, identity, []string{"box only", "REPRODUCTION"})
	require.Len(t, kept, 1)
	require.Equal(t, "Super Mario Bros NES PAL Cartridge", kept[0].Item)

	require.Len(t, Exclude(items, identity, nil), 3)
}
