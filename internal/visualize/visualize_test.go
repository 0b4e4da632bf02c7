package visualize

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozjay/osrs-clog-dependencies/internal/catalog"
	"github.com/mozjay/osrs-clog-dependencies/internal/recipe"
	"github.com/mozjay/osrs-clog-dependencies/internal/testutil"
)

func render(f *testutil.Fixture, name string) string {
	var buf bytes.Buffer
	Render(&buf, name, f.Catalog, f.Resolver)
	return buf.String()
}

func TestRender_RestrictedItem(t *testing.T) {
	f := testutil.NewFixture(
		[]catalog.Item{{ID: 6571, Name: "Onyx", Tabs: []string{"Other", "Slayer"}}},
		map[string][]recipe.Recipe{
			"amulet of fury": {{"onyx", "gold bar"}},
		},
	)

	out := render(f, "amulet of fury")

	assert.Contains(t, out, "Dependency Chain for: amulet of fury")
	assert.Contains(t, out, "1 recipe(s) found")
	assert.Contains(t, out, "1 CLOG deps")
	assert.Contains(t, out, "RESTRICTED - All recipes require CLOG items")
	assert.Contains(t, out, "MINIMUM CLOG DEPENDENCIES (1 items)")
	assert.Contains(t, out, "Onyx (ID: 6571)")
	assert.Contains(t, out, "Source: Other, Slayer")
}

func TestRender_UnrestrictedItem(t *testing.T) {
	f := testutil.NewFixture(
		[]catalog.Item{{ID: 6571, Name: "Onyx"}},
		map[string][]recipe.Recipe{
			"bronze dagger": {{"bronze bar"}},
		},
	)

	out := render(f, "bronze dagger")

	assert.Contains(t, out, "CLOG-FREE")
	assert.Contains(t, out, "NOT RESTRICTED")
	assert.NotContains(t, out, "MINIMUM CLOG DEPENDENCIES")
}

func TestRender_CondensedChainFollowsWinningRecipe(t *testing.T) {
	// Two alternatives: the cheap one wins and is the only branch rendered.
	f := testutil.NewFixture(
		[]catalog.Item{
			{ID: 1, Name: "Rare gem"},
			{ID: 2, Name: "Rarer gem"},
		},
		map[string][]recipe.Recipe{
			"ring": {
				{"rare gem", "rarer gem"},
				{"rare gem"},
			},
		},
	)

	out := render(f, "ring")

	assert.Contains(t, out, "├─ rare gem")
	assert.NotContains(t, out, "├─ rarer gem")
	assert.Contains(t, out, "[CLOG]")
}

func TestRender_ChainPrunesClogFreeBranches(t *testing.T) {
	f := testutil.NewFixture(
		[]catalog.Item{{ID: 1, Name: "Rare gem"}},
		map[string][]recipe.Recipe{
			"ring": {{"rare gem", "gold bar"}},
		},
	)

	out := render(f, "ring")

	assert.Contains(t, out, "rare gem")
	// "gold bar" is clog-free and not a catalog item, so the chain drops it;
	// it still shows up in the recipe material listing above.
	assert.NotContains(t, out, "├─ gold bar")
}

func TestMaterialSummaryTruncates(t *testing.T) {
	materials := []string{"a", "b", "c", "d", "e", "f", "g"}
	assert.Equal(t, "a, b, c, d, e...", materialSummary(materials, 5))
	assert.Equal(t, "a, b", materialSummary([]string{"a", "b"}, 5))
}

func TestSuggest(t *testing.T) {
	candidates := []string{
		"amulet of fury",
		"amulet of glory",
		"abyssal whip",
		"onyx",
	}

	t.Run("nearest first", func(t *testing.T) {
		got := Suggest("amulet of furyy", candidates, 5)
		require.NotEmpty(t, got)
		assert.Equal(t, "amulet of fury", got[0])
	})

	t.Run("distance bound excludes the unrelated", func(t *testing.T) {
		got := Suggest("amulet of furyy", candidates, 5)
		assert.NotContains(t, got, "abyssal whip")
		assert.NotContains(t, got, "onyx")
	})

	t.Run("max caps the result", func(t *testing.T) {
		got := Suggest("onyx", []string{"onyx", "onix", "onyxx", "onyx "}, 2)
		assert.Len(t, got, 2)
		assert.Equal(t, "onyx", got[0])
	})

	t.Run("no plausible match", func(t *testing.T) {
		assert.Empty(t, Suggest("completely unrelated", candidates, 5))
	})
}
