package variant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozjay/osrs-clog-dependencies/internal/catalog"
	"github.com/mozjay/osrs-clog-dependencies/internal/recipe"
	"github.com/mozjay/osrs-clog-dependencies/internal/testutil"
)

func newFixture(items []catalog.Item, recipes map[string][]recipe.Recipe, extraNames map[string]int) *testutil.Fixture {
	f := testutil.NewFixture(items, recipes)
	for name, id := range extraNames {
		f.Universe.Add(name, id)
	}
	return f
}

func link(t *testing.T, f *testutil.Fixture) Result {
	t.Helper()
	return NewLinker(f.Resolver, f.Universe, DefaultRules()).Link(context.Background())
}

func depIDs(deps map[int]struct{}) []int {
	out := make([]int, 0, len(deps))
	for id := range deps {
		out = append(out, id)
	}
	return out
}

func TestLink_SynthesizesVirtualRecipe(t *testing.T) {
	// "Amulet of rancour" is in the catalog; "amulet of rancour (s)" exists
	// in the name universe with no recipe. Linking makes the base the sole
	// material of the variant.
	f := newFixture(
		[]catalog.Item{{ID: 100, Name: "Amulet of rancour"}},
		nil,
		map[string]int{"amulet of rancour (s)": 29801},
	)

	result := link(t, f)
	assert.Equal(t, 1, result.Phase1Added)
	assert.Equal(t, 0, result.Phase1Updated)

	require.True(t, f.Recipes.Has("amulet of rancour (s)"))
	assert.ElementsMatch(t, []int{100},
		depIDs(f.Resolver.MinimumDependencies("amulet of rancour (s)")))
}

func TestLink_StripsBaseSuffix(t *testing.T) {
	// "Tumeken's shadow (uncharged)" in the catalog gates the charged form.
	f := newFixture(
		[]catalog.Item{{ID: 200, Name: "Tumeken's shadow (uncharged)"}},
		nil,
		map[string]int{"tumeken's shadow": 27275},
	)

	link(t, f)

	assert.ElementsMatch(t, []int{200},
		depIDs(f.Resolver.MinimumDependencies("tumeken's shadow")))
}

func TestLink_InjectsBaseIntoExistingRecipes(t *testing.T) {
	// The variant already has recipes: the base is appended to every
	// alternative instead of replacing them.
	f := newFixture(
		[]catalog.Item{{ID: 300, Name: "Toxic staff (uncharged)"}},
		map[string][]recipe.Recipe{
			"toxic staff of the dead": {
				{"magic fang", "staff of the dead"},
				{"charge pack"},
			},
		},
		map[string]int{"toxic staff of the dead": 12904},
	)

	result := link(t, f)
	assert.Equal(t, 1, result.Phase1Updated)

	for _, alt := range f.Recipes.Recipes("toxic staff of the dead") {
		assert.True(t, alt.Contains("toxic staff (uncharged)"))
	}
	assert.ElementsMatch(t, []int{300},
		depIDs(f.Resolver.MinimumDependencies("toxic staff of the dead")))
}

func TestLink_InvalidatesStaleResolution(t *testing.T) {
	f := newFixture(
		[]catalog.Item{{ID: 300, Name: "Black mask (10)"}},
		map[string][]recipe.Recipe{
			"black mask": {{"feather"}},
		},
		map[string]int{"black mask": 8901},
	)

	// Resolve before linking so a stale memo entry exists.
	require.Empty(t, f.Resolver.MinimumDependencies("black mask"))

	link(t, f)

	assert.ElementsMatch(t, []int{300},
		depIDs(f.Resolver.MinimumDependencies("black mask")))
}

func TestLink_SkipsCatalogVariants(t *testing.T) {
	// Both lock states are separate catalog entries: neither may become a
	// variant of the other.
	f := newFixture(
		[]catalog.Item{
			{ID: 1, Name: "Trophy"},
			{ID: 2, Name: "Trophy (l)"},
		},
		nil,
		nil,
	)

	result := link(t, f)
	assert.Zero(t, result.Phase1Added)
	assert.False(t, f.Recipes.Has("trophy (l)"))
}

func TestLink_SkipsNamesOutsideUniverse(t *testing.T) {
	f := newFixture(
		[]catalog.Item{{ID: 1, Name: "Trophy"}},
		nil,
		nil, // no "trophy (l)" etc. in the universe
	)

	result := link(t, f)
	assert.Zero(t, result.Phase1Added)
	assert.Zero(t, result.Phase1Updated)
}

func TestLink_Phase2PropagatesThroughDerivedItems(t *testing.T) {
	// "serpentine helm" is derived (its only recipe needs a catalog item);
	// its locked variant exists only in the name universe. Phase 2 links the
	// variant to the derived item, so restriction propagates a level further.
	f := newFixture(
		[]catalog.Item{{ID: 400, Name: "Serpentine visage"}},
		map[string][]recipe.Recipe{
			"serpentine helm": {{"serpentine visage", "chisel"}},
		},
		map[string]int{"serpentine helm (l)": 25905},
	)

	result := link(t, f)
	assert.Equal(t, 1, result.Phase2Added)

	assert.ElementsMatch(t, []int{400},
		depIDs(f.Resolver.MinimumDependencies("serpentine helm (l)")))
}

func TestLink_Phase2IgnoresUnrestrictedItems(t *testing.T) {
	f := newFixture(
		[]catalog.Item{{ID: 1, Name: "Trophy"}},
		map[string][]recipe.Recipe{
			"bronze dagger": {{"bronze bar"}},
		},
		map[string]int{"bronze dagger (broken)": 55555},
	)

	result := link(t, f)
	assert.Zero(t, result.Phase2Added)
	assert.False(t, f.Recipes.Has("bronze dagger (broken)"))
}

func TestLink_Idempotent(t *testing.T) {
	f := newFixture(
		[]catalog.Item{
			{ID: 100, Name: "Amulet of rancour"},
			{ID: 300, Name: "Toxic staff (uncharged)"},
		},
		map[string][]recipe.Recipe{
			"toxic staff of the dead": {{"magic fang"}},
		},
		map[string]int{
			"amulet of rancour (s)":   29801,
			"toxic staff of the dead": 12904,
		},
	)

	first := link(t, f)
	require.Positive(t, first.Added())
	require.Positive(t, first.Updated())

	snapshotVirtual := f.Recipes.Recipes("amulet of rancour (s)")
	snapshotUpdated := f.Recipes.Recipes("toxic staff of the dead")

	second := link(t, f)
	assert.Zero(t, second.Added(), "second run must not synthesize duplicates")
	assert.Zero(t, second.Updated(), "second run must not inject the base twice")
	assert.Equal(t, snapshotVirtual, f.Recipes.Recipes("amulet of rancour (s)"))
	assert.Equal(t, snapshotUpdated, f.Recipes.Recipes("toxic staff of the dead"))
}

func TestLink_BarrowsWearStates(t *testing.T) {
	f := newFixture(
		[]catalog.Item{{ID: 500, Name: "Dharok's greataxe"}},
		nil,
		map[string]int{
			"dharok's greataxe 0":   4718,
			"dharok's greataxe 100": 4719,
		},
	)

	result := link(t, f)
	assert.Equal(t, 2, result.Phase1Added)
	assert.ElementsMatch(t, []int{500},
		depIDs(f.Resolver.MinimumDependencies("dharok's greataxe 0")))
	assert.ElementsMatch(t, []int{500},
		depIDs(f.Resolver.MinimumDependencies("dharok's greataxe 100")))
}

func TestDefaultRules_PriorityOrderStable(t *testing.T) {
	rules := DefaultRules()
	require.NotEmpty(t, rules)
	// The uncharged rules must come before the suffix-adding rules: order is
	// the tie-break for which rule first claims a name.
	assert.Equal(t, " (uncharged)", rules[0].BaseSuffix)
	assert.Equal(t, "charged", rules[0].Kind)
}
