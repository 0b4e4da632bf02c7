// Package resolver implements the minimum-dependency-set engine over the
// AND/OR recipe graph.
//
// An item is restricted iff every recipe alternative for it transitively
// requires at least one collection-log item. If any alternative path is
// entirely free of collection-log materials the item is unrestricted and its
// dependency set is empty. For restricted items the resolver reports the
// smallest dependency set across alternatives, together with the index of the
// winning alternative.
package resolver

import (
	"sort"
	"strings"
	"sync"

	"github.com/mozjay/osrs-clog-dependencies/internal/catalog"
	"github.com/mozjay/osrs-clog-dependencies/internal/recipe"
)

// Recipe-index markers stored in the memo for names that never went through
// alternative selection.
const (
	// ChosenSelf marks a name that is itself a catalog item.
	ChosenSelf = 0
	// ChosenNone marks a name with no recipe at all (a base resource).
	ChosenNone = -1
)

type cacheEntry struct {
	deps      map[int]struct{}
	recipeIdx int
}

// Resolver owns the catalog and the recipe set for its lifetime and memoizes
// resolutions per lowercase item name.
//
// The memo is guarded by a RWMutex so independent top-level resolutions may
// run concurrently: entries are only ever written with the deterministic
// result of the single-threaded algorithm, so a read-then-write race settles
// on the same value regardless of interleaving. Visited sets are per-call-path
// clones and never shared.
type Resolver struct {
	catalog *catalog.Set
	recipes *recipe.Set

	mu   sync.RWMutex
	memo map[string]cacheEntry
}

// New creates a resolver over the given catalog and recipe graph. The memo
// starts empty and is populated lazily on first query per name.
func New(cat *catalog.Set, recipes *recipe.Set) *Resolver {
	return &Resolver{
		catalog: cat,
		recipes: recipes,
		memo:    make(map[string]cacheEntry),
	}
}

// Recipes exposes the underlying recipe set for read-only callers.
func (r *Resolver) Recipes() *recipe.Set {
	return r.recipes
}

// Catalog exposes the underlying catalog set for read-only callers.
func (r *Resolver) Catalog() *catalog.Set {
	return r.catalog
}

// Invalidate drops the memo entry for one item name. Callers that mutate the
// recipe graph after resolutions have run (the variant linker) must call this
// for every name whose recipes changed.
func (r *Resolver) Invalidate(name string) {
	r.mu.Lock()
	delete(r.memo, strings.ToLower(name))
	r.mu.Unlock()
}

// ChosenRecipe returns the cached index of the winning alternative for a
// previously resolved name. ChosenSelf and ChosenNone mark names that never
// went through selection.
func (r *Resolver) ChosenRecipe(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.memo[strings.ToLower(name)]
	return entry.recipeIdx, ok
}

// Restricted reports whether the item's minimum dependency set is non-empty.
func (r *Resolver) Restricted(name string) bool {
	return len(r.MinimumDependencies(name)) > 0
}

// MinimumDependencies returns the smallest set of catalog item ids required
// to produce the named item. An empty set means the item is unrestricted:
// either it is a base resource, or at least one recipe chain avoids catalog
// items entirely. The returned map is shared with the memo and must not be
// mutated.
func (r *Resolver) MinimumDependencies(name string) map[int]struct{} {
	return r.minimumDependencies(name, make(map[string]struct{}))
}

func (r *Resolver) minimumDependencies(name string, visited map[string]struct{}) map[int]struct{} {
	name = strings.ToLower(name)

	r.mu.RLock()
	entry, cached := r.memo[name]
	r.mu.RUnlock()
	if cached {
		return entry.deps
	}

	// Cycle guard: a name already on the current call path contributes an
	// empty set, uncached, so independent paths can still revisit it. This
	// under-approximates items caught in circular material references; the
	// upstream data has no legitimate cycles, so termination wins.
	if _, ok := visited[name]; ok {
		return map[int]struct{}{}
	}
	visited[name] = struct{}{}

	// A catalog item is restricted by itself.
	if id, ok := r.catalog.IDByName(name); ok {
		deps := map[int]struct{}{id: {}}
		r.store(name, deps, ChosenSelf)
		return deps
	}

	recipes := r.recipes.Recipes(name)
	if len(recipes) == 0 {
		// Base resource (ore, logs, ...): nothing to depend on.
		deps := map[int]struct{}{}
		r.store(name, deps, ChosenNone)
		return deps
	}

	var minDeps map[int]struct{}
	minIdx := ChosenNone

	for idx, materials := range recipes {
		recipeDeps := r.recipeDependencies(materials, cloneVisited(visited))

		if minDeps == nil || len(recipeDeps) < len(minDeps) {
			minDeps = recipeDeps
			minIdx = idx

			// An empty alternative is provably optimal.
			if len(recipeDeps) == 0 {
				break
			}
		}
	}

	r.store(name, minDeps, minIdx)
	return minDeps
}

// recipeDependencies computes the dependency set of a single recipe: the
// union over its materials of the material's own catalog id (when it is a
// catalog name) and its recursive resolution. Each material recurses with its
// own clone of the visited set so sibling branches never poison each other.
func (r *Resolver) recipeDependencies(materials recipe.Recipe, visited map[string]struct{}) map[int]struct{} {
	deps := make(map[int]struct{})

	for _, material := range materials {
		material = strings.ToLower(material)
		if _, ok := visited[material]; ok {
			continue
		}

		if id, ok := r.catalog.IDByName(material); ok {
			deps[id] = struct{}{}
		}

		for id := range r.minimumDependencies(material, cloneVisited(visited)) {
			deps[id] = struct{}{}
		}
	}

	return deps
}

// RecipeDependencies pairs one alternative's materials with its computed
// dependency set.
type RecipeDependencies struct {
	Materials recipe.Recipe
	Deps      map[int]struct{}
}

// RecipesWithDependencies computes the dependency set of every alternative
// for the named item, without early exit or selection. Diagnostics and the
// visualizer use it to show all paths.
func (r *Resolver) RecipesWithDependencies(name string) []RecipeDependencies {
	var result []RecipeDependencies
	for _, materials := range r.recipes.Recipes(name) {
		result = append(result, RecipeDependencies{
			Materials: materials,
			Deps:      r.recipeDependencies(materials, make(map[string]struct{})),
		})
	}
	return result
}

// CraftableFromCatalog filters the named catalog item's own recipes down to
// the materials that are themselves catalog items: each returned inner slice
// is one alternative's catalog materials, sorted by id. Alternatives with no
// catalog materials are discarded; nil is returned when nothing remains.
// This captures effective unlocking: holding the materials of such a recipe
// counts as holding the item itself.
func (r *Resolver) CraftableFromCatalog(name string) [][]int {
	var result [][]int
	for _, materials := range r.recipes.Recipes(name) {
		var ids []int
		for _, material := range materials {
			if id, ok := r.catalog.IDByName(material); ok {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			sort.Ints(ids)
			result = append(result, ids)
		}
	}
	return result
}

func (r *Resolver) store(name string, deps map[int]struct{}, idx int) {
	r.mu.Lock()
	r.memo[name] = cacheEntry{deps: deps, recipeIdx: idx}
	r.mu.Unlock()
}

func cloneVisited(visited map[string]struct{}) map[string]struct{} {
	clone := make(map[string]struct{}, len(visited)+1)
	for name := range visited {
		clone[name] = struct{}{}
	}
	return clone
}
