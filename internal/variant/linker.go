package variant

import (
	"context"
	"strings"

	"github.com/mozjay/osrs-clog-dependencies/internal/catalog"
	"github.com/mozjay/osrs-clog-dependencies/internal/ctxlog"
	"github.com/mozjay/osrs-clog-dependencies/internal/recipe"
	"github.com/mozjay/osrs-clog-dependencies/internal/resolver"
)

// Linker augments the recipe graph in place with edges derived from the rule
// table. It mutates the recipe set owned by the resolver and invalidates the
// resolver's memo entries for every name it touches.
type Linker struct {
	catalog  *catalog.Set
	recipes  *recipe.Set
	universe *catalog.Universe
	res      *resolver.Resolver
	rules    []Rule
}

// Result carries the per-phase linking counters for observability.
type Result struct {
	Phase1Added   int
	Phase1Updated int
	Phase2Added   int
	Phase2Updated int
}

// Added is the total number of synthesized virtual recipes.
func (r Result) Added() int { return r.Phase1Added + r.Phase2Added }

// Updated is the total number of names whose existing recipes gained the base
// form as an extra material.
func (r Result) Updated() int { return r.Phase1Updated + r.Phase2Updated }

// NewLinker wires a linker over the resolver's graph. The universe supplies
// the existence test for candidate variant names; rules are applied in slice
// order.
func NewLinker(res *resolver.Resolver, universe *catalog.Universe, rules []Rule) *Linker {
	return &Linker{
		catalog:  res.Catalog(),
		recipes:  res.Recipes(),
		universe: universe,
		res:      res,
		rules:    rules,
	}
}

// Link runs the two linking phases and returns the counters.
//
// Phase 1 processes every catalog name. Phase 2 re-scans the (phase-1
// augmented) graph for non-catalog outputs whose resolved dependency set is
// non-empty and runs the same rule pass with those as the base, so
// restriction propagates one level further, to variants of items that are
// themselves only reachable through collection-log items.
//
// Linking is idempotent: a second run finds the base already listed in every
// recipe it updated, and names it synthesized recipes for now have a recipe,
// so no duplicates are created.
func (l *Linker) Link(ctx context.Context) Result {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Variant linker started.", "rule_count", len(l.rules))

	var result Result

	for _, name := range l.catalog.Names() {
		added, updated := l.applyRules(name)
		result.Phase1Added += added
		result.Phase1Updated += updated
	}
	logger.Info("Variant linking phase 1 (catalog variants) complete.",
		"added", result.Phase1Added, "updated", result.Phase1Updated)

	// Snapshot the names before phase 2: applyRules grows the recipe set
	// while we iterate.
	var derived []string
	for _, name := range l.recipes.Names() {
		if !l.catalog.Contains(name) {
			derived = append(derived, name)
		}
	}

	for _, name := range derived {
		if len(l.res.MinimumDependencies(name)) == 0 {
			continue
		}
		added, updated := l.applyRules(name)
		result.Phase2Added += added
		result.Phase2Updated += updated
	}
	logger.Info("Variant linking phase 2 (derived variants) complete.",
		"added", result.Phase2Added, "updated", result.Phase2Updated)

	return result
}

// applyRules tries every rule against one base name and returns how many
// virtual recipes were synthesized and how many existing names were updated.
func (l *Linker) applyRules(baseName string) (added, updated int) {
	baseName = strings.ToLower(baseName)

	for _, rule := range l.rules {
		var variantName string
		if rule.BaseSuffix != "" {
			suffix := strings.ToLower(rule.BaseSuffix)
			if !strings.HasSuffix(baseName, suffix) {
				continue
			}
			variantName = strings.TrimSuffix(baseName, suffix) + strings.ToLower(rule.VariantSuffix)
		} else {
			variantName = baseName + strings.ToLower(rule.VariantSuffix)
		}

		// The candidate must be a real item, must not be a catalog entry in
		// its own right, and must actually differ from the base.
		if !l.universe.Has(variantName) {
			continue
		}
		if l.catalog.Contains(variantName) {
			continue
		}
		if variantName == baseName {
			continue
		}

		if l.recipes.Has(variantName) {
			if l.recipes.AnyListsMaterial(variantName, baseName) {
				continue
			}
			// The variant still consumes its normal ingredients but
			// additionally needs the base form.
			l.recipes.AppendMaterial(variantName, baseName)
			l.res.Invalidate(variantName)
			updated++
		} else {
			// No recipe at all: the only way to get the variant is to
			// already have the base. Invalidate in case the name was
			// already resolved as a base resource during phase 2.
			l.recipes.Add(variantName, recipe.Recipe{baseName})
			l.res.Invalidate(variantName)
			added++
		}
	}

	return added, updated
}
