// Package recipe models the AND/OR recipe graph: each item name maps to the
// set of known ways to produce it. Materials within one recipe are
// AND-combined; alternative recipes for the same item are OR-combined.
package recipe

import (
	"sort"
	"strings"
)

// Recipe is one concrete way to produce an item: an ordered list of lowercase
// material names. Materials may be catalog items, other craftable items, or
// base resources with no recipe of their own.
type Recipe []string

// Contains reports whether the recipe lists the given material.
func (r Recipe) Contains(material string) bool {
	for _, m := range r {
		if m == material {
			return true
		}
	}
	return false
}

// Set maps lowercase output names to their alternative recipes. Alternative
// order is preserved: it is the stable tie-break for the resolver and the
// index reported as "which recipe was chosen".
type Set struct {
	recipes map[string][]Recipe
}

// NewSet returns an empty recipe set.
func NewSet() *Set {
	return &Set{recipes: make(map[string][]Recipe)}
}

// Add appends one alternative recipe for the given output name. Recipes for
// the same output are never merged.
func (s *Set) Add(name string, r Recipe) {
	name = strings.ToLower(name)
	s.recipes[name] = append(s.recipes[name], r)
}

// Recipes returns the alternatives for the given name, or nil.
func (s *Set) Recipes(name string) []Recipe {
	return s.recipes[strings.ToLower(name)]
}

// Has reports whether any recipe exists for the given name.
func (s *Set) Has(name string) bool {
	_, ok := s.recipes[strings.ToLower(name)]
	return ok
}

// Len reports the number of distinct output names.
func (s *Set) Len() int {
	return len(s.recipes)
}

// MultiRecipeCount reports how many outputs have more than one alternative.
func (s *Set) MultiRecipeCount() int {
	n := 0
	for _, alts := range s.recipes {
		if len(alts) > 1 {
			n++
		}
	}
	return n
}

// Names returns all output names, sorted for deterministic iteration.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.recipes))
	for name := range s.recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AppendMaterial adds the given material to every existing alternative for
// the named output. Used by the variant linker to inject the base form as an
// extra requirement.
func (s *Set) AppendMaterial(name, material string) {
	name = strings.ToLower(name)
	alts := s.recipes[name]
	for i := range alts {
		alts[i] = append(alts[i], material)
	}
	s.recipes[name] = alts
}

// AnyListsMaterial reports whether any alternative for the named output
// already lists the given material. This is the idempotence guard for the
// variant linker.
func (s *Set) AnyListsMaterial(name, material string) bool {
	for _, alt := range s.recipes[strings.ToLower(name)] {
		if alt.Contains(material) {
			return true
		}
	}
	return false
}
