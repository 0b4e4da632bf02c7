// Package visualize renders an item's dependency chain on the console. It is
// a diagnostics surface: it reads through the resolver's public queries and
// displays every recipe alternative, the restriction verdict, and the
// condensed path to the collection-log items that gate the item.
package visualize

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gookit/color"

	"github.com/mozjay/osrs-clog-dependencies/internal/catalog"
	"github.com/mozjay/osrs-clog-dependencies/internal/resolver"
)

// Render prints the full dependency analysis for one item.
func Render(w io.Writer, name string, cat *catalog.Set, res *resolver.Resolver) {
	divider := strings.Repeat("=", 60)
	rule := strings.Repeat("-", 40)

	fmt.Fprintf(w, "\n%s\n", divider)
	fmt.Fprintf(w, "Dependency Chain for: %s\n", name)
	fmt.Fprintf(w, "%s\n", divider)

	alternatives := res.RecipesWithDependencies(name)
	if len(alternatives) > 0 {
		fmt.Fprintf(w, "\n[Recipe Analysis - %d recipe(s) found]\n%s\n", len(alternatives), rule)
		for idx, alt := range alternatives {
			status := color.Green.Sprint("✓ CLOG-FREE")
			if len(alt.Deps) > 0 {
				status = color.Red.Sprintf("✗ %d CLOG deps", len(alt.Deps))
			}
			fmt.Fprintf(w, "  Recipe %d: %s\n", idx+1, status)
			fmt.Fprintf(w, "    Materials: %s\n", materialSummary(alt.Materials, 5))
		}
	}

	minDeps := res.MinimumDependencies(name)

	fmt.Fprintf(w, "\n[Restriction Status]\n%s\n", rule)
	if len(minDeps) > 0 {
		fmt.Fprintf(w, "  %s\n", color.Red.Sprint("RESTRICTED - All recipes require CLOG items"))
	} else {
		fmt.Fprintf(w, "  %s\n", color.Green.Sprint("NOT RESTRICTED - At least one CLOG-free recipe exists"))
	}

	if len(minDeps) == 0 {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "\n[Condensed View - Best recipe path to CLOG items]\n%s\n", rule)
	for _, line := range chain(name, 0, make(map[string]struct{}), cat, res) {
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "MINIMUM CLOG DEPENDENCIES (%d items):\n%s\n", len(minDeps), rule)

	ids := make([]int, 0, len(minDeps))
	for id := range minDeps {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		item, ok := cat.ByID(id)
		if !ok {
			fmt.Fprintf(w, "  • Unknown item (ID: %d)\n", id)
			continue
		}
		fmt.Fprintf(w, "  • %s (ID: %d)\n", item.Name, id)
		fmt.Fprintf(w, "    Source: %s\n", tabSummary(item.Tabs, 2))
	}
	fmt.Fprintln(w)
}

// chain renders the dependency tree below one item, following only the
// winning recipe of multi-recipe nodes and pruning branches that reach no
// collection-log item. The visited set is cloned per branch, same discipline
// as the resolver.
func chain(name string, depth int, visited map[string]struct{}, cat *catalog.Set, res *resolver.Resolver) []string {
	name = strings.ToLower(name)

	if _, ok := visited[name]; ok {
		return nil
	}
	visited[name] = struct{}{}

	isClog := cat.Contains(name)
	if len(res.MinimumDependencies(name)) == 0 && !isClog {
		return nil
	}

	recipes := res.Recipes().Recipes(name)
	if len(recipes) > 1 {
		if idx, ok := res.ChosenRecipe(name); ok && idx >= 0 && idx < len(recipes) {
			recipes = recipes[idx : idx+1]
		}
	}

	materials := make(map[string]struct{})
	for _, r := range recipes {
		for _, m := range r {
			materials[m] = struct{}{}
		}
	}
	ordered := make([]string, 0, len(materials))
	for m := range materials {
		ordered = append(ordered, m)
	}
	sort.Strings(ordered)

	var childLines []string
	for _, material := range ordered {
		childLines = append(childLines, chain(material, depth+1, cloneVisited(visited), cat, res)...)
	}

	marker := ""
	if isClog {
		marker = color.Yellow.Sprint(" [CLOG]")
	}

	prefix := strings.Repeat("│  ", depth)
	connector := ""
	if depth > 0 {
		connector = "├─ "
	}

	lines := []string{fmt.Sprintf("%s%s%s%s", prefix, connector, name, marker)}
	return append(lines, childLines...)
}

func materialSummary(materials []string, limit int) string {
	if len(materials) <= limit {
		return strings.Join(materials, ", ")
	}
	return strings.Join(materials[:limit], ", ") + "..."
}

func tabSummary(tabs []string, limit int) string {
	if len(tabs) <= limit {
		return strings.Join(tabs, ", ")
	}
	return strings.Join(tabs[:limit], ", ") + "..."
}

func cloneVisited(visited map[string]struct{}) map[string]struct{} {
	clone := make(map[string]struct{}, len(visited))
	for name := range visited {
		clone[name] = struct{}{}
	}
	return clone
}
