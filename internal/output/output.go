// Package output projects resolved graph state into the document consumed by
// the RuneLite plugin. It only reads through the resolver's public queries
// and never mutates graph state.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mozjay/osrs-clog-dependencies/internal/catalog"
	"github.com/mozjay/osrs-clog-dependencies/internal/ctxlog"
	"github.com/mozjay/osrs-clog-dependencies/internal/resolver"
)

// Document is the full output record.
type Document struct {
	Version   string `json:"version"`
	Generated string `json:"generated"`
	Stats     Stats  `json:"stats"`
	// CollectionLogItems is keyed by stringified catalog id.
	CollectionLogItems map[string]ClogEntry `json:"collectionLogItems"`
	// DerivedItems is keyed by lowercase item name.
	DerivedItems map[string]DerivedEntry `json:"derivedItems"`
}

// Stats summarizes the run for observability; the counters are the only
// surface where recoverable data problems show up.
type Stats struct {
	TotalClogItems                  int `json:"total_clog_items"`
	TotalDerivedItems               int `json:"total_derived_items"`
	ItemsWithClogFreeRecipes        int `json:"items_with_clog_free_recipes"`
	DerivedItemsWithMultipleIDs     int `json:"derived_items_with_multiple_ids"`
	DerivedItemsWithoutIDs          int `json:"derived_items_without_ids"`
	ClogItemsWithMultipleIDs        int `json:"clog_items_with_multiple_ids"`
	ClogItemsCraftableFromOtherClog int `json:"clog_items_craftable_from_other_clogs"`
}

// ClogEntry is one collection-log item in the output.
type ClogEntry struct {
	Name string   `json:"name"`
	Tabs []string `json:"tabs"`
	// AllIDs always includes the entry's own id; extra ids from the name
	// universe are included only when they are not ids of a different
	// catalog entry, so two log slots sharing a display name never merge.
	AllIDs []int `json:"all_ids"`
	// CraftableFrom lists recipes producing this item from other catalog
	// items: outer OR, inner AND.
	CraftableFrom [][]int `json:"craftable_from,omitempty"`
}

// DerivedEntry is one restricted derived item in the output.
type DerivedEntry struct {
	Name             string `json:"name"`
	ItemIDs          []int  `json:"item_ids"`
	ClogDependencies []int  `json:"clog_dependencies"`
}

// Build walks every output name in the recipe graph, asks the resolver for
// its minimum dependency set, and assembles the final document. Manual
// override records replace auto-derived entries verbatim, and their ids are
// stripped from every catalog entry's extra-id list.
func Build(
	ctx context.Context,
	cat *catalog.Set,
	res *resolver.Resolver,
	universe *catalog.Universe,
	overrides map[string]DerivedEntry,
	version string,
) *Document {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Projecting output document.")

	doc := &Document{
		Version:            version,
		Generated:          time.Now().Format("2006-01-02 15:04:05"),
		CollectionLogItems: make(map[string]ClogEntry, cat.Len()),
		DerivedItems:       make(map[string]DerivedEntry),
	}
	doc.Stats.TotalClogItems = cat.Len()

	buildDerivedItems(doc, cat, res, universe)
	buildClogItems(doc, cat, res, universe)
	applyOverrides(ctx, doc, overrides)

	doc.Stats.TotalDerivedItems = len(doc.DerivedItems)

	logger.Info("Output document projected.",
		"clog_items", len(doc.CollectionLogItems),
		"derived_items", len(doc.DerivedItems),
		"clog_free_items", doc.Stats.ItemsWithClogFreeRecipes,
		"derived_without_ids", doc.Stats.DerivedItemsWithoutIDs)
	return doc
}

// buildDerivedItems emits an entry for every non-catalog output whose minimum
// dependency set is non-empty. Names with no known id are omitted and only
// surface in the stats.
func buildDerivedItems(doc *Document, cat *catalog.Set, res *resolver.Resolver, universe *catalog.Universe) {
	for _, name := range res.Recipes().Names() {
		if cat.Contains(name) {
			continue
		}

		minDeps := res.MinimumDependencies(name)
		if len(minDeps) == 0 {
			doc.Stats.ItemsWithClogFreeRecipes++
			continue
		}

		itemIDs := append([]int(nil), universe.IDs(name)...)
		if primary, ok := universe.PrimaryID(name); ok && !containsInt(itemIDs, primary) {
			itemIDs = append([]int{primary}, itemIDs...)
		}
		if len(itemIDs) == 0 {
			doc.Stats.DerivedItemsWithoutIDs++
			continue
		}
		if len(itemIDs) > 1 {
			doc.Stats.DerivedItemsWithMultipleIDs++
		}

		doc.DerivedItems[name] = DerivedEntry{
			Name:             name,
			ItemIDs:          itemIDs,
			ClogDependencies: sortedIDs(minDeps),
		}
	}
}

// buildClogItems emits one entry per catalog item, attaching non-catalog
// variant ids from the universe and any catalog-only crafting recipes.
func buildClogItems(doc *Document, cat *catalog.Set, res *resolver.Resolver, universe *catalog.Universe) {
	for _, item := range cat.Items() {
		allIDs := []int{item.ID}
		for _, extra := range universe.IDs(item.Name) {
			if extra != item.ID && !cat.ContainsID(extra) {
				allIDs = append(allIDs, extra)
			}
		}
		sort.Ints(allIDs)

		if len(allIDs) > 1 {
			doc.Stats.ClogItemsWithMultipleIDs++
		}

		entry := ClogEntry{
			Name:   item.Name,
			Tabs:   item.Tabs,
			AllIDs: allIDs,
		}

		// Catalog-from-catalog recipes enable effective unlocking: holding
		// Uncut onyx effectively unlocks Onyx.
		if craftable := res.CraftableFromCatalog(item.Name); craftable != nil {
			entry.CraftableFrom = craftable
			doc.Stats.ClogItemsCraftableFromOtherClog++
		}

		doc.CollectionLogItems[fmt.Sprintf("%d", item.ID)] = entry
	}
}

// applyOverrides merges manual records over the derived items and strips
// their ids out of every catalog entry's extra-id list so an id is never
// counted as both a catalog variant and a manually-declared derived item.
func applyOverrides(ctx context.Context, doc *Document, overrides map[string]DerivedEntry) {
	if len(overrides) == 0 {
		return
	}

	for name, entry := range overrides {
		doc.DerivedItems[strings.ToLower(name)] = entry

		remove := make(map[int]struct{}, len(entry.ItemIDs))
		for _, id := range entry.ItemIDs {
			remove[id] = struct{}{}
		}

		for key, clogEntry := range doc.CollectionLogItems {
			filtered := clogEntry.AllIDs[:0:0]
			for _, id := range clogEntry.AllIDs {
				if _, drop := remove[id]; !drop {
					filtered = append(filtered, id)
				}
			}
			if len(filtered) < len(clogEntry.AllIDs) {
				clogEntry.AllIDs = filtered
				doc.CollectionLogItems[key] = clogEntry
			}
		}
	}

	ctxlog.FromContext(ctx).Info("Applied manual override records.", "count", len(overrides))
}

// LoadOverrides reads the manual override file. A missing file is fine; an
// unreadable or malformed one degrades to no overrides with a warning.
func LoadOverrides(ctx context.Context, path string) map[string]DerivedEntry {
	logger := ctxlog.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No manual override file found.", "path", path)
		} else {
			logger.Warn("Failed to read manual override file.", "path", path, "error", err)
		}
		return nil
	}

	var overrides map[string]DerivedEntry
	if err := json.Unmarshal(data, &overrides); err != nil {
		logger.Warn("Failed to decode manual override file.", "path", path, "error", err)
		return nil
	}

	logger.Info("Loaded manual override records.", "count", len(overrides), "path", path)
	return overrides
}

// Write serializes the document as indented JSON, creating the parent
// directory when needed.
func (d *Document) Write(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output document %s: %w", path, err)
	}
	return nil
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
