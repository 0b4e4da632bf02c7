package recipe

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mozjay/osrs-clog-dependencies/internal/ctxlog"
)

// Record is one raw production record as returned by the wiki bucket API.
// The interesting payload is itself JSON-encoded in ProductionJSON.
type Record struct {
	UsesMaterial   json.RawMessage `json:"uses_material,omitempty"`
	ProductionJSON string          `json:"production_json"`
}

// production is the decoded shape of Record.ProductionJSON. The output field
// is an object for well-formed records but arrives as an empty string for
// some upstream rows, so it is decoded leniently.
type production struct {
	Output    json.RawMessage `json:"output"`
	Materials []materialRef   `json:"materials"`
}

type namedRef struct {
	Name string `json:"name"`
}

type materialRef struct {
	Name string `json:"name"`
}

// normalizeName lowercases an item name and maps the wiki's '#' separator to
// a space, so names compare the way the rest of the pipeline expects.
func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "#", " ")
}

// BuildSet builds a recipe set from raw production records. Records with a
// missing or malformed payload, an absent output name, or no named materials
// are dropped silently: they are malformed upstream data, not an error
// condition. Multiple records for the same output become distinct
// alternatives.
func BuildSet(ctx context.Context, records []Record) *Set {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building recipe graph.", "record_count", len(records))

	set := NewSet()
	dropped := 0

	for _, rec := range records {
		if rec.ProductionJSON == "" {
			dropped++
			continue
		}

		var prod production
		if err := json.Unmarshal([]byte(rec.ProductionJSON), &prod); err != nil {
			dropped++
			continue
		}

		var out namedRef
		if len(prod.Output) == 0 || json.Unmarshal(prod.Output, &out) != nil {
			dropped++
			continue
		}

		outputName := normalizeName(out.Name)
		if outputName == "" {
			dropped++
			continue
		}

		var materials Recipe
		for _, m := range prod.Materials {
			if m.Name == "" {
				continue
			}
			materials = append(materials, normalizeName(m.Name))
		}
		if len(materials) == 0 {
			dropped++
			continue
		}

		set.Add(outputName, materials)
	}

	logger.Info("Recipe graph built.",
		"craftable_items", set.Len(),
		"multi_recipe_items", set.MultiRecipeCount(),
		"dropped_records", dropped)
	return set
}
