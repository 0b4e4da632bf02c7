// Package config defines the pipeline configuration and its defaults. The
// on-disk format is HCL; every setting has a compiled-in default matching the
// published generator, so running with no config file at all is valid.
package config

import (
	"time"

	"github.com/mozjay/osrs-clog-dependencies/internal/variant"
)

// Source names recognized in `source` blocks.
const (
	SourceClogItems = "clog_items"
	SourceRecipes   = "recipes"
	SourceItemIDs   = "item_ids"
	SourcePrices    = "prices"
)

// Source describes one upstream data source: where to fetch it and which
// cache file shadows it on disk.
type Source struct {
	URL       string
	CacheFile string
	// PageSize applies to paged bucket sources only.
	PageSize int
}

// Config holds all pipeline settings.
type Config struct {
	Version   string
	UserAgent string

	// RateLimit is the minimum delay between outbound requests.
	RateLimit time.Duration

	CacheDir    string
	CacheMaxAge time.Duration

	// ManualRecipes is the path to the human-maintained override file for
	// derived items the automatic pass cannot derive.
	ManualRecipes string

	Sources map[string]Source

	// ExtraVariantRules are appended after the built-in rule table.
	ExtraVariantRules []variant.Rule
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Version:       "1.1.0",
		UserAgent:     "OSRSClogDependencyBuilder/1.0 (Collection Log Plugin Data Generator)",
		RateLimit:     time.Second,
		CacheDir:      "cache",
		CacheMaxAge:   7 * 24 * time.Hour,
		ManualRecipes: "manual_recipes.json",
		Sources: map[string]Source{
			SourceClogItems: {
				URL:       "https://oldschool.runescape.wiki/w/Module:Collection_log/data.json?action=raw",
				CacheFile: "clog_items.json",
			},
			SourceRecipes: {
				URL:       "https://oldschool.runescape.wiki/api.php",
				CacheFile: "recipes.json",
				PageSize:  500,
			},
			SourceItemIDs: {
				URL:       "https://oldschool.runescape.wiki/api.php",
				CacheFile: "all_items.json",
				PageSize:  500,
			},
			SourcePrices: {
				URL:       "https://prices.runescape.wiki/api/v1/osrs/mapping",
				CacheFile: "prices_mapping.json",
			},
		},
	}
}

// VariantRules returns the effective rule table: the built-in rules followed
// by any configured extras.
func (c *Config) VariantRules() []variant.Rule {
	rules := variant.DefaultRules()
	return append(rules, c.ExtraVariantRules...)
}

// Source returns the named source. Unknown names yield a zero Source; the
// loader guarantees the four known sources always exist.
func (c *Config) Source(name string) Source {
	return c.Sources[name]
}
