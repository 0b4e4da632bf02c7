package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/mozjay/osrs-clog-dependencies/internal/catalog"
	"github.com/mozjay/osrs-clog-dependencies/internal/ctxlog"
	"github.com/mozjay/osrs-clog-dependencies/internal/diskcache"
	"github.com/mozjay/osrs-clog-dependencies/internal/output"
	"github.com/mozjay/osrs-clog-dependencies/internal/recipe"
	"github.com/mozjay/osrs-clog-dependencies/internal/resolver"
	"github.com/mozjay/osrs-clog-dependencies/internal/variant"
	"github.com/mozjay/osrs-clog-dependencies/internal/visualize"
	"github.com/mozjay/osrs-clog-dependencies/internal/wiki"
)

// Run executes the main application logic: fetch the upstream datasets, build
// and augment the recipe graph, then either render one item's dependency
// chain or project the full output document.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	cache, err := diskcache.New(a.pipeline.CacheDir)
	if err != nil {
		return err
	}

	client := wiki.NewClient(a.pipeline, cache, a.appConfig.RefreshCache)
	defer client.Close()

	items, err := client.CollectionLogItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to load collection log items: %w", err)
	}
	records, err := client.Recipes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load recipes: %w", err)
	}
	universe, err := client.ItemUniverse(ctx)
	if err != nil {
		return fmt.Errorf("failed to load item universe: %w", err)
	}

	cat := catalog.NewSet(items)
	recipes := recipe.BuildSet(ctx, records)
	res := resolver.New(cat, recipes)

	linker := variant.NewLinker(res, universe, a.pipeline.VariantRules())
	result := linker.Link(ctx)
	a.logger.Info("Variant linking complete.",
		"added", result.Added(), "updated", result.Updated())

	if a.appConfig.VisualizeItem != "" {
		return a.runVisualize(cat, recipes, universe, res)
	}
	return a.runGenerate(ctx, cat, universe, res)
}

// runGenerate projects the full document and writes it to the output path.
func (a *App) runGenerate(ctx context.Context, cat *catalog.Set, universe *catalog.Universe, res *resolver.Resolver) error {
	overrides := output.LoadOverrides(ctx, a.pipeline.ManualRecipes)
	doc := output.Build(ctx, cat, res, universe, overrides, a.pipeline.Version)

	if err := doc.Write(a.appConfig.OutputPath); err != nil {
		return err
	}
	a.logger.Info("Output document written.",
		"path", a.appConfig.OutputPath,
		"clog_items", doc.Stats.TotalClogItems,
		"derived_items", doc.Stats.TotalDerivedItems)
	return nil
}

// runVisualize renders one item's dependency chain on the console. An
// unknown item name fails with fuzzy suggestions.
func (a *App) runVisualize(cat *catalog.Set, recipes *recipe.Set, universe *catalog.Universe, res *resolver.Resolver) error {
	name := strings.ToLower(a.appConfig.VisualizeItem)

	if !cat.Contains(name) && !recipes.Has(name) && !universe.Has(name) {
		candidates := append(recipes.Names(), cat.Names()...)
		suggestions := visualize.Suggest(name, candidates, 5)
		if len(suggestions) > 0 {
			return fmt.Errorf("unknown item %q, did you mean: %s", name, strings.Join(suggestions, ", "))
		}
		return fmt.Errorf("unknown item %q", name)
	}

	visualize.Render(a.outW, name, cat, res)
	return nil
}
