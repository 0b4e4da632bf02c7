package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/mozjay/osrs-clog-dependencies/internal/ctxlog"
	"github.com/mozjay/osrs-clog-dependencies/internal/fsutil"
	"github.com/mozjay/osrs-clog-dependencies/internal/variant"
)

// fileRoot is the top-level HCL schema. Every attribute is optional because
// fragments are merged onto the defaults.
type fileRoot struct {
	Version       *string        `hcl:"version,optional"`
	UserAgent     *string        `hcl:"user_agent,optional"`
	RateLimit     *string        `hcl:"rate_limit,optional"`
	ManualRecipes *string        `hcl:"manual_recipes,optional"`
	Cache         *cacheBlock    `hcl:"cache,block"`
	Sources       []sourceBlock  `hcl:"source,block"`
	Variants      []variantBlock `hcl:"variant,block"`
}

type cacheBlock struct {
	Dir        *string `hcl:"dir,optional"`
	MaxAgeDays *int    `hcl:"max_age_days,optional"`
}

type sourceBlock struct {
	Name      string  `hcl:"name,label"`
	URL       *string `hcl:"url,optional"`
	CacheFile *string `hcl:"cache_file,optional"`
	PageSize  *int    `hcl:"page_size,optional"`
}

type variantBlock struct {
	Kind   string `hcl:"kind,label"`
	Base   string `hcl:"base,optional"`
	Suffix string `hcl:"suffix"`
}

// Load reads pipeline configuration from the given path, which may be a
// single .hcl file or a directory of .hcl fragments, and merges it onto the
// defaults. A missing path is not an error: the defaults are complete.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := Default()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Debug("No config path found, using defaults.", "path", path)
		return cfg, nil
	}

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to discover config files under %s: %w", path, err)
	}
	logger.Debug("Discovered config files.", "count", len(files))

	parser := hclparse.NewParser()
	evalCtx := newEvalContext()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse config file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode config file %s: %w", file, diags)
		}

		if err := merge(cfg, &root); err != nil {
			return nil, fmt.Errorf("invalid config in %s: %w", file, err)
		}
		logger.Debug("Merged config fragment.", "file", file)
	}

	return cfg, nil
}

// newEvalContext exposes the process environment to config expressions as
// `env.<NAME>`, so secrets and per-machine paths stay out of the files.
func newEvalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

func merge(cfg *Config, root *fileRoot) error {
	if root.Version != nil {
		cfg.Version = *root.Version
	}
	if root.UserAgent != nil {
		cfg.UserAgent = *root.UserAgent
	}
	if root.RateLimit != nil {
		d, err := time.ParseDuration(*root.RateLimit)
		if err != nil {
			return fmt.Errorf("invalid rate_limit: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("rate_limit must not be negative")
		}
		cfg.RateLimit = d
	}
	if root.ManualRecipes != nil {
		cfg.ManualRecipes = *root.ManualRecipes
	}
	if root.Cache != nil {
		if root.Cache.Dir != nil {
			cfg.CacheDir = *root.Cache.Dir
		}
		if root.Cache.MaxAgeDays != nil {
			if *root.Cache.MaxAgeDays < 0 {
				return fmt.Errorf("cache.max_age_days must not be negative")
			}
			cfg.CacheMaxAge = time.Duration(*root.Cache.MaxAgeDays) * 24 * time.Hour
		}
	}

	for _, src := range root.Sources {
		known, ok := cfg.Sources[src.Name]
		if !ok {
			return fmt.Errorf("unknown source %q", src.Name)
		}
		if src.URL != nil {
			known.URL = *src.URL
		}
		if src.CacheFile != nil {
			known.CacheFile = *src.CacheFile
		}
		if src.PageSize != nil {
			if *src.PageSize <= 0 {
				return fmt.Errorf("source %q: page_size must be positive", src.Name)
			}
			known.PageSize = *src.PageSize
		}
		cfg.Sources[src.Name] = known
	}

	for _, v := range root.Variants {
		if v.Base == "" && v.Suffix == "" {
			return fmt.Errorf("variant %q: base and suffix must not both be empty", v.Kind)
		}
		cfg.ExtraVariantRules = append(cfg.ExtraVariantRules, variant.Rule{
			BaseSuffix:    v.Base,
			VariantSuffix: v.Suffix,
			Kind:          v.Kind,
		})
	}

	return nil
}
