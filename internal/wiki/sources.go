package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mozjay/osrs-clog-dependencies/internal/catalog"
	"github.com/mozjay/osrs-clog-dependencies/internal/config"
	"github.com/mozjay/osrs-clog-dependencies/internal/ctxlog"
	"github.com/mozjay/osrs-clog-dependencies/internal/recipe"
)

// bucketResponse is the envelope of every wiki bucket API response.
type bucketResponse[T any] struct {
	Bucket []T `json:"bucket"`
}

// bucketItem is one row of the infobox_item bucket. The item_id field is
// untyped upstream: it arrives as a list of strings, a single string, or a
// bare number depending on the page.
type bucketItem struct {
	ItemName string          `json:"item_name"`
	ItemID   json.RawMessage `json:"item_id"`
}

// priceEntry is one row of the prices mapping endpoint.
type priceEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CollectionLogItems returns the full collection-log item table, from cache
// when fresh.
func (c *Client) CollectionLogItems(ctx context.Context) ([]catalog.Item, error) {
	logger := ctxlog.FromContext(ctx)
	src := c.cfg.Source(config.SourceClogItems)

	var items []catalog.Item
	if c.cacheFresh(src.CacheFile, &items) {
		logger.Info("Loaded collection log items from cache.", "count", len(items))
		return items, nil
	}

	logger.Info("Fetching collection log items from wiki.")
	body, err := c.get(ctx, src.URL, nil)
	if err != nil {
		if fbErr := c.staleFallback(ctx, src.CacheFile, err, &items); fbErr != nil {
			return nil, fbErr
		}
		return items, nil
	}

	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode collection log data: %w", err)
	}
	if err := c.cache.Save(src.CacheFile, items); err != nil {
		return nil, err
	}

	logger.Info("Fetched collection log items.", "count", len(items))
	return items, nil
}

// Recipes returns the full recipe corpus, paging through the bucket API until
// an empty page.
func (c *Client) Recipes(ctx context.Context) ([]recipe.Record, error) {
	logger := ctxlog.FromContext(ctx)
	src := c.cfg.Source(config.SourceRecipes)

	var records []recipe.Record
	if c.cacheFresh(src.CacheFile, &records) {
		logger.Info("Loaded recipes from cache.", "count", len(records))
		return records, nil
	}

	logger.Info("Fetching recipe data from wiki.")
	offset := 0
	for {
		query := fmt.Sprintf("bucket('recipe').select('uses_material','production_json').offset(%d).limit(%d).run()", offset, src.PageSize)
		batch, err := fetchBucketPage[recipe.Record](ctx, c, src.URL, query)
		if err != nil {
			var cached []recipe.Record
			if fbErr := c.staleFallback(ctx, src.CacheFile, err, &cached); fbErr != nil {
				return nil, fbErr
			}
			return cached, nil
		}
		if len(batch) == 0 {
			break
		}
		records = append(records, batch...)
		logger.Debug("Fetched recipe batch.", "total", len(records))
		offset += src.PageSize
	}

	if err := c.cache.Save(src.CacheFile, records); err != nil {
		return nil, err
	}

	logger.Info("Fetched recipes.", "count", len(records))
	return records, nil
}

// ItemUniverse returns the game-wide item name/id mapping: every id per name
// from the infobox bucket, with the prices API as the authoritative primary
// id for tradeable items. A prices failure degrades to the bucket data alone.
func (c *Client) ItemUniverse(ctx context.Context) (*catalog.Universe, error) {
	logger := ctxlog.FromContext(ctx)
	src := c.cfg.Source(config.SourceItemIDs)

	universe := catalog.NewUniverse()
	if c.cacheFresh(src.CacheFile, universe) {
		logger.Info("Loaded item universe from cache.", "names", len(universe.All))
		return universe, nil
	}

	logger.Info("Fetching item universe from wiki.")
	offset := 0
	total := 0
	for {
		query := fmt.Sprintf("bucket('infobox_item').select('item_name','item_id').offset(%d).limit(%d).run()", offset, src.PageSize)
		batch, err := fetchBucketPage[bucketItem](ctx, c, src.URL, query)
		if err != nil {
			cached := catalog.NewUniverse()
			if fbErr := c.staleFallback(ctx, src.CacheFile, err, cached); fbErr != nil {
				return nil, fbErr
			}
			return cached, nil
		}
		if len(batch) == 0 {
			break
		}

		for _, item := range batch {
			name := strings.ToLower(item.ItemName)
			if name == "" {
				continue
			}
			for _, id := range parseItemIDs(item.ItemID) {
				universe.Add(name, id)
			}
		}

		total += len(batch)
		logger.Debug("Fetched item batch.", "total_entries", total)
		offset += src.PageSize
	}
	logger.Info("Fetched item universe.", "entries", total, "unique_names", len(universe.All))

	// The prices API is authoritative for tradeable primary ids;
	// untradeables fall back to their lowest known id.
	prices := c.pricesMapping(ctx)
	for name, ids := range universe.All {
		if id, ok := prices[name]; ok {
			universe.Primary[name] = id
		} else if len(ids) > 0 {
			universe.Primary[name] = ids[0]
		}
	}

	// Fold prices-only names and ids back into the universe.
	for name, id := range prices {
		universe.Add(name, id)
		if _, ok := universe.Primary[name]; !ok {
			universe.Primary[name] = id
		}
	}

	logger.Info("Item universe assembled.",
		"names", len(universe.All), "multi_id_names", universe.MultiIDCount())

	if err := c.cache.Save(src.CacheFile, universe); err != nil {
		return nil, err
	}
	return universe, nil
}

// pricesMapping fetches the tradeable name -> id mapping. Failures degrade to
// an empty mapping: features depending on it produce less-complete output
// rather than aborting.
func (c *Client) pricesMapping(ctx context.Context) map[string]int {
	logger := ctxlog.FromContext(ctx)
	src := c.cfg.Source(config.SourcePrices)

	mapping := make(map[string]int)
	if c.cacheFresh(src.CacheFile, &mapping) {
		return mapping
	}

	logger.Info("Fetching item ids from prices API.")
	body, err := c.get(ctx, src.URL, nil)
	if err != nil {
		if fbErr := c.staleFallback(ctx, src.CacheFile, err, &mapping); fbErr != nil {
			logger.Warn("Failed to fetch prices mapping, continuing without it.", "error", err)
			return map[string]int{}
		}
		return mapping
	}

	var entries []priceEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		logger.Warn("Failed to decode prices mapping, continuing without it.", "error", err)
		return map[string]int{}
	}

	for _, e := range entries {
		name := strings.ToLower(e.Name)
		if name != "" && e.ID != 0 {
			mapping[name] = e.ID
		}
	}

	if err := c.cache.Save(src.CacheFile, mapping); err != nil {
		logger.Warn("Failed to cache prices mapping.", "error", err)
	}
	logger.Info("Loaded tradeable items from prices API.", "count", len(mapping))
	return mapping
}

// fetchBucketPage performs one paged bucket API request.
func fetchBucketPage[T any](ctx context.Context, c *Client, url, query string) ([]T, error) {
	body, err := c.get(ctx, url, map[string]string{
		"action": "bucket",
		"query":  query,
		"format": "json",
	})
	if err != nil {
		return nil, err
	}

	var resp bucketResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode bucket response: %w", err)
	}
	return resp.Bucket, nil
}

// parseItemIDs extracts integer ids from the untyped item_id field. Values
// that cannot be parsed are ignored.
func parseItemIDs(raw json.RawMessage) []int {
	if len(raw) == 0 {
		return nil
	}

	var asList []json.RawMessage
	if err := json.Unmarshal(raw, &asList); err == nil {
		var ids []int
		for _, elem := range asList {
			if id, ok := parseItemID(elem); ok {
				ids = append(ids, id)
			}
		}
		return ids
	}

	if id, ok := parseItemID(raw); ok {
		return []int{id}
	}
	return nil
}

func parseItemID(raw json.RawMessage) (int, bool) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		id, err := strconv.Atoi(strings.TrimSpace(asString))
		return id, err == nil
	}
	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return asInt, true
	}
	return 0, false
}
