package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozjay/osrs-clog-dependencies/internal/output"
	"github.com/mozjay/osrs-clog-dependencies/internal/testutil"
)

// newWikiStub serves a minimal but complete set of upstream responses: two
// catalog items, one onyx recipe plus one derived recipe, and a matching item
// table.
func newWikiStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/clog"):
			fmt.Fprint(w, `[
				{"id": 6571, "name": "Onyx", "tabs": ["Other"]},
				{"id": 6572, "name": "Uncut onyx", "tabs": ["Other"]}
			]`)
		case strings.HasPrefix(r.URL.Path, "/prices"):
			fmt.Fprint(w, `[{"id": 6585, "name": "Amulet of fury"}]`)
		case strings.Contains(r.URL.Query().Get("query"), "bucket('recipe')"):
			if strings.Contains(r.URL.Query().Get("query"), ".offset(0)") {
				fmt.Fprint(w, `{"bucket": [
					{"production_json": "{\"output\": {\"name\": \"Onyx\"}, \"materials\": [{\"name\": \"Uncut onyx\"}]}"},
					{"production_json": "{\"output\": {\"name\": \"Amulet of fury\"}, \"materials\": [{\"name\": \"Onyx\"}, {\"name\": \"Gold bar\"}]}"}
				]}`)
				return
			}
			fmt.Fprint(w, `{"bucket": []}`)
		case strings.Contains(r.URL.Query().Get("query"), "bucket('infobox_item')"):
			if strings.Contains(r.URL.Query().Get("query"), ".offset(0)") {
				fmt.Fprint(w, `{"bucket": [
					{"item_name": "Onyx", "item_id": "6571"},
					{"item_name": "Uncut onyx", "item_id": "6572"},
					{"item_name": "Amulet of fury", "item_id": ["6585", "12436"]},
					{"item_name": "Gold bar", "item_id": "2357"}
				]}`)
				return
			}
			fmt.Fprint(w, `{"bucket": []}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

// writeStubConfig writes an HCL fragment pointing the pipeline at the stub
// server with throttling and cache staleness effectively disabled.
func writeStubConfig(t *testing.T, serverURL string) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"pipeline.hcl": fmt.Sprintf(`
rate_limit     = "0s"
manual_recipes = %q

cache {
  dir = %q
}

source "clog_items" {
  url = %q
}
source "recipes" {
  url       = %q
  page_size = 10
}
source "item_ids" {
  url       = %q
  page_size = 10
}
source "prices" {
  url = %q
}
`,
			filepath.Join(dir, "manual_recipes.json"),
			filepath.Join(dir, "cache"),
			serverURL+"/clog",
			serverURL+"/api.php",
			serverURL+"/api.php",
			serverURL+"/prices"),
	})
	return dir
}

func TestNewLogger(t *testing.T) {
	t.Run("respects level", func(t *testing.T) {
		var buf testutil.SafeBuffer
		logger := newLogger("warn", "text", &buf)

		logger.Info("hidden")
		logger.Warn("visible")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("json format", func(t *testing.T) {
		var buf testutil.SafeBuffer
		newLogger("info", "json", &buf).Info("structured", "key", "value")

		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(buf.String()), &record))
		assert.Equal(t, "structured", record["msg"])
		assert.Equal(t, "value", record["key"])
	})

	t.Run("unknown level defaults to info", func(t *testing.T) {
		var buf testutil.SafeBuffer
		logger := newLogger("chatty", "text", &buf)

		logger.Debug("hidden")
		logger.Info("visible")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "visible")
	})
}

func TestNewApp_LoadsPipelineDefaults(t *testing.T) {
	var buf testutil.SafeBuffer
	app := NewApp(&buf, &Config{
		ConfigPath: filepath.Join(t.TempDir(), "absent"),
		OutputPath: "out.json",
		LogFormat:  "text",
		LogLevel:   "info",
	})

	require.NotNil(t, app)
	assert.Equal(t, "1.1.0", app.Pipeline().Version)
}

func TestNewApp_PanicsOnBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"broken.hcl": `rate_limit = `,
	})

	var buf testutil.SafeBuffer
	assert.Panics(t, func() {
		NewApp(&buf, &Config{
			ConfigPath: dir,
			OutputPath: "out.json",
			LogFormat:  "text",
			LogLevel:   "info",
		})
	})
}

func TestRun_GeneratesDocument(t *testing.T) {
	server := newWikiStub(t)
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "clog_restrictions.json")
	var buf testutil.SafeBuffer
	app := NewApp(&buf, &Config{
		ConfigPath: writeStubConfig(t, server.URL),
		OutputPath: outputPath,
		LogFormat:  "text",
		LogLevel:   "debug",
	})

	require.NoError(t, app.Run(context.Background()))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var doc output.Document
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "1.1.0", doc.Version)
	assert.Equal(t, 2, doc.Stats.TotalClogItems)
	require.Contains(t, doc.CollectionLogItems, "6571")
	assert.Equal(t, [][]int{{6572}}, doc.CollectionLogItems["6571"].CraftableFrom)

	fury, ok := doc.DerivedItems["amulet of fury"]
	require.True(t, ok)
	assert.Equal(t, []int{6585, 12436}, fury.ItemIDs)
	assert.Equal(t, []int{6571}, fury.ClogDependencies)
}

func TestRun_ManualOverridesApply(t *testing.T) {
	server := newWikiStub(t)
	defer server.Close()

	configDir := writeStubConfig(t, server.URL)
	testutil.WriteFiles(t, configDir, map[string]string{
		"manual_recipes.json": `{
			"amulet of fury": {
				"name": "amulet of fury",
				"item_ids": [6585],
				"clog_dependencies": [6571, 6572]
			}
		}`,
	})

	outputPath := filepath.Join(t.TempDir(), "out.json")
	var buf testutil.SafeBuffer
	app := NewApp(&buf, &Config{
		ConfigPath: configDir,
		OutputPath: outputPath,
		LogFormat:  "text",
		LogLevel:   "info",
	})

	require.NoError(t, app.Run(context.Background()))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	var doc output.Document
	require.NoError(t, json.Unmarshal(data, &doc))

	fury := doc.DerivedItems["amulet of fury"]
	assert.Equal(t, []int{6571, 6572}, fury.ClogDependencies)
}

func TestRun_VisualizeKnownItem(t *testing.T) {
	server := newWikiStub(t)
	defer server.Close()

	var buf testutil.SafeBuffer
	app := NewApp(&buf, &Config{
		ConfigPath:    writeStubConfig(t, server.URL),
		VisualizeItem: "Amulet of fury",
		LogFormat:     "text",
		LogLevel:      "error",
	})

	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, buf.String(), "Dependency Chain for: amulet of fury")
	assert.Contains(t, buf.String(), "RESTRICTED")
}

func TestRun_VisualizeUnknownItemSuggests(t *testing.T) {
	server := newWikiStub(t)
	defer server.Close()

	var buf testutil.SafeBuffer
	app := NewApp(&buf, &Config{
		ConfigPath:    writeStubConfig(t, server.URL),
		VisualizeItem: "amulet of furyy",
		LogFormat:     "text",
		LogLevel:      "error",
	})

	err := app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean")
	assert.Contains(t, err.Error(), "amulet of fury")
}
