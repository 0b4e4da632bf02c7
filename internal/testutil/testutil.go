// Package testutil provides shared helpers for the package test suites.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozjay/osrs-clog-dependencies/internal/catalog"
	"github.com/mozjay/osrs-clog-dependencies/internal/recipe"
	"github.com/mozjay/osrs-clog-dependencies/internal/resolver"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles writes the given relative-path -> content map under dir,
// creating subdirectories as needed.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// Fixture is a small in-memory graph for resolver and linker tests.
type Fixture struct {
	Catalog  *catalog.Set
	Recipes  *recipe.Set
	Universe *catalog.Universe
	Resolver *resolver.Resolver
}

// NewFixture builds a fixture from literal catalog items and recipes. The
// universe is seeded with every catalog and recipe name; tests add variant
// names on top.
func NewFixture(items []catalog.Item, recipes map[string][]recipe.Recipe) *Fixture {
	set := recipe.NewSet()
	universe := catalog.NewUniverse()

	nextID := 100000
	for name, alts := range recipes {
		for _, alt := range alts {
			set.Add(name, alt)
		}
		universe.Add(name, nextID)
		nextID++
	}
	for _, item := range items {
		universe.Add(item.Name, item.ID)
	}

	cat := catalog.NewSet(items)
	return &Fixture{
		Catalog:  cat,
		Recipes:  set,
		Universe: universe,
		Resolver: resolver.New(cat, set),
	}
}
