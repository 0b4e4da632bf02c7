// Package catalog holds the fixed set of collection-log items the pipeline
// tracks. The set is read-only once loaded: every downstream component only
// queries it.
package catalog

import (
	"sort"
	"strings"
)

// Item is a single collection-log entry.
type Item struct {
	ID   int      `json:"id"`
	Name string   `json:"name"`
	Tabs []string `json:"tabs"`
}

// Set is an immutable lookup table over collection-log items, indexed by id
// and by lowercase display name.
type Set struct {
	byID     map[int]Item
	idByName map[string]int
}

// NewSet builds a Set from raw catalog records. Distinct entries may share a
// display name (separate log slots); the name index keeps the last one seen,
// matching insertion order of the upstream data.
func NewSet(items []Item) *Set {
	s := &Set{
		byID:     make(map[int]Item, len(items)),
		idByName: make(map[string]int, len(items)),
	}
	for _, it := range items {
		s.byID[it.ID] = it
		s.idByName[strings.ToLower(it.Name)] = it.ID
	}
	return s
}

// Len reports the number of catalog entries.
func (s *Set) Len() int {
	return len(s.byID)
}

// ByID looks up a catalog item by its id.
func (s *Set) ByID(id int) (Item, bool) {
	it, ok := s.byID[id]
	return it, ok
}

// IDByName looks up a catalog id by display name, case-insensitively.
func (s *Set) IDByName(name string) (int, bool) {
	id, ok := s.idByName[strings.ToLower(name)]
	return id, ok
}

// Contains reports whether the given name is a catalog name.
func (s *Set) Contains(name string) bool {
	_, ok := s.idByName[strings.ToLower(name)]
	return ok
}

// ContainsID reports whether the given id belongs to any catalog entry.
func (s *Set) ContainsID(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// Items returns all catalog entries ordered by id.
func (s *Set) Items() []Item {
	items := make([]Item, 0, len(s.byID))
	for _, it := range s.byID {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// Names returns the lowercase names of all catalog entries, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.idByName))
	for name := range s.idByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
