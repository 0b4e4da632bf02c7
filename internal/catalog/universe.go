package catalog

import (
	"sort"
	"strings"
)

// Universe maps every known item display name (lowercase) to its item ids.
// It covers the full game item table, not just collection-log entries; the
// variant linker uses it as the existence test for candidate variant names,
// and the output projector uses it to attach ids to derived items.
type Universe struct {
	// Primary maps name -> the authoritative item id (prices API for
	// tradeables, lowest known id otherwise).
	Primary map[string]int `json:"primary_ids"`
	// All maps name -> every id recorded for that name, sorted and unique.
	All map[string][]int `json:"all_ids"`
}

// NewUniverse returns an empty Universe ready to be populated.
func NewUniverse() *Universe {
	return &Universe{
		Primary: make(map[string]int),
		All:     make(map[string][]int),
	}
}

// Has reports whether the given name exists anywhere in the item table.
func (u *Universe) Has(name string) bool {
	_, ok := u.All[strings.ToLower(name)]
	return ok
}

// IDs returns every id known for the given name, or nil.
func (u *Universe) IDs(name string) []int {
	return u.All[strings.ToLower(name)]
}

// PrimaryID returns the authoritative id for the given name.
func (u *Universe) PrimaryID(name string) (int, bool) {
	id, ok := u.Primary[strings.ToLower(name)]
	return id, ok
}

// Add records an id for a name, keeping the id list sorted and unique.
func (u *Universe) Add(name string, id int) {
	if u.All == nil {
		u.All = make(map[string][]int)
	}
	if u.Primary == nil {
		u.Primary = make(map[string]int)
	}
	name = strings.ToLower(name)
	for _, existing := range u.All[name] {
		if existing == id {
			return
		}
	}
	u.All[name] = append(u.All[name], id)
	sort.Ints(u.All[name])
}

// MultiIDCount reports how many names carry more than one id.
func (u *Universe) MultiIDCount() int {
	n := 0
	for _, ids := range u.All {
		if len(ids) > 1 {
			n++
		}
	}
	return n
}
