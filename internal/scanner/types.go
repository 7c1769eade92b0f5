package scanner

import (
	"github.com/Boo15mario/access-launcher/internal/scanner/desktop"
)

// Result is one scan's output: the name-sorted entries grouped by category.
// It is built once, never mutated afterwards, and discarded on rescan.
// Handles are per-scan integer references assigned in scan order; they are
// only meaningful against the Result that issued them.
type Result struct {
	entries  []*desktop.Entry
	byHandle map[int64]*desktop.Entry
	handles  map[string]int64 // entry identifier -> handle
	groups   map[Group][]*desktop.Entry
}

func newResult(entries []*desktop.Entry) *Result {
	r := &Result{
		entries:  entries,
		byHandle: make(map[int64]*desktop.Entry, len(entries)),
		handles:  make(map[string]int64, len(entries)),
		groups:   make(map[Group][]*desktop.Entry),
	}
	for i, entry := range entries {
		handle := int64(i + 1)
		r.byHandle[handle] = entry
		r.handles[entry.ID] = handle
		group := Classify(entry.Categories)
		r.groups[group] = append(r.groups[group], entry)
	}
	return r
}

// Len returns the total number of entries.
func (r *Result) Len() int {
	return len(r.entries)
}

// Entries returns all entries in name-sorted order.
func (r *Result) Entries() []*desktop.Entry {
	return r.entries
}

// Group returns the entries of one group, in the order they arrived from
// the scan. The returned slice is read-only.
func (r *Result) Group(g Group) []*desktop.Entry {
	return r.groups[g]
}

// Groups returns the non-empty groups in display order.
func (r *Result) Groups() []Group {
	var groups []Group
	for _, g := range Groups() {
		if len(r.groups[g]) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// Get retrieves an entry by its per-scan handle.
func (r *Result) Get(handle int64) (*desktop.Entry, bool) {
	entry, ok := r.byHandle[handle]
	return entry, ok
}

// Handle returns the per-scan handle for an entry of this Result.
func (r *Result) Handle(entry *desktop.Entry) int64 {
	return r.handles[entry.ID]
}
