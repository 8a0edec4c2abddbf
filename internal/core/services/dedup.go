package services

import (
	"sync"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// PlaceSet is an insertion-ordered set of place references keyed by PlaceID.
type PlaceSet struct {
	order []string
	byID  map[string]domain.RawPlaceRef
}

func newPlaceSet() *PlaceSet {
	return &PlaceSet{byID: make(map[string]domain.RawPlaceRef)}
}

// add inserts ref unless its ID is empty or already present.
func (s *PlaceSet) add(ref domain.RawPlaceRef) {
	if ref.PlaceID == "" {
		return
	}
	if _, ok := s.byID[ref.PlaceID]; ok {
		return
	}
	s.byID[ref.PlaceID] = ref
	s.order = append(s.order, ref.PlaceID)
}

// Get returns the reference stored for id.
func (s *PlaceSet) Get(id string) (domain.RawPlaceRef, bool) {
	ref, ok := s.byID[id]
	return ref, ok
}

// IDs returns the place IDs in first-seen order.
func (s *PlaceSet) IDs() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of unique places.
func (s *PlaceSet) Len() int {
	return len(s.order)
}

// orderedRefs returns the set's references in first-seen order.
func (s *PlaceSet) orderedRefs() []domain.RawPlaceRef {
	refs := make([]domain.RawPlaceRef, 0, len(s.order))
	for _, id := range s.order {
		refs = append(refs, s.byID[id])
	}
	return refs
}

// Map returns a copy of the placeId to reference mapping.
func (s *PlaceSet) Map() map[string]domain.RawPlaceRef {
	out := make(map[string]domain.RawPlaceRef, len(s.byID))
	for id, ref := range s.byID {
		out[id] = ref
	}
	return out
}

// MergePlaces collapses the per-keyword hit lists into one set keyed by
// PlaceID. The first occurrence of an ID wins.
func MergePlaces(keywordResults [][]domain.RawPlaceRef) *PlaceSet {
	set := newPlaceSet()
	for _, refs := range keywordResults {
		for _, ref := range refs {
			set.add(ref)
		}
	}
	return set
}

// PlaceCollector gathers keyword results from concurrent searches.
// Results are merged in keyword slot order, not arrival order.
type PlaceCollector struct {
	mu      sync.Mutex
	results [][]domain.RawPlaceRef
}

// NewPlaceCollector creates a collector with one slot per keyword.
func NewPlaceCollector(keywords int) *PlaceCollector {
	return &PlaceCollector{results: make([][]domain.RawPlaceRef, keywords)}
}

// Put stores the hits for the keyword at slot.
func (c *PlaceCollector) Put(slot int, refs []domain.RawPlaceRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot < 0 || slot >= len(c.results) {
		return
	}
	c.results[slot] = refs
}

// Merge returns the de-duplicated set of everything collected so far.
func (c *PlaceCollector) Merge() *PlaceSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return MergePlaces(c.results)
}
