package extractor

import "github.com/use-agent/serpscout/models"

// ItemSet is an insertion-ordered set of items keyed by (title, link)
// that refuses new members once it holds capacity items.
type ItemSet struct {
	capacity int
	index    map[models.ItemKey]struct{}
	items    []models.ExtractedItem
}

// NewItemSet returns an empty set holding at most capacity items.
func NewItemSet(capacity int) *ItemSet {
	if capacity < 0 {
		capacity = 0
	}
	return &ItemSet{
		capacity: capacity,
		index:    make(map[models.ItemKey]struct{}, capacity),
		items:    make([]models.ExtractedItem, 0, capacity),
	}
}

// Add inserts item unless its key is already present or the set is full.
// It reports whether the item was inserted.
func (s *ItemSet) Add(item models.ExtractedItem) bool {
	if s.Full() {
		return false
	}
	k := item.Key()
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = struct{}{}
	s.items = append(s.items, item)
	return true
}

// Merge adds items in order and returns how many were inserted.
func (s *ItemSet) Merge(items []models.ExtractedItem) int {
	added := 0
	for _, it := range items {
		if s.Full() {
			break
		}
		if s.Add(it) {
			added++
		}
	}
	return added
}

func (s *ItemSet) Full() bool { return len(s.items) >= s.capacity }

func (s *ItemSet) Len() int { return len(s.items) }

// Items returns a copy of the members in first-seen order.
func (s *ItemSet) Items() []models.ExtractedItem {
	out := make([]models.ExtractedItem, len(s.items))
	copy(out, s.items)
	return out
}
