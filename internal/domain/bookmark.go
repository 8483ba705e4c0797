package domain

import "sort"

// BookmarkSet is the set of bookmarked coin ids.
// It is only turned into an array at the storage boundary.
type BookmarkSet map[string]struct{}

// NewBookmarkSet builds a set from ids, dropping empty strings and duplicates.
func NewBookmarkSet(ids ...string) BookmarkSet {
	s := make(BookmarkSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s BookmarkSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s BookmarkSet) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

func (s BookmarkSet) Remove(id string) {
	delete(s, id)
}

// Toggle flips membership of id and reports whether it is now a member.
func (s BookmarkSet) Toggle(id string) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return s.Has(id)
}

// IDs returns the members sorted, so the serialized form is stable.
func (s BookmarkSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Filter keeps the coins whose id is in the set, preserving list order.
func (s BookmarkSet) Filter(coins []Coin) []Coin {
	out := make([]Coin, 0, len(s))
	for _, c := range coins {
		if s.Has(c.ID) {
			out = append(out, c)
		}
	}
	return out
}
