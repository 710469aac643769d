package menu

import (
	"fmt"
	"slices"
	"sort"
)

// OrderStep is the distance between consecutive order values.
const OrderStep = 10

// ID is a stable reference to a record held by a Store.
type ID int

// NoID is the zero ID. Stores never hand it out.
const NoID ID = 0

// Entry pairs a record with its ID.
type Entry struct {
	ID   ID   `json:"id"`
	Item Item `json:"item"`
}

// Placement is the position of one record as derived by Flatten.
type Placement struct {
	ID   ID
	Path Segments
}

// Store is the canonical ordered list of menu items. Records are held in an
// arena keyed by ID; the hierarchy and callers only ever hold IDs.
//
// Order is derived from the list position and Path is only changed by Commit.
// A Store is not safe for concurrent use.
type Store struct {
	records map[ID]*Item
	order   []ID
	next    ID
}

// NewStore creates a store from items sorted by their Order. Items with equal
// Order keep their relative position.
func NewStore(items []Item) *Store {
	sorted := slices.Clone(items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	s := &Store{records: make(map[ID]*Item, len(sorted))}
	for _, it := range sorted {
		s.order = append(s.order, s.add(it))
	}
	return s
}

func (s *Store) add(it Item) ID {
	s.next++
	id := s.next
	it.Path = ParsePath(it.Path).String()
	if it.IsDivider {
		it.IsOptionBox = false
	}
	s.records[id] = &it
	return id
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.order)
}

// IDs returns the record IDs in canonical order.
func (s *Store) IDs() []ID {
	return slices.Clone(s.order)
}

// Index returns the canonical position of id, or -1.
func (s *Store) Index(id ID) int {
	return slices.Index(s.order, id)
}

// Get returns a copy of the record with its derived order.
func (s *Store) Get(id ID) (Item, bool) {
	idx := s.Index(id)
	if idx < 0 {
		return Item{}, false
	}
	return s.at(idx), true
}

func (s *Store) at(idx int) Item {
	it := *s.records[s.order[idx]]
	it.Order = (idx + 1) * OrderStep
	return it
}

// Entries returns all records in canonical order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.order))
	for i, id := range s.order {
		out[i] = Entry{ID: id, Item: s.at(i)}
	}
	return out
}

// Items returns copies of all records in canonical order, ready to persist.
func (s *Store) Items() []Item {
	out := make([]Item, len(s.order))
	for i := range s.order {
		out[i] = s.at(i)
	}
	return out
}

// Append adds it at the end of the list.
func (s *Store) Append(it Item) ID {
	id := s.add(it)
	s.order = append(s.order, id)
	return id
}

// InsertAfter adds it immediately after target.
func (s *Store) InsertAfter(target ID, it Item) (ID, error) {
	idx := s.Index(target)
	if idx < 0 {
		return NoID, fmt.Errorf("insert after %d: %w", target, ErrNotFound)
	}
	id := s.add(it)
	s.order = slices.Insert(s.order, idx+1, id)
	return id, nil
}

// Remove deletes the given records and returns how many were removed.
func (s *Store) Remove(ids ...ID) int {
	drop := make(map[ID]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.records[id]; ok {
			drop[id] = true
		}
	}
	s.order = slices.DeleteFunc(s.order, func(id ID) bool { return drop[id] })
	for id := range drop {
		delete(s.records, id)
	}
	return len(drop)
}

// Update edits a record in place. Changes fn makes to Path or Order are discarded;
// positions only change through Commit.
func (s *Store) Update(id ID, fn func(it *Item)) error {
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("update %d: %w", id, ErrNotFound)
	}
	path := rec.Path
	fn(rec)
	rec.Path = path
	rec.Order = 0
	if rec.IsDivider {
		rec.IsOptionBox = false
	}
	return nil
}

// SatelliteOf returns the option box owned by id, if any.
func (s *Store) SatelliteOf(id ID) (ID, bool) {
	idx := s.Index(id)
	if idx < 0 || idx+1 >= len(s.order) {
		return NoID, false
	}
	owner := s.records[id]
	next := s.records[s.order[idx+1]]
	if !owner.CanOwnSatellite() || !next.IsOptionBox || next.Path != owner.Path {
		return NoID, false
	}
	return s.order[idx+1], true
}

// OwnerOf returns the item a satellite belongs to, if any.
func (s *Store) OwnerOf(id ID) (ID, bool) {
	idx := s.Index(id)
	if idx <= 0 || !s.records[id].IsOptionBox {
		return NoID, false
	}
	prev := s.order[idx-1]
	if sat, ok := s.SatelliteOf(prev); ok && sat == id {
		return prev, true
	}
	return NoID, false
}

// Commit replaces the canonical order and paths with placements produced by
// Flatten. Placements must reference every record exactly once; otherwise the
// store is left unchanged.
func (s *Store) Commit(placements []Placement) error {
	if len(placements) != len(s.order) {
		return fmt.Errorf("commit %d placements for %d records: %w", len(placements), len(s.order), ErrCorruptTree)
	}
	seen := make(map[ID]bool, len(placements))
	for _, p := range placements {
		if _, ok := s.records[p.ID]; !ok || seen[p.ID] {
			return fmt.Errorf("commit placement for record %d: %w", p.ID, ErrCorruptTree)
		}
		seen[p.ID] = true
	}

	order := make([]ID, len(placements))
	for i, p := range placements {
		order[i] = p.ID
		s.records[p.ID].Path = p.Path.String()
	}
	s.order = order
	return nil
}

// Clone returns a deep copy. IDs are preserved.
func (s *Store) Clone() *Store {
	c := &Store{
		records: make(map[ID]*Item, len(s.records)),
		order:   slices.Clone(s.order),
		next:    s.next,
	}
	for id, rec := range s.records {
		cp := *rec
		c.records[id] = &cp
	}
	return c
}
