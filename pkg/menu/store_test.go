package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(s *Store) []string {
	var out []string
	for _, it := range s.Items() {
		out = append(out, it.Label)
	}
	return out
}

// idOf returns the ID of the first record labelled label.
func idOf(t *testing.T, s *Store, label string) ID {
	t.Helper()
	for _, e := range s.Entries() {
		if e.Item.Label == label {
			return e.ID
		}
	}
	t.Fatalf("no record labelled %q", label)
	return NoID
}

func TestNewStoreSortsByOrder(t *testing.T) {
	s := NewStore([]Item{
		{Label: "c", Order: 30},
		{Label: "a", Order: 10},
		{Label: "b", Order: 10},
	})

	assert.Equal(t, []string{"a", "b", "c"}, labels(s))
	for i, it := range s.Items() {
		assert.Equal(t, (i+1)*OrderStep, it.Order)
	}
}

func TestNewStoreNormalizesRecords(t *testing.T) {
	s := NewStore([]Item{
		{Label: "A", Path: "/Tools//Anim/"},
		{IsDivider: true, IsOptionBox: true},
	})

	items := s.Items()
	assert.Equal(t, "Tools/Anim", items[0].Path)
	assert.False(t, items[1].IsOptionBox)
}

func TestStoreInsertAfter(t *testing.T) {
	s := NewStore([]Item{{Label: "A"}, {Label: "C"}})

	_, err := s.InsertAfter(idOf(t, s, "A"), Item{Label: "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, labels(s))

	_, err = s.InsertAfter(ID(99), Item{Label: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, s.Len())
}

func TestStoreRemove(t *testing.T) {
	s := NewStore([]Item{{Label: "A"}, {Label: "B"}, {Label: "C"}})

	n := s.Remove(idOf(t, s, "A"), idOf(t, s, "C"), ID(99))
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"B"}, labels(s))
}

func TestStoreUpdateKeepsPosition(t *testing.T) {
	s := NewStore([]Item{{Label: "A", Path: "Tools"}})
	id := idOf(t, s, "A")

	require.NoError(t, s.Update(id, func(it *Item) {
		it.Label = "Renamed"
		it.Path = "Elsewhere"
		it.Order = 999
	}))

	it, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Renamed", it.Label)
	assert.Equal(t, "Tools", it.Path)
	assert.Equal(t, OrderStep, it.Order)

	assert.ErrorIs(t, s.Update(ID(99), func(*Item) {}), ErrNotFound)
}

func TestStoreSatelliteOf(t *testing.T) {
	s := NewStore([]Item{
		{Label: "A"},
		{Label: "A opts", IsOptionBox: true},
		{Label: "B", Path: "Tools"},
		{Label: "B opts", IsOptionBox: true},
		{IsDivider: true},
		{Label: "D opts", IsOptionBox: true},
	})

	sat, ok := s.SatelliteOf(idOf(t, s, "A"))
	require.True(t, ok)
	assert.Equal(t, idOf(t, s, "A opts"), sat)

	owner, ok := s.OwnerOf(sat)
	require.True(t, ok)
	assert.Equal(t, idOf(t, s, "A"), owner)

	_, ok = s.SatelliteOf(idOf(t, s, "B"))
	assert.False(t, ok, "a satellite at another path is not owned")

	_, ok = s.OwnerOf(idOf(t, s, "D opts"))
	assert.False(t, ok, "a divider owns nothing")
}

func TestStoreCommitRejectsIncompletePlacements(t *testing.T) {
	s := NewStore([]Item{{Label: "A"}, {Label: "B"}})
	a, b := idOf(t, s, "A"), idOf(t, s, "B")

	err := s.Commit([]Placement{{ID: a}})
	assert.ErrorIs(t, err, ErrCorruptTree)

	err = s.Commit([]Placement{{ID: a}, {ID: a}})
	assert.ErrorIs(t, err, ErrCorruptTree)

	assert.Equal(t, []string{"A", "B"}, labels(s))

	require.NoError(t, s.Commit([]Placement{{ID: b, Path: Segments{"X"}}, {ID: a}}))
	assert.Equal(t, []string{"B", "A"}, labels(s))
	it, _ := s.Get(b)
	assert.Equal(t, "X", it.Path)
}

func TestStoreCloneIsDeep(t *testing.T) {
	s := NewStore([]Item{{Label: "A"}})
	c := s.Clone()
	require.NoError(t, c.Update(idOf(t, c, "A"), func(it *Item) { it.Label = "B" }))
	c.Append(Item{Label: "C"})

	assert.Equal(t, []string{"A"}, labels(s))
	assert.Equal(t, []string{"B", "C"}, labels(c))
}
