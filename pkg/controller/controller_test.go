package controller

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/menubuilder/pkg/host"
	"github.com/mchmarny/menubuilder/pkg/logger"
	"github.com/mchmarny/menubuilder/pkg/menu"
	"github.com/mchmarny/menubuilder/pkg/storage"
)

const testMenu = "TempBar"

type fixture struct {
	ctrl *Controller
	repo *storage.FileRepository
	rec  *host.Recorder
}

// newFixture returns a controller with items loaded as the test configuration.
func newFixture(t *testing.T, items ...menu.Item) *fixture {
	t.Helper()
	repo := storage.NewFileRepository(t.TempDir())
	require.NoError(t, repo.Save(testMenu, items))

	rec := &host.Recorder{}
	engine := menu.NewEngine(rec, &host.Registry{})
	c := New(repo, engine, WithLogger(logger.Discard()))
	require.NoError(t, c.Load(testMenu))
	return &fixture{ctrl: c, repo: repo, rec: rec}
}

func (f *fixture) id(t *testing.T, label string) menu.ID {
	t.Helper()
	for _, e := range f.ctrl.Entries() {
		if e.Item.Label == label {
			return e.ID
		}
	}
	t.Fatalf("no item labelled %q", label)
	return menu.NoID
}

func (f *fixture) labels() []string {
	var out []string
	for _, it := range f.ctrl.Items() {
		out = append(out, it.Label)
	}
	return out
}

func (f *fixture) gestures(gesture, outcome string) float64 {
	return testutil.ToFloat64(f.ctrl.Metrics().Gestures.Vec().WithLabelValues(gesture, outcome))
}

func (f *fixture) rejections(code menu.Code) float64 {
	return testutil.ToFloat64(f.ctrl.Metrics().Rejections.Vec().WithLabelValues(string(code)))
}

func TestLoadRepairsOrphanedOptionBoxes(t *testing.T) {
	f := newFixture(t,
		menu.Item{Label: "X", IsOptionBox: true, Order: 10},
		menu.Item{Label: "A", Path: "Tools", Order: 20},
		menu.Item{Label: "B", Order: 30},
	)

	items := f.ctrl.Items()
	require.Len(t, items, 3)
	for _, it := range items {
		assert.False(t, it.IsOptionBox, it.Label)
	}
	assert.Equal(t, []string{"X", "A", "B"}, f.labels())
	assert.NoError(t, menu.CheckInvariants(menu.NewStore(items)))
	assert.False(t, f.ctrl.Dirty())
	assert.Equal(t, testMenu, f.ctrl.Name())
}

func TestLoadMissingStartsEmpty(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "A"})

	err := f.ctrl.Load("nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, f.ctrl.Items())
	assert.Equal(t, "nope", f.ctrl.Name())
}

func TestAddRejectsNameConflict(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "Freeze", Path: "Tools"}, menu.Item{Label: "X", Path: "Tools/Rig"})

	_, err := f.ctrl.Add(menu.Item{Label: "freeze", Path: "Tools"}, menu.NoID)
	r, ok := menu.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, menu.CodeNameConflict, r.Code)

	_, err = f.ctrl.Add(menu.Item{Label: "Rig", Path: "Tools"}, menu.NoID)
	_, ok = menu.AsRejection(err)
	require.True(t, ok)

	assert.Equal(t, []string{"Freeze", "X"}, f.labels())
	assert.False(t, f.ctrl.Dirty())
	assert.Equal(t, float64(2), f.gestures(GestureAdd, "rejected"))
	assert.Equal(t, float64(2), f.rejections(menu.CodeNameConflict))
}

func TestAddValidatesLabel(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.Add(menu.Item{Label: "  "}, menu.NoID)
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = f.ctrl.Add(menu.Item{Label: "a/b"}, menu.NoID)
	assert.ErrorIs(t, err, ErrInvalidItem)

	id, err := f.ctrl.Add(menu.Item{IsDivider: true}, menu.NoID)
	require.NoError(t, err)
	assert.NotEqual(t, menu.NoID, id)
}

func TestAddAfterOwnerKeepsPair(t *testing.T) {
	f := newFixture(t,
		menu.Item{Label: "A"},
		menu.Item{Label: "A opts", IsOptionBox: true},
		menu.Item{Label: "C"},
	)

	_, err := f.ctrl.Add(menu.Item{Label: "B", Command: "b()"}, f.id(t, "A"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A opts", "B", "C"}, f.labels())
	assert.True(t, f.ctrl.Dirty())
	assert.Equal(t, float64(1), f.gestures(GestureAdd, "ok"))
}

func TestAddOptionBox(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "A"}, menu.Item{Label: "C"})

	id, err := f.ctrl.Add(menu.Item{Label: "A opts", IsOptionBox: true}, f.id(t, "A"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A opts", "C"}, f.labels())

	for _, e := range f.ctrl.Entries() {
		assert.Equal(t, e.ID == id, e.Item.IsOptionBox, e.Item.Label)
	}
}

func TestAddOptionBoxFirstAtLevelIsAtomic(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.Add(menu.Item{Label: "X", IsOptionBox: true}, menu.NoID)
	r, ok := menu.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, menu.CodeInvalidSatelliteParent, r.Code)
	assert.Equal(t, menu.ReasonFirstAtLevel, r.Reason)
	assert.Empty(t, f.ctrl.Items())
}

func TestEdit(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "A", Path: "Tools"}, menu.Item{Label: "B"})

	err := f.ctrl.Edit(f.id(t, "A"), menu.Item{Label: "A2", Path: "Render", Command: "mel:polyCube", Icon: "cube.png"})
	require.NoError(t, err)

	items := f.ctrl.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[0].Label)
	assert.Equal(t, menu.Item{Label: "A2", Path: "Render", Order: 20, Command: "mel:polyCube", Icon: "cube.png"}, items[1])

	err = f.ctrl.Edit(f.id(t, "B"), menu.Item{Label: "a2", Path: "Render"})
	_, ok := menu.AsRejection(err)
	assert.True(t, ok)

	err = f.ctrl.Edit(menu.ID(99), menu.Item{Label: "Z"})
	assert.ErrorIs(t, err, menu.ErrNotFound)
}

func TestEditRejectsDivider(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "A"}, menu.Item{IsDivider: true})
	ids := f.ctrl.Entries()

	err := f.ctrl.Edit(ids[1].ID, menu.Item{Label: "B"})
	assert.ErrorIs(t, err, ErrInvalidItem)
	assert.Equal(t, float64(1), f.gestures(GestureEdit, "failed"))
}

func TestDropCarriesSatellite(t *testing.T) {
	f := newFixture(t,
		menu.Item{Label: "A", Path: "Tools"},
		menu.Item{Label: "A opts", Path: "Tools", IsOptionBox: true},
		menu.Item{Label: "B", Path: "Render"},
	)

	err := f.ctrl.Drop(menu.Drop{
		Source:   menu.ItemRef(f.id(t, "A")),
		Target:   menu.FolderRef("Render"),
		Position: menu.After,
	})
	require.NoError(t, err)

	items := f.ctrl.Items()
	assert.Equal(t, []string{"B", "A", "A opts"}, f.labels())
	assert.Equal(t, "", items[1].Path)
	assert.Equal(t, "", items[2].Path)
	assert.True(t, items[2].IsOptionBox)
}

func TestDropIllegalIsAtomic(t *testing.T) {
	f := newFixture(t,
		menu.Item{Label: "A"},
		menu.Item{Label: "A opts", IsOptionBox: true},
		menu.Item{Label: "C"},
	)
	before := f.ctrl.Entries()

	err := f.ctrl.Drop(menu.Drop{
		Source:   menu.ItemRef(f.id(t, "C")),
		Target:   menu.ItemRef(f.id(t, "A opts")),
		Position: menu.Onto,
	})
	r, ok := menu.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, menu.CodeInvalidDropTarget, r.Code)
	assert.Equal(t, before, f.ctrl.Entries())
	assert.Equal(t, float64(1), f.rejections(menu.CodeInvalidDropTarget))
}

func TestRenameFolder(t *testing.T) {
	f := newFixture(t,
		menu.Item{Label: "A", Path: "Tools"},
		menu.Item{Label: "B", Path: "Tools/Anim"},
		menu.Item{Label: "C", Path: "Render"},
	)

	err := f.ctrl.Rename(menu.FolderRef("Tools"), "Render")
	r, ok := menu.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, menu.CodeNameConflict, r.Code)

	require.NoError(t, f.ctrl.Rename(menu.FolderRef("Tools"), "Utils"))
	var paths []string
	for _, it := range f.ctrl.Items() {
		paths = append(paths, it.Path)
	}
	assert.Equal(t, []string{"Utils", "Utils/Anim", "Render"}, paths)
}

func TestRenameItem(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "A"}, menu.Item{Label: "B"}, menu.Item{IsDivider: true})

	require.NoError(t, f.ctrl.Rename(menu.ItemRef(f.id(t, "A")), "Alpha"))
	assert.Equal(t, []string{"Alpha", "B", ""}, f.labels())

	_, ok := menu.AsRejection(f.ctrl.Rename(menu.ItemRef(f.id(t, "B")), "alpha"))
	assert.True(t, ok)

	divider := f.ctrl.Entries()[2].ID
	assert.ErrorIs(t, f.ctrl.Rename(menu.ItemRef(divider), "X"), ErrInvalidItem)
	assert.ErrorIs(t, f.ctrl.Rename(menu.ItemRef(f.id(t, "B")), ""), ErrInvalidItem)
}

func TestDelete(t *testing.T) {
	f := newFixture(t,
		menu.Item{Label: "A"},
		menu.Item{Label: "A opts", IsOptionBox: true},
		menu.Item{Label: "T1", Path: "Tools"},
		menu.Item{Label: "T2", Path: "Tools/Anim"},
		menu.Item{Label: "U", Path: "Tools2"},
	)

	n, err := f.ctrl.Delete(menu.ItemRef(f.id(t, "A")))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.ctrl.Delete(menu.FolderRef("Tools"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"U"}, f.labels())

	_, err = f.ctrl.Delete(menu.FolderRef("Missing"))
	assert.ErrorIs(t, err, menu.ErrNotFound)
	_, err = f.ctrl.Delete(menu.ItemRef(menu.ID(99)))
	assert.ErrorIs(t, err, menu.ErrNotFound)
}

func TestSetOptionBox(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "A", Path: "Tools"}, menu.Item{Label: "B", Path: "Tools"})

	err := f.ctrl.SetOptionBox(f.id(t, "A"), true)
	r, ok := menu.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, menu.ReasonFirstAtLevel, r.Reason)

	require.NoError(t, f.ctrl.SetOptionBox(f.id(t, "B"), true))
	assert.True(t, f.ctrl.Items()[1].IsOptionBox)

	require.NoError(t, f.ctrl.SetOptionBox(f.id(t, "B"), false))
	assert.False(t, f.ctrl.Items()[1].IsOptionBox)

	assert.ErrorIs(t, f.ctrl.SetOptionBox(menu.ID(99), false), menu.ErrNotFound)
}

func TestAddDivider(t *testing.T) {
	f := newFixture(t,
		menu.Item{Label: "A"},
		menu.Item{Label: "A opts", IsOptionBox: true},
		menu.Item{Label: "T", Path: "Tools"},
		menu.Item{Label: "C"},
	)

	_, err := f.ctrl.AddDivider(menu.ItemRef(f.id(t, "A")))
	require.NoError(t, err)
	_, err = f.ctrl.AddDivider(menu.FolderRef("Tools"))
	require.NoError(t, err)
	_, err = f.ctrl.AddDivider(menu.Ref{})
	require.NoError(t, err)

	var got []string
	for _, it := range f.ctrl.Items() {
		if it.IsDivider {
			got = append(got, "---@"+it.Path)
			continue
		}
		got = append(got, it.Label)
	}
	assert.Equal(t, []string{"A", "A opts", "---@", "T", "---@Tools", "C", "---@"}, got)

	_, err = f.ctrl.AddDivider(menu.FolderRef("Missing"))
	assert.ErrorIs(t, err, menu.ErrNotFound)
}

func TestMergeAndSave(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "A"})
	require.NoError(t, f.repo.Save("Extra", []menu.Item{
		{Label: "X", Path: "Tools"},
		{Label: "Y", Path: "Tools", IsOptionBox: true},
	}))

	n, err := f.ctrl.Merge("Extra")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"A", "X", "Y"}, f.labels())
	assert.True(t, f.ctrl.Dirty())

	require.NoError(t, f.ctrl.Save())
	assert.False(t, f.ctrl.Dirty())

	saved, err := f.repo.Load(testMenu)
	require.NoError(t, err)
	assert.Equal(t, f.ctrl.Items(), saved)

	_, err = f.ctrl.Merge("Missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveWithoutName(t *testing.T) {
	repo := storage.NewFileRepository(t.TempDir())
	c := New(repo, menu.NewEngine(&host.Recorder{}, &host.Registry{}), WithLogger(logger.Discard()))

	assert.ErrorIs(t, c.Save(), ErrNoConfiguration)

	_, err := c.Add(menu.Item{Label: "A"}, menu.NoID)
	require.NoError(t, err)
	require.NoError(t, c.SaveAs("Mine"))
	assert.Equal(t, "Mine", c.Name())

	items, err := repo.Load("Mine")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestBuild(t *testing.T) {
	f := newFixture(t,
		menu.Item{Label: "A", Order: 10},
		menu.Item{Label: "B", Order: 20, IsOptionBox: true},
		menu.Item{Label: "C", Path: "X", Order: 30},
	)

	assert.Equal(t, 3, f.ctrl.Build())
	first := len(f.rec.Calls)
	assert.Equal(t, 5, first)

	f.ctrl.Build()
	assert.Equal(t, "destroyTopLevel(h1)", f.rec.Calls[first])
	assert.Equal(t, float64(2), testutil.ToFloat64(f.ctrl.Metrics().Builds.Vec().WithLabelValues("rooted")))
}

func TestGesturesAreSerialized(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ctrl.Add(menu.Item{Label: fmt.Sprintf("Item %d", i), Path: "Tools"}, menu.NoID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items := f.ctrl.Items()
	assert.Len(t, items, 20)
	assert.NoError(t, menu.CheckInvariants(menu.NewStore(items)))
	assert.Equal(t, float64(20), f.gestures(GestureAdd, "ok"))
}

func TestView(t *testing.T) {
	f := newFixture(t,
		menu.Item{Label: "A"},
		menu.Item{Label: "A opts", IsOptionBox: true},
		menu.Item{Label: "C", Path: "Tools"},
	)

	view := f.ctrl.View()
	require.Len(t, view, 3)
	assert.Equal(t, "(□) A opts", view[1].Display)
	assert.True(t, view[1].OptionBox)

	tools := view[2]
	assert.Equal(t, "folder", tools.Kind)
	assert.Equal(t, "Tools/", tools.Display)
	require.Len(t, tools.Children, 1)
	assert.Equal(t, "Tools", tools.Children[0].Path)
	assert.Equal(t, f.id(t, "C"), tools.Children[0].ID)
}

func TestDropRejectsNameConflict(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "Rig"}, menu.Item{Label: "Rig", Path: "Tools"})
	ids := f.ctrl.Entries()
	before := f.ctrl.Items()

	err := f.ctrl.Drop(menu.Drop{
		Source:   menu.ItemRef(ids[1].ID),
		Target:   menu.ItemRef(ids[0].ID),
		Position: menu.After,
	})
	r, ok := menu.AsRejection(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, menu.CodeNameConflict, r.Code)

	err = f.ctrl.Drop(menu.Drop{Source: menu.FolderRef("Tools")})
	require.NoError(t, err)

	assert.Equal(t, before, f.ctrl.Items())
	assert.Empty(t, menu.Audit(menu.NewStore(f.ctrl.Items())))
	assert.Equal(t, float64(1), f.rejections(menu.CodeNameConflict))
}

func TestEditRelocatedOptionBoxChecksName(t *testing.T) {
	f := newFixture(t,
		menu.Item{Label: "A"},
		menu.Item{Label: "Opt", IsOptionBox: true},
		menu.Item{Label: "Opt", Path: "Tools"},
	)
	sat := f.ctrl.Entries()[1].ID

	err := f.ctrl.Edit(sat, menu.Item{Label: "Opt", Path: "Tools"})
	r, ok := menu.AsRejection(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, menu.CodeNameConflict, r.Code)
	assert.Equal(t, "Tools", r.Path)
	assert.True(t, f.ctrl.Items()[1].IsOptionBox)

	require.NoError(t, f.ctrl.Edit(sat, menu.Item{Label: "Opt", Command: "opts()"}))
	items := f.ctrl.Items()
	assert.True(t, items[1].IsOptionBox)
	assert.Equal(t, "opts()", items[1].Command)
}

func TestMergeRejectsNameConflict(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "A"}, menu.Item{Label: "B", Path: "Tools"})
	require.NoError(t, f.repo.Save("Dupes", []menu.Item{{Label: "a"}}))
	require.NoError(t, f.repo.Save("Shadow", []menu.Item{{Label: "Tools"}}))

	for _, name := range []string{"Dupes", "Shadow"} {
		n, err := f.ctrl.Merge(name)
		r, ok := menu.AsRejection(err)
		require.True(t, ok, "%s: got %v", name, err)
		assert.Equal(t, menu.CodeNameConflict, r.Code)
		assert.Zero(t, n)
	}

	assert.Equal(t, []string{"A", "B"}, f.labels())
	assert.False(t, f.ctrl.Dirty())
	assert.Equal(t, float64(2), f.gestures(GestureMerge, "rejected"))
}

func TestGestureToleratesExistingConflicts(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "Rig"}, menu.Item{Label: "rig"})

	_, err := f.ctrl.Add(menu.Item{Label: "C"}, menu.NoID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rig", "rig", "C"}, f.labels())
}

func TestRejectsDividerLabels(t *testing.T) {
	f := newFixture(t, menu.Item{Label: "A"}, menu.Item{Label: "B"})

	for _, label := range []string{"-", "---", "Separator"} {
		err := f.ctrl.Rename(menu.ItemRef(f.id(t, "B")), label)
		assert.ErrorIs(t, err, ErrInvalidItem, label)

		_, err = f.ctrl.Add(menu.Item{Label: label}, menu.NoID)
		assert.ErrorIs(t, err, ErrInvalidItem, label)
	}

	err := f.ctrl.Edit(f.id(t, "A"), menu.Item{Label: "separator", IsDivider: true})
	assert.ErrorIs(t, err, ErrInvalidItem)
	assert.Equal(t, []string{"A", "B"}, f.labels())
}
