package sidebar

import (
	"context"
	"errors"
	"testing"

	"github.com/brandonhon/catbar/internal/category"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountRegistersListenersOnce(t *testing.T) {
	f := newFixture(t, "Work")

	f.list.Mount()
	f.list.Mount()
	for i := 0; i < 5; i++ {
		f.list.Rows()
	}

	assert.Equal(t, 2, f.doc.ListenerCount())
	assert.True(t, f.list.Mounted())
}

func TestUnmountLeavesNothingBehind(t *testing.T) {
	f := newFixture(t, "Work", "Groceries", "Travel").mounted()

	f.list.OnClick(NewPointerEvent(OptionsElement("b"), Point{X: 5, Y: 5}), "b")
	f.list.Anim.Sync([]string{"c", "a", "b"})
	require.True(t, f.list.Animating())

	f.list.Unmount()

	assert.Zero(t, f.doc.ListenerCount())
	assert.Zero(t, f.list.Anim.Len())
	assert.False(t, f.list.Animating())

	menu := f.list.Menu.State()
	editing := f.svc.Editing()
	adding := f.temp.AddingTempCategory()

	assert.False(t, f.list.Frame())
	f.doc.DispatchPointerDown(NewPointerEvent(ElementBackground, Point{}))
	f.list.OnClick(NewPointerEvent(OptionsElement("a"), Point{X: 1, Y: 1}), "a")
	f.list.OnContextMenu(NewPointerEvent(RowElement("c"), Point{X: 1, Y: 1}), "c")
	f.list.OnAddClick(NewPointerEvent(ElementAdd, Point{}))
	f.list.ChangeForm("ghost")
	f.list.RenameSelected()
	f.list.Sync()
	assert.False(t, f.list.OnDragStart("a"))
	assert.NoError(t, f.list.OnMenuAction(nil, MenuRename))
	assert.NoError(t, f.list.SubmitForm(context.Background(), &SubmitEvent{}))

	assert.Equal(t, menu, f.list.Menu.State())
	assert.Equal(t, editing, f.svc.Editing())
	assert.Equal(t, adding, f.temp.AddingTempCategory())
	assert.Zero(t, f.list.Anim.Len())
	assert.Empty(t, f.store.adds)
}

func TestRemountReregisters(t *testing.T) {
	f := newFixture(t, "Work").mounted()
	f.list.Unmount()
	f.list.Unmount()
	f.list.Mount()

	assert.Equal(t, 2, f.doc.ListenerCount())
	assert.Equal(t, 1, f.list.Anim.Len())
}

func TestRowsDerivation(t *testing.T) {
	f := newFixture(t, "Work", "Groceries", "Travel").mounted()

	f.list.OnClick(NewPointerEvent(OptionsElement("b"), Point{X: 7, Y: 2}), "b")
	f.list.Edit.BeginRename("c", "Travel")
	f.list.Edit.ChangeTempName("c", "Trav")

	rows := f.list.Rows()
	require.Len(t, rows, 3)

	assert.Equal(t, 0.0, rows[0].Y)
	assert.Equal(t, 80.0, rows[1].Y)
	assert.Equal(t, 160.0, rows[2].Y)

	assert.True(t, rows[0].Selected)
	assert.False(t, rows[0].MenuOpen)
	assert.True(t, rows[1].MenuOpen)
	assert.Equal(t, Point{X: 7, Y: 2}, rows[1].MenuAnchor)
	assert.Equal(t, Point{}, rows[0].MenuAnchor)

	assert.True(t, rows[2].Editing)
	assert.Equal(t, "Trav", rows[2].TempName)
	assert.Empty(t, rows[1].TempName)
}

func TestAffordance(t *testing.T) {
	f := newFixture(t).mounted()
	assert.Equal(t, AffordanceAddButton, f.list.Affordance())

	f.list.OnAddClick(NewPointerEvent(ElementAdd, Point{}))
	assert.Equal(t, AffordanceCreateForm, f.list.Affordance())

	f.list.ResetForm()
	assert.Equal(t, AffordanceAddButton, f.list.Affordance())
}

func TestAddClickClosesMenu(t *testing.T) {
	f := newFixture(t, "Work").mounted()
	f.list.OnClick(NewPointerEvent(OptionsElement("a"), Point{}), "a")

	ev := NewPointerEvent(ElementAdd, Point{})
	f.list.OnAddClick(ev)

	assert.False(t, ev.Propagating())
	assert.False(t, f.list.Menu.State().Open())
}

func TestBlurCancelsForm(t *testing.T) {
	f := newFixture(t, "Work").mounted()
	f.list.OnAddClick(nil)
	f.list.ChangeForm("Half typed")

	f.doc.DispatchPointerDown(NewPointerEvent(ElementForm, Point{}))
	assert.True(t, f.temp.AddingTempCategory())

	f.doc.DispatchPointerDown(NewPointerEvent(ElementBackground, Point{}))
	assert.False(t, f.temp.AddingTempCategory())
	assert.Equal(t, category.EditingState{}, f.svc.Editing())
	assert.Empty(t, f.store.adds)
}

func TestSelectKeepsPropagating(t *testing.T) {
	f := newFixture(t, "Work", "Groceries").mounted()
	f.list.OnClick(NewPointerEvent(OptionsElement("a"), Point{}), "a")

	ev := NewPointerEvent(RowElement("b"), Point{X: 1, Y: 2})
	f.list.OnSelect(ev, "b")
	f.doc.DispatchPointerDown(ev)

	c, idx, ok := f.list.Selected()
	require.True(t, ok)
	assert.Equal(t, "b", c.ID)
	assert.Equal(t, 1, idx)
	assert.False(t, f.list.Menu.State().Open())
}

func TestContextMenuSelectsRow(t *testing.T) {
	f := newFixture(t, "Work", "Groceries").mounted()

	ev := NewPointerEvent(RowElement("b"), Point{X: 3, Y: 4})
	f.list.OnContextMenu(ev, "b")
	f.doc.DispatchPointerDown(ev)

	assert.True(t, f.list.Menu.IsOpen("b"))
	_, idx, _ := f.list.Selected()
	assert.Equal(t, 1, idx)
}

func TestContextMenuClosesOpenForm(t *testing.T) {
	f := newFixture(t, "Work", "Groceries").mounted()
	f.list.OnAddClick(nil)
	f.list.ChangeForm("Half typed")

	ev := NewPointerEvent(RowElement("b"), Point{X: 3, Y: 4})
	f.list.OnContextMenu(ev, "b")
	f.doc.DispatchPointerDown(ev)

	assert.True(t, f.list.Menu.IsOpen("b"))
	assert.False(t, f.temp.AddingTempCategory())
	assert.Equal(t, TargetNone, f.list.Edit.Target())
	assert.Empty(t, f.store.adds)
}

func TestOptionsClickClosesOpenForm(t *testing.T) {
	f := newFixture(t, "Work").mounted()
	f.list.OnAddClick(nil)

	ev := NewPointerEvent(OptionsElement("a"), Point{X: 1, Y: 1})
	f.list.OnClick(ev, "a")
	f.doc.DispatchPointerDown(ev)

	assert.True(t, f.list.Menu.IsOpen("a"))
	assert.False(t, f.temp.AddingTempCategory())
}

func TestMenuActionRename(t *testing.T) {
	f := newFixture(t, "Work", "Groceries").mounted()
	f.list.OnClick(NewPointerEvent(OptionsElement("b"), Point{}), "b")

	ev := NewPointerEvent(ElementMenuRename, Point{})
	require.NoError(t, f.list.OnMenuAction(ev, MenuRename))

	assert.False(t, ev.Propagating())
	assert.False(t, f.list.Menu.State().Open())
	assert.Equal(t, category.EditingState{ID: "b", TempName: "Groceries"}, f.svc.Editing())
	assert.Equal(t, TargetRename, f.list.Edit.Target())
}

func TestMenuActionCopy(t *testing.T) {
	f := newFixture(t, "Work").mounted()
	f.list.OnClick(NewPointerEvent(OptionsElement("a"), Point{}), "a")

	require.NoError(t, f.list.OnMenuAction(nil, MenuCopyName))

	assert.Equal(t, []string{"Work"}, f.copied)
}

func TestMenuActionCopyError(t *testing.T) {
	f := newFixture(t, "Work")
	f.list = NewList(f.doc, f.svc, f.temp, Options{
		Clipboard: func(string) error { return errors.New("no clipboard") },
	})
	f.list.Mount()
	f.list.OnClick(NewPointerEvent(OptionsElement("a"), Point{}), "a")

	assert.Error(t, f.list.OnMenuAction(nil, MenuCopyName))
}

func TestSubmitFormCreatesAndSyncs(t *testing.T) {
	f := newFixture(t, "Work").mounted()
	f.list.OnAddClick(nil)
	f.list.ChangeForm("Travel")

	require.NoError(t, f.list.SubmitForm(context.Background(), &SubmitEvent{}))

	require.Len(t, f.svc.Categories(), 2)
	assert.Equal(t, 2, f.list.Anim.Len())
	assert.Equal(t, 80.0, f.list.Anim.Offset(f.svc.Categories()[1].ID))
}

func TestMoveSelectionBounds(t *testing.T) {
	f := newFixture(t, "Work", "Groceries").mounted()

	f.list.MoveSelection(-1)
	_, idx, _ := f.list.Selected()
	assert.Equal(t, 0, idx)

	f.list.MoveSelection(5)
	_, idx, _ = f.list.Selected()
	assert.Equal(t, 1, idx)
}

func TestToggleSelectedMenu(t *testing.T) {
	f := newFixture(t, "Work").mounted()

	f.list.ToggleSelectedMenu(Point{X: 2, Y: 1})
	assert.True(t, f.list.Menu.IsOpen("a"))

	f.list.ToggleSelectedMenu(Point{X: 2, Y: 1})
	assert.False(t, f.list.Menu.State().Open())
}
