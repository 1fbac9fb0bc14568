package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedOp struct {
	operation string
	id        string
	name      string
	success   bool
}

type recordingAuditor struct {
	ops []recordedOp
}

func (r *recordingAuditor) LogCategoryOperation(operation, categoryID, name string, success bool, errorMsg string) {
	r.ops = append(r.ops, recordedOp{operation, categoryID, name, success})
}

type failingStore struct {
	*MemoryStore
	err error
}

func (s *failingStore) Add(ctx context.Context, c Category) error    { return s.err }
func (s *failingStore) Update(ctx context.Context, c Category) error { return s.err }

func TestMemoryStore(t *testing.T) {
	RunStoreTests(t, func() (Store, func()) {
		store := NewMemoryStore()
		return store, func() { store.Close() }
	})
}

func TestNewServiceLoadsCategories(t *testing.T) {
	store := NewMemoryStore(Category{ID: "a", Name: "Work"}, Category{ID: "b", Name: "Home"})

	svc, err := NewService(context.Background(), store, nil)
	require.NoError(t, err)

	assert.Equal(t, []Category{{ID: "a", Name: "Work"}, {ID: "b", Name: "Home"}}, svc.Categories())
	assert.False(t, svc.Editing().Active())
}

func TestNewServiceClosedStore(t *testing.T) {
	store := NewMemoryStore()
	store.Close()

	_, err := NewService(context.Background(), store, nil)
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestServiceCategoriesIsCopy(t *testing.T) {
	svc, err := NewService(context.Background(), NewMemoryStore(Category{ID: "a", Name: "Work"}), nil)
	require.NoError(t, err)

	list := svc.Categories()
	list[0].Name = "changed"

	assert.Equal(t, "Work", svc.Categories()[0].Name)
}

func TestServiceAddCategory(t *testing.T) {
	auditor := &recordingAuditor{}
	store := NewMemoryStore()
	svc, err := NewService(context.Background(), store, auditor)
	require.NoError(t, err)

	require.NoError(t, svc.AddCategory(context.Background(), Category{ID: "x", Name: "Travel"}))

	assert.Len(t, svc.Categories(), 1)
	persisted, err := store.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Travel", persisted.Name)
	assert.Equal(t, []recordedOp{{"add", "x", "Travel", true}}, auditor.ops)
}

func TestServiceUpdateCategory(t *testing.T) {
	store := NewMemoryStore(Category{ID: "a", Name: "Work"}, Category{ID: "b", Name: "Home"})
	svc, err := NewService(context.Background(), store, nil)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateCategory(context.Background(), Category{ID: "b", Name: "House"}))

	assert.Equal(t, "House", svc.Categories()[1].Name)

	err = svc.UpdateCategory(context.Background(), Category{ID: "zzz", Name: "Nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceStoreFailureKeepsMemoryUnchanged(t *testing.T) {
	boom := errors.New("disk full")
	auditor := &recordingAuditor{}
	store := &failingStore{MemoryStore: NewMemoryStore(Category{ID: "a", Name: "Work"}), err: boom}
	svc, err := NewService(context.Background(), store, auditor)
	require.NoError(t, err)

	err = svc.AddCategory(context.Background(), Category{ID: "b", Name: "Home"})
	assert.ErrorIs(t, err, boom)
	err = svc.UpdateCategory(context.Background(), Category{ID: "a", Name: "Office"})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []Category{{ID: "a", Name: "Work"}}, svc.Categories())
	require.Len(t, auditor.ops, 2)
	assert.False(t, auditor.ops[0].success)
	assert.False(t, auditor.ops[1].success)
}

func TestServiceSetCategoryEdit(t *testing.T) {
	svc, err := NewService(context.Background(), NewMemoryStore(), nil)
	require.NoError(t, err)

	svc.SetCategoryEdit("a", "Wor")
	assert.Equal(t, EditingState{ID: "a", TempName: "Wor"}, svc.Editing())

	svc.SetCategoryEdit(EmptyID, "")
	assert.False(t, svc.Editing().Active())
}

func TestServiceReload(t *testing.T) {
	store := NewMemoryStore()
	svc, err := NewService(context.Background(), store, nil)
	require.NoError(t, err)

	require.NoError(t, store.Add(context.Background(), Category{ID: "a", Name: "Outside"}))
	require.NoError(t, svc.Reload(context.Background()))

	assert.Len(t, svc.Categories(), 1)
}
