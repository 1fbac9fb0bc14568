package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreTests runs the standard store test suite against any Store
// implementation. newStore returns a fresh, empty store and its cleanup.
func RunStoreTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("Add", func(t *testing.T) {
		runAddTests(t, newStore)
	})
	t.Run("Get", func(t *testing.T) {
		runGetTests(t, newStore)
	})
	t.Run("List", func(t *testing.T) {
		runListTests(t, newStore)
	})
	t.Run("Update", func(t *testing.T) {
		runUpdateTests(t, newStore)
	})
	t.Run("Close", func(t *testing.T) {
		runCloseTests(t, newStore)
	})
}

func runAddTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("adds category", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		err := store.Add(context.Background(), Category{ID: "a", Name: "Groceries"})
		require.NoError(t, err)

		got, err := store.Get(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, "Groceries", got.Name)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		ctx := context.Background()
		require.NoError(t, store.Add(ctx, Category{ID: "a", Name: "Groceries"}))

		err := store.Add(ctx, Category{ID: "b", Name: "Groceries"})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("names are case sensitive", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		ctx := context.Background()
		require.NoError(t, store.Add(ctx, Category{ID: "a", Name: "Groceries"}))
		assert.NoError(t, store.Add(ctx, Category{ID: "b", Name: "groceries"}))
	})

	t.Run("does not persist dragged over flag", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		ctx := context.Background()
		require.NoError(t, store.Add(ctx, Category{ID: "a", Name: "Groceries", DraggedOver: true}))

		got, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "a", got.ID)
	})
}

func runGetTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("missing id", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		_, err := store.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func runListTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("empty store", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		categories, err := store.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, categories)
	})

	t.Run("keeps insertion order", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		ctx := context.Background()
		names := []string{"Work", "Groceries", "Travel", "Books"}
		for i, name := range names {
			require.NoError(t, store.Add(ctx, Category{ID: string(rune('a' + i)), Name: name}))
		}

		categories, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, categories, len(names))
		for i, name := range names {
			assert.Equal(t, name, categories[i].Name)
		}
	})
}

func runUpdateTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("renames in place", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		ctx := context.Background()
		require.NoError(t, store.Add(ctx, Category{ID: "a", Name: "Work"}))
		require.NoError(t, store.Add(ctx, Category{ID: "b", Name: "Groceries"}))

		require.NoError(t, store.Update(ctx, Category{ID: "a", Name: "Office"}))

		categories, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, "Office", categories[0].Name)
		assert.Equal(t, "Groceries", categories[1].Name)
	})

	t.Run("missing id", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		err := store.Update(context.Background(), Category{ID: "missing", Name: "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects name owned by another category", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		ctx := context.Background()
		require.NoError(t, store.Add(ctx, Category{ID: "a", Name: "Work"}))
		require.NoError(t, store.Add(ctx, Category{ID: "b", Name: "Groceries"}))

		err := store.Update(ctx, Category{ID: "a", Name: "Groceries"})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})
}

func runCloseTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("operations fail after close", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		require.NoError(t, store.Close())

		_, err := store.List(context.Background())
		assert.ErrorIs(t, err, ErrStoreClosed)

		err = store.Add(context.Background(), Category{ID: "a", Name: "x"})
		assert.ErrorIs(t, err, ErrStoreClosed)
	})
}
