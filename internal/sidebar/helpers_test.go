package sidebar

import (
	"context"
	"testing"

	"github.com/brandonhon/catbar/internal/category"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

// countingStore counts the mutations that reach the store.
type countingStore struct {
	*category.MemoryStore
	adds    []category.Category
	updates []category.Category
}

func (s *countingStore) Add(ctx context.Context, c category.Category) error {
	s.adds = append(s.adds, c)
	return s.MemoryStore.Add(ctx, c)
}

func (s *countingStore) Update(ctx context.Context, c category.Category) error {
	s.updates = append(s.updates, c)
	return s.MemoryStore.Update(ctx, c)
}

type auditRecord struct {
	operation string
	id        string
	name      string
	success   bool
}

type reorderRecord struct {
	id       string
	from, to int
}

type fakeAuditor struct {
	ops      []auditRecord
	reorders []reorderRecord
}

func (a *fakeAuditor) LogCategoryOperation(operation, categoryID, name string, success bool, errorMsg string) {
	a.ops = append(a.ops, auditRecord{operation, categoryID, name, success})
}

func (a *fakeAuditor) LogReorder(categoryID string, from, to int) {
	a.reorders = append(a.reorders, reorderRecord{categoryID, from, to})
}

type fixture struct {
	store   *countingStore
	svc     *category.Service
	temp    *TempState
	doc     *Document
	auditor *fakeAuditor
	list    *List
	copied  []string
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()

	seed := make([]category.Category, len(names))
	for i, name := range names {
		seed[i] = category.Category{ID: string(rune('a' + i)), Name: name}
	}

	f := &fixture{
		store:   &countingStore{MemoryStore: category.NewMemoryStore(seed...)},
		temp:    &TempState{},
		doc:     NewDocument(),
		auditor: &fakeAuditor{},
	}

	svc, err := category.NewService(context.Background(), f.store, nil)
	require.NoError(t, err)
	f.svc = svc

	f.list = NewList(f.doc, svc, f.temp, Options{
		Auditor: f.auditor,
		Clipboard: func(s string) error {
			f.copied = append(f.copied, s)
			return nil
		},
	})
	return f
}

func (f *fixture) mounted() *fixture {
	f.list.Mount()
	return f
}

// fakeHits resolves clicks against fixed rectangles and leaves views alone.
type fakeHits struct {
	rects map[string]Rect
}

func (h *fakeHits) Mark(id, s string) string { return s }

func (h *fakeHits) Scan(s string) string { return s }

func (h *fakeHits) Hit(msg tea.MouseMsg, ids []string) (string, bool) {
	p := Point{X: msg.X, Y: msg.Y}
	for _, id := range ids {
		if r, ok := h.rects[id]; ok && r.Contains(p) {
			return id, true
		}
	}
	return "", false
}

func (h *fakeHits) Bounds(id string) (Rect, bool) {
	r, ok := h.rects[id]
	return r, ok
}
