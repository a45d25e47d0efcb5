package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocrud/beans/di"
	"github.com/gocrud/beans/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Store interface {
	Get(key string) string
}

type memStore struct {
	data map[string]string
}

func (m *memStore) Get(key string) string { return m.data[key] }

func newMemStore() *memStore {
	return &memStore{data: map[string]string{"greeting": "hello"}}
}

type Clock struct{ Now string }

type Handler struct {
	Store  Store
	Clock  *Clock
	Later  func() *Clock
	prefix string
}

func (h *Handler) SetPrefix(c *Clock) { h.prefix = "at " + c.Now }

type Tagged struct {
	Store Store `di:"store"`
}

func newTable(t *testing.T) *manifest.TypeTable {
	t.Helper()
	table := manifest.NewTypeTable()
	require.NoError(t, table.AddConstructor("memStore", newMemStore))
	require.NoError(t, manifest.AddType[Store](table, "store"))
	require.NoError(t, table.AddConstructor("clock", func() *Clock { return &Clock{Now: "noon"} }))
	require.NoError(t, manifest.AddType[*Handler](table, "handler"))
	require.NoError(t, manifest.AddType[*Tagged](table, "tagged"))
	return table
}

const document = `
components:
  - name: store
    type: memStore
  - name: clock
    type: clock
    scope: unshared
  - name: handler
    type: handler
    fields:
      - field: Store
        type: store
      - field: Clock
        ref: clock
      - field: Later
        ref: clock
        deferred: true
    methods:
      - method: SetPrefix
        required: true
  - name: tagged
    type: tagged
    scan: true
`

func TestLoad_RegistersComponents(t *testing.T) {
	f := di.NewFactory()
	names, err := manifest.Load(f, strings.NewReader(document), newTable(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"store", "clock", "handler", "tagged"}, names)
	require.NoError(t, f.Validate())

	h, err := di.ResolveNamed[*Handler](f, "handler")
	require.NoError(t, err)
	assert.Equal(t, "hello", h.Store.Get("greeting"))
	assert.Equal(t, "at noon", h.prefix)
	require.NotNil(t, h.Later)
	assert.NotSame(t, h.Later(), h.Later())

	tagged, err := di.ResolveNamed[*Tagged](f, "tagged")
	require.NoError(t, err)
	assert.Same(t, h.Store, tagged.Store)

	desc, ok := f.Descriptor("clock")
	require.True(t, ok)
	assert.Equal(t, di.ScopeUnshared, desc.Scope)
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"missing name", "components:\n  - type: clock\n", "Components[0].Name is required"},
		{"bad scope", "components:\n  - name: a\n    type: clock\n    scope: request\n", "must be one of: shared unshared"},
		{"duplicate", "components:\n  - name: a\n    type: clock\n  - name: a\n    type: clock\n", "unique"},
		{"missing field", "components:\n  - name: a\n    type: handler\n    fields:\n      - ref: clock\n", "Field is required"},
		{"unknown key", "components:\n  - name: a\n    kind: clock\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifest.Parse(strings.NewReader(tt.doc))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	doc, err := manifest.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Components)
}

func TestLoad_Errors(t *testing.T) {
	table := newTable(t)

	t.Run("unknown type", func(t *testing.T) {
		f := di.NewFactory()
		_, err := manifest.Load(f, strings.NewReader("components:\n  - name: a\n    type: nope\n"), table)
		assert.ErrorContains(t, err, `unknown type "nope"`)
		assert.Empty(t, f.Names())
	})

	t.Run("constructor args without constructor", func(t *testing.T) {
		f := di.NewFactory()
		doc := "components:\n  - name: h\n    type: handler\n    constructor:\n      - ref: clock\n"
		_, err := manifest.Load(f, strings.NewReader(doc), table)
		assert.ErrorContains(t, err, "has no constructor")
	})

	t.Run("conflict", func(t *testing.T) {
		f := di.NewFactory()
		require.NoError(t, f.RegisterInstance("store", newMemStore()))
		_, err := manifest.Load(f, strings.NewReader(document), table)
		assert.ErrorIs(t, err, di.ErrConflict)
	})
}

func TestTypeTable(t *testing.T) {
	table := manifest.NewTypeTable()
	require.NoError(t, manifest.AddType[*Clock](table, "clock"))
	assert.Error(t, manifest.AddType[*Clock](table, "clock"))
	assert.Error(t, table.AddConstructor("bad", 42))
	assert.Error(t, table.Add("", di.TypeOf[*Clock](), nil))

	entry, ok := table.Lookup("clock")
	require.True(t, ok)
	assert.Equal(t, di.TypeOf[*Clock](), entry.Type)
	assert.Nil(t, entry.Constructor)
}

func TestWatcher_RegistersNewComponents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.yaml")
	require.NoError(t, os.WriteFile(path, []byte("components:\n  - name: store\n    type: memStore\n"), 0o644))

	c := di.Synchronized(di.NewFactory())
	table := newTable(t)
	_, err := manifest.LoadFile(c, path, table)
	require.NoError(t, err)

	w := manifest.NewWatcher(path, c, table, nil)
	registered := make(chan []string, 1)
	w.OnRegistered(func(names []string) { registered <- names })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	// 等待监听建立
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(document), 0o644))

	select {
	case names := <-registered:
		assert.Equal(t, []string{"clock", "handler", "tagged"}, names)
	case <-time.After(5 * time.Second):
		t.Fatal("manifest change not picked up")
	}
	assert.True(t, c.Contains("handler"))

	added, err := w.Refresh()
	require.NoError(t, err)
	assert.Empty(t, added)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	assert.NoError(t, w.Stop(stopCtx))
}

func TestWatcher_NoRegistrationAfterStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.yaml")
	require.NoError(t, os.WriteFile(path, []byte("components:\n  - name: store\n    type: memStore\n"), 0o644))

	c := di.Synchronized(di.NewFactory())
	table := newTable(t)
	w := manifest.NewWatcher(path, c, table, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()
	time.Sleep(100 * time.Millisecond)

	// 在防抖窗口内停止
	require.NoError(t, os.WriteFile(path, []byte(document), 0o644))
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, w.Stop(stopCtx))

	time.Sleep(400 * time.Millisecond)
	assert.False(t, c.Contains("handler"))
	assert.False(t, c.Contains("store"))
}
