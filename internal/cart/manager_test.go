package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (b *brokenStore) Load(context.Context, string) (State, error) {
	return State{}, b.loadErr
}

func (b *brokenStore) Save(context.Context, string, State) error {
	b.saves++
	return b.saveErr
}

func (b *brokenStore) Delete(context.Context, string) error { return nil }

func TestManagerInertBeforeHydration(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, "s1")

	ctx := context.Background()
	m.AddProduct(ctx, testProduct("p1", "A", "5.00", "V", "+111"))
	m.SetQuantity(ctx, "p1", 3)
	m.Clear(ctx)

	assert.False(t, m.Hydrated())
	assert.Empty(t, m.State().Items)
	assert.Equal(t, 0, m.ItemCount())

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound, "inert manager must not persist anything")
}

func TestManagerHydratesEmptyOnMissingKey(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, "s1")
	ctx := context.Background()

	m.Hydrate(ctx)
	require.True(t, m.Hydrated())
	assert.Empty(t, m.State().Items)

	m.AddProduct(ctx, testProduct("p1", "A", "5.00", "V", "+111"))

	saved, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, saved.Items, 1)
	assert.Equal(t, 1, saved.TotalQuantity)
}

func TestManagerSwallowsCorruptDocument(t *testing.T) {
	store := &brokenStore{loadErr: errors.New("unmarshal cart failed: unexpected end of JSON input")}
	m := NewManager(store, "s1")
	ctx := context.Background()

	m.Hydrate(ctx)
	require.True(t, m.Hydrated())
	assert.Empty(t, m.State().Items)

	// still a working cart afterwards
	m.AddProduct(ctx, testProduct("p1", "A", "5.00", "V", "+111"))
	assert.Equal(t, 1, m.ItemCount())
}

func TestManagerSwallowsSaveFailure(t *testing.T) {
	store := &brokenStore{loadErr: ErrNotFound, saveErr: errors.New("redis set failed")}
	m := NewManager(store, "s1")
	ctx := context.Background()

	m.Hydrate(ctx)
	m.AddProduct(ctx, testProduct("p1", "A", "5.00", "V", "+111"))

	// mutation sticks in memory even though persistence failed
	assert.Equal(t, 1, m.ItemCount())
	assert.Equal(t, 1, store.saves)
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var st State
	st.AddLine(testProduct("p1", "Auriculares Bluetooth", "89.99", "TechGadgets", "+5491111111111"))
	st.AddLine(testProduct("p1", "Auriculares Bluetooth", "89.99", "TechGadgets", "+5491111111111"))
	st.AddLine(testProduct("p2", "Funda Silicona", "12.50", "TechGadgets", "+5491111111111"))

	require.NoError(t, store.Save(ctx, "s1", st))
	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)

	want, _ := json.Marshal(st)
	have, _ := json.Marshal(got)
	assert.JSONEq(t, string(want), string(have))

	require.Len(t, got.Items, 2)
	assert.True(t, got.Total.Equal(st.Total))
	assert.Equal(t, st.TotalQuantity, got.TotalQuantity)
	assert.True(t, got.Items[0].UnitPrice.Equal(st.Items[0].UnitPrice))
}

func TestManagerStateIsACopy(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, "s1")
	ctx := context.Background()

	m.Hydrate(ctx)
	m.AddProduct(ctx, testProduct("p1", "A", "5.00", "V", "+111"))

	snap := m.State()
	snap.Items[0].Quantity = 99

	assert.Equal(t, 1, m.State().Items[0].Quantity)
}
