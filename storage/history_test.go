package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	mu     sync.Mutex
	values map[string][]byte
	setErr error
}

func newMapStore() *mapStore {
	return &mapStore{values: make(map[string][]byte)}
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *mapStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mapStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *mapStore) Close() error { return nil }

func TestNewHistoryStore(t *testing.T) {
	_, err := NewHistoryStore(nil)
	assert.Error(t, err)

	_, err = NewHistoryStore(newMapStore(), WithKey(""))
	assert.Error(t, err)

	store, err := NewHistoryStore(newMapStore())
	require.NoError(t, err)
	assert.Equal(t, HistoryKey, store.key)
}

func TestHistoryStore_SaveLoadRemove(t *testing.T) {
	ctx := context.Background()
	kv := newMapStore()
	store, err := NewHistoryStore(kv)
	require.NoError(t, err)

	_, err = store.LoadHistory(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	entries := sampleEntries()
	require.NoError(t, store.SaveHistory(ctx, entries))
	assert.Contains(t, kv.values, "songSearchHistory")

	loaded, err := store.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "song about peace", loaded[0].Query)
	assert.Equal(t, "ничего", loaded[1].Query)

	require.NoError(t, store.RemoveHistory(ctx))
	_, err = store.LoadHistory(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := newMapStore()
	kv.values[HistoryKey] = []byte("not a history")

	store, err := NewHistoryStore(kv)
	require.NoError(t, err)

	_, err = store.LoadHistory(ctx)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestHistoryStore_SaveFailure(t *testing.T) {
	kv := newMapStore()
	kv.setErr = errors.New("quota exceeded")

	store, err := NewHistoryStore(kv)
	require.NoError(t, err)

	err = store.SaveHistory(context.Background(), sampleEntries())
	assert.ErrorIs(t, err, kv.setErr)
}
