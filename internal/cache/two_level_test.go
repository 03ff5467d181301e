package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type payload struct {
	Names []string `json:"names"`
}

func TestKeyIsOrderIndependent(t *testing.T) {
	a := Key("search", map[string]string{"min": "10", "max": "20"})
	b := Key("search", map[string]string{"max": "20", "min": "10"})
	c := Key("search", map[string]string{"max": "21", "min": "10"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "search:")
}

func TestRoundTripWithoutL2(t *testing.T) {
	ctx := context.Background()
	c := New(nil)

	var got payload
	require.False(t, c.GetJSON(ctx, "search", "k", &got))

	c.SetJSON(ctx, "search", "k", payload{Names: []string{"a"}})
	require.True(t, c.GetJSON(ctx, "search", "k", &got))
	assert.Equal(t, []string{"a"}, got.Names)
}

func TestL2FillsL1(t *testing.T) {
	ctx := context.Background()
	shared := newMemStore()

	writer := New(shared)
	writer.SetJSON(ctx, "search", "k", payload{Names: []string{"x"}})

	reader := New(shared)
	var got payload
	require.True(t, reader.GetJSON(ctx, "search", "k", &got))
	assert.Equal(t, []string{"x"}, got.Names)
}

func TestInvalidateHidesOldEntries(t *testing.T) {
	ctx := context.Background()
	shared := newMemStore()
	c := New(shared)

	c.SetJSON(ctx, "search", "k", payload{Names: []string{"old"}})
	c.Invalidate(ctx, "search")

	var got payload
	assert.False(t, c.GetJSON(ctx, "search", "k", &got))

	c.SetJSON(ctx, "catalog", "k", payload{Names: []string{"other"}})
	assert.True(t, c.GetJSON(ctx, "catalog", "k", &got))
}
