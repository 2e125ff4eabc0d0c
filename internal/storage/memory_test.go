package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SaveLoad(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, ok, err := m.Load(ctx, DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)

	blob := []byte("state")
	require.NoError(t, m.Save(ctx, DefaultKey, blob))
	blob[0] = 'X'

	got, ok, err := m.Load(ctx, DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "state", string(got), "saved blob is copied")
	assert.Equal(t, 1, m.Saves())
}

func TestMemory_InjectedErrors(t *testing.T) {
	full := errors.New("quota exceeded")
	m := &Memory{SaveErr: full, LoadErr: full}

	assert.ErrorIs(t, m.Save(context.Background(), "k", nil), full)
	_, _, err := m.Load(context.Background(), "k")
	assert.ErrorIs(t, err, full)
	assert.Equal(t, 0, m.Saves())
}

func TestMemory_PutDoesNotCountAsSave(t *testing.T) {
	var m Memory
	m.Put("k", []byte("v"))

	got, ok, err := m.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(got))
	assert.Equal(t, 0, m.Saves())
}
