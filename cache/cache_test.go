// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUGetOrLoad(t *testing.T) {
	c, err := NewLRU("test", 2)
	require.NoError(t, err)

	loads := 0
	loader := func(key any) (any, error) {
		loads++
		return key.(int) * 10, nil
	}

	v, err := c.GetOrLoad(1, loader)
	assert.NoError(t, err)
	assert.Equal(t, 10, v)
	v, err = c.GetOrLoad(1, loader)
	assert.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, loads)

	hit, miss, rate := c.Stats().Snapshot()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)
	assert.Equal(t, int64(500), rate)

	_, err = c.GetOrLoad(2, func(any) (any, error) { return nil, errors.New("boom") })
	assert.Error(t, err)
	_, ok := c.Get(2)
	assert.False(t, ok)

	_, err = NewLRU("test", 0)
	assert.Error(t, err)
}

func TestBlobs(t *testing.T) {
	b := NewBlobs("test", 1)

	_, cached, _ := b.Get([]byte("k"))
	assert.False(t, cached)

	b.Set([]byte("k"), []byte("value"))
	v, cached, exists := b.Get([]byte("k"))
	assert.True(t, cached)
	assert.True(t, exists)
	assert.Equal(t, []byte("value"), v)

	b.SetAbsent([]byte("k"))
	v, cached, exists = b.Get([]byte("k"))
	assert.True(t, cached)
	assert.False(t, exists)
	assert.Nil(t, v)

	b.Set([]byte("e"), nil)
	v, cached, exists = b.Get([]byte("e"))
	assert.True(t, cached)
	assert.True(t, exists)
	assert.Empty(t, v)

	hit, miss, _ := b.Stats().Snapshot()
	assert.Equal(t, int64(3), hit)
	assert.Equal(t, int64(1), miss)
}

func TestStats(t *testing.T) {
	s := Stats{name: "test"}
	hit, miss, rate := s.Snapshot()
	assert.Zero(t, hit+miss+rate)

	s.Hit()
	s.Hit()
	s.Hit()
	s.Miss()
	hit, miss, rate = s.Snapshot()
	assert.Equal(t, int64(3), hit)
	assert.Equal(t, int64(1), miss)
	assert.Equal(t, int64(750), rate)
}
