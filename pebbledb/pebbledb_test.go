// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pebbledb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delegard/delegard/kv"
)

func TestPebbleDB(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Get([]byte("k"))
	assert.True(t, db.IsNotFound(err))

	assert.NoError(t, db.Put([]byte("k"), []byte("v")))
	v, err := db.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	has, err := db.Has([]byte("k"))
	assert.NoError(t, err)
	assert.True(t, has)

	assert.NoError(t, db.Delete([]byte("k")))
	has, err = db.Has([]byte("k"))
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestPebbleDBPersistence(t *testing.T) {
	dir := t.TempDir()

	db, err := New(dir, Options{})
	require.NoError(t, err)
	b := db.NewBatch()
	assert.NoError(t, b.Put([]byte("a1"), []byte("x")))
	assert.NoError(t, b.Put([]byte("a2"), []byte("y")))
	assert.NoError(t, b.Put([]byte("b1"), []byte("z")))
	assert.Equal(t, 3, b.Len())
	require.NoError(t, b.Write())
	require.NoError(t, db.Close())

	db, err = New(dir, Options{})
	require.NoError(t, err)
	defer db.Close()

	var got []string
	iter := db.Iterate(kv.BytesPrefix([]byte("a")))
	for iter.Next() {
		got = append(got, string(iter.Key())+"="+string(iter.Value()))
	}
	iter.Release()
	assert.NoError(t, iter.Error())
	assert.Equal(t, []string{"a1=x", "a2=y"}, got)
}
