// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errNotFound
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

func TestBucketGetter(t *testing.T) {
	m := mem{"k1": "v1", "bk1": "bv1"}

	tests := []struct {
		b    Bucket
		key  string
		want string
	}{
		{Bucket(""), "k1", "v1"},
		{Bucket("b"), "k1", "bv1"},
	}
	for _, tt := range tests {
		got, err := tt.b.NewGetter(m).Get([]byte(tt.key))
		assert.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}

	_, err := Bucket("x").NewGetter(m).Get([]byte("k1"))
	assert.True(t, Bucket("x").NewGetter(m).IsNotFound(err))

	has, err := Bucket("b").NewGetter(m).Has([]byte("k1"))
	assert.NoError(t, err)
	assert.True(t, has)
}

func TestBucketPutter(t *testing.T) {
	m := mem{}
	p := Bucket("b").NewPutter(m)
	assert.NoError(t, p.Put([]byte("k"), []byte("v")))
	assert.Equal(t, mem{"bk": "v"}, m)
	assert.NoError(t, p.Delete([]byte("k")))
	assert.Empty(t, m)
}

func TestBytesPrefix(t *testing.T) {
	assert.Equal(t, Range{Start: []byte{1, 2}, Limit: []byte{1, 3}}, BytesPrefix([]byte{1, 2}))
	assert.Equal(t, Range{Start: []byte{1, 0xff}, Limit: []byte{2}}, BytesPrefix([]byte{1, 0xff}))
	assert.Nil(t, BytesPrefix([]byte{0xff}).Limit)
}
