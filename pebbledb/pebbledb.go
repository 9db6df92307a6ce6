// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pebbledb implements kv.Store on top of pebble.
package pebbledb

import (
	"bytes"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"

	"github.com/delegard/delegard/kv"
)

var _ kv.Store = (*PebbleDB)(nil)

// Options options for creating pebble instance.
type Options struct {
	// CacheSize in MiB.
	CacheSize int
}

// PebbleDB wraps pebble.
type PebbleDB struct {
	db *pebble.DB
}

// New opens a persistent pebble store at path, creating it if absent.
func New(path string, opts Options) (*PebbleDB, error) {
	return open(path, nil, opts)
}

// NewMem creates a pebble store backed by memory.
func NewMem() (*PebbleDB, error) {
	return open("", vfs.NewMem(), Options{})
}

func open(path string, fs vfs.FS, opts Options) (*PebbleDB, error) {
	if opts.CacheSize < 16 {
		opts.CacheSize = 16
	}
	cache := pebble.NewCache(int64(opts.CacheSize) << 20)
	defer cache.Unref()

	db, err := pebble.Open(path, &pebble.Options{
		FS:                          fs,
		Cache:                       cache,
		MemTableSize:                16 << 20,
		MemTableStopWritesThreshold: 2,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open pebble db")
	}
	return &PebbleDB{db: db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (p *PebbleDB) IsNotFound(err error) bool {
	return errors.Is(err, pebble.ErrNotFound)
}

// Get retrieves value for given key.
func (p *PebbleDB) Get(key []byte) ([]byte, error) {
	value, closer, err := p.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// value is invalid after closer.Close()
	return bytes.Clone(value), nil
}

// Has returns whether a key exists.
func (p *PebbleDB) Has(key []byte) (bool, error) {
	_, closer, err := p.db.Get(key)
	if err != nil {
		if p.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	closer.Close()
	return true, nil
}

// Put saves value for given key.
func (p *PebbleDB) Put(key, value []byte) error {
	return p.db.Set(key, value, pebble.NoSync)
}

// Delete removes the given key.
func (p *PebbleDB) Delete(key []byte) error {
	return p.db.Delete(key, pebble.NoSync)
}

// Close flushes and closes the store.
func (p *PebbleDB) Close() error {
	return p.db.Close()
}

// NewBatch creates a batch for writing ops.
func (p *PebbleDB) NewBatch() kv.Batch {
	return &batch{p.db.NewBatch()}
}

// Iterate creates an iterator over the range.
func (p *PebbleDB) Iterate(r kv.Range) kv.Iterator {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: r.Start,
		UpperBound: r.Limit,
	})
	return &iterator{iter: iter, err: err}
}

type batch struct {
	b *pebble.Batch
}

func (b *batch) Put(key, value []byte) error {
	return b.b.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	return b.b.Delete(key, nil)
}

func (b *batch) Len() int {
	return int(b.b.Count())
}

// Write commits the batch with a WAL sync, then releases it.
func (b *batch) Write() error {
	defer b.b.Close()
	return b.b.Commit(pebble.Sync)
}

// iterator adapts the pebble iterator, which must be positioned explicitly,
// to the Next-first convention of kv.Iterator.
type iterator struct {
	iter    *pebble.Iterator
	err     error
	started bool
}

func (i *iterator) Next() bool {
	if i.err != nil {
		return false
	}
	if !i.started {
		i.started = true
		return i.iter.First()
	}
	return i.iter.Next()
}

func (i *iterator) Key() []byte   { return i.iter.Key() }
func (i *iterator) Value() []byte { return i.iter.Value() }

func (i *iterator) Release() {
	if i.iter != nil {
		if err := i.iter.Close(); err != nil && i.err == nil {
			i.err = err
		}
		i.iter = nil
	}
}

func (i *iterator) Error() error {
	if i.err != nil {
		return i.err
	}
	if i.iter != nil {
		return i.iter.Error()
	}
	return nil
}
