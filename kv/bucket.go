// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"
)

// Bucket provides logical bucket for kv store.
type Bucket string

func (b Bucket) key(buf *buf, key []byte) []byte {
	buf.k = append(append(buf.k[:0], b...), key...)
	return buf.k
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			return src.Get(b.key(buf, key))
		},
		func(key []byte) (bool, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			return src.Has(b.key(buf, key))
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
// Keys are copied, since batches may retain them.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error {
			return src.Put(append([]byte(b), key...), val)
		},
		func(key []byte) error {
			return src.Delete(append([]byte(b), key...))
		},
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{
		Getter: b.NewGetter(src),
		Putter: b.NewPutter(src),
		bucket: b,
		src:    src,
	}
}

type bucketStore struct {
	Getter
	Putter
	bucket Bucket
	src    Store
}

func (s *bucketStore) NewBatch() Batch {
	batch := s.src.NewBatch()
	return &struct {
		Putter
		LenFunc
		WriteFunc
	}{
		s.bucket.NewPutter(batch),
		batch.Len,
		batch.Write,
	}
}

func (s *bucketStore) Iterate(r Range) Iterator {
	prefixed := Range{Start: append([]byte(s.bucket), r.Start...)}
	if len(r.Limit) == 0 {
		prefixed.Limit = BytesPrefix([]byte(s.bucket)).Limit
	} else {
		prefixed.Limit = append([]byte(s.bucket), r.Limit...)
	}
	iter := s.src.Iterate(prefixed)
	n := len(s.bucket)
	return &struct {
		NextFunc
		KeyFunc
		ValueFunc
		ReleaseFunc
		ErrorFunc
	}{
		iter.Next,
		// strip the bucket
		func() []byte { return iter.Key()[n:] },
		iter.Value,
		iter.Release,
		iter.Error,
	}
}

// Close is a no-op, the source store owns the underlying resources.
func (s *bucketStore) Close() error { return nil }

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
