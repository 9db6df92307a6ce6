// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"slices"

	"github.com/qianbin/directcache"
)

const (
	blobAbsent  byte = 0
	blobPresent byte = 1
)

// Blobs caches encoded values by key in a fixed size arena.
// Known-absent keys are cached as well, so a miss on the backing store is not repeated.
type Blobs struct {
	c     *directcache.Cache
	stats Stats
}

// NewBlobs creates a blob cache with the given capacity in MiB.
func NewBlobs(name string, sizeMB int) *Blobs {
	return &Blobs{c: directcache.New(sizeMB * 1024 * 1024), stats: Stats{name: name}}
}

// Get returns the cached value. The second result reports whether the key is cached,
// the third whether the cached entry denotes an existing value.
func (b *Blobs) Get(key []byte) (val []byte, cached bool, exists bool) {
	cached = b.c.AdvGet(key, func(v []byte) {
		if len(v) > 0 && v[0] == blobPresent {
			exists = true
			val = slices.Clone(v[1:])
		}
	}, false)
	if cached {
		b.stats.Hit()
	} else {
		b.stats.Miss()
	}
	return
}

// Set caches an existing value.
func (b *Blobs) Set(key, val []byte) {
	_ = b.c.AdvSet(key, len(val)+1, func(v []byte) {
		v[0] = blobPresent
		copy(v[1:], val)
	})
}

// SetAbsent caches the absence of key.
func (b *Blobs) SetAbsent(key []byte) {
	_ = b.c.Set(key, []byte{blobAbsent})
}

// Stats returns the lookup counters of Get.
func (b *Blobs) Stats() *Stats {
	return &b.stats
}
