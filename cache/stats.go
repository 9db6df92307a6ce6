// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	"github.com/delegard/delegard/metrics"
)

var metricLookups = metrics.LazyLoadCounterVec("cache_lookups_count", []string{"cache", "result"})

// Stats counts the lookups of a named cache and mirrors them to the cache_lookups_count metric.
type Stats struct {
	name      string
	hit, miss atomic.Int64
}

func (s *Stats) Hit() {
	s.hit.Add(1)
	metricLookups().AddWithLabel(1, map[string]string{"cache": s.name, "result": "hit"})
}

func (s *Stats) Miss() {
	s.miss.Add(1)
	metricLookups().AddWithLabel(1, map[string]string{"cache": s.name, "result": "miss"})
}

// Snapshot returns the lookup counters and the hit rate in per-mille.
func (s *Stats) Snapshot() (hit, miss, perMille int64) {
	hit, miss = s.hit.Load(), s.miss.Load()
	if lookups := hit + miss; lookups > 0 {
		perMille = hit * 1000 / lookups
	}
	return
}
