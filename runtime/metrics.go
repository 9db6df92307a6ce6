// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/delegard/delegard/metrics"

var (
	metricCallCount    = metrics.LazyLoadCounterVec("runtime_call_count", []string{"method", "outcome"})
	metricCallDuration = metrics.LazyLoadHistogramVec("runtime_call_duration_ms", []string{"method"}, metrics.BucketCalls)
	metricRound        = metrics.LazyLoadGauge("runtime_round")
)
