// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "github.com/delegard/delegard/metrics"

var (
	metricCommits        = metrics.LazyLoadCounter("ledger_commits_count")
	metricCommitDuration = metrics.LazyLoadHistogram("ledger_commit_duration_ms", metrics.BucketCalls)
	metricTransfers      = metrics.LazyLoadCounterVec("ledger_transfers_count", []string{"asset"})
)
