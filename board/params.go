// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package board

// Arithmetic scales.
const (
	PPMMax     uint64 = 1_000_000 // parts-per-million denominator for commissions and multipliers
	MilliScale uint64 = 1_000     // fee rates are expressed in thousandths of a base unit per round
	StakeScale uint64 = 1_000_000 // base units of one whole native coin
)

// Storage reserve parameters.
const (
	AccountMinBalance    uint64 = 100_000 // reserve of any open account
	AssetReserve         uint64 = 100_000 // reserve of each opted-in asset holding
	RecordReserveBase    uint64 = 2_500   // reserve of each record
	RecordReservePerByte uint64 = 400     // reserve of each byte of key and declared value size
)

// Capacities.
const (
	DelegatorsMax     = 14   // active delegator contracts one validator ad can hold
	UserSlots         = 32   // contract/ad identifiers one user record can hold
	GatingAssetsMax   = 2    // gating assets a validator can require
	EarningsAssetsMax = 8    // assets one validator ad keeps an earnings ledger for
	TemplateChunkSize = 1024 // bytes copied per template load step
	TemplateMaxSize   = 16 * TemplateChunkSize
)

// RecordReserve returns the reserve required by one record of the given key length and declared value size.
func RecordReserve(keyLen, size uint64) uint64 {
	return RecordReserveBase + RecordReservePerByte*(keyLen+size)
}
