// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package board

import (
	"encoding/binary"
	"strconv"
)

// AppID identifies an app (platform, validator ad or delegator contract) on the ledger.
type AppID uint64

// Bytes returns the big endian form, used as storage key.
func (id AppID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

func (id AppID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IsZero returns whether id is unset.
func (id AppID) IsZero() bool {
	return id == 0
}

// AssetID identifies a fungible asset. NativeAsset is the ledger's own currency.
type AssetID uint64

// NativeAsset is the asset id of the native currency.
const NativeAsset = AssetID(0)

// Bytes returns the big endian form, used as storage key.
func (id AssetID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

func (id AssetID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IsNative returns whether the asset is the native currency.
func (id AssetID) IsNative() bool {
	return id == NativeAsset
}

// Round is the ledger's monotonic time unit.
type Round = uint64
