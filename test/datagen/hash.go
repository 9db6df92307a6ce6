// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/delegard/delegard/board"
)

func RandomHash() board.Bytes32 {
	var b32 board.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() board.Address {
	var addr board.Address

	rand.Read(addr[:])
	return addr
}
