// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math"

	"github.com/delegard/delegard/board"
)

type sequence int64

func newSequence(round board.Round, index uint32) sequence {
	if round > math.MaxUint32 {
		panic("round too large")
	}
	if (index & math.MaxInt32) != index {
		panic("index too large")
	}
	return (sequence(round) << 31) | sequence(index)
}

func (s sequence) Round() board.Round {
	return board.Round(s >> 31)
}

func (s sequence) Index() uint32 {
	return uint32(s & math.MaxInt32)
}
