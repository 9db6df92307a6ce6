// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/delegard/delegard/board"
)

func TestSequence(t *testing.T) {
	type args struct {
		round board.Round
		index uint32
	}
	tests := []struct {
		name string
		args args
	}{
		{"regular", args{1, 2}},
		{"max round", args{math.MaxUint32, 1}},
		{"max index", args{5, math.MaxInt32}},
		{"both max", args{math.MaxUint32, math.MaxInt32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newSequence(tt.args.round, tt.args.index)
			assert.Equal(t, tt.args.round, got.Round())
			assert.Equal(t, tt.args.index, got.Index())
		})
	}

	assert.Less(t, int64(newSequence(1, math.MaxInt32)), int64(newSequence(2, 0)))
	assert.Panics(t, func() { newSequence(1, math.MaxInt32+1) })
	assert.Panics(t, func() { newSequence(math.MaxUint32+1, 0) })
}
