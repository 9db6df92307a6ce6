// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fees

import (
	"math"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"

	"github.com/delegard/delegard/board"
)

func TestSplitConservesAmount(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 10_000 {
		var amount, commission uint64
		f.Fuzz(&amount)
		f.Fuzz(&commission)
		commission %= board.PPMMax + 1

		platform, user := Split(amount, commission)
		assert.Equal(t, amount, platform+user)
		assert.LessOrEqual(t, platform, amount)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		amount, commission uint64
		platform, user     uint64
	}{
		{1_000, 0, 0, 1_000},
		{1_000, board.PPMMax, 1_000, 0},
		{1_000, 100_000, 100, 900},
		{999, 333_333, 332, 667},
		{math.MaxUint64, 500_000, math.MaxUint64 / 2, math.MaxUint64 - math.MaxUint64/2},
		{10, 2 * board.PPMMax, 10, 0},
	}
	for _, tt := range tests {
		platform, user := Split(tt.amount, tt.commission)
		assert.Equal(t, tt.platform, platform, "%+v", tt)
		assert.Equal(t, tt.user, user, "%+v", tt)
	}
}

func TestAccrued(t *testing.T) {
	assert.Equal(t, uint64(0), Accrued(1_000, 10, 10))
	assert.Equal(t, uint64(0), Accrued(1_000, 5, 10))
	assert.Equal(t, uint64(90), Accrued(1_000, 100, 10))
	assert.Equal(t, uint64(1), Accrued(1_999, 1, 0))

	// widened multiply does not overflow before the divide
	assert.Equal(t, uint64(math.MaxUint64/1_000*2), Accrued(math.MaxUint64/1_000*2, 1_000, 0))
	assert.Equal(t, uint64(math.MaxUint64), Accrued(math.MaxUint64, math.MaxUint64, 0))
}

func TestGratisStake(t *testing.T) {
	// stake ceiling 100 with 10% gratis under a platform ceiling of 1000
	assert.Equal(t, uint64(110), GratisStake(100, 100_000, 1_000))
	assert.Equal(t, uint64(1_000), GratisStake(950, 100_000, 1_000))
	assert.Equal(t, uint64(100), GratisStake(100, 0, 1_000))
	assert.Equal(t, uint64(1_000), GratisStake(math.MaxUint64, board.PPMMax, 1_000))
}

func TestRoundRate(t *testing.T) {
	// variable fee wins over the minimum for a 10 coin ceiling
	rate := RoundRate(2, 11, 10_000_000)
	assert.Equal(t, uint64(110), rate)
	assert.Equal(t, rate*100/board.MilliScale, Accrued(rate, 100, 0))
	assert.Equal(t, uint64(11), Accrued(rate, 100, 0))

	assert.Equal(t, uint64(2), RoundRate(2, 11, 100_000))
}

func TestSchedule(t *testing.T) {
	s := NewSchedule(1_000, 2_000, 100_000, 50_000)
	assert.Equal(t, Schedule{Setup: 1_000, SetupPartner: 100, Round: 2_000, RoundPartner: 100}, s)

	v, p := s.Operational(1_100, 100)
	assert.Equal(t, uint64(2_000), v)
	assert.Equal(t, uint64(100), p)
	assert.Equal(t, uint64(1_000+100+2_000+100), s.Escrow(1_100, 100))

	big := Schedule{Setup: math.MaxUint64, SetupPartner: 1}
	assert.Equal(t, uint64(math.MaxUint64), big.Escrow(0, 0))
}
