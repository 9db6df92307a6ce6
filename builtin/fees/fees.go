// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fees holds the fee and earnings arithmetic shared by the platform,
// validator ads and delegator contracts. All functions are pure.
//
// The validator, platform and partner legs are computed independently from
// their own rates. Rounding remainders are not reconciled between legs.
package fees

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/delegard/delegard/board"
)

// mulDiv returns a*b/c computed on 256 bits, saturated to uint64.
func mulDiv(a, b, c uint64) uint64 {
	if c == 0 {
		return 0
	}
	x := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	x.Div(x, uint256.NewInt(c))
	if !x.IsUint64() {
		return math.MaxUint64
	}
	return x.Uint64()
}

// Accrued returns the operational fee accrued at rate between two rounds.
// rate is expressed per MilliScale rounds.
func Accrued(rate uint64, roundEnd, roundStart board.Round) uint64 {
	if roundEnd <= roundStart {
		return 0
	}
	return mulDiv(rate, roundEnd-roundStart, board.MilliScale)
}

// Split divides amount by a commission in ppm. platform is rounded down, so
// platform + user always equals amount.
func Split(amount, commission uint64) (platform, user uint64) {
	if commission > board.PPMMax {
		commission = board.PPMMax
	}
	platform = mulDiv(amount, commission, board.PPMMax)
	return platform, amount - platform
}

// RoundRate returns the operational fee rate for a stake ceiling:
// max(min, variable*stakeMax/StakeScale).
func RoundRate(min, variable, stakeMax uint64) uint64 {
	return max(min, mulDiv(variable, stakeMax, board.StakeScale))
}

// PartnerFee returns the partner's cut of fee, in ppm.
func PartnerFee(fee, commission uint64) uint64 {
	return mulDiv(fee, commission, board.PPMMax)
}

// GratisStake returns the stake ceiling granted for a requested ceiling,
// including the gratis bonus in ppm, capped by the platform-wide ceiling.
func GratisStake(stakeMax, gratis, stakeMaxMax uint64) uint64 {
	bonus, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(board.PPMMax), uint256.NewInt(gratis))
	if overflow {
		return stakeMaxMax
	}
	x := new(uint256.Int).Mul(uint256.NewInt(stakeMax), bonus)
	x.Div(x, uint256.NewInt(board.PPMMax))
	if !x.IsUint64() {
		return stakeMaxMax
	}
	return min(stakeMaxMax, x.Uint64())
}

// Schedule is the set of fee legs of one delegation.
type Schedule struct {
	Setup        uint64 // validator setup fee
	SetupPartner uint64 // partner setup fee
	Round        uint64 // validator operational fee rate
	RoundPartner uint64 // partner operational fee rate
}

// NewSchedule derives the partner legs from the validator legs.
func NewSchedule(setup, round, partnerSetup, partnerRound uint64) Schedule {
	return Schedule{
		Setup:        setup,
		SetupPartner: PartnerFee(setup, partnerSetup),
		Round:        round,
		RoundPartner: PartnerFee(round, partnerRound),
	}
}

// Operational returns the operational fees of both legs accrued between two rounds.
func (s Schedule) Operational(roundEnd, roundStart board.Round) (validator, partner uint64) {
	return Accrued(s.Round, roundEnd, roundStart), Accrued(s.RoundPartner, roundEnd, roundStart)
}

// Escrow returns the amount a delegation prepays: both setup legs and
// both operational legs over the whole duration.
func (s Schedule) Escrow(roundEnd, roundStart board.Round) uint64 {
	v, p := s.Operational(roundEnd, roundStart)
	return sat(sat(s.Setup, s.SetupPartner), sat(v, p))
}

func sat(a, b uint64) uint64 {
	if a+b < a {
		return math.MaxUint64
	}
	return a + b
}
