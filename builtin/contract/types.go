// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/fees"
	"github.com/delegard/delegard/ledger"
)

// State of a delegator contract. Ended states share the Ended bit.
type State uint8

const (
	StateCreated   State = 0x01
	StateSet       State = 0x02
	StateReady     State = 0x03
	StateSubmitted State = 0x04
	StateLive      State = 0x05

	Ended State = 0x20

	StateEndedNotSubmitted State = Ended | 0x01
	StateEndedNotConfirmed State = Ended | 0x02
	StateEndedLimits       State = Ended | 0x03
	StateEndedWithdrew     State = Ended | 0x04
	StateEndedExpired      State = Ended | 0x05
	StateEndedSuspended    State = Ended | 0x06
	StateEndedCannotPay    State = Ended | 0x07
)

// IsEnded reports whether s is terminal.
func (s State) IsEnded() bool { return s&Ended != 0 }

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateSet:
		return "SET"
	case StateReady:
		return "READY"
	case StateSubmitted:
		return "SUBMITTED"
	case StateLive:
		return "LIVE"
	case StateEndedNotSubmitted:
		return "ENDED_NOT_SUBMITTED"
	case StateEndedNotConfirmed:
		return "ENDED_NOT_CONFIRMED"
	case StateEndedLimits:
		return "ENDED_LIMITS"
	case StateEndedWithdrew:
		return "ENDED_WITHDREW"
	case StateEndedExpired:
		return "ENDED_EXPIRED"
	case StateEndedSuspended:
		return "ENDED_SUSPENDED"
	case StateEndedCannotPay:
		return "ENDED_CANNOT_PAY"
	}
	return "UNKNOWN"
}

// GatingAsset is a minimum holding the beneficiary must keep. A zero ID is unused.
type GatingAsset struct {
	ID  board.AssetID `json:"id"`
	Min uint64        `json:"min"`
}

// GeneralTerms is the fee and timing snapshot taken when the contract is set up.
type GeneralTerms struct {
	Commission    uint64        `json:"commission"` // platform cut of the validator legs, ppm
	Fees          fees.Schedule `json:"fees"`
	Asset         board.AssetID `json:"asset"`
	Partner       board.Address `json:"partner"`
	RoundsSetup   uint64        `json:"roundsSetup"`
	RoundsConfirm uint64        `json:"roundsConfirm"`
}

// BalanceTerms bound what the beneficiary may hold while the contract is live.
type BalanceTerms struct {
	StakeMax     uint64                             `json:"stakeMax"`
	Gating       [board.GatingAssetsMax]GatingAsset `json:"gating"`
	RoundsBreach uint64                             `json:"roundsBreach"` // minimum spacing between two breach reports
	CntBreachMax uint64                             `json:"cntBreachMax"` // breaches that end the contract
}

// KeyMaterial is the participation key set a validator submits for the beneficiary.
type KeyMaterial struct {
	Beneficiary board.Address `json:"beneficiary"`
	ledger.Keys
}

// Delegation is the stored state of one delegator contract.
type Delegation struct {
	State       State         `json:"state"`
	Platform    board.AppID   `json:"platform"`
	Ad          board.AppID   `json:"ad"`
	Manager     board.Address `json:"manager"`
	Beneficiary board.Address `json:"beneficiary"`
	Template    board.Bytes32 `json:"template"`
	TermsHash   board.Bytes32 `json:"termsHash"`

	General GeneralTerms `json:"general"`
	Balance BalanceTerms `json:"balance"`

	RoundStart          board.Round `json:"roundStart"`
	RoundEnd            board.Round `json:"roundEnd"`
	RoundEnded          board.Round `json:"roundEnded"`
	RoundClaimLast      board.Round `json:"roundClaimLast"`
	RoundBreachLast     board.Round `json:"roundBreachLast"`
	RoundExpirySoonLast board.Round `json:"roundExpirySoonLast"`
	CntBreach           uint64      `json:"cntBreach"`

	Keys *ledger.Keys `json:"keys,omitempty" rlp:"nil"`
}

// setupDeadline is the last round keys can be submitted in.
func (d *Delegation) setupDeadline() board.Round {
	return d.RoundStart + d.General.RoundsSetup
}

// confirmDeadline is the last round keys can be confirmed in.
func (d *Delegation) confirmDeadline() board.Round {
	return d.setupDeadline() + d.General.RoundsConfirm
}

// Owed returns what the escrow must still be able to pay out in the current state.
func (d *Delegation) Owed() uint64 {
	s := d.General.Fees
	switch d.State {
	case StateReady:
		return s.Escrow(d.RoundEnd, d.RoundStart)
	case StateSubmitted:
		v, p := s.Operational(d.RoundEnd, d.RoundStart)
		return v + p
	case StateLive:
		v, p := s.Operational(d.RoundEnd, d.RoundClaimLast)
		return v + p
	}
	return 0
}

// Distribution reports fees paid out of the escrow by one operation.
type Distribution struct {
	Asset     board.AssetID `json:"asset"`
	Platform  uint64        `json:"platform"`  // commission part of the validator leg
	Validator uint64        `json:"validator"` // remainder of the validator leg, paid to the ad
	Partner   uint64        `json:"partner"`
}

// IsZero reports whether nothing was paid.
func (d *Distribution) IsZero() bool {
	return d == nil || d.Platform == 0 && d.Validator == 0 && d.Partner == 0
}

// Result is what a lifecycle operation reports back to the validator ad.
type Result struct {
	State State         `json:"state"`
	Paid  *Distribution `json:"paid,omitempty"`
}
