// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ad

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/contract"
)

// State of a validator ad.
type State uint8

const (
	StateCreated State = iota + 1
	StateTemplateLoad
	StateTemplateLoaded
	StateSet
	StateReady
	StateNotReady
	StateNotLive
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateTemplateLoad:
		return "TEMPLATE_LOAD"
	case StateTemplateLoaded:
		return "TEMPLATE_LOADED"
	case StateSet:
		return "SET"
	case StateReady:
		return "READY"
	case StateNotReady:
		return "NOT_READY"
	case StateNotLive:
		return "NOT_LIVE"
	}
	return "UNKNOWN"
}

// configured reports whether terms have been set.
func (s State) configured() bool {
	return s >= StateSet
}

// Timing bounds the round range of a delegation.
type Timing struct {
	RoundsSetup       uint64      `json:"roundsSetup"`
	RoundsConfirm     uint64      `json:"roundsConfirm"`
	RoundsDurationMin uint64      `json:"roundsDurationMin"`
	RoundsDurationMax uint64      `json:"roundsDurationMax"`
	RoundMaxEnd       board.Round `json:"roundMaxEnd"` // last round a delegation may end at, zero for none
}

// Pricing sets the fees of a delegation.
type Pricing struct {
	Commission  uint64        `json:"commission"`  // platform cut, ppm
	FeeRoundMin uint64        `json:"feeRoundMin"` // per MilliScale rounds
	FeeRoundVar uint64        `json:"feeRoundVar"` // per MilliScale rounds and StakeScale of stake
	FeeSetup    uint64        `json:"feeSetup"`
	Asset       board.AssetID `json:"asset"`
}

// Stake bounds the stake of a delegation.
type Stake struct {
	StakeMax    uint64 `json:"stakeMax"`
	StakeGratis uint64 `json:"stakeGratis"` // bonus on the requested ceiling, ppm
}

// Requirements lists the gating assets a beneficiary must hold.
type Requirements struct {
	Gating [board.GatingAssetsMax]contract.GatingAsset `json:"gating"`
}

// Warnings is the breach policy.
type Warnings struct {
	CntBreachMax uint64 `json:"cntBreachMax"`
	RoundsBreach uint64 `json:"roundsBreach"`
}

// Terms are the service terms a validator publishes.
type Terms struct {
	Timing       Timing       `json:"timing"`
	Pricing      Pricing      `json:"pricing"`
	Stake        Stake        `json:"stake"`
	Requirements Requirements `json:"requirements"`
	Warnings     Warnings     `json:"warnings"`
}

// Hash is what a delegator commits to when creating a contract.
func (t *Terms) Hash() (board.Bytes32, error) {
	return board.RLPHash(t)
}

// Earnings is the ledger of one asset earned through the ad.
type Earnings struct {
	Asset     board.AssetID `json:"asset"`
	Validator uint64        `json:"validator"`
	Platform  uint64        `json:"platform"`
	Withdrawn uint64        `json:"withdrawn"`
}

// Info is the stored state of one validator ad.
type Info struct {
	State    State         `json:"state"`
	Platform board.AppID   `json:"platform"`
	Owner    board.Address `json:"owner"`
	Manager  board.Address `json:"manager"`
	Terms    Terms         `json:"terms"`

	CntDelMax uint64                           `json:"cntDelMax"`
	CntDel    uint64                           `json:"cntDel"`  // live entries of Active
	CntOpen   uint64                           `json:"cntOpen"` // contracts not yet deleted
	Active    [board.DelegatorsMax]board.AppID `json:"active"`

	Template    board.Bytes32 `json:"template"`
	TemplateLen uint64        `json:"templateLen"`

	Earnings []Earnings `json:"earnings"`
}

// find returns the index of id in the active array, or -1.
// A zero id finds the first free entry.
func (i *Info) find(id board.AppID) int {
	for idx, v := range i.Active {
		if v == id {
			return idx
		}
	}
	return -1
}

func (i *Info) earnings(asset board.AssetID) *Earnings {
	for idx := range i.Earnings {
		if i.Earnings[idx].Asset == asset {
			return &i.Earnings[idx]
		}
	}
	return nil
}

// ContractArgs are the per-delegation inputs of a new contract.
type ContractArgs struct {
	Manager      board.Address
	Beneficiary  board.Address
	Duration     uint64
	StakeMax     uint64
	TermsHash    board.Bytes32
	Partner      board.Address
	PartnerSetup uint64 // partner commission on the setup fee, ppm
	PartnerRound uint64 // partner commission on the operational fee, ppm
	StakeMaxMax  uint64 // platform-wide stake ceiling
	Escrow       *Escrow
}

// Escrow is the fee escrow the platform forwarded to the ad.
type Escrow struct {
	Asset  board.AssetID
	Amount uint64
}
