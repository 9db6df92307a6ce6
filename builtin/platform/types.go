// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package platform

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/ad"
	"github.com/delegard/delegard/builtin/registry"
	"github.com/delegard/delegard/reverts"
)

// State of the platform.
type State uint8

const (
	StateDeployed State = iota + 1
	StateSet
	StateSuspended
	StateRetired
)

func (s State) String() string {
	switch s {
	case StateDeployed:
		return "DEPLOYED"
	case StateSet:
		return "SET"
	case StateSuspended:
		return "SUSPENDED"
	case StateRetired:
		return "RETIRED"
	}
	return "UNKNOWN"
}

// Fees charged by the platform, in native.
type Fees struct {
	ValRegister    uint64 `json:"valRegister" yaml:"valRegister"`
	DelRegister    uint64 `json:"delRegister" yaml:"delRegister"`
	AdCreate       uint64 `json:"adCreate" yaml:"adCreate"`
	ContractCreate uint64 `json:"contractCreate" yaml:"contractCreate"`
	CommissionMin  uint64 `json:"commissionMin" yaml:"commissionMin"` // ppm
}

// Limits bound the terms validators may publish.
type Limits struct {
	RoundsDurationMin uint64 `json:"roundsDurationMin" yaml:"roundsDurationMin"`
	RoundsDurationMax uint64 `json:"roundsDurationMax" yaml:"roundsDurationMax"`
	RoundsSetupMax    uint64 `json:"roundsSetupMax" yaml:"roundsSetupMax"`
	RoundsConfirmMax  uint64 `json:"roundsConfirmMax" yaml:"roundsConfirmMax"`
	StakeMaxMin       uint64 `json:"stakeMaxMin" yaml:"stakeMaxMin"`
	StakeMaxMax       uint64 `json:"stakeMaxMax" yaml:"stakeMaxMax"`
	StakeGratisMax    uint64 `json:"stakeGratisMax" yaml:"stakeGratisMax"` // ppm
	CntBreachMax      uint64 `json:"cntBreachMax" yaml:"cntBreachMax"`
	RoundsBreachMin   uint64 `json:"roundsBreachMin" yaml:"roundsBreachMin"`
	ExpirySoonWindow  uint64 `json:"expirySoonWindow" yaml:"expirySoonWindow"`
	ExpirySoonPeriod  uint64 `json:"expirySoonPeriod" yaml:"expirySoonPeriod"`
}

// Terms are the platform-wide fees and limits.
type Terms struct {
	Fees   Fees   `json:"fees" yaml:"fees"`
	Limits Limits `json:"limits" yaml:"limits"`
}

// Validate checks the terms are self-consistent.
func (t *Terms) Validate() error {
	if t.Fees.CommissionMin > board.PPMMax {
		return reverts.Wrap(reverts.ErrTermsCommission, "minimum %d above %d", t.Fees.CommissionMin, board.PPMMax)
	}
	lim := &t.Limits
	if lim.RoundsDurationMax == 0 || lim.RoundsDurationMin > lim.RoundsDurationMax {
		return reverts.Wrap(reverts.ErrTermsDuration, "[%d,%d]", lim.RoundsDurationMin, lim.RoundsDurationMax)
	}
	if lim.StakeMaxMax == 0 || lim.StakeMaxMin > lim.StakeMaxMax {
		return reverts.Wrap(reverts.ErrTermsStake, "[%d,%d]", lim.StakeMaxMin, lim.StakeMaxMax)
	}
	if lim.CntBreachMax == 0 {
		return reverts.Wrap(reverts.ErrTermsWarnings, "zero breach limit")
	}
	return nil
}

// CheckAd checks terms a validator proposes against the limits and the
// pricing floors of their asset.
func (t *Terms) CheckAd(terms *ad.Terms, asset *AssetConfig) error {
	p := &terms.Pricing
	if p.Commission < t.Fees.CommissionMin || p.Commission > board.PPMMax {
		return reverts.Wrap(reverts.ErrTermsCommission, "%d below %d", p.Commission, t.Fees.CommissionMin)
	}
	if asset == nil || !asset.Accepted {
		return reverts.Wrap(reverts.ErrAssetNotAccepted, "asset %v", p.Asset)
	}
	if p.FeeRoundMin < asset.FeeRoundMinMin || p.FeeRoundVar < asset.FeeRoundVarMin || p.FeeSetup < asset.FeeSetupMin {
		return reverts.Wrap(reverts.ErrTermsPrice, "below the floors of asset %v", p.Asset)
	}

	lim := &t.Limits
	tm := &terms.Timing
	if tm.RoundsDurationMin < lim.RoundsDurationMin || tm.RoundsDurationMax > lim.RoundsDurationMax ||
		tm.RoundsDurationMin > tm.RoundsDurationMax {
		return reverts.Wrap(reverts.ErrTermsDuration, "[%d,%d] outside [%d,%d]",
			tm.RoundsDurationMin, tm.RoundsDurationMax, lim.RoundsDurationMin, lim.RoundsDurationMax)
	}
	if tm.RoundsSetup > lim.RoundsSetupMax || tm.RoundsConfirm > lim.RoundsConfirmMax {
		return reverts.Wrap(reverts.ErrTermsTiming, "setup %d, confirm %d", tm.RoundsSetup, tm.RoundsConfirm)
	}
	s := &terms.Stake
	if s.StakeMax < lim.StakeMaxMin || s.StakeMax > lim.StakeMaxMax || s.StakeGratis > lim.StakeGratisMax {
		return reverts.Wrap(reverts.ErrTermsStake, "ceiling %d, gratis %d", s.StakeMax, s.StakeGratis)
	}
	w := &terms.Warnings
	if w.CntBreachMax == 0 || w.CntBreachMax > lim.CntBreachMax || w.RoundsBreach < lim.RoundsBreachMin {
		return reverts.Wrap(reverts.ErrTermsWarnings, "%d breaches spaced %d rounds", w.CntBreachMax, w.RoundsBreach)
	}
	g := terms.Requirements.Gating
	for i, a := range g {
		if a.ID.IsNative() {
			if a.Min != 0 {
				return reverts.Wrap(reverts.ErrTermsGating, "native gating asset")
			}
			continue
		}
		for _, b := range g[i+1:] {
			if b.ID == a.ID {
				return reverts.Wrap(reverts.ErrTermsGating, "asset %v listed twice", a.ID)
			}
		}
	}
	return nil
}

// RegisterFee returns the registration fee of role.
func (t *Terms) RegisterFee(role registry.Role) uint64 {
	if role == registry.RoleValidator {
		return t.Fees.ValRegister
	}
	return t.Fees.DelRegister
}

// AssetConfig is the allow-list entry of an asset with its pricing floors.
type AssetConfig struct {
	Accepted       bool   `json:"accepted" yaml:"accepted"`
	FeeRoundMinMin uint64 `json:"feeRoundMinMin" yaml:"feeRoundMinMin"`
	FeeRoundVarMin uint64 `json:"feeRoundVarMin" yaml:"feeRoundVarMin"`
	FeeSetupMin    uint64 `json:"feeSetupMin" yaml:"feeSetupMin"`
}

// Partner is a partner's commission on the validator fees, in ppm.
type Partner struct {
	CommissionSetup uint64 `json:"commissionSetup" yaml:"commissionSetup"`
	CommissionRound uint64 `json:"commissionRound" yaml:"commissionRound"`
}

// Info is the stored state of the platform.
type Info struct {
	State       State         `json:"state"`
	Manager     board.Address `json:"manager"`
	Terms       Terms         `json:"terms"`
	Template    board.Bytes32 `json:"template"`
	TemplateLen uint64        `json:"templateLen"`
}
