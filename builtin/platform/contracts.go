// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package platform

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/ad"
	"github.com/delegard/delegard/builtin/contract"
	"github.com/delegard/delegard/builtin/registry"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/reverts"
)

// AdRef names a validator ad through its owner's slot table.
type AdRef struct {
	Owner board.Address `json:"valOwner"`
	Ad    board.AppID   `json:"ad"`
	Slot  uint64        `json:"adSlot"`
}

// ContractRef names a delegator contract through its manager's slot table.
type ContractRef struct {
	Contract board.AppID `json:"contract"`
	Slot     uint64      `json:"contractSlot"`
}

// ContractCreateArgs are the delegator's inputs of a new contract.
type ContractCreateArgs struct {
	Beneficiary board.Address `json:"beneficiary"`
	Duration    uint64        `json:"duration"`
	StakeMax    uint64        `json:"stakeMax"`
	AdRef
	ContractSlot uint64        `json:"contractSlot"`
	TermsHash    board.Bytes32 `json:"termsHash"`
	Partner      board.Address `json:"partner"`
}

// ContractCreate creates a delegator contract on a validator ad.
// service pays the contract creation fee and the contract's minimum balance
// in native; escrow prepays the delegation fees in the ad's pricing asset.
func (p *Platform) ContractCreate(sender board.Address, args *ContractCreateArgs, escrow, service *ledger.Payment) (board.AppID, error) {
	info, err := p.load(StateSet)
	if err != nil {
		return 0, err
	}
	if _, err := p.users.RequireRole(sender, registry.RoleDelegator); err != nil {
		return 0, err
	}
	a, err := p.adOf(args.Owner, args.Slot, args.Ad)
	if err != nil {
		return 0, err
	}
	adInfo, err := a.Get()
	if err != nil {
		return 0, err
	}
	var partner Partner
	if !args.Partner.IsZero() {
		pt, err := p.requirePartner(args.Partner)
		if err != nil {
			return 0, err
		}
		partner = *pt
	}

	asset := adInfo.Terms.Pricing.Asset
	reserve := contract.Reserve(asset)
	if err := ledger.CheckPayment(service, p.Address(), board.NativeAsset, info.Terms.Fees.ContractCreate+reserve); err != nil {
		return 0, err
	}
	if escrow == nil {
		return 0, reverts.Wrap(reverts.ErrPaymentMissing, "no fee escrow")
	}
	if escrow.Receiver != p.Address() {
		return 0, reverts.Wrap(reverts.ErrReceiver, "expected %v, got %v", p.Address(), escrow.Receiver)
	}
	if escrow.Asset != asset {
		return 0, reverts.Wrap(reverts.ErrAssetID, "fees are paid in %v, got %v", asset, escrow.Asset)
	}
	if err := p.l.Transfer(p.Address(), a.Address(), board.NativeAsset, reserve); err != nil {
		return 0, err
	}
	if err := p.l.Transfer(p.Address(), a.Address(), asset, escrow.Amount); err != nil {
		return 0, err
	}

	id, err := a.CreateContract(p.id, &ad.ContractArgs{
		Manager:      sender,
		Beneficiary:  args.Beneficiary,
		Duration:     args.Duration,
		StakeMax:     args.StakeMax,
		TermsHash:    args.TermsHash,
		Partner:      args.Partner,
		PartnerSetup: partner.CommissionSetup,
		PartnerRound: partner.CommissionRound,
		StakeMaxMax:  info.Terms.Limits.StakeMaxMax,
		Escrow:       &ad.Escrow{Asset: escrow.Asset, Amount: escrow.Amount},
	})
	if err != nil {
		return 0, err
	}
	if err := p.users.ReserveSlot(sender, args.ContractSlot, id); err != nil {
		return 0, err
	}
	logger.Info("contract created", "contract", id, "ad", args.Ad, "manager", sender, "slot", args.ContractSlot)
	return id, nil
}

// delegated checks that ref is held by sender, a delegator.
func (p *Platform) delegated(sender board.Address, ref *ContractRef) error {
	u, err := p.users.CheckSlot(sender, ref.Slot, ref.Contract)
	if err != nil {
		return err
	}
	if u.Role != registry.RoleDelegator {
		return reverts.Wrap(reverts.ErrUserRole, "%v is a %v", sender, u.Role)
	}
	return nil
}

// KeysSubmit forwards key material from the ad manager.
func (p *Platform) KeysSubmit(sender board.Address, ref *AdRef, id board.AppID, keys *contract.KeyMaterial) (*contract.Result, error) {
	a, err := p.adOf(ref.Owner, ref.Slot, ref.Ad)
	if err != nil {
		return nil, err
	}
	return a.KeysSubmit(p.id, sender, id, keys)
}

// KeysConfirm forwards the delegator's key confirmation.
func (p *Platform) KeysConfirm(sender board.Address, ref *AdRef, cref *ContractRef) (*contract.Result, error) {
	if err := p.delegated(sender, cref); err != nil {
		return nil, err
	}
	a, err := p.adOf(ref.Owner, ref.Slot, ref.Ad)
	if err != nil {
		return nil, err
	}
	return a.KeysConfirm(p.id, cref.Contract)
}

// ContractWithdraw forwards the delegator's early exit.
func (p *Platform) ContractWithdraw(sender board.Address, ref *AdRef, cref *ContractRef) (*contract.Result, error) {
	if err := p.delegated(sender, cref); err != nil {
		return nil, err
	}
	a, err := p.adOf(ref.Owner, ref.Slot, ref.Ad)
	if err != nil {
		return nil, err
	}
	return a.Withdraw(p.id, sender, cref.Contract)
}

// ContractDelete deletes an ended contract and frees the delegator's slot.
func (p *Platform) ContractDelete(sender board.Address, cref *ContractRef) error {
	if err := p.delegated(sender, cref); err != nil {
		return err
	}
	app, err := p.l.AppOfKind(cref.Contract, ledger.KindContract)
	if err != nil {
		return err
	}
	adApp, err := p.l.AppOfKind(app.Creator, ledger.KindAd)
	if err != nil {
		return err
	}
	if adApp.Creator != p.id {
		return reverts.Wrap(reverts.ErrAppNotFound, "contract %v belongs to another platform", cref.Contract)
	}
	a, err := ad.Open(p.l, app.Creator)
	if err != nil {
		return err
	}
	if err := a.DeleteContract(p.id, sender, cref.Contract); err != nil {
		return err
	}
	if err := p.users.ReleaseSlot(sender, cref.Slot, cref.Contract); err != nil {
		return err
	}
	logger.Info("contract deleted", "contract", cref.Contract, "manager", sender)
	return nil
}

// Trigger names a permissionless contract transition.
type Trigger string

const (
	TriggerKeysNotSubmitted Trigger = "keys_not_submitted"
	TriggerKeysNotConfirmed Trigger = "keys_not_confirmed"
	TriggerClaim            Trigger = "contract_claim"
	TriggerExpired          Trigger = "contract_expired"
	TriggerBreachLimits     Trigger = "breach_limits"
	TriggerBreachPay        Trigger = "breach_pay"
	TriggerBreachSuspended  Trigger = "breach_suspended"
)

// Trigger runs a permissionless transition on a contract of ref.
func (p *Platform) Trigger(t Trigger, ref *AdRef, id board.AppID) (*contract.Result, error) {
	a, err := p.adOf(ref.Owner, ref.Slot, ref.Ad)
	if err != nil {
		return nil, err
	}
	switch t {
	case TriggerKeysNotSubmitted:
		return a.KeysNotSubmitted(p.id, id)
	case TriggerKeysNotConfirmed:
		return a.KeysNotConfirmed(p.id, id)
	case TriggerClaim:
		return a.Claim(p.id, id)
	case TriggerExpired:
		return a.Expired(p.id, id)
	case TriggerBreachLimits:
		return a.BreachLimits(p.id, id)
	case TriggerBreachPay:
		return a.BreachPay(p.id, id)
	case TriggerBreachSuspended:
		return a.BreachSuspended(p.id, id)
	}
	return nil, reverts.Wrap(reverts.ErrUnknownMethod, "%s", t)
}

// ReportExpirySoon notifies that a contract of ref ends soon, within the
// platform's window and rate.
func (p *Platform) ReportExpirySoon(ref *AdRef, id board.AppID) error {
	info, err := p.load()
	if err != nil {
		return err
	}
	a, err := p.adOf(ref.Owner, ref.Slot, ref.Ad)
	if err != nil {
		return err
	}
	return a.ReportExpirySoon(p.id, id, info.Terms.Limits.ExpirySoonWindow, info.Terms.Limits.ExpirySoonPeriod)
}
