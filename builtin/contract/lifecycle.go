// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/fees"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/reverts"
)

// SetupArgs carries the terms snapshot of a new contract.
type SetupArgs struct {
	Beneficiary board.Address
	Template    board.Bytes32
	TermsHash   board.Bytes32
	General     GeneralTerms
	Balance     BalanceTerms
	Duration    uint64 // rounds
}

// Setup records the terms and the round range. Non-native fee assets are opted in.
func (c *Contract) Setup(caller board.AppID, args *SetupArgs) error {
	d, err := c.load(caller, StateCreated)
	if err != nil {
		return err
	}
	now, err := c.l.Round()
	if err != nil {
		return err
	}
	d.Beneficiary = args.Beneficiary
	d.Template = args.Template
	d.TermsHash = args.TermsHash
	d.General = args.General
	d.Balance = args.Balance
	d.RoundStart = now
	d.RoundEnd = now + args.Duration
	d.RoundClaimLast = now
	if !d.General.Asset.IsNative() {
		if err := c.l.OptIn(c.Address(), d.General.Asset); err != nil {
			return err
		}
	}
	d.State = StateSet
	if err := c.save(d); err != nil {
		return err
	}
	return c.emit("contract_set", map[string]any{"beneficiary": d.Beneficiary, "roundStart": d.RoundStart, "roundEnd": d.RoundEnd})
}

// Pay verifies the escrow payment and the beneficiary's eligibility.
func (c *Contract) Pay(caller board.AppID, pay *ledger.Payment) error {
	d, err := c.load(caller, StateSet)
	if err != nil {
		return err
	}
	if err := ledger.CheckPayment(pay, c.Address(), d.General.Asset, d.General.Fees.Escrow(d.RoundEnd, d.RoundStart)); err != nil {
		return err
	}
	ok, err := c.Eligible(d)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Wrap(reverts.ErrBeneficiaryLimits, "%v", d.Beneficiary)
	}
	d.State = StateReady
	if err := c.save(d); err != nil {
		return err
	}
	return c.emit("contract_paid", map[string]any{"amount": pay.Amount, "asset": pay.Asset})
}

// KeysSubmit stores the key material for the beneficiary and pays the setup fee.
func (c *Contract) KeysSubmit(caller board.AppID, keys *KeyMaterial) (*Result, error) {
	d, err := c.load(caller, StateReady)
	if err != nil {
		return nil, err
	}
	now, err := c.l.Round()
	if err != nil {
		return nil, err
	}
	if now > d.setupDeadline() {
		return nil, reverts.Wrap(reverts.ErrTooLate, "keys due by round %d", d.setupDeadline())
	}
	if keys == nil {
		return nil, reverts.Wrap(reverts.ErrBadArgs, "no keys")
	}
	if keys.Beneficiary != d.Beneficiary {
		return nil, reverts.Wrap(reverts.ErrKeysBeneficiary, "keys for %v, beneficiary is %v", keys.Beneficiary, d.Beneficiary)
	}
	if keys.VoteFirst != d.RoundStart || keys.VoteLast != d.RoundEnd {
		return nil, reverts.Wrap(reverts.ErrKeysRoundRange, "keys cover [%d,%d], contract covers [%d,%d]",
			keys.VoteFirst, keys.VoteLast, d.RoundStart, d.RoundEnd)
	}
	paid, err := c.distribute(d, d.General.Fees.Setup, d.General.Fees.SetupPartner)
	if err != nil {
		return nil, err
	}
	k := keys.Keys
	d.Keys = &k
	d.State = StateSubmitted
	if err := c.save(d); err != nil {
		return nil, err
	}
	return &Result{State: d.State, Paid: paid}, c.emit("keys_submitted", nil)
}

// KeysNotSubmitted ends a contract whose keys were not submitted in time and
// refunds the whole escrow.
func (c *Contract) KeysNotSubmitted(caller board.AppID) (*Result, error) {
	d, err := c.load(caller, StateReady)
	if err != nil {
		return nil, err
	}
	now, err := c.l.Round()
	if err != nil {
		return nil, err
	}
	if now <= d.setupDeadline() {
		return nil, reverts.Wrap(reverts.ErrTooEarly, "keys due by round %d", d.setupDeadline())
	}
	if err := c.refund(d, d.General.Fees.Escrow(d.RoundEnd, d.RoundStart)); err != nil {
		return nil, err
	}
	if err := c.end(d, StateEndedNotSubmitted); err != nil {
		return nil, err
	}
	return &Result{State: d.State}, c.save(d)
}

// KeysConfirm makes the contract live once the beneficiary has registered
// the submitted keys online with incentive eligibility.
func (c *Contract) KeysConfirm(caller board.AppID) (*Result, error) {
	d, err := c.load(caller, StateSubmitted)
	if err != nil {
		return nil, err
	}
	now, err := c.l.Round()
	if err != nil {
		return nil, err
	}
	if now > d.confirmDeadline() {
		return nil, reverts.Wrap(reverts.ErrTooLate, "keys confirmable by round %d", d.confirmDeadline())
	}
	acc, err := c.l.Account(d.Beneficiary)
	if err != nil {
		return nil, err
	}
	if !acc.Keys.Equal(d.Keys) {
		return nil, reverts.Wrap(reverts.ErrKeysNotRegistered, "%v", d.Beneficiary)
	}
	if !acc.IncentiveEligible {
		return nil, reverts.Wrap(reverts.ErrNotIncentivized, "%v", d.Beneficiary)
	}
	d.CntBreach = 0
	d.RoundBreachLast = now
	d.State = StateLive
	if err := c.save(d); err != nil {
		return nil, err
	}
	return &Result{State: d.State}, c.emit("keys_confirmed", nil)
}

// KeysNotConfirmed ends a contract whose keys were not confirmed in time and
// refunds the operational fees. The setup fee stays paid.
func (c *Contract) KeysNotConfirmed(caller board.AppID) (*Result, error) {
	d, err := c.load(caller, StateSubmitted)
	if err != nil {
		return nil, err
	}
	now, err := c.l.Round()
	if err != nil {
		return nil, err
	}
	if now <= d.confirmDeadline() {
		return nil, reverts.Wrap(reverts.ErrTooEarly, "keys confirmable by round %d", d.confirmDeadline())
	}
	if err := c.refund(d, d.Owed()); err != nil {
		return nil, err
	}
	if err := c.end(d, StateEndedNotConfirmed); err != nil {
		return nil, err
	}
	return &Result{State: d.State}, c.save(d)
}

// Claim pays the operational fee accrued since the last claim.
func (c *Contract) Claim(caller board.AppID) (*Result, error) {
	d, err := c.load(caller, StateLive)
	if err != nil {
		return nil, err
	}
	paid, err := c.claim(d, true)
	if err != nil {
		return nil, err
	}
	return &Result{State: d.State, Paid: paid}, c.save(d)
}

// claim distributes the fee accrued up to min(now, RoundEnd). Unless strict,
// having nothing to claim is not an error.
func (c *Contract) claim(d *Delegation, strict bool) (*Distribution, error) {
	now, err := c.l.Round()
	if err != nil {
		return nil, err
	}
	to := min(now, d.RoundEnd)
	if to <= d.RoundClaimLast {
		if strict {
			return nil, reverts.Wrap(reverts.ErrAlreadyClaimed, "claimed through round %d", d.RoundClaimLast)
		}
		return nil, nil
	}
	v, p := d.General.Fees.Operational(to, d.RoundClaimLast)
	paid, err := c.distribute(d, v, p)
	if err != nil {
		return nil, err
	}
	d.RoundClaimLast = to
	return paid, c.emit("claimed", map[string]any{"through": to, "validator": v, "partner": p})
}

// distribute pays a validator leg, split by commission between the platform
// and the ad, and a partner leg. A partner that cannot receive forfeits its
// leg to the platform.
func (c *Contract) distribute(d *Delegation, validator, partner uint64) (*Distribution, error) {
	asset := d.General.Asset
	commission, rest := fees.Split(validator, d.General.Commission)
	platform := board.AppAddress(d.Platform)
	if err := c.l.Transfer(c.Address(), platform, asset, commission); err != nil {
		return nil, err
	}
	if err := c.l.Transfer(c.Address(), board.AppAddress(d.Ad), asset, rest); err != nil {
		return nil, err
	}
	if partner > 0 {
		to := platform
		if !d.General.Partner.IsZero() {
			ok, err := c.l.CanReceive(d.General.Partner, asset)
			if err != nil {
				return nil, err
			}
			if ok {
				to = d.General.Partner
			}
		}
		if err := c.l.Transfer(c.Address(), to, asset, partner); err != nil {
			return nil, err
		}
	}
	return &Distribution{Asset: asset, Platform: commission, Validator: rest, Partner: partner}, nil
}

// Withdraw ends a live contract at the manager's request after a final claim.
func (c *Contract) Withdraw(caller board.AppID, sender board.Address) (*Result, error) {
	d, err := c.load(caller, StateLive)
	if err != nil {
		return nil, err
	}
	if sender != d.Manager {
		return nil, reverts.Wrap(reverts.ErrCalledByNotDelManager, "%v", sender)
	}
	return c.finish(d, StateEndedWithdrew)
}

// Expired ends a live contract once its round range is over.
func (c *Contract) Expired(caller board.AppID) (*Result, error) {
	d, err := c.load(caller, StateLive)
	if err != nil {
		return nil, err
	}
	now, err := c.l.Round()
	if err != nil {
		return nil, err
	}
	if now < d.RoundEnd {
		return nil, reverts.Wrap(reverts.ErrNotExpired, "ends at round %d", d.RoundEnd)
	}
	return c.finish(d, StateEndedExpired)
}

// finish claims what accrued and ends the contract.
func (c *Contract) finish(d *Delegation, state State) (*Result, error) {
	paid, err := c.claim(d, false)
	if err != nil {
		return nil, err
	}
	if err := c.end(d, state); err != nil {
		return nil, err
	}
	return &Result{State: d.State, Paid: paid}, c.save(d)
}

// Delete removes an ended contract. Residual escrow and the reserve go to the manager.
func (c *Contract) Delete(caller board.AppID, sender board.Address) error {
	d, err := c.load(caller)
	if err != nil {
		return err
	}
	if !d.State.IsEnded() {
		return reverts.Wrap(reverts.ErrState, "contract %v is %v", c.id, d.State)
	}
	if sender != d.Manager {
		return reverts.Wrap(reverts.ErrCalledByNotDelManager, "%v", sender)
	}
	if !d.General.Asset.IsNative() {
		if err := c.l.AssetCloseOut(c.Address(), d.General.Asset, d.Manager); err != nil {
			return err
		}
	}
	if err := c.state.Delete(); err != nil {
		return err
	}
	if err := c.l.CloseOut(c.Address(), d.Manager); err != nil {
		return err
	}
	if err := c.l.DeleteApp(c.id); err != nil {
		return err
	}
	logger.Debug("contract deleted", "id", c.id, "manager", d.Manager)
	return c.emit("contract_deleted", nil)
}
