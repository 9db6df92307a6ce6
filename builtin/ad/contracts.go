// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ad

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/contract"
	"github.com/delegard/delegard/builtin/fees"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/reverts"
)

// CreateContract instantiates a delegator contract from the current terms.
// The platform has already forwarded the contract reserve in native and the
// fee escrow to the ad account.
func (a *Ad) CreateContract(caller board.AppID, args *ContractArgs) (board.AppID, error) {
	info, err := a.load(caller)
	if err != nil {
		return 0, err
	}
	if info.State != StateReady {
		return 0, reverts.Wrap(reverts.ErrNotLive, "ad %v is %v", a.id, info.State)
	}
	if info.CntDel >= info.CntDelMax {
		return 0, reverts.Wrap(reverts.ErrNoFreeSlot, "ad %v holds %d of %d contracts", a.id, info.CntDel, info.CntDelMax)
	}
	idx := info.find(0)
	if idx < 0 {
		return 0, reverts.Wrap(reverts.ErrNoFreeSlot, "ad %v active array full", a.id)
	}

	terms := &info.Terms
	hash, err := terms.Hash()
	if err != nil {
		return 0, err
	}
	if hash != args.TermsHash {
		return 0, reverts.Wrap(reverts.ErrTermsHash, "terms are %v", hash)
	}
	now, err := a.l.Round()
	if err != nil {
		return 0, err
	}
	if args.Duration < terms.Timing.RoundsDurationMin || args.Duration > terms.Timing.RoundsDurationMax {
		return 0, reverts.Wrap(reverts.ErrTermsDuration, "%d outside [%d,%d]", args.Duration, terms.Timing.RoundsDurationMin, terms.Timing.RoundsDurationMax)
	}
	if terms.Timing.RoundMaxEnd != 0 && now+args.Duration > terms.Timing.RoundMaxEnd {
		return 0, reverts.Wrap(reverts.ErrTermsDuration, "would end after round %d", terms.Timing.RoundMaxEnd)
	}
	if args.StakeMax == 0 || args.StakeMax > terms.Stake.StakeMax {
		return 0, reverts.Wrap(reverts.ErrTermsStake, "%d above %d", args.StakeMax, terms.Stake.StakeMax)
	}
	asset := terms.Pricing.Asset
	if args.Escrow == nil {
		return 0, reverts.Wrap(reverts.ErrPaymentMissing, "no fee escrow")
	}
	if args.Escrow.Asset != asset {
		return 0, reverts.Wrap(reverts.ErrAssetID, "fees are paid in %v, got %v", asset, args.Escrow.Asset)
	}

	c, err := contract.Create(a.l, info.Platform, a.id, args.Manager)
	if err != nil {
		return 0, err
	}
	if err := a.l.Transfer(a.Address(), c.Address(), board.NativeAsset, contract.Reserve(asset)); err != nil {
		return 0, err
	}
	rate := fees.RoundRate(terms.Pricing.FeeRoundMin, terms.Pricing.FeeRoundVar, args.StakeMax)
	setup := &contract.SetupArgs{
		Beneficiary: args.Beneficiary,
		Template:    info.Template,
		TermsHash:   hash,
		General: contract.GeneralTerms{
			Commission:    terms.Pricing.Commission,
			Fees:          fees.NewSchedule(terms.Pricing.FeeSetup, rate, args.PartnerSetup, args.PartnerRound),
			Asset:         asset,
			Partner:       args.Partner,
			RoundsSetup:   terms.Timing.RoundsSetup,
			RoundsConfirm: terms.Timing.RoundsConfirm,
		},
		Balance: contract.BalanceTerms{
			StakeMax:     fees.GratisStake(args.StakeMax, terms.Stake.StakeGratis, args.StakeMaxMax),
			Gating:       terms.Requirements.Gating,
			RoundsBreach: terms.Warnings.RoundsBreach,
			CntBreachMax: terms.Warnings.CntBreachMax,
		},
		Duration: args.Duration,
	}
	if err := c.Setup(a.id, setup); err != nil {
		return 0, err
	}
	if err := a.l.Transfer(a.Address(), c.Address(), asset, args.Escrow.Amount); err != nil {
		return 0, err
	}
	pay := &ledger.Payment{Sender: a.Address(), Receiver: c.Address(), Asset: asset, Amount: args.Escrow.Amount}
	if err := c.Pay(a.id, pay); err != nil {
		return 0, err
	}

	info.Active[idx] = c.ID()
	info.CntDel++
	info.CntOpen++
	if err := a.save(info); err != nil {
		return 0, err
	}
	logger.Debug("contract created", "ad", a.id, "contract", c.ID(), "stakeMax", setup.Balance.StakeMax, "rate", rate)
	return c.ID(), nil
}

// active opens a contract listed in the active array.
func (a *Ad) active(info *Info, id board.AppID) (*contract.Contract, int, error) {
	idx := info.find(id)
	if id.IsZero() || idx < 0 {
		return nil, 0, reverts.Wrap(reverts.ErrAppNotFound, "contract %v is not active in ad %v", id, a.id)
	}
	c, err := contract.Open(a.l, id)
	if err != nil {
		return nil, 0, err
	}
	return c, idx, nil
}

// forward runs op on an active contract and books its outcome: distributions
// go to the earnings ledger, ended contracts leave the active array.
func (a *Ad) forward(caller board.AppID, id board.AppID, op func(*contract.Contract) (*contract.Result, error)) (*contract.Result, error) {
	info, err := a.load(caller)
	if err != nil {
		return nil, err
	}
	c, idx, err := a.active(info, id)
	if err != nil {
		return nil, err
	}
	res, err := op(c)
	if err != nil {
		return nil, err
	}
	if !res.Paid.IsZero() {
		e := info.earnings(res.Paid.Asset)
		if e == nil {
			info.Earnings = append(info.Earnings, Earnings{Asset: res.Paid.Asset})
			e = &info.Earnings[len(info.Earnings)-1]
		}
		e.Validator += res.Paid.Validator
		e.Platform += res.Paid.Platform
	}
	if res.State.IsEnded() {
		info.Active[idx] = 0
		info.CntDel--
		logger.Debug("contract left ad", "ad", a.id, "contract", id, "state", res.State)
	}
	return res, a.save(info)
}

// KeysSubmit forwards key material. Only the manager may submit.
func (a *Ad) KeysSubmit(caller board.AppID, sender board.Address, id board.AppID, keys *contract.KeyMaterial) (*contract.Result, error) {
	info, err := a.load(caller)
	if err != nil {
		return nil, err
	}
	if sender != info.Manager {
		return nil, reverts.Wrap(reverts.ErrCalledByNotValManager, "%v", sender)
	}
	return a.forward(caller, id, func(c *contract.Contract) (*contract.Result, error) {
		return c.KeysSubmit(a.id, keys)
	})
}

func (a *Ad) KeysConfirm(caller, id board.AppID) (*contract.Result, error) {
	return a.forward(caller, id, func(c *contract.Contract) (*contract.Result, error) { return c.KeysConfirm(a.id) })
}

func (a *Ad) KeysNotSubmitted(caller, id board.AppID) (*contract.Result, error) {
	return a.forward(caller, id, func(c *contract.Contract) (*contract.Result, error) { return c.KeysNotSubmitted(a.id) })
}

func (a *Ad) KeysNotConfirmed(caller, id board.AppID) (*contract.Result, error) {
	return a.forward(caller, id, func(c *contract.Contract) (*contract.Result, error) { return c.KeysNotConfirmed(a.id) })
}

func (a *Ad) Claim(caller, id board.AppID) (*contract.Result, error) {
	return a.forward(caller, id, func(c *contract.Contract) (*contract.Result, error) { return c.Claim(a.id) })
}

func (a *Ad) Expired(caller, id board.AppID) (*contract.Result, error) {
	return a.forward(caller, id, func(c *contract.Contract) (*contract.Result, error) { return c.Expired(a.id) })
}

func (a *Ad) BreachLimits(caller, id board.AppID) (*contract.Result, error) {
	return a.forward(caller, id, func(c *contract.Contract) (*contract.Result, error) { return c.BreachLimits(a.id) })
}

func (a *Ad) BreachPay(caller, id board.AppID) (*contract.Result, error) {
	return a.forward(caller, id, func(c *contract.Contract) (*contract.Result, error) { return c.BreachPay(a.id) })
}

func (a *Ad) BreachSuspended(caller, id board.AppID) (*contract.Result, error) {
	return a.forward(caller, id, func(c *contract.Contract) (*contract.Result, error) { return c.BreachSuspended(a.id) })
}

// Withdraw forwards the delegator manager's early exit.
func (a *Ad) Withdraw(caller board.AppID, sender board.Address, id board.AppID) (*contract.Result, error) {
	return a.forward(caller, id, func(c *contract.Contract) (*contract.Result, error) { return c.Withdraw(a.id, sender) })
}

// ReportExpirySoon forwards an expiry notification.
func (a *Ad) ReportExpirySoon(caller, id board.AppID, window, period uint64) error {
	_, err := a.forward(caller, id, func(c *contract.Contract) (*contract.Result, error) {
		if err := c.ReportExpirySoon(a.id, window, period); err != nil {
			return nil, err
		}
		return &contract.Result{State: contract.StateLive}, nil
	})
	return err
}

// DeleteContract deletes an ended contract created by this ad.
func (a *Ad) DeleteContract(caller board.AppID, sender board.Address, id board.AppID) error {
	info, err := a.load(caller)
	if err != nil {
		return err
	}
	app, err := a.l.AppOfKind(id, ledger.KindContract)
	if err != nil {
		return err
	}
	if app.Creator != a.id {
		return reverts.Wrap(reverts.ErrAppNotFound, "contract %v was not created by ad %v", id, a.id)
	}
	c, err := contract.Open(a.l, id)
	if err != nil {
		return err
	}
	if err := c.Delete(a.id, sender); err != nil {
		return err
	}
	info.CntOpen--
	return a.save(info)
}

// Contracts returns the ids in the active array.
func (a *Ad) Contracts() ([]board.AppID, error) {
	info, err := a.Get()
	if err != nil {
		return nil, err
	}
	var ids []board.AppID
	for _, id := range info.Active {
		if !id.IsZero() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// each visits every active contract.
func (a *Ad) each(info *Info, fn func(*contract.Contract, *contract.Delegation) error) error {
	for _, id := range info.Active {
		if id.IsZero() {
			continue
		}
		c, err := contract.Open(a.l, id)
		if err != nil {
			return err
		}
		d, err := c.Get()
		if err != nil {
			return err
		}
		if err := fn(c, d); err != nil {
			return err
		}
	}
	return nil
}
