// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/reverts"
)

// BreachLimits records a balance terms breach of the beneficiary. Reports are
// spaced by RoundsBreach; the contract ends on the CntBreachMax-th one.
func (c *Contract) BreachLimits(caller board.AppID) (*Result, error) {
	d, err := c.load(caller, StateLive)
	if err != nil {
		return nil, err
	}
	now, err := c.l.Round()
	if err != nil {
		return nil, err
	}
	if now >= d.RoundEnd {
		return nil, reverts.Wrap(reverts.ErrAlreadyExpired, "ended at round %d", d.RoundEnd)
	}
	if now < d.RoundBreachLast+d.Balance.RoundsBreach {
		return nil, reverts.Wrap(reverts.ErrBreachCooldown, "next report from round %d", d.RoundBreachLast+d.Balance.RoundsBreach)
	}
	ok, err := c.Eligible(d)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, reverts.Wrap(reverts.ErrBeneficiaryOK, "%v", d.Beneficiary)
	}
	paid, err := c.claim(d, false)
	if err != nil {
		return nil, err
	}
	d.CntBreach++
	d.RoundBreachLast = now
	if err := c.emit("breach_limits", map[string]any{"cnt": d.CntBreach, "max": d.Balance.CntBreachMax}); err != nil {
		return nil, err
	}
	if d.CntBreach >= d.Balance.CntBreachMax {
		if err := c.end(d, StateEndedLimits); err != nil {
			return nil, err
		}
	}
	return &Result{State: d.State, Paid: paid}, c.save(d)
}

// BreachPay ends a contract whose escrow can no longer cover what it owes,
// because the holding was frozen or clawed back.
func (c *Contract) BreachPay(caller board.AppID) (*Result, error) {
	d, err := c.load(caller, StateReady, StateSubmitted, StateLive)
	if err != nil {
		return nil, err
	}
	if d.General.Asset.IsNative() {
		return nil, reverts.Wrap(reverts.ErrNativeAsset, "native escrow cannot be frozen")
	}
	h, err := c.l.Holding(c.Address(), d.General.Asset)
	if err != nil {
		return nil, err
	}
	if h != nil && !h.Frozen && h.Amount >= d.Owed() {
		return nil, reverts.Wrap(reverts.ErrCanPay, "holds %d, owes %d", h.Amount, d.Owed())
	}
	if err := c.end(d, StateEndedCannotPay); err != nil {
		return nil, err
	}
	return &Result{State: d.State}, c.save(d)
}

// BreachSuspended ends a live contract whose beneficiary lost incentive
// eligibility, after a final claim.
func (c *Contract) BreachSuspended(caller board.AppID) (*Result, error) {
	d, err := c.load(caller, StateLive)
	if err != nil {
		return nil, err
	}
	now, err := c.l.Round()
	if err != nil {
		return nil, err
	}
	if now >= d.RoundEnd {
		return nil, reverts.Wrap(reverts.ErrAlreadyExpired, "ended at round %d", d.RoundEnd)
	}
	acc, err := c.l.Account(d.Beneficiary)
	if err != nil {
		return nil, err
	}
	if acc.IncentiveEligible {
		return nil, reverts.Wrap(reverts.ErrNotSuspended, "%v", d.Beneficiary)
	}
	return c.finish(d, StateEndedSuspended)
}

// ReportExpirySoon notifies that the contract ends within window rounds.
// Reports are spaced by period rounds.
func (c *Contract) ReportExpirySoon(caller board.AppID, window, period uint64) error {
	d, err := c.load(caller, StateLive)
	if err != nil {
		return err
	}
	now, err := c.l.Round()
	if err != nil {
		return err
	}
	if now >= d.RoundEnd {
		return reverts.Wrap(reverts.ErrAlreadyExpired, "ended at round %d", d.RoundEnd)
	}
	if now+window < d.RoundEnd {
		return reverts.Wrap(reverts.ErrTooEarly, "ends at round %d", d.RoundEnd)
	}
	if d.RoundExpirySoonLast != 0 && now < d.RoundExpirySoonLast+period {
		return reverts.Wrap(reverts.ErrReportTooSoon, "next report from round %d", d.RoundExpirySoonLast+period)
	}
	d.RoundExpirySoonLast = now
	if err := c.save(d); err != nil {
		return err
	}
	return c.emit("expiry_soon", map[string]any{"roundEnd": d.RoundEnd})
}
