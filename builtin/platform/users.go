// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package platform

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/ad"
	"github.com/delegard/delegard/builtin/registry"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/reverts"
)

// UserCreate registers sender with role. pay covers the registration fee and
// the user record reserve.
func (p *Platform) UserCreate(sender board.Address, role registry.Role, pay *ledger.Payment) error {
	info, err := p.load(StateSet)
	if err != nil {
		return err
	}
	before, err := p.minBalance()
	if err != nil {
		return err
	}
	if err := p.users.Create(sender, role); err != nil {
		return err
	}
	if err := p.settle(before, pay, info.Terms.RegisterFee(role), sender); err != nil {
		return err
	}
	logger.Info("user registered", "addr", sender, "role", role)
	return p.emit("user_created", map[string]any{"user": sender, "role": role.String()})
}

// UserDelete unregisters sender and refunds the record reserve.
func (p *Platform) UserDelete(sender board.Address) error {
	if _, err := p.load(); err != nil {
		return err
	}
	before, err := p.minBalance()
	if err != nil {
		return err
	}
	if err := p.users.Delete(sender); err != nil {
		return err
	}
	if err := p.settle(before, nil, 0, sender); err != nil {
		return err
	}
	logger.Info("user unregistered", "addr", sender)
	return p.emit("user_deleted", map[string]any{"user": sender})
}

// adOf checks that slot of owner's table holds id and opens that ad.
func (p *Platform) adOf(owner board.Address, slot uint64, id board.AppID) (*ad.Ad, error) {
	u, err := p.users.CheckSlot(owner, slot, id)
	if err != nil {
		return nil, err
	}
	if u.Role != registry.RoleValidator {
		return nil, reverts.Wrap(reverts.ErrUserRole, "%v is a %v", owner, u.Role)
	}
	return ad.Open(p.l, id)
}

// AdCreate creates a validator ad for sender at slot. pay covers the ad
// creation fee and the ad's minimum balance, which is forwarded to it.
func (p *Platform) AdCreate(sender board.Address, slot uint64, pay *ledger.Payment) (board.AppID, error) {
	info, err := p.load(StateSet)
	if err != nil {
		return 0, err
	}
	if _, err := p.users.RequireRole(sender, registry.RoleValidator); err != nil {
		return 0, err
	}
	if err := ledger.CheckPayment(pay, p.Address(), board.NativeAsset, info.Terms.Fees.AdCreate+ad.Reserve()); err != nil {
		return 0, err
	}
	a, err := ad.Create(p.l, p.id, sender)
	if err != nil {
		return 0, err
	}
	if err := p.users.ReserveSlot(sender, slot, a.ID()); err != nil {
		return 0, err
	}
	if err := p.l.Transfer(p.Address(), a.Address(), board.NativeAsset, ad.Reserve()); err != nil {
		return 0, err
	}
	logger.Info("ad created", "ad", a.ID(), "owner", sender, "slot", slot)
	return a.ID(), nil
}

// AdTemplateLoad copies the platform template into the ad. pay, sent to the
// ad, covers the template reserve.
func (p *Platform) AdTemplateLoad(sender board.Address, id board.AppID, slot uint64, pay *ledger.Payment) error {
	info, err := p.load(StateSet, StateSuspended)
	if err != nil {
		return err
	}
	a, err := p.adOf(sender, slot, id)
	if err != nil {
		return err
	}
	tmpl, err := p.Template()
	if err != nil {
		return err
	}
	if len(tmpl) == 0 {
		return reverts.Wrap(reverts.ErrTemplateEmpty, "platform has no template")
	}
	return a.TemplateLoad(p.id, sender, tmpl, info.Template, pay)
}

// AdTerms validates and sets the terms of an ad. pay, sent to the ad,
// covers the pricing asset opt-in.
func (p *Platform) AdTerms(sender board.Address, id board.AppID, slot uint64, terms *ad.Terms, pay *ledger.Payment) error {
	info, err := p.load(StateSet, StateSuspended)
	if err != nil {
		return err
	}
	a, err := p.adOf(sender, slot, id)
	if err != nil {
		return err
	}
	cfg, err := p.AssetConfig(terms.Pricing.Asset)
	if err != nil {
		return err
	}
	if err := info.Terms.CheckAd(terms, cfg); err != nil {
		return err
	}
	for _, g := range terms.Requirements.Gating {
		if g.ID.IsNative() {
			continue
		}
		asset, err := p.l.Asset(g.ID)
		if err != nil {
			return err
		}
		if asset == nil {
			return reverts.Wrap(reverts.ErrTermsGating, "asset %v does not exist", g.ID)
		}
	}
	return a.SetTerms(p.id, sender, terms, pay)
}

// AdConfig sets the manager, live flag and capacity of an ad.
func (p *Platform) AdConfig(sender board.Address, id board.AppID, slot uint64, manager board.Address, live bool, cntDelMax uint64) error {
	if _, err := p.load(StateSet, StateSuspended); err != nil {
		return err
	}
	a, err := p.adOf(sender, slot, id)
	if err != nil {
		return err
	}
	return a.Config(p.id, sender, manager, live, cntDelMax)
}

// AdReady toggles readiness of owner's ad. sender must be the ad manager.
func (p *Platform) AdReady(sender, owner board.Address, id board.AppID, slot uint64, ready bool) error {
	if _, err := p.load(StateSet, StateSuspended); err != nil {
		return err
	}
	a, err := p.adOf(owner, slot, id)
	if err != nil {
		return err
	}
	return a.Ready(p.id, sender, ready)
}

// AdIncome pays the ad's spendable balance of asset to its owner.
func (p *Platform) AdIncome(sender board.Address, id board.AppID, slot uint64, asset board.AssetID) (uint64, error) {
	a, err := p.adOf(sender, slot, id)
	if err != nil {
		return 0, err
	}
	return a.Income(p.id, sender, asset)
}

// AdAssetClose closes an asset holding of the ad.
func (p *Platform) AdAssetClose(sender board.Address, id board.AppID, slot uint64, asset board.AssetID) error {
	a, err := p.adOf(sender, slot, id)
	if err != nil {
		return err
	}
	return a.AssetClose(p.id, sender, asset)
}

// AdDelete deletes the ad and frees its slot.
func (p *Platform) AdDelete(sender board.Address, id board.AppID, slot uint64) error {
	a, err := p.adOf(sender, slot, id)
	if err != nil {
		return err
	}
	if err := a.Delete(p.id, sender); err != nil {
		return err
	}
	if err := p.users.ReleaseSlot(sender, slot, id); err != nil {
		return err
	}
	logger.Info("ad deleted", "ad", id, "owner", sender)
	return nil
}
