// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ad implements the validator ad: a validator's published terms,
// its bounded set of active delegator contracts and its earnings ledger.
package ad

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/contract"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/log"
	"github.com/delegard/delegard/reverts"
)

var logger = log.WithContext("pkg", "ad")

const (
	infoName     = "state"
	infoSize     = 1024
	templateName = "tmpl"
)

// Reserve returns the minimum balance a new ad must be funded with.
func Reserve() uint64 {
	return board.AccountMinBalance + board.RecordReserve(uint64(len(infoName)), infoSize)
}

// TemplateReserve returns the reserve of a template of n bytes.
func TemplateReserve(n uint64) uint64 {
	return board.RecordReserve(uint64(len(templateName)), templateSize(n))
}

// templateSize is the declared size of the template record: the bytes and their rlp header.
func templateSize(n uint64) uint64 {
	return n + 3
}

// Ad is a handle on one validator ad app.
type Ad struct {
	id   board.AppID
	l    *ledger.Ledger
	ctx  *ledger.Context
	info *ledger.Raw[*Info]
}

func bind(l *ledger.Ledger, id board.AppID) *Ad {
	ctx := l.Context(id)
	return &Ad{
		id:   id,
		l:    l,
		ctx:  ctx,
		info: ledger.NewRaw[*Info](ctx, infoName, infoSize),
	}
}

// Create creates an ad app for owner under platform. The caller funds its reserve.
func Create(l *ledger.Ledger, platform board.AppID, owner board.Address) (*Ad, error) {
	id, err := l.CreateApp(ledger.KindAd, platform, owner)
	if err != nil {
		return nil, err
	}
	a := bind(l, id)
	info := &Info{State: StateCreated, Platform: platform, Owner: owner, Manager: owner}
	if err := a.info.Insert(info); err != nil {
		return nil, err
	}
	return a, a.emit("ad_created", map[string]any{"owner": owner})
}

// Open binds an existing ad app.
func Open(l *ledger.Ledger, id board.AppID) (*Ad, error) {
	if _, err := l.AppOfKind(id, ledger.KindAd); err != nil {
		return nil, err
	}
	return bind(l, id), nil
}

// ID returns the app id.
func (a *Ad) ID() board.AppID { return a.id }

// Address returns the app account address.
func (a *Ad) Address() board.Address { return board.AppAddress(a.id) }

// Get returns the stored state.
func (a *Ad) Get() (*Info, error) {
	info, found, err := a.info.Get()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Errorf("ad %v has no state", a.id)
	}
	return info, nil
}

// load returns the state after checking caller is the owning platform and the
// ad is in one of states.
func (a *Ad) load(caller board.AppID, states ...State) (*Info, error) {
	info, err := a.Get()
	if err != nil {
		return nil, err
	}
	if caller != info.Platform {
		return nil, reverts.Wrap(reverts.ErrCalledByNotCreator, "ad %v created by %v, called by %v", a.id, info.Platform, caller)
	}
	if len(states) > 0 && !slices.Contains(states, info.State) {
		return nil, reverts.Wrap(reverts.ErrState, "ad %v is %v", a.id, info.State)
	}
	return info, nil
}

// loadOwned is load plus a check that sender owns the ad.
func (a *Ad) loadOwned(caller board.AppID, sender board.Address, states ...State) (*Info, error) {
	info, err := a.load(caller, states...)
	if err != nil {
		return nil, err
	}
	if sender != info.Owner {
		return nil, reverts.Wrap(reverts.ErrCalledByNotValOwner, "%v", sender)
	}
	return info, nil
}

func (a *Ad) save(info *Info) error {
	return a.info.Update(info)
}

func (a *Ad) emit(name string, data any) error {
	return a.l.Emit(a.id, name, data)
}

func (a *Ad) template(info *Info) *ledger.Raw[[]byte] {
	return ledger.NewRaw[[]byte](a.ctx, templateName, templateSize(info.TemplateLen))
}

// Template returns the loaded template bytes.
func (a *Ad) Template() ([]byte, error) {
	info, err := a.Get()
	if err != nil {
		return nil, err
	}
	b, _, err := a.template(info).Get()
	return b, err
}

// TemplateLoad copies the delegator contract template into the ad, chunk by
// chunk, and verifies it against hash. pay covers the template reserve.
func (a *Ad) TemplateLoad(caller board.AppID, sender board.Address, template []byte, hash board.Bytes32, pay *ledger.Payment) error {
	info, err := a.loadOwned(caller, sender, StateCreated)
	if err != nil {
		return err
	}
	if err := a.templateInit(info, uint64(len(template))); err != nil {
		return err
	}
	if err := ledger.CheckPayment(pay, a.Address(), board.NativeAsset, TemplateReserve(info.TemplateLen)); err != nil {
		return err
	}
	for off := 0; off < len(template); off += board.TemplateChunkSize {
		end := min(off+board.TemplateChunkSize, len(template))
		if err := a.templateChunk(info, uint64(off), template[off:end]); err != nil {
			return err
		}
	}
	return a.templateEnd(info, hash)
}

func (a *Ad) templateInit(info *Info, n uint64) error {
	if n == 0 {
		return reverts.Wrap(reverts.ErrTemplateEmpty, "ad %v", a.id)
	}
	if n > board.TemplateMaxSize {
		return reverts.Wrap(reverts.ErrTemplateTooLarge, "%d bytes", n)
	}
	info.TemplateLen = n
	info.State = StateTemplateLoad
	if err := a.template(info).Insert(make([]byte, n)); err != nil {
		return err
	}
	return a.save(info)
}

func (a *Ad) templateChunk(info *Info, off uint64, chunk []byte) error {
	rec := a.template(info)
	buf, _, err := rec.Get()
	if err != nil {
		return err
	}
	if off+uint64(len(chunk)) > uint64(len(buf)) {
		return reverts.Wrap(reverts.ErrTemplateTooLarge, "chunk at %d overruns %d bytes", off, len(buf))
	}
	copy(buf[off:], chunk)
	return rec.Update(buf)
}

func (a *Ad) templateEnd(info *Info, hash board.Bytes32) error {
	buf, _, err := a.template(info).Get()
	if err != nil {
		return err
	}
	if got := board.Blake2b(buf); got != hash {
		return reverts.Wrap(reverts.ErrTemplateMismatch, "loaded %v, expected %v", got, hash)
	}
	info.Template = hash
	info.State = StateTemplateLoaded
	if err := a.save(info); err != nil {
		return err
	}
	return a.emit("ad_template_loaded", map[string]any{"hash": hash, "len": info.TemplateLen})
}

// SetTerms replaces the terms, which the platform has validated. The pricing
// asset is opted in; pay covers the resulting reserve increase.
func (a *Ad) SetTerms(caller board.AppID, sender board.Address, terms *Terms, pay *ledger.Payment) error {
	info, err := a.loadOwned(caller, sender, StateTemplateLoaded, StateSet, StateReady, StateNotReady, StateNotLive)
	if err != nil {
		return err
	}
	before, err := a.l.MinBalance(a.Address())
	if err != nil {
		return err
	}
	asset := terms.Pricing.Asset
	if !asset.IsNative() {
		if err := a.l.OptIn(a.Address(), asset); err != nil {
			return err
		}
	}
	if info.earnings(asset) == nil {
		if len(info.Earnings) >= board.EarningsAssetsMax {
			return reverts.Wrap(reverts.ErrNoFreeSlot, "ad %v already earns %d assets", a.id, len(info.Earnings))
		}
		info.Earnings = append(info.Earnings, Earnings{Asset: asset})
	}
	after, err := a.l.MinBalance(a.Address())
	if err != nil {
		return err
	}
	if err := ledger.CheckPayment(pay, a.Address(), board.NativeAsset, after-before); err != nil {
		return err
	}
	info.Terms = *terms
	if info.State == StateTemplateLoaded {
		info.State = StateSet
	}
	if err := a.save(info); err != nil {
		return err
	}
	logger.Debug("ad terms set", "id", a.id, "asset", asset)
	return a.emit("ad_terms", terms)
}

// Config sets the manager, the live flag and the contract capacity.
func (a *Ad) Config(caller board.AppID, sender, manager board.Address, live bool, cntDelMax uint64) error {
	info, err := a.loadOwned(caller, sender, StateSet, StateReady, StateNotReady, StateNotLive)
	if err != nil {
		return err
	}
	if manager.IsZero() {
		return reverts.Wrap(reverts.ErrBadArgs, "zero manager")
	}
	if cntDelMax > board.DelegatorsMax || cntDelMax < info.CntDel {
		return reverts.Wrap(reverts.ErrTermsCapacity, "capacity %d, max %d, active %d", cntDelMax, board.DelegatorsMax, info.CntDel)
	}
	info.Manager = manager
	info.CntDelMax = cntDelMax
	switch {
	case !live:
		info.State = StateNotLive
	case info.State == StateNotLive:
		info.State = StateNotReady
	}
	if err := a.save(info); err != nil {
		return err
	}
	return a.emit("ad_config", map[string]any{"manager": manager, "live": live, "cntDelMax": cntDelMax})
}

// Ready toggles whether the ad accepts new contracts. Only the manager may toggle.
func (a *Ad) Ready(caller board.AppID, sender board.Address, ready bool) error {
	info, err := a.load(caller, StateSet, StateReady, StateNotReady)
	if err != nil {
		return err
	}
	if sender != info.Manager {
		return reverts.Wrap(reverts.ErrCalledByNotValManager, "%v", sender)
	}
	info.State = StateNotReady
	if ready {
		info.State = StateReady
	}
	if err := a.save(info); err != nil {
		return err
	}
	return a.emit("ad_ready", map[string]any{"ready": ready})
}

// Income pays everything the ad can spend of asset to the owner.
func (a *Ad) Income(caller board.AppID, sender board.Address, asset board.AssetID) (uint64, error) {
	info, err := a.loadOwned(caller, sender)
	if err != nil {
		return 0, err
	}
	amount, err := a.l.Available(a.Address(), asset)
	if err != nil {
		return 0, err
	}
	if err := a.l.Transfer(a.Address(), info.Owner, asset, amount); err != nil {
		return 0, err
	}
	if e := info.earnings(asset); e != nil {
		e.Withdrawn += amount
		if err := a.save(info); err != nil {
			return 0, err
		}
	}
	logger.Debug("ad income", "id", a.id, "asset", asset, "amount", amount)
	return amount, a.emit("ad_income", map[string]any{"asset": asset, "amount": amount})
}

// AssetClose closes the holding of an asset no longer priced in nor escrowed by
// any active contract. Its balance and reserve go to the owner.
func (a *Ad) AssetClose(caller board.AppID, sender board.Address, asset board.AssetID) error {
	info, err := a.loadOwned(caller, sender)
	if err != nil {
		return err
	}
	if asset.IsNative() {
		return reverts.Wrap(reverts.ErrNativeAsset, "cannot close native asset")
	}
	if info.State.configured() && info.Terms.Pricing.Asset == asset {
		return reverts.Wrap(reverts.ErrAssetInUse, "asset %v is the pricing asset", asset)
	}
	if err := a.each(info, func(c *contract.Contract, d *contract.Delegation) error {
		if d.General.Asset == asset {
			return reverts.Wrap(reverts.ErrAssetInUse, "asset %v escrowed by contract %v", asset, c.ID())
		}
		return nil
	}); err != nil {
		return err
	}
	ok, err := a.l.IsOptedIn(a.Address(), asset)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Wrap(reverts.ErrNotOptedIn, "ad %v does not hold %v", a.id, asset)
	}
	if err := a.l.AssetCloseOut(a.Address(), asset, info.Owner); err != nil {
		return err
	}
	if err := a.l.Transfer(a.Address(), info.Owner, board.NativeAsset, board.AssetReserve); err != nil {
		return err
	}
	info.Earnings = slices.DeleteFunc(info.Earnings, func(e Earnings) bool { return e.Asset == asset })
	if err := a.save(info); err != nil {
		return err
	}
	return a.emit("ad_asset_closed", map[string]any{"asset": asset})
}

// Delete removes an ad with no remaining contracts. Assets, the reserve and
// all remaining funds go to the owner.
func (a *Ad) Delete(caller board.AppID, sender board.Address) error {
	info, err := a.loadOwned(caller, sender)
	if err != nil {
		return err
	}
	if info.CntDel != 0 || info.CntOpen != 0 {
		return reverts.Wrap(reverts.ErrAdHasDelegators, "%d active, %d not deleted", info.CntDel, info.CntOpen)
	}
	for _, e := range info.Earnings {
		if e.Asset.IsNative() {
			continue
		}
		if err := a.l.AssetCloseOut(a.Address(), e.Asset, info.Owner); err != nil {
			return err
		}
	}
	if info.TemplateLen > 0 {
		if err := a.template(info).Delete(); err != nil {
			return err
		}
	}
	if err := a.info.Delete(); err != nil {
		return err
	}
	if err := a.l.CloseOut(a.Address(), info.Owner); err != nil {
		return err
	}
	if err := a.l.DeleteApp(a.id); err != nil {
		return err
	}
	logger.Debug("ad deleted", "id", a.id, "owner", info.Owner)
	return a.emit("ad_deleted", nil)
}
