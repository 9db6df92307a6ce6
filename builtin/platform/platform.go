// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package platform implements the platform registry: the global terms, the
// asset allow-list, the partner table and the user registry. Every call on a
// validator ad or delegator contract enters through it.
package platform

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/registry"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/log"
	"github.com/delegard/delegard/reverts"
)

var logger = log.WithContext("pkg", "platform")

const (
	infoName     = "state"
	infoSize     = 320
	templateName = "tmpl"
	assetSize    = 48
	partnerSize  = 32
)

// Platform is a handle on the platform app.
type Platform struct {
	id       board.AppID
	l        *ledger.Ledger
	ctx      *ledger.Context
	info     *ledger.Raw[*Info]
	assets   *ledger.Mapping[board.AssetID, *AssetConfig]
	partners *ledger.Mapping[board.Address, *Partner]
	users    *registry.Registry
}

func bind(l *ledger.Ledger, id board.AppID) *Platform {
	ctx := l.Context(id)
	return &Platform{
		id:       id,
		l:        l,
		ctx:      ctx,
		info:     ledger.NewRaw[*Info](ctx, infoName, infoSize),
		assets:   ledger.NewMapping[board.AssetID, *AssetConfig](ctx, "asset", assetSize),
		partners: ledger.NewMapping[board.Address, *Partner](ctx, "partner", partnerSize),
		users:    registry.New(ctx),
	}
}

// Deploy creates the platform with sender as manager. The sender funds its
// minimum balance.
func Deploy(l *ledger.Ledger, sender board.Address) (*Platform, error) {
	id, err := l.CreateApp(ledger.KindPlatform, 0, sender)
	if err != nil {
		return nil, err
	}
	p := bind(l, id)
	if err := p.info.Insert(&Info{State: StateDeployed, Manager: sender}); err != nil {
		return nil, err
	}
	if err := p.users.Init(); err != nil {
		return nil, err
	}
	need, err := l.MinBalance(p.Address())
	if err != nil {
		return nil, err
	}
	if err := l.Transfer(sender, p.Address(), board.NativeAsset, need); err != nil {
		return nil, err
	}
	logger.Info("platform deployed", "id", id, "manager", sender)
	return p, p.emit("platform_deployed", map[string]any{"manager": sender})
}

// AssetConfigReserve is the storage reserve of one accepted-asset record
// plus the platform's opt-in to the asset.
func AssetConfigReserve() uint64 {
	return board.RecordReserve(uint64(len("asset")+8), assetSize) + board.AssetReserve
}

// PartnerReserve is the storage reserve of one partner record.
func PartnerReserve() uint64 {
	return board.RecordReserve(uint64(len("partner")+20), partnerSize)
}

// Open binds an existing platform app.
func Open(l *ledger.Ledger, id board.AppID) (*Platform, error) {
	if _, err := l.AppOfKind(id, ledger.KindPlatform); err != nil {
		return nil, err
	}
	return bind(l, id), nil
}

// ID returns the app id.
func (p *Platform) ID() board.AppID { return p.id }

// Address returns the app account address.
func (p *Platform) Address() board.Address { return board.AppAddress(p.id) }

// Users returns the user registry.
func (p *Platform) Users() *registry.Registry { return p.users }

// Get returns the stored state.
func (p *Platform) Get() (*Info, error) {
	info, found, err := p.info.Get()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Errorf("platform %v has no state", p.id)
	}
	return info, nil
}

// AssetConfig returns the allow-list entry of asset, or nil.
func (p *Platform) AssetConfig(asset board.AssetID) (*AssetConfig, error) {
	cfg, found, err := p.assets.Get(asset)
	if err != nil || !found {
		return nil, err
	}
	return cfg, nil
}

// Partner returns the partner entry, or nil.
func (p *Platform) Partner(addr board.Address) (*Partner, error) {
	partner, found, err := p.partners.Get(addr)
	if err != nil || !found {
		return nil, err
	}
	return partner, nil
}

func (p *Platform) template(info *Info) *ledger.Raw[[]byte] {
	return ledger.NewRaw[[]byte](p.ctx, templateName, info.TemplateLen+3)
}

// Template returns the delegator contract template, or nil if none is set.
func (p *Platform) Template() ([]byte, error) {
	info, err := p.Get()
	if err != nil || info.TemplateLen == 0 {
		return nil, err
	}
	b, _, err := p.template(info).Get()
	return b, err
}

func (p *Platform) save(info *Info) error {
	return p.info.Update(info)
}

func (p *Platform) emit(name string, data any) error {
	return p.l.Emit(p.id, name, data)
}

// load returns the state after checking the platform is in one of states.
func (p *Platform) load(states ...State) (*Info, error) {
	info, err := p.Get()
	if err != nil {
		return nil, err
	}
	if len(states) > 0 && !slices.Contains(states, info.State) {
		return nil, reverts.Wrap(reverts.ErrState, "platform is %v", info.State)
	}
	return info, nil
}

// loadManaged is load plus a check that sender is the manager.
func (p *Platform) loadManaged(sender board.Address, states ...State) (*Info, error) {
	info, err := p.load(states...)
	if err != nil {
		return nil, err
	}
	if sender != info.Manager {
		return nil, reverts.Wrap(reverts.ErrCalledByNotPlaManager, "%v", sender)
	}
	return info, nil
}

// settle checks the payment covering a reserve change made since before,
// or refunds a reserve decrease to refundTo.
func (p *Platform) settle(before uint64, pay *ledger.Payment, fee uint64, refundTo board.Address) error {
	after, err := p.l.MinBalance(p.Address())
	if err != nil {
		return err
	}
	if after >= before {
		return ledger.CheckPayment(pay, p.Address(), board.NativeAsset, fee+after-before)
	}
	if err := ledger.CheckPayment(pay, p.Address(), board.NativeAsset, fee); err != nil {
		return err
	}
	return p.l.Transfer(p.Address(), refundTo, board.NativeAsset, before-after)
}

func (p *Platform) minBalance() (uint64, error) {
	return p.l.MinBalance(p.Address())
}

// Config sets the terms. The first call moves the platform to SET.
func (p *Platform) Config(sender board.Address, terms *Terms) error {
	info, err := p.loadManaged(sender, StateDeployed, StateSet, StateSuspended)
	if err != nil {
		return err
	}
	if err := terms.Validate(); err != nil {
		return err
	}
	info.Terms = *terms
	if info.State == StateDeployed {
		info.State = StateSet
	}
	if err := p.save(info); err != nil {
		return err
	}
	logger.Info("platform terms set", "id", p.id)
	return p.emit("platform_config", terms)
}

// Suspend stops new ads and contracts until Resume.
func (p *Platform) Suspend(sender board.Address) error {
	return p.transition(sender, StateSuspended, StateSet)
}

// Resume lifts a suspension.
func (p *Platform) Resume(sender board.Address) error {
	return p.transition(sender, StateSet, StateSuspended)
}

// Retire stops the platform for good.
func (p *Platform) Retire(sender board.Address) error {
	return p.transition(sender, StateRetired, StateSet, StateSuspended)
}

func (p *Platform) transition(sender board.Address, to State, from ...State) error {
	info, err := p.loadManaged(sender, from...)
	if err != nil {
		return err
	}
	info.State = to
	if err := p.save(info); err != nil {
		return err
	}
	logger.Info("platform state changed", "id", p.id, "state", to)
	return p.emit("platform_state", map[string]any{"state": to.String()})
}

// TemplateSet replaces the delegator contract template. pay covers a reserve
// increase; a decrease is refunded to the manager.
func (p *Platform) TemplateSet(sender board.Address, template []byte, pay *ledger.Payment) error {
	info, err := p.loadManaged(sender, StateDeployed, StateSet, StateSuspended)
	if err != nil {
		return err
	}
	if len(template) == 0 {
		return reverts.Wrap(reverts.ErrTemplateEmpty, "platform %v", p.id)
	}
	if len(template) > board.TemplateMaxSize {
		return reverts.Wrap(reverts.ErrTemplateTooLarge, "%d bytes", len(template))
	}
	before, err := p.minBalance()
	if err != nil {
		return err
	}
	if info.TemplateLen > 0 {
		if err := p.template(info).Delete(); err != nil {
			return err
		}
	}
	info.TemplateLen = uint64(len(template))
	info.Template = board.Blake2b(template)
	if err := p.template(info).Insert(template); err != nil {
		return err
	}
	if err := p.settle(before, pay, 0, info.Manager); err != nil {
		return err
	}
	if err := p.save(info); err != nil {
		return err
	}
	return p.emit("platform_template", map[string]any{"hash": info.Template, "len": info.TemplateLen})
}

// AssetConfigSet adds or updates an asset allow-list entry. A new non-native
// entry opts the platform in; pay covers the reserve increase.
func (p *Platform) AssetConfigSet(sender board.Address, asset board.AssetID, cfg *AssetConfig, pay *ledger.Payment) error {
	if _, err := p.loadManaged(sender, StateDeployed, StateSet, StateSuspended); err != nil {
		return err
	}
	if !asset.IsNative() {
		a, err := p.l.Asset(asset)
		if err != nil {
			return err
		}
		if a == nil {
			return reverts.Wrap(reverts.ErrAssetID, "asset %v does not exist", asset)
		}
	}
	before, err := p.minBalance()
	if err != nil {
		return err
	}
	if err := p.assets.Upsert(asset, cfg); err != nil {
		return err
	}
	if !asset.IsNative() {
		if err := p.l.OptIn(p.Address(), asset); err != nil {
			return err
		}
	}
	if err := p.settle(before, pay, 0, sender); err != nil {
		return err
	}
	return p.emit("asset_config", map[string]any{"asset": asset, "config": cfg})
}

// Withdraw pays platform earnings to the manager. A zero amount withdraws
// everything available.
func (p *Platform) Withdraw(sender board.Address, asset board.AssetID, amount uint64) (uint64, error) {
	info, err := p.loadManaged(sender)
	if err != nil {
		return 0, err
	}
	avail, err := p.l.Available(p.Address(), asset)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		amount = avail
	}
	if amount > avail {
		return 0, reverts.Wrap(reverts.ErrInsufficientBalance, "%d available, %d requested", avail, amount)
	}
	if err := p.l.Transfer(p.Address(), info.Manager, asset, amount); err != nil {
		return 0, err
	}
	logger.Info("platform withdrawal", "asset", asset, "amount", amount)
	return amount, p.emit("platform_withdraw", map[string]any{"asset": asset, "amount": amount})
}

func checkPartner(partner *Partner) error {
	if partner.CommissionSetup > board.PPMMax || partner.CommissionRound > board.PPMMax {
		return reverts.Wrap(reverts.ErrTermsCommission, "partner commission above %d", board.PPMMax)
	}
	return nil
}

// PartnerCreate adds a partner. pay covers the record reserve.
func (p *Platform) PartnerCreate(sender, addr board.Address, partner *Partner, pay *ledger.Payment) error {
	if _, err := p.loadManaged(sender, StateDeployed, StateSet, StateSuspended); err != nil {
		return err
	}
	if err := checkPartner(partner); err != nil {
		return err
	}
	before, err := p.minBalance()
	if err != nil {
		return err
	}
	if err := p.partners.Insert(addr, partner); err != nil {
		if errors.Is(err, reverts.ErrRecordExists) {
			return reverts.Wrap(reverts.ErrPartnerExists, "%v", addr)
		}
		return err
	}
	if err := p.settle(before, pay, 0, sender); err != nil {
		return err
	}
	return p.emit("partner_created", map[string]any{"partner": addr})
}

// PartnerUpdate changes a partner's commissions.
func (p *Platform) PartnerUpdate(sender, addr board.Address, partner *Partner) error {
	if _, err := p.loadManaged(sender, StateDeployed, StateSet, StateSuspended); err != nil {
		return err
	}
	if err := checkPartner(partner); err != nil {
		return err
	}
	if _, err := p.requirePartner(addr); err != nil {
		return err
	}
	if err := p.partners.Update(addr, partner); err != nil {
		return err
	}
	return p.emit("partner_updated", map[string]any{"partner": addr})
}

// PartnerDelete removes a partner and refunds the reserve to the manager.
func (p *Platform) PartnerDelete(sender, addr board.Address) error {
	if _, err := p.loadManaged(sender); err != nil {
		return err
	}
	if _, err := p.requirePartner(addr); err != nil {
		return err
	}
	before, err := p.minBalance()
	if err != nil {
		return err
	}
	if err := p.partners.Delete(addr); err != nil {
		return err
	}
	if err := p.settle(before, nil, 0, sender); err != nil {
		return err
	}
	return p.emit("partner_deleted", map[string]any{"partner": addr})
}

func (p *Platform) requirePartner(addr board.Address) (*Partner, error) {
	partner, err := p.Partner(addr)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, reverts.Wrap(reverts.ErrPartnerNotFound, "%v", addr)
	}
	return partner, nil
}
