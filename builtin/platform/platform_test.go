// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/ad"
	"github.com/delegard/delegard/builtin/contract"
	"github.com/delegard/delegard/builtin/fees"
	"github.com/delegard/delegard/builtin/registry"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/lvldb"
	"github.com/delegard/delegard/reverts"
	"github.com/delegard/delegard/test/datagen"
)

type fixture struct {
	l           *ledger.Ledger
	p           *Platform
	asset       board.AssetID
	manager     board.Address
	issuer      board.Address
	val         board.Address
	valManager  board.Address
	del         board.Address
	beneficiary board.Address
	partner     board.Address
	template    []byte
}

func testTerms() *Terms {
	return &Terms{
		Fees: Fees{ValRegister: 1_000, DelRegister: 500, AdCreate: 2_000, ContractCreate: 300, CommissionMin: 50_000},
		Limits: Limits{
			RoundsDurationMin: 100, RoundsDurationMax: 100_000,
			RoundsSetupMax: 50, RoundsConfirmMax: 50,
			StakeMaxMin: 1_000, StakeMaxMax: 100_000_000, StakeGratisMax: 200_000,
			CntBreachMax: 5, RoundsBreachMin: 5,
			ExpirySoonWindow: 100, ExpirySoonPeriod: 20,
		},
	}
}

func (f *fixture) adTerms() *ad.Terms {
	return &ad.Terms{
		Timing:   ad.Timing{RoundsSetup: 10, RoundsConfirm: 10, RoundsDurationMin: 100, RoundsDurationMax: 10_000},
		Pricing:  ad.Pricing{Commission: 100_000, FeeRoundMin: 1_000, FeeRoundVar: 10, FeeSetup: 500, Asset: f.asset},
		Stake:    ad.Stake{StakeMax: 10_000_000, StakeGratis: 100_000},
		Warnings: ad.Warnings{CntBreachMax: 3, RoundsBreach: 10},
	}
}

// pay applies a payment the way a call carries it.
func (f *fixture) pay(t *testing.T, from, to board.Address, asset board.AssetID, amount uint64) *ledger.Payment {
	require.NoError(t, f.l.Transfer(from, to, asset, amount))
	return &ledger.Payment{Sender: from, Receiver: to, Asset: asset, Amount: amount}
}

func (f *fixture) try(fn func() error) error {
	cp := f.l.Checkpoint()
	err := fn()
	if err != nil {
		f.l.RevertTo(cp)
	}
	return err
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	l, err := ledger.New(db, ledger.Options{})
	require.NoError(t, err)

	f := &fixture{
		l:           l,
		manager:     datagen.RandAddress(),
		issuer:      datagen.RandAddress(),
		val:         datagen.RandAddress(),
		valManager:  datagen.RandAddress(),
		del:         datagen.RandAddress(),
		beneficiary: datagen.RandAddress(),
		partner:     datagen.RandAddress(),
		template:    make([]byte, 2500),
	}
	for i := range f.template {
		f.template[i] = byte(i * 7)
	}
	for _, addr := range []board.Address{f.manager, f.issuer, f.val, f.valManager, f.del, f.partner} {
		require.NoError(t, l.Mint(addr, 100_000_000))
	}
	require.NoError(t, l.Mint(f.beneficiary, 1_000_000))
	f.asset, err = l.CreateAsset(f.issuer, f.issuer, 1_000_000_000, "USDX")
	require.NoError(t, err)
	for _, addr := range []board.Address{f.del, f.partner} {
		require.NoError(t, l.OptIn(addr, f.asset))
	}
	require.NoError(t, l.Transfer(f.issuer, f.del, f.asset, 1_000_000))

	f.p, err = Deploy(l, f.manager)
	require.NoError(t, err)
	require.NoError(t, l.CheckReserves())
	return f
}

// configure brings the platform to SET with a template, the test asset and a partner.
func (f *fixture) configure(t *testing.T) {
	require.NoError(t, f.p.Config(f.manager, testTerms()))
	pay := f.pay(t, f.manager, f.p.Address(), board.NativeAsset, ad.TemplateReserve(uint64(len(f.template))))
	require.NoError(t, f.p.TemplateSet(f.manager, f.template, pay))

	cfg := &AssetConfig{Accepted: true, FeeRoundMinMin: 100, FeeRoundVarMin: 1, FeeSetupMin: 100}
	pay = f.pay(t, f.manager, f.p.Address(), board.NativeAsset, AssetConfigReserve())
	require.NoError(t, f.p.AssetConfigSet(f.manager, f.asset, cfg, pay))

	pay = f.pay(t, f.manager, f.p.Address(), board.NativeAsset, PartnerReserve())
	require.NoError(t, f.p.PartnerCreate(f.manager, f.partner, &Partner{CommissionSetup: 100_000, CommissionRound: 50_000}, pay))
	require.NoError(t, f.l.CheckReserves())
}

func (f *fixture) register(t *testing.T, addr board.Address, role registry.Role) {
	info, err := f.p.Get()
	require.NoError(t, err)
	amount := info.Terms.RegisterFee(role) + f.p.Users().UserReserve(addr)
	require.NoError(t, f.p.UserCreate(addr, role, f.pay(t, addr, f.p.Address(), board.NativeAsset, amount)))
}

// publish registers the validator and brings an ad at slot 0 to READY.
func (f *fixture) publish(t *testing.T) board.AppID {
	f.register(t, f.val, registry.RoleValidator)
	pay := f.pay(t, f.val, f.p.Address(), board.NativeAsset, testTerms().Fees.AdCreate+ad.Reserve())
	id, err := f.p.AdCreate(f.val, 0, pay)
	require.NoError(t, err)
	adAddr := board.AppAddress(id)

	pay = f.pay(t, f.val, adAddr, board.NativeAsset, ad.TemplateReserve(uint64(len(f.template))))
	require.NoError(t, f.p.AdTemplateLoad(f.val, id, 0, pay))
	pay = f.pay(t, f.val, adAddr, board.NativeAsset, board.AssetReserve)
	require.NoError(t, f.p.AdTerms(f.val, id, 0, f.adTerms(), pay))
	require.NoError(t, f.p.AdConfig(f.val, id, 0, f.valManager, true, 5))
	require.NoError(t, f.p.AdReady(f.valManager, f.val, id, 0, true))
	require.NoError(t, f.l.CheckReserves())
	return id
}

func (f *fixture) createArgs(t *testing.T, adID board.AppID, slot uint64) *ContractCreateArgs {
	a, err := ad.Open(f.l, adID)
	require.NoError(t, err)
	info, err := a.Get()
	require.NoError(t, err)
	hash, err := info.Terms.Hash()
	require.NoError(t, err)
	return &ContractCreateArgs{
		Beneficiary:  f.beneficiary,
		Duration:     1000,
		StakeMax:     5_000_000,
		AdRef:        AdRef{Owner: f.val, Ad: adID, Slot: 0},
		ContractSlot: slot,
		TermsHash:    hash,
		Partner:      f.partner,
	}
}

func (f *fixture) createContract(t *testing.T, args *ContractCreateArgs, escrowAmount uint64) (board.AppID, error) {
	escrow := f.pay(t, f.del, f.p.Address(), f.asset, escrowAmount)
	service := f.pay(t, f.del, f.p.Address(), board.NativeAsset, testTerms().Fees.ContractCreate+contract.Reserve(f.asset))
	return f.p.ContractCreate(f.del, args, escrow, service)
}

func (f *fixture) balance(t *testing.T, addr board.Address, asset board.AssetID) uint64 {
	bal, err := f.l.Balance(addr, asset)
	require.NoError(t, err)
	return bal
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.configure(t)
	adID := f.publish(t)
	f.register(t, f.del, registry.RoleDelegator)

	// 500 + 50 setup, 1000 + 50 operational over 1000 rounds
	sched := fees.NewSchedule(500, fees.RoundRate(1_000, 10, 5_000_000), 100_000, 50_000)
	escrow := sched.Escrow(1000, 0)
	assert.Equal(t, uint64(1_600), escrow)

	id, err := f.createContract(t, f.createArgs(t, adID, 3), escrow)
	require.NoError(t, err)
	require.NoError(t, f.l.CheckReserves())
	u, err := f.p.Users().User(f.del)
	require.NoError(t, err)
	assert.Equal(t, id, u.Slot(3))

	c, err := contract.Open(f.l, id)
	require.NoError(t, err)
	d, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, f.del, d.Manager)
	assert.Equal(t, uint64(5_500_000), d.Balance.StakeMax)

	ref := &AdRef{Owner: f.val, Ad: adID, Slot: 0}
	cref := &ContractRef{Contract: id, Slot: 3}
	keys := &contract.KeyMaterial{
		Beneficiary: f.beneficiary,
		Keys:        ledger.Keys{VoteKey: datagen.RandomHash(), VoteFirst: d.RoundStart, VoteLast: d.RoundEnd},
	}
	_, err = f.p.KeysSubmit(f.val, ref, id, keys)
	assert.ErrorIs(t, err, reverts.ErrCalledByNotValManager)
	_, err = f.p.KeysSubmit(f.valManager, ref, id, keys)
	require.NoError(t, err)

	require.NoError(t, f.l.RegisterKeys(f.beneficiary, &keys.Keys, true))
	_, err = f.p.KeysConfirm(f.del, ref, &ContractRef{Contract: id, Slot: 4})
	assert.ErrorIs(t, err, reverts.ErrSlotMismatch)
	res, err := f.p.KeysConfirm(f.del, ref, cref)
	require.NoError(t, err)
	assert.Equal(t, contract.StateLive, res.State)

	_, err = f.l.AdvanceRound(500)
	require.NoError(t, err)
	_, err = f.p.Trigger(TriggerClaim, ref, id)
	require.NoError(t, err)
	assert.ErrorIs(t, f.p.ReportExpirySoon(ref, id), reverts.ErrTooEarly)

	_, err = f.l.AdvanceRound(450)
	require.NoError(t, err)
	require.NoError(t, f.p.ReportExpirySoon(ref, id))
	assert.ErrorIs(t, f.p.ReportExpirySoon(ref, id), reverts.ErrReportTooSoon)

	_, err = f.l.AdvanceRound(50)
	require.NoError(t, err)
	res, err = f.p.Trigger(TriggerExpired, ref, id)
	require.NoError(t, err)
	assert.Equal(t, contract.StateEndedExpired, res.State)

	assert.Equal(t, uint64(150), f.balance(t, f.p.Address(), f.asset))
	assert.Equal(t, uint64(1_350), f.balance(t, board.AppAddress(adID), f.asset))
	assert.Equal(t, uint64(100), f.balance(t, f.partner, f.asset))

	assert.ErrorIs(t, f.p.UserDelete(f.del), reverts.ErrUserHasApps)
	require.NoError(t, f.p.ContractDelete(f.del, cref))
	before := f.balance(t, f.del, board.NativeAsset)
	require.NoError(t, f.p.UserDelete(f.del))
	assert.Equal(t, f.p.Users().UserReserve(f.del), f.balance(t, f.del, board.NativeAsset)-before)

	amount, err := f.p.Withdraw(f.manager, f.asset, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), amount)
	_, err = f.p.Withdraw(f.val, f.asset, 0)
	assert.ErrorIs(t, err, reverts.ErrCalledByNotPlaManager)

	income, err := f.p.AdIncome(f.val, adID, 0, f.asset)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_350), income)
	require.NoError(t, f.p.AdDelete(f.val, adID, 0))
	require.NoError(t, f.p.UserDelete(f.val))
	require.NoError(t, f.l.CheckReserves())
}

func TestLifecycleGuards(t *testing.T) {
	f := newFixture(t)
	err := f.try(func() error {
		return f.p.UserCreate(f.val, registry.RoleValidator, f.pay(t, f.val, f.p.Address(), board.NativeAsset, 1))
	})
	assert.ErrorIs(t, err, reverts.ErrState)
	assert.ErrorIs(t, f.p.Config(f.val, testTerms()), reverts.ErrCalledByNotPlaManager)
	assert.ErrorIs(t, f.p.Suspend(f.manager), reverts.ErrState)

	f.configure(t)
	adID := f.publish(t)
	f.register(t, f.del, registry.RoleDelegator)
	sched := fees.NewSchedule(500, 1_000, 100_000, 50_000)
	id, err := f.createContract(t, f.createArgs(t, adID, 0), sched.Escrow(1000, 0))
	require.NoError(t, err)

	require.NoError(t, f.p.Suspend(f.manager))
	err = f.try(func() error {
		_, err := f.createContract(t, f.createArgs(t, adID, 1), sched.Escrow(1000, 0))
		return err
	})
	assert.ErrorIs(t, err, reverts.ErrState)
	err = f.try(func() error {
		_, err := f.p.AdCreate(f.val, 1, f.pay(t, f.val, f.p.Address(), board.NativeAsset, 2_000+ad.Reserve()))
		return err
	})
	assert.ErrorIs(t, err, reverts.ErrState)

	// existing contracts still progress
	_, err = f.l.AdvanceRound(11)
	require.NoError(t, err)
	res, err := f.p.Trigger(TriggerKeysNotSubmitted, &AdRef{Owner: f.val, Ad: adID, Slot: 0}, id)
	require.NoError(t, err)
	assert.Equal(t, contract.StateEndedNotSubmitted, res.State)

	require.NoError(t, f.p.Resume(f.manager))
	require.NoError(t, f.p.Retire(f.manager))
	assert.ErrorIs(t, f.p.Config(f.manager, testTerms()), reverts.ErrState)
	assert.ErrorIs(t, f.p.Resume(f.manager), reverts.ErrState)
	assert.ErrorIs(t, f.p.AdTerms(f.val, adID, 0, f.adTerms(), nil), reverts.ErrState)
	assert.ErrorIs(t, f.p.AdConfig(f.val, adID, 0, f.val, false, 1), reverts.ErrState)
	assert.ErrorIs(t, f.p.AdReady(f.val, f.val, adID, 0, false), reverts.ErrState)

	info, err := f.p.Get()
	require.NoError(t, err)
	assert.Equal(t, StateRetired, info.State)
}

func TestReferenceChecks(t *testing.T) {
	f := newFixture(t)
	f.configure(t)
	adID := f.publish(t)
	f.register(t, f.del, registry.RoleDelegator)

	other := datagen.RandAddress()
	require.NoError(t, f.l.Mint(other, 10_000_000))
	f.register(t, other, registry.RoleValidator)

	// another validator cannot reach the ad through its own slot table
	assert.ErrorIs(t, f.p.AdConfig(other, adID, 0, other, true, 5), reverts.ErrSlotMismatch)
	assert.ErrorIs(t, f.p.AdConfig(f.val, adID, 1, f.val, true, 5), reverts.ErrSlotMismatch)
	assert.ErrorIs(t, f.p.AdConfig(f.val, adID, board.UserSlots, f.val, true, 5), reverts.ErrSlotOutOfRange)
	assert.ErrorIs(t, f.p.AdConfig(datagen.RandAddress(), adID, 0, f.val, true, 5), reverts.ErrUserNotRegistered)

	err := f.try(func() error {
		_, err := f.p.AdCreate(f.del, 0, f.pay(t, f.del, f.p.Address(), board.NativeAsset, 2_000+ad.Reserve()))
		return err
	})
	assert.ErrorIs(t, err, reverts.ErrUserRole)

	err = f.try(func() error {
		_, err := f.p.AdCreate(f.val, 0, f.pay(t, f.val, f.p.Address(), board.NativeAsset, 2_000+ad.Reserve()))
		return err
	})
	assert.ErrorIs(t, err, reverts.ErrSlotTaken)

	sched := fees.NewSchedule(500, 1_000, 100_000, 50_000)
	err = f.try(func() error {
		args := f.createArgs(t, adID, 0)
		args.Partner = datagen.RandAddress()
		_, err := f.createContract(t, args, sched.Escrow(1000, 0))
		return err
	})
	assert.ErrorIs(t, err, reverts.ErrPartnerNotFound)

	err = f.try(func() error {
		args := f.createArgs(t, adID, 0)
		args.Owner = other
		_, err := f.createContract(t, args, sched.Escrow(1000, 0))
		return err
	})
	assert.ErrorIs(t, err, reverts.ErrSlotMismatch)

	_, err = f.p.Trigger(TriggerClaim, &AdRef{Owner: f.val, Ad: adID, Slot: 0}, adID)
	assert.ErrorIs(t, err, reverts.ErrAppNotFound)
	_, err = f.p.Trigger("nope", &AdRef{Owner: f.val, Ad: adID, Slot: 0}, adID)
	assert.ErrorIs(t, err, reverts.ErrUnknownMethod)
}

func TestContractCreatePayments(t *testing.T) {
	f := newFixture(t)
	f.configure(t)
	adID := f.publish(t)
	f.register(t, f.del, registry.RoleDelegator)
	escrow := fees.NewSchedule(500, 1_000, 100_000, 50_000).Escrow(1000, 0)
	args := f.createArgs(t, adID, 0)

	err := f.try(func() error {
		_, err := f.createContract(t, args, escrow+1)
		return err
	})
	assert.ErrorIs(t, err, reverts.ErrAmount)

	err = f.try(func() error {
		e := f.pay(t, f.del, f.p.Address(), board.NativeAsset, escrow)
		s := f.pay(t, f.del, f.p.Address(), board.NativeAsset, 300+contract.Reserve(f.asset))
		_, err := f.p.ContractCreate(f.del, args, e, s)
		return err
	})
	assert.ErrorIs(t, err, reverts.ErrAssetID)

	err = f.try(func() error {
		e := f.pay(t, f.del, f.p.Address(), f.asset, escrow)
		s := f.pay(t, f.del, f.p.Address(), board.NativeAsset, contract.Reserve(f.asset))
		_, err := f.p.ContractCreate(f.del, args, e, s)
		return err
	})
	assert.ErrorIs(t, err, reverts.ErrAmount)

	err = f.try(func() error {
		a := *args
		a.TermsHash = datagen.RandomHash()
		_, err := f.createContract(t, &a, escrow)
		return err
	})
	assert.ErrorIs(t, err, reverts.ErrTermsHash)

	_, err = f.createContract(t, args, escrow)
	require.NoError(t, err)
}

func TestTemplateReserve(t *testing.T) {
	f := newFixture(t)
	big := make([]byte, 100)
	pay := f.pay(t, f.manager, f.p.Address(), board.NativeAsset, ad.TemplateReserve(100))
	require.NoError(t, f.p.TemplateSet(f.manager, big, pay))

	before := f.balance(t, f.manager, board.NativeAsset)
	require.NoError(t, f.p.TemplateSet(f.manager, make([]byte, 50), nil))
	assert.Equal(t, 50*board.RecordReservePerByte, f.balance(t, f.manager, board.NativeAsset)-before)

	got, err := f.p.Template()
	require.NoError(t, err)
	assert.Len(t, got, 50)

	assert.ErrorIs(t, f.p.TemplateSet(f.manager, nil, nil), reverts.ErrTemplateEmpty)
	assert.ErrorIs(t, f.p.TemplateSet(f.manager, make([]byte, board.TemplateMaxSize+1), nil), reverts.ErrTemplateTooLarge)
}

func TestPartners(t *testing.T) {
	f := newFixture(t)
	reserve := PartnerReserve()

	err := f.try(func() error {
		pay := f.pay(t, f.manager, f.p.Address(), board.NativeAsset, reserve-1)
		return f.p.PartnerCreate(f.manager, f.partner, &Partner{}, pay)
	})
	assert.ErrorIs(t, err, reverts.ErrAmount)
	assert.ErrorIs(t, f.p.PartnerCreate(f.manager, f.partner, &Partner{CommissionSetup: board.PPMMax + 1}, nil), reverts.ErrTermsCommission)

	pay := f.pay(t, f.manager, f.p.Address(), board.NativeAsset, reserve)
	require.NoError(t, f.p.PartnerCreate(f.manager, f.partner, &Partner{CommissionSetup: 10}, pay))
	err = f.try(func() error {
		return f.p.PartnerCreate(f.manager, f.partner, &Partner{}, f.pay(t, f.manager, f.p.Address(), board.NativeAsset, reserve))
	})
	assert.ErrorIs(t, err, reverts.ErrPartnerExists)

	require.NoError(t, f.p.PartnerUpdate(f.manager, f.partner, &Partner{CommissionSetup: 20}))
	got, err := f.p.Partner(f.partner)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), got.CommissionSetup)
	assert.ErrorIs(t, f.p.PartnerUpdate(f.manager, f.val, &Partner{}), reverts.ErrPartnerNotFound)

	before := f.balance(t, f.manager, board.NativeAsset)
	require.NoError(t, f.p.PartnerDelete(f.manager, f.partner))
	assert.Equal(t, reserve, f.balance(t, f.manager, board.NativeAsset)-before)
	assert.ErrorIs(t, f.p.PartnerDelete(f.manager, f.partner), reverts.ErrPartnerNotFound)
}

func TestCheckAd(t *testing.T) {
	f := &fixture{asset: 7}
	terms := testTerms()
	cfg := &AssetConfig{Accepted: true, FeeRoundMinMin: 100, FeeRoundVarMin: 1, FeeSetupMin: 100}
	require.NoError(t, terms.CheckAd(f.adTerms(), cfg))

	for _, c := range []struct {
		name   string
		mutate func(*ad.Terms)
		cfg    *AssetConfig
		want   error
	}{
		{"commission below minimum", func(a *ad.Terms) { a.Pricing.Commission = 49_999 }, cfg, reverts.ErrTermsCommission},
		{"commission above max", func(a *ad.Terms) { a.Pricing.Commission = board.PPMMax + 1 }, cfg, reverts.ErrTermsCommission},
		{"asset not listed", func(*ad.Terms) {}, nil, reverts.ErrAssetNotAccepted},
		{"asset not accepted", func(*ad.Terms) {}, &AssetConfig{}, reverts.ErrAssetNotAccepted},
		{"setup fee floor", func(a *ad.Terms) { a.Pricing.FeeSetup = 99 }, cfg, reverts.ErrTermsPrice},
		{"round fee floor", func(a *ad.Terms) { a.Pricing.FeeRoundMin = 99 }, cfg, reverts.ErrTermsPrice},
		{"duration below", func(a *ad.Terms) { a.Timing.RoundsDurationMin = 99 }, cfg, reverts.ErrTermsDuration},
		{"duration above", func(a *ad.Terms) { a.Timing.RoundsDurationMax = 100_001 }, cfg, reverts.ErrTermsDuration},
		{"duration inverted", func(a *ad.Terms) { a.Timing.RoundsDurationMin = 20_000 }, cfg, reverts.ErrTermsDuration},
		{"setup window", func(a *ad.Terms) { a.Timing.RoundsSetup = 51 }, cfg, reverts.ErrTermsTiming},
		{"stake ceiling", func(a *ad.Terms) { a.Stake.StakeMax = 999 }, cfg, reverts.ErrTermsStake},
		{"gratis", func(a *ad.Terms) { a.Stake.StakeGratis = 200_001 }, cfg, reverts.ErrTermsStake},
		{"no breaches", func(a *ad.Terms) { a.Warnings.CntBreachMax = 0 }, cfg, reverts.ErrTermsWarnings},
		{"breach spacing", func(a *ad.Terms) { a.Warnings.RoundsBreach = 4 }, cfg, reverts.ErrTermsWarnings},
		{"native gating", func(a *ad.Terms) { a.Requirements.Gating[0].Min = 1 }, cfg, reverts.ErrTermsGating},
		{"duplicate gating", func(a *ad.Terms) {
			a.Requirements.Gating[0] = contract.GatingAsset{ID: 3, Min: 1}
			a.Requirements.Gating[1] = contract.GatingAsset{ID: 3, Min: 2}
		}, cfg, reverts.ErrTermsGating},
	} {
		t.Run(c.name, func(t *testing.T) {
			a := f.adTerms()
			c.mutate(a)
			assert.ErrorIs(t, terms.CheckAd(a, c.cfg), c.want)
		})
	}
}

func TestValidateTerms(t *testing.T) {
	terms := testTerms()
	require.NoError(t, terms.Validate())

	terms.Limits.RoundsDurationMin = terms.Limits.RoundsDurationMax + 1
	assert.ErrorIs(t, terms.Validate(), reverts.ErrTermsDuration)

	terms = testTerms()
	terms.Limits.StakeMaxMin = terms.Limits.StakeMaxMax + 1
	assert.ErrorIs(t, terms.Validate(), reverts.ErrTermsStake)

	terms = testTerms()
	terms.Fees.CommissionMin = board.PPMMax + 1
	assert.ErrorIs(t, terms.Validate(), reverts.ErrTermsCommission)
}
