// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/platform"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/lvldb"
	"github.com/delegard/delegard/reverts"
	"github.com/delegard/delegard/test/datagen"
)

func newLedger(t *testing.T) *ledger.Ledger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	l, err := ledger.New(db, ledger.Options{})
	require.NoError(t, err)
	return l
}

func call(t *testing.T, l *ledger.Ledger, sender board.Address, app board.AppID, name string, args any) (any, error) {
	m := Lookup(name)
	require.NotNil(t, m, name)
	var raw json.RawMessage
	if args != nil {
		var err error
		raw, err = json.Marshal(args)
		require.NoError(t, err)
	}
	return m.Call(NewEnv(l, sender, app, raw, nil))
}

func TestMethods(t *testing.T) {
	names := Methods()
	for _, name := range []string{
		"platform_deploy", "platform_config", "user_create", "ad_create", "ad_template_load",
		"contract_create", "keys_submit", "keys_confirm", "contract_withdraw", "contract_delete",
		"report_expiry_soon", string(platform.TriggerExpired), string(platform.TriggerBreachPay),
		"transfer", "asset_create", "key_register", "round", "ad_get", "contract_get", "user_free_slot",
	} {
		assert.Contains(t, names, name)
	}
	assert.IsIncreasing(t, names)

	assert.True(t, Lookup("contract_create").Write)
	assert.False(t, Lookup("contract_get").Write)
	assert.Nil(t, Lookup("nope"))
}

func TestBadArgs(t *testing.T) {
	l := newLedger(t)
	sender := datagen.RandAddress()

	_, err := call(t, l, sender, 0, "transfer", map[string]any{"amount": "lots"})
	assert.ErrorIs(t, err, reverts.ErrBadArgs)

	_, err = Lookup("user_create").Call(NewEnv(l, sender, 0, json.RawMessage(`{"role":"miner"}`), nil))
	assert.ErrorIs(t, err, reverts.ErrBadArgs)
}

func TestHostCalls(t *testing.T) {
	l := newLedger(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, l.Mint(alice, 10_000_000))

	_, err := call(t, l, alice, 0, "transfer", map[string]any{"to": bob, "amount": 1_000_000})
	require.NoError(t, err)
	bal, err := l.Balance(bob, board.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), bal)

	out, err := call(t, l, alice, 0, "asset_create", map[string]any{"name": "USDX", "total": 500})
	require.NoError(t, err)
	asset := out.(map[string]any)["asset"].(board.AssetID)
	a, err := l.Asset(asset)
	require.NoError(t, err)
	assert.Equal(t, alice, a.Manager)

	_, err = call(t, l, alice, 0, "transfer", map[string]any{"to": bob, "asset": asset, "amount": 1})
	assert.ErrorIs(t, err, reverts.ErrNotOptedIn)
	_, err = call(t, l, bob, 0, "asset_opt_in", map[string]any{"asset": asset})
	require.NoError(t, err)
	_, err = call(t, l, alice, 0, "transfer", map[string]any{"to": bob, "asset": asset, "amount": 200})
	require.NoError(t, err)

	out, err = call(t, l, bob, 0, "holding_get", map[string]any{"account": bob, "asset": asset})
	require.NoError(t, err)
	assert.Equal(t, uint64(200), out.(*ledger.Holding).Amount)
	assert.NoError(t, l.CheckReserves())
}

func TestPlatformCalls(t *testing.T) {
	l := newLedger(t)
	manager := datagen.RandAddress()
	require.NoError(t, l.Mint(manager, 10_000_000))

	_, err := call(t, l, manager, 0, "platform_get", nil)
	assert.ErrorIs(t, err, reverts.ErrAppNotFound)

	out, err := call(t, l, manager, 0, "platform_deploy", nil)
	require.NoError(t, err)
	id := out.(map[string]any)["platform"].(board.AppID)

	terms := &platform.Terms{
		Fees: platform.Fees{ValRegister: 10, DelRegister: 10, AdCreate: 10, ContractCreate: 10, CommissionMin: 1},
		Limits: platform.Limits{
			RoundsDurationMin: 10, RoundsDurationMax: 1_000, RoundsSetupMax: 10, RoundsConfirmMax: 10,
			StakeMaxMin: 1, StakeMaxMax: 1_000_000, CntBreachMax: 1, RoundsBreachMin: 1,
			ExpirySoonWindow: 10, ExpirySoonPeriod: 5,
		},
	}
	_, err = call(t, l, datagen.RandAddress(), id, "platform_config", terms)
	assert.ErrorIs(t, err, reverts.ErrCalledByNotPlaManager)
	_, err = call(t, l, manager, id, "platform_config", terms)
	require.NoError(t, err)

	out, err = call(t, l, manager, id, "platform_get", nil)
	require.NoError(t, err)
	info := out.(*platform.Info)
	assert.Equal(t, platform.StateSet, info.State)
	assert.Equal(t, *terms, info.Terms)
}
