// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/platform"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/logdb"
	"github.com/delegard/delegard/lvldb"
	"github.com/delegard/delegard/runtime"
)

const sample = `
round: 10
accounts:
  - address: "0xf077b491b355e64048ce21e3a6fc4751eeea77fa"
    balance: 500000000
  - address: "0x435933c8064b4ae76be665428e0307ef2ccfbd68"
    balance: 200000000
assets:
  - name: USDX
    creator: "0xf077b491b355e64048ce21e3a6fc4751eeea77fa"
    total: 1000000
    holders:
      - address: "0x435933c8064b4ae76be665428e0307ef2ccfbd68"
        amount: 2500
platforms:
  - manager: "0xf077b491b355e64048ce21e3a6fc4751eeea77fa"
    template: "0x0102030405"
    terms:
      fees:
        valRegister: 1000
        delRegister: 500
        adCreate: 2000
        contractCreate: 300
        commissionMin: 50000
      limits:
        roundsDurationMin: 100
        roundsDurationMax: 100000
        roundsSetupMax: 50
        roundsConfirmMax: 50
        stakeMaxMin: 1000
        stakeMaxMax: 100000000
        cntBreachMax: 5
        roundsBreachMin: 5
        expirySoonWindow: 100
        expirySoonPeriod: 20
    assets:
      - asset: USDX
        accepted: true
        feeRoundMinMin: 100
        feeSetupMin: 10
    partners:
      - address: "0x0f872421dc479f3c11edd89512731814d0598db5"
        commissionSetup: 100000
        commissionRound: 50000
`

func newRuntime(t *testing.T) (*runtime.Runtime, *ledger.Ledger) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	l, err := ledger.New(db, ledger.Options{})
	require.NoError(t, err)
	logs, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logs.Close() })
	return runtime.New(l, logs), l
}

func TestParse(t *testing.T) {
	gen, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, board.Round(10), gen.Round)
	require.Len(t, gen.Accounts, 2)
	assert.Equal(t, board.MustParseAddress("0x435933c8064b4ae76be665428e0307ef2ccfbd68"), gen.Accounts[1].Address)
	require.Len(t, gen.Platforms, 1)
	p := gen.Platforms[0]
	assert.Equal(t, uint64(50_000), p.Terms.Fees.CommissionMin)
	assert.Equal(t, uint64(20), p.Terms.Limits.ExpirySoonPeriod)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, []byte(p.Template))
	assert.Equal(t, "USDX", p.Accepted[0].Asset)
	assert.True(t, p.Accepted[0].Accepted)
	assert.Equal(t, uint64(100), p.Accepted[0].FeeRoundMinMin)
	assert.Equal(t, uint64(50_000), p.Partners[0].CommissionRound)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(g *Genesis){
		"zero round":       func(g *Genesis) { g.Round = 0 },
		"poor account":     func(g *Genesis) { g.Accounts[0].Balance = 1 },
		"duplicate":        func(g *Genesis) { g.Accounts[1].Address = g.Accounts[0].Address },
		"holdings":         func(g *Genesis) { g.Assets[0].Holders[0].Amount = g.Assets[0].Total + 1 },
		"unknown asset":    func(g *Genesis) { g.Platforms[0].Accepted[0].Asset = "EURX" },
		"bad terms":        func(g *Genesis) { g.Platforms[0].Terms.Limits.CntBreachMax = 0 },
		"empty asset name": func(g *Genesis) { g.Assets[0].Name = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			gen, err := Parse([]byte(sample))
			require.NoError(t, err)
			mutate(gen)
			assert.Error(t, gen.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	gen, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, gen.Assets, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	gen, err := Parse([]byte(sample))
	require.NoError(t, err)
	rt, l := newRuntime(t)

	res, err := gen.Apply(context.Background(), rt)
	require.NoError(t, err)
	require.Len(t, res.Platforms, 1)

	round, err := rt.Round()
	require.NoError(t, err)
	assert.Equal(t, board.Round(10), round)

	asset := res.Assets["USDX"]
	bal, err := l.Balance(gen.Accounts[1].Address, asset)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500), bal)

	p, err := platform.Open(l, res.Platforms[0])
	require.NoError(t, err)
	info, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, platform.StateSet, info.State)
	assert.Equal(t, gen.Platforms[0].Terms, info.Terms)
	tmpl, err := p.Template()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, tmpl)
	cfg, err := p.AssetConfig(asset)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.True(t, cfg.Accepted)
	partner, err := p.Partner(gen.Platforms[0].Partners[0].Address)
	require.NoError(t, err)
	require.NotNil(t, partner)

	// a second application finds the ledger already initialized
	_, err = gen.Apply(context.Background(), rt)
	assert.Error(t, err)
}

func TestDev(t *testing.T) {
	gen := Dev()
	require.NoError(t, gen.Validate())
	rt, _ := newRuntime(t)
	res, err := gen.Apply(context.Background(), rt)
	require.NoError(t, err)
	assert.Len(t, res.Platforms, 1)
	assert.Contains(t, res.Assets, "USDX")
}
