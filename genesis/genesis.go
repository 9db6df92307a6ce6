// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis loads the yaml description of a node's initial state
// and applies it to a fresh ledger.
package genesis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/ad"
	"github.com/delegard/delegard/builtin/platform"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/log"
	"github.com/delegard/delegard/runtime"
)

var logger = log.WithContext("pkg", "genesis")

// Genesis is the initial state of a node.
type Genesis struct {
	Round     board.Round `yaml:"round"`
	Accounts  []Account   `yaml:"accounts"`
	Assets    []Asset     `yaml:"assets"`
	Platforms []Platform  `yaml:"platforms"`
}

// Account is a funded account.
type Account struct {
	Address board.Address `yaml:"address"`
	Balance uint64        `yaml:"balance"`
}

// Asset is created by Creator, who receives the total and pays out Holders.
type Asset struct {
	Name    string        `yaml:"name"`
	Creator board.Address `yaml:"creator"`
	Manager board.Address `yaml:"manager"` // defaults to the creator
	Total   uint64        `yaml:"total"`
	Holders []Holding     `yaml:"holders"`
}

// Holding opts Address into the asset and transfers Amount to it.
type Holding struct {
	Address board.Address `yaml:"address"`
	Amount  uint64        `yaml:"amount"`
}

// Platform is deployed by Manager and configured with Terms.
type Platform struct {
	Manager  board.Address   `yaml:"manager"`
	Terms    platform.Terms  `yaml:"terms"`
	Template hexutil.Bytes   `yaml:"template"`
	Accepted []AcceptedAsset `yaml:"assets"`
	Partners []Partner       `yaml:"partners"`
}

// AcceptedAsset names a genesis asset and its pricing floors.
type AcceptedAsset struct {
	Asset                string `yaml:"asset"`
	platform.AssetConfig `yaml:",inline"`
}

type Partner struct {
	Address          board.Address `yaml:"address"`
	platform.Partner `yaml:",inline"`
}

// Result holds the ids assigned while applying a genesis.
type Result struct {
	Assets    map[string]board.AssetID
	Platforms []board.AppID
}

// Load reads a genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	return Parse(data)
}

// Parse decodes and validates a yaml genesis.
func Parse(data []byte) (*Genesis, error) {
	var gen Genesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

// Validate checks the genesis for errors that would otherwise surface
// half way through Apply.
func (g *Genesis) Validate() error {
	if g.Round == 0 {
		return errors.New("round must be positive")
	}
	seen := make(map[board.Address]bool)
	for _, a := range g.Accounts {
		if a.Address.IsZero() {
			return errors.New("account: zero address")
		}
		if seen[a.Address] {
			return fmt.Errorf("%v: duplicate account", a.Address)
		}
		seen[a.Address] = true
		if a.Balance < board.AccountMinBalance {
			return fmt.Errorf("%v: balance below %d", a.Address, board.AccountMinBalance)
		}
	}
	names := make(map[string]bool)
	for _, a := range g.Assets {
		if a.Name == "" || names[a.Name] {
			return fmt.Errorf("asset %q: empty or duplicate name", a.Name)
		}
		names[a.Name] = true
		var sum uint64
		for _, h := range a.Holders {
			sum += h.Amount
			if sum < h.Amount || sum > a.Total {
				return fmt.Errorf("asset %q: holdings exceed the total", a.Name)
			}
		}
	}
	for i, p := range g.Platforms {
		if err := p.Terms.Validate(); err != nil {
			return errors.WithMessagef(err, "platform %d", i)
		}
		for _, acc := range p.Accepted {
			if !names[acc.Asset] {
				return fmt.Errorf("platform %d: unknown asset %q", i, acc.Asset)
			}
		}
	}
	return nil
}

// Apply writes the genesis into the fresh ledger behind rt. Assets and
// platforms are created through ordinary calls, so their events are logged.
func (g *Genesis) Apply(ctx context.Context, rt *runtime.Runtime) (*Result, error) {
	err := rt.Setup(func(l *ledger.Ledger) error {
		round, err := l.Round()
		if err != nil {
			return err
		}
		if round != 0 {
			return errors.Errorf("ledger already at round %d", round)
		}
		for _, a := range g.Accounts {
			if err := l.Mint(a.Address, a.Balance); err != nil {
				return errors.WithMessagef(err, "fund %v", a.Address)
			}
		}
		_, err = l.AdvanceRound(g.Round)
		return err
	})
	if err != nil {
		return nil, err
	}

	ex := &executor{ctx: ctx, rt: rt}
	res := &Result{Assets: make(map[string]board.AssetID)}
	for _, a := range g.Assets {
		var out struct {
			Asset board.AssetID `json:"asset"`
		}
		ex.exec(a.Creator, 0, "asset_create", map[string]any{"name": a.Name, "total": a.Total, "manager": a.Manager}, &out)
		for _, h := range a.Holders {
			ex.exec(h.Address, 0, "asset_opt_in", map[string]any{"asset": out.Asset}, nil)
			ex.exec(a.Creator, 0, "transfer", map[string]any{"to": h.Address, "asset": out.Asset, "amount": h.Amount}, nil)
		}
		res.Assets[a.Name] = out.Asset
	}

	for _, p := range g.Platforms {
		var out struct {
			Platform board.AppID `json:"platform"`
		}
		ex.exec(p.Manager, 0, "platform_deploy", nil, &out)
		id, addr := out.Platform, board.AppAddress(out.Platform)
		ex.exec(p.Manager, id, "platform_config", &p.Terms, nil)
		if len(p.Template) > 0 {
			ex.exec(p.Manager, id, "platform_template_set", map[string]any{"template": p.Template}, nil,
				native(addr, ad.TemplateReserve(uint64(len(p.Template)))))
		}
		for _, acc := range p.Accepted {
			ex.exec(p.Manager, id, "platform_asset_config", struct {
				Asset board.AssetID `json:"asset"`
				platform.AssetConfig
			}{res.Assets[acc.Asset], acc.AssetConfig}, nil, native(addr, platform.AssetConfigReserve()))
		}
		for _, pt := range p.Partners {
			ex.exec(p.Manager, id, "partner_create", struct {
				Address board.Address `json:"partner"`
				platform.Partner
			}{pt.Address, pt.Partner}, nil, native(addr, platform.PartnerReserve()))
		}
		res.Platforms = append(res.Platforms, id)
	}
	if ex.err != nil {
		return nil, ex.err
	}
	logger.Info("genesis applied", "round", g.Round, "accounts", len(g.Accounts), "assets", len(res.Assets), "platforms", len(res.Platforms))
	return res, nil
}

func native(to board.Address, amount uint64) *ledger.Payment {
	return &ledger.Payment{Receiver: to, Asset: board.NativeAsset, Amount: amount}
}

// executor runs genesis calls until the first failure.
type executor struct {
	ctx context.Context
	rt  *runtime.Runtime
	err error
}

func (ex *executor) exec(sender board.Address, app board.AppID, method string, args any, out any, payments ...*ledger.Payment) {
	if ex.err != nil {
		return
	}
	call := &runtime.Call{Sender: sender, App: app, Method: method, Payments: payments}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			ex.err = errors.Wrap(err, method)
			return
		}
		call.Args = raw
	}
	receipt, err := ex.rt.Exec(ex.ctx, call)
	if err != nil {
		ex.err = errors.WithMessage(err, method)
		return
	}
	if receipt.Reverted {
		ex.err = errors.Errorf("%s by %v: %s", method, sender, receipt.Message)
		return
	}
	if out != nil {
		if err := json.Unmarshal(receipt.Output, out); err != nil {
			ex.err = errors.Wrap(err, method)
		}
	}
}
