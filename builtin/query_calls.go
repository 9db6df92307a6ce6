// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/ad"
	"github.com/delegard/delegard/builtin/contract"
	"github.com/delegard/delegard/builtin/registry"
	"github.com/delegard/delegard/reverts"
)

// read-only methods, used by the orchestration daemon to poll state.
func init() {
	defines := []struct {
		name string
		run  func(env *Env) (any, error)
	}{
		{"round", func(env *Env) (any, error) {
			round, err := env.Ledger.Round()
			if err != nil {
				return nil, err
			}
			return map[string]any{"round": round}, nil
		}},
		{"account_get", func(env *Env) (any, error) {
			var args struct {
				Account board.Address `json:"account"`
			}
			env.ParseArgs(&args)
			return env.Ledger.Account(args.Account)
		}},
		{"holding_get", func(env *Env) (any, error) {
			var args struct {
				Account board.Address `json:"account"`
				Asset   board.AssetID `json:"asset"`
			}
			env.ParseArgs(&args)
			h, err := env.Ledger.Holding(args.Account, args.Asset)
			if err != nil {
				return nil, err
			}
			if h == nil {
				return nil, reverts.Wrap(reverts.ErrNotOptedIn, "%v in asset %v", args.Account, args.Asset)
			}
			return h, nil
		}},
		{"asset_get", func(env *Env) (any, error) {
			var args struct {
				Asset board.AssetID `json:"asset"`
			}
			env.ParseArgs(&args)
			a, err := env.Ledger.Asset(args.Asset)
			if err != nil {
				return nil, err
			}
			if a == nil {
				return nil, reverts.Wrap(reverts.ErrAssetID, "asset %v does not exist", args.Asset)
			}
			return a, nil
		}},

		{"platform_get", func(env *Env) (any, error) {
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return p.Get()
		}},
		{"platform_template_get", func(env *Env) (any, error) {
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			tmpl, err := p.Template()
			if err != nil {
				return nil, err
			}
			return map[string]any{"template": hexutil.Bytes(tmpl)}, nil
		}},
		{"platform_asset_config_get", func(env *Env) (any, error) {
			var args struct {
				Asset board.AssetID `json:"asset"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			cfg, err := p.AssetConfig(args.Asset)
			if err != nil {
				return nil, err
			}
			if cfg == nil {
				return nil, reverts.Wrap(reverts.ErrAssetNotAccepted, "asset %v", args.Asset)
			}
			return cfg, nil
		}},
		{"partner_get", func(env *Env) (any, error) {
			var args struct {
				Partner board.Address `json:"partner"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			partner, err := p.Partner(args.Partner)
			if err != nil {
				return nil, err
			}
			if partner == nil {
				return nil, reverts.Wrap(reverts.ErrPartnerNotFound, "%v", args.Partner)
			}
			return partner, nil
		}},
		{"user_get", func(env *Env) (any, error) {
			var args struct {
				User board.Address `json:"user"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			u, err := p.Users().User(args.User)
			if err != nil {
				return nil, err
			}
			if u == nil {
				return nil, reverts.Wrap(reverts.ErrUserNotRegistered, "%v", args.User)
			}
			return u, nil
		}},
		{"user_free_slot", func(env *Env) (any, error) {
			var args struct {
				User board.Address `json:"user"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			u, err := p.Users().User(args.User)
			if err != nil {
				return nil, err
			}
			if u == nil {
				return nil, reverts.Wrap(reverts.ErrUserNotRegistered, "%v", args.User)
			}
			idx, ok := u.FreeSlot()
			if !ok {
				return nil, reverts.Wrap(reverts.ErrSlotOutOfRange, "slot table full")
			}
			return map[string]uint64{"slot": idx}, nil
		}},
		{"users_list", func(env *Env) (any, error) {
			var args struct {
				Role registry.Role `json:"role"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			users := []board.Address{}
			err = p.Users().Iter(args.Role, func(addr board.Address, _ *registry.User) error {
				users = append(users, addr)
				return nil
			})
			return users, err
		}},

		{"ad_get", func(env *Env) (any, error) {
			var args struct {
				Ad board.AppID `json:"ad"`
			}
			env.ParseArgs(&args)
			a, err := ad.Open(env.Ledger, args.Ad)
			if err != nil {
				return nil, err
			}
			return a.Get()
		}},
		{"ad_contracts", func(env *Env) (any, error) {
			var args struct {
				Ad board.AppID `json:"ad"`
			}
			env.ParseArgs(&args)
			a, err := ad.Open(env.Ledger, args.Ad)
			if err != nil {
				return nil, err
			}
			return a.Contracts()
		}},
		{"contract_get", func(env *Env) (any, error) {
			var args struct {
				Contract board.AppID `json:"contract"`
			}
			env.ParseArgs(&args)
			c, err := contract.Open(env.Ledger, args.Contract)
			if err != nil {
				return nil, err
			}
			return c.Get()
		}},
	}
	for _, def := range defines {
		register(false, def.name, def.run)
	}
}
