// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/ledger"
)

// host ledger primitives available to every account.
func init() {
	defines := []struct {
		name string
		run  func(env *Env) (any, error)
	}{
		{"transfer", func(env *Env) (any, error) {
			var args struct {
				To     board.Address `json:"to"`
				Asset  board.AssetID `json:"asset"`
				Amount uint64        `json:"amount"`
			}
			env.ParseArgs(&args)
			return nil, env.Ledger.Transfer(env.Sender, args.To, args.Asset, args.Amount)
		}},
		{"asset_create", func(env *Env) (any, error) {
			var args struct {
				Name    string        `json:"name"`
				Total   uint64        `json:"total"`
				Manager board.Address `json:"manager"`
			}
			env.ParseArgs(&args)
			manager := args.Manager
			if manager.IsZero() {
				manager = env.Sender
			}
			id, err := env.Ledger.CreateAsset(env.Sender, manager, args.Total, args.Name)
			if err != nil {
				return nil, err
			}
			return map[string]any{"asset": id}, nil
		}},
		{"asset_opt_in", func(env *Env) (any, error) {
			var args struct {
				Asset board.AssetID `json:"asset"`
			}
			env.ParseArgs(&args)
			return nil, env.Ledger.OptIn(env.Sender, args.Asset)
		}},
		{"asset_close", func(env *Env) (any, error) {
			var args struct {
				Asset board.AssetID `json:"asset"`
				To    board.Address `json:"to"`
			}
			env.ParseArgs(&args)
			return nil, env.Ledger.AssetCloseOut(env.Sender, args.Asset, args.To)
		}},
		{"asset_freeze", func(env *Env) (any, error) {
			var args struct {
				Asset   board.AssetID `json:"asset"`
				Account board.Address `json:"account"`
				Frozen  bool          `json:"frozen"`
			}
			env.ParseArgs(&args)
			return nil, env.Ledger.Freeze(env.Sender, args.Asset, args.Account, args.Frozen)
		}},
		{"asset_clawback", func(env *Env) (any, error) {
			var args struct {
				Asset  board.AssetID `json:"asset"`
				From   board.Address `json:"from"`
				To     board.Address `json:"to"`
				Amount uint64        `json:"amount"`
			}
			env.ParseArgs(&args)
			return nil, env.Ledger.Clawback(env.Sender, args.Asset, args.From, args.To, args.Amount)
		}},
		{"key_register", func(env *Env) (any, error) {
			var args struct {
				Keys      ledger.Keys `json:"keys"`
				Incentive bool        `json:"incentive"`
			}
			env.ParseArgs(&args)
			return nil, env.Ledger.RegisterKeys(env.Sender, &args.Keys, args.Incentive)
		}},
		{"key_offline", func(env *Env) (any, error) {
			return nil, env.Ledger.GoOffline(env.Sender)
		}},
	}
	for _, def := range defines {
		register(true, def.name, def.run)
	}
}
