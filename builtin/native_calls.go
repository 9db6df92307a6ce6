// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/ad"
	"github.com/delegard/delegard/builtin/contract"
	"github.com/delegard/delegard/builtin/platform"
	"github.com/delegard/delegard/builtin/registry"
)

// AdArgs names an ad in its owner's slot table; the owner is the sender.
type AdArgs struct {
	Ad   board.AppID `json:"ad"`
	Slot uint64      `json:"adSlot"`
}

// ContractOnAdArgs names a contract of a validator ad.
type ContractOnAdArgs struct {
	platform.AdRef
	Contract board.AppID `json:"contract"`
}

// DelegatorArgs names a contract through both the ad and the delegator's slot table.
type DelegatorArgs struct {
	platform.AdRef
	platform.ContractRef
}

func init() {
	defines := []struct {
		name string
		run  func(env *Env) (any, error)
	}{
		{"platform_deploy", func(env *Env) (any, error) {
			p, err := platform.Deploy(env.Ledger, env.Sender)
			if err != nil {
				return nil, err
			}
			return map[string]any{"platform": p.ID()}, nil
		}},
		{"platform_config", func(env *Env) (any, error) {
			var terms platform.Terms
			env.ParseArgs(&terms)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.Config(env.Sender, &terms)
		}},
		{"platform_suspend", func(env *Env) (any, error) {
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.Suspend(env.Sender)
		}},
		{"platform_resume", func(env *Env) (any, error) {
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.Resume(env.Sender)
		}},
		{"platform_retire", func(env *Env) (any, error) {
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.Retire(env.Sender)
		}},
		{"platform_template_set", func(env *Env) (any, error) {
			var args struct {
				Template hexutil.Bytes `json:"template"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.TemplateSet(env.Sender, args.Template, env.Payment(0))
		}},
		{"platform_asset_config", func(env *Env) (any, error) {
			var args struct {
				Asset board.AssetID `json:"asset"`
				platform.AssetConfig
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.AssetConfigSet(env.Sender, args.Asset, &args.AssetConfig, env.Payment(0))
		}},
		{"platform_withdraw", func(env *Env) (any, error) {
			var args struct {
				Asset  board.AssetID `json:"asset"`
				Amount uint64        `json:"amount"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			amount, err := p.Withdraw(env.Sender, args.Asset, args.Amount)
			if err != nil {
				return nil, err
			}
			return map[string]any{"amount": amount}, nil
		}},
		{"partner_create", func(env *Env) (any, error) {
			var args struct {
				Address board.Address `json:"partner"`
				platform.Partner
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.PartnerCreate(env.Sender, args.Address, &args.Partner, env.Payment(0))
		}},
		{"partner_update", func(env *Env) (any, error) {
			var args struct {
				Address board.Address `json:"partner"`
				platform.Partner
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.PartnerUpdate(env.Sender, args.Address, &args.Partner)
		}},
		{"partner_delete", func(env *Env) (any, error) {
			var args struct {
				Partner board.Address `json:"partner"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.PartnerDelete(env.Sender, args.Partner)
		}},

		{"user_create", func(env *Env) (any, error) {
			var args struct {
				Role registry.Role `json:"role"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.UserCreate(env.Sender, args.Role, env.Payment(0))
		}},
		{"user_delete", func(env *Env) (any, error) {
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.UserDelete(env.Sender)
		}},

		{"ad_create", func(env *Env) (any, error) {
			var args struct {
				Slot uint64 `json:"adSlot"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			id, err := p.AdCreate(env.Sender, args.Slot, env.Payment(0))
			if err != nil {
				return nil, err
			}
			return map[string]any{"ad": id}, nil
		}},
		{"ad_template_load", func(env *Env) (any, error) {
			var args AdArgs
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.AdTemplateLoad(env.Sender, args.Ad, args.Slot, env.Payment(0))
		}},
		{"ad_terms", func(env *Env) (any, error) {
			var args struct {
				AdArgs
				Terms ad.Terms `json:"terms"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.AdTerms(env.Sender, args.Ad, args.Slot, &args.Terms, env.Payment(0))
		}},
		{"ad_config", func(env *Env) (any, error) {
			var args struct {
				AdArgs
				Manager   board.Address `json:"manager"`
				Live      bool          `json:"live"`
				CntDelMax uint64        `json:"cntDelMax"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.AdConfig(env.Sender, args.Ad, args.Slot, args.Manager, args.Live, args.CntDelMax)
		}},
		{"ad_ready", func(env *Env) (any, error) {
			var args struct {
				platform.AdRef
				Ready bool `json:"ready"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.AdReady(env.Sender, args.Owner, args.Ad, args.Slot, args.Ready)
		}},
		{"ad_income", func(env *Env) (any, error) {
			var args struct {
				AdArgs
				Asset board.AssetID `json:"asset"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			amount, err := p.AdIncome(env.Sender, args.Ad, args.Slot, args.Asset)
			if err != nil {
				return nil, err
			}
			return map[string]any{"amount": amount}, nil
		}},
		{"ad_asset_close", func(env *Env) (any, error) {
			var args struct {
				AdArgs
				Asset board.AssetID `json:"asset"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.AdAssetClose(env.Sender, args.Ad, args.Slot, args.Asset)
		}},
		{"ad_delete", func(env *Env) (any, error) {
			var args AdArgs
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.AdDelete(env.Sender, args.Ad, args.Slot)
		}},
		{"keys_submit", func(env *Env) (any, error) {
			var args struct {
				ContractOnAdArgs
				Keys contract.KeyMaterial `json:"keys"`
			}
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return p.KeysSubmit(env.Sender, &args.AdRef, args.Contract, &args.Keys)
		}},

		{"contract_create", func(env *Env) (any, error) {
			var args platform.ContractCreateArgs
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			id, err := p.ContractCreate(env.Sender, &args, env.Payment(0), env.Payment(1))
			if err != nil {
				return nil, err
			}
			return map[string]any{"contract": id}, nil
		}},
		{"keys_confirm", func(env *Env) (any, error) {
			var args DelegatorArgs
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return p.KeysConfirm(env.Sender, &args.AdRef, &args.ContractRef)
		}},
		{"contract_withdraw", func(env *Env) (any, error) {
			var args DelegatorArgs
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return p.ContractWithdraw(env.Sender, &args.AdRef, &args.ContractRef)
		}},
		{"contract_delete", func(env *Env) (any, error) {
			var args platform.ContractRef
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.ContractDelete(env.Sender, &args)
		}},
		{"report_expiry_soon", func(env *Env) (any, error) {
			var args ContractOnAdArgs
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return nil, p.ReportExpirySoon(&args.AdRef, args.Contract)
		}},
	}
	for _, def := range defines {
		register(true, def.name, def.run)
	}

	for _, t := range []platform.Trigger{
		platform.TriggerKeysNotSubmitted,
		platform.TriggerKeysNotConfirmed,
		platform.TriggerClaim,
		platform.TriggerExpired,
		platform.TriggerBreachLimits,
		platform.TriggerBreachPay,
		platform.TriggerBreachSuspended,
	} {
		register(true, string(t), func(env *Env) (any, error) {
			var args ContractOnAdArgs
			env.ParseArgs(&args)
			p, err := env.Platform()
			if err != nil {
				return nil, err
			}
			return p.Trigger(t, &args.AdRef, args.Contract)
		})
	}
}
