// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/platform"
)

// DevAccounts are funded by the dev genesis.
var DevAccounts = []board.Address{
	board.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa"),
	board.MustParseAddress("0x435933c8064b4ae76be665428e0307ef2ccfbd68"),
	board.MustParseAddress("0x0f872421dc479f3c11edd89512731814d0598db5"),
	board.MustParseAddress("0xf370940abdbd2583bc80bfc19d19bc216c88ccf0"),
}

// Dev returns the genesis of a solo node: funded dev accounts, one test
// asset and a platform managed by the first account.
func Dev() *Genesis {
	accounts := make([]Account, len(DevAccounts))
	holders := make([]Holding, 0, len(DevAccounts)-1)
	for i, addr := range DevAccounts {
		accounts[i] = Account{Address: addr, Balance: 1_000_000_000_000}
		if i > 0 {
			holders = append(holders, Holding{Address: addr, Amount: 1_000_000_000})
		}
	}
	return &Genesis{
		Round:    1,
		Accounts: accounts,
		Assets: []Asset{{
			Name:    "USDX",
			Creator: DevAccounts[0],
			Total:   1_000_000_000_000,
			Holders: holders,
		}},
		Platforms: []Platform{{
			Manager: DevAccounts[0],
			Terms: platform.Terms{
				Fees: platform.Fees{ValRegister: 10_000, DelRegister: 10_000, AdCreate: 100_000, ContractCreate: 10_000, CommissionMin: 10_000},
				Limits: platform.Limits{
					RoundsDurationMin: 100, RoundsDurationMax: 1_000_000,
					RoundsSetupMax: 100, RoundsConfirmMax: 100,
					StakeMaxMin: 1_000_000, StakeMaxMax: 50_000_000_000_000, StakeGratisMax: 100_000,
					CntBreachMax: 3, RoundsBreachMin: 10,
					ExpirySoonWindow: 1_000, ExpirySoonPeriod: 100,
				},
			},
			Template: []byte("delegard delegator contract v1"),
			Accepted: []AcceptedAsset{{
				Asset:       "USDX",
				AssetConfig: platform.AssetConfig{Accepted: true, FeeRoundMinMin: 1, FeeRoundVarMin: 1, FeeSetupMin: 1},
			}},
		}},
	}
}
