// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/reverts"
)

// Payment is a transfer attached to a call. It has already been applied
// when the called method sees it.
type Payment struct {
	Sender   board.Address `json:"sender"`
	Receiver board.Address `json:"receiver"`
	Asset    board.AssetID `json:"asset"`
	Amount   uint64        `json:"amount"`
}

// CheckPayment verifies pay is exactly amount of asset sent to receiver.
// A nil payment is accepted when nothing is expected.
func CheckPayment(pay *Payment, receiver board.Address, asset board.AssetID, amount uint64) error {
	if pay == nil {
		if amount == 0 {
			return nil
		}
		return reverts.Wrap(reverts.ErrPaymentMissing, "expected %d of asset %v", amount, asset)
	}
	if pay.Receiver != receiver {
		return reverts.Wrap(reverts.ErrReceiver, "expected %v, got %v", receiver, pay.Receiver)
	}
	if pay.Asset != asset {
		return reverts.Wrap(reverts.ErrAssetID, "expected %v, got %v", asset, pay.Asset)
	}
	if pay.Amount != amount {
		return reverts.Wrap(reverts.ErrAmount, "expected %d, got %d", amount, pay.Amount)
	}
	return nil
}
