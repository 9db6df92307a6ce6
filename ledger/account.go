// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/reverts"
)

// Keys is the participation key material registered for an account.
type Keys struct {
	VoteKey         board.Bytes32 `json:"voteKey"`
	SelectionKey    board.Bytes32 `json:"selectionKey"`
	StateProofKey   board.Bytes32 `json:"stateProofKey"`
	VoteFirst       board.Round   `json:"voteFirst"`
	VoteLast        board.Round   `json:"voteLast"`
	VoteKeyDilution uint64        `json:"voteKeyDilution"`
}

// Equal reports whether both key sets are identical.
func (k *Keys) Equal(other *Keys) bool {
	if k == nil || other == nil {
		return k == other
	}
	return *k == *other
}

// Account is the state of an address.
type Account struct {
	Balance           uint64 `json:"balance"`
	Reserve           uint64 `json:"reserve"` // storage reserve held for records and asset holdings
	Assets            uint64 `json:"assets"`  // number of opted-in assets
	Keys              *Keys  `json:"keys,omitempty" rlp:"nil"`
	IncentiveEligible bool   `json:"incentiveEligible"`
}

// IsClosed reports whether the account holds nothing.
func (a *Account) IsClosed() bool {
	return a.Balance == 0 && a.Reserve == 0 && a.Assets == 0
}

// MinBalance returns the balance the account must keep.
func (a *Account) MinBalance() uint64 {
	if a.IsClosed() {
		return 0
	}
	return board.AccountMinBalance + a.Reserve
}

func accountKey(addr board.Address) []byte {
	return append([]byte{prefixAccount}, addr.Bytes()...)
}

// Account returns the account of addr. A never used address yields a closed account.
func (l *Ledger) Account(addr board.Address) (*Account, error) {
	var acc Account
	if _, err := l.decode(accountKey(addr), &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (l *Ledger) setAccount(addr board.Address, acc *Account) error {
	l.touch(addr)
	if acc.IsClosed() && acc.Keys == nil && !acc.IncentiveEligible {
		l.putRaw(accountKey(addr), nil)
		return nil
	}
	return l.encode(accountKey(addr), acc)
}

// Balance returns the amount of asset held by addr.
func (l *Ledger) Balance(addr board.Address, asset board.AssetID) (uint64, error) {
	if asset.IsNative() {
		acc, err := l.Account(addr)
		if err != nil {
			return 0, err
		}
		return acc.Balance, nil
	}
	h, err := l.Holding(addr, asset)
	if err != nil || h == nil {
		return 0, err
	}
	return h.Amount, nil
}

// MinBalance returns the minimum native balance addr must keep.
func (l *Ledger) MinBalance(addr board.Address) (uint64, error) {
	acc, err := l.Account(addr)
	if err != nil {
		return 0, err
	}
	return acc.MinBalance(), nil
}

// Available returns the amount of asset addr can spend without breaking its reserve.
func (l *Ledger) Available(addr board.Address, asset board.AssetID) (uint64, error) {
	if !asset.IsNative() {
		return l.Balance(addr, asset)
	}
	acc, err := l.Account(addr)
	if err != nil {
		return 0, err
	}
	if acc.Balance <= acc.MinBalance() {
		return 0, nil
	}
	return acc.Balance - acc.MinBalance(), nil
}

// Mint credits native currency out of thin air. Used by genesis and solo mode only.
func (l *Ledger) Mint(to board.Address, amount uint64) error {
	acc, err := l.Account(to)
	if err != nil {
		return err
	}
	bal, overflow := math.SafeAdd(acc.Balance, amount)
	if overflow {
		return errors.New("balance overflow")
	}
	acc.Balance = bal
	return l.setAccount(to, acc)
}

// Transfer moves amount of asset from one account to another.
// Reserve requirements are verified by CheckReserves at the end of the call.
func (l *Ledger) Transfer(from, to board.Address, asset board.AssetID, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	if asset.IsNative() {
		if err := l.moveNative(from, to, amount); err != nil {
			return err
		}
	} else if err := l.moveAsset(from, to, asset, amount); err != nil {
		return err
	}
	round, err := l.Round()
	if err != nil {
		return err
	}
	l.transfers = append(l.transfers, &Transfer{Round: round, From: from, To: to, Asset: asset, Amount: amount})
	label := "native"
	if !asset.IsNative() {
		label = "asset"
	}
	metricTransfers().AddWithLabel(1, map[string]string{"asset": label})
	return nil
}

func (l *Ledger) moveNative(from, to board.Address, amount uint64) error {
	src, err := l.Account(from)
	if err != nil {
		return err
	}
	if src.Balance < amount {
		return reverts.Wrap(reverts.ErrInsufficientBalance, "%v has %d, needs %d", from, src.Balance, amount)
	}
	src.Balance -= amount
	if err := l.setAccount(from, src); err != nil {
		return err
	}

	dst, err := l.Account(to)
	if err != nil {
		return err
	}
	bal, overflow := math.SafeAdd(dst.Balance, amount)
	if overflow {
		return errors.New("balance overflow")
	}
	dst.Balance = bal
	return l.setAccount(to, dst)
}

// CanReceive reports whether addr can currently accept asset.
// A closed account cannot take native refunds, a missing or frozen holding cannot take assets.
func (l *Ledger) CanReceive(addr board.Address, asset board.AssetID) (bool, error) {
	if asset.IsNative() {
		acc, err := l.Account(addr)
		if err != nil {
			return false, err
		}
		return !acc.IsClosed(), nil
	}
	h, err := l.Holding(addr, asset)
	if err != nil {
		return false, err
	}
	return h != nil && !h.Frozen, nil
}

// CanSend reports whether addr can currently pay amount of asset: a native payment must
// leave the minimum balance in place, an asset payment needs an unfrozen holding covering it.
func (l *Ledger) CanSend(addr board.Address, asset board.AssetID, amount uint64) (bool, error) {
	if asset.IsNative() {
		avail, err := l.Available(addr, asset)
		if err != nil {
			return false, err
		}
		return avail >= amount, nil
	}
	h, err := l.Holding(addr, asset)
	if err != nil {
		return false, err
	}
	return h != nil && !h.Frozen && h.Amount >= amount, nil
}

// CloseOut sends the whole native balance of addr to the receiver, closing the account.
// The account must not hold any reserve.
func (l *Ledger) CloseOut(addr, to board.Address) error {
	acc, err := l.Account(addr)
	if err != nil {
		return err
	}
	if acc.Reserve != 0 || acc.Assets != 0 {
		return reverts.Wrap(reverts.ErrMinBalance, "%v still holds reserve %d and %d assets", addr, acc.Reserve, acc.Assets)
	}
	return l.Transfer(addr, to, board.NativeAsset, acc.Balance)
}

// CheckReserves verifies every account touched in this unit of work
// keeps at least its minimum balance.
func (l *Ledger) CheckReserves() error {
	for addr := range l.touched {
		acc, err := l.Account(addr)
		if err != nil {
			return err
		}
		if acc.Balance < acc.MinBalance() {
			return reverts.Wrap(reverts.ErrMinBalance, "%v balance %d below %d", addr, acc.Balance, acc.MinBalance())
		}
	}
	return nil
}

func (l *Ledger) addReserve(addr board.Address, delta uint64) error {
	acc, err := l.Account(addr)
	if err != nil {
		return err
	}
	r, overflow := math.SafeAdd(acc.Reserve, delta)
	if overflow {
		return errors.New("reserve overflow")
	}
	acc.Reserve = r
	return l.setAccount(addr, acc)
}

func (l *Ledger) subReserve(addr board.Address, delta uint64) error {
	acc, err := l.Account(addr)
	if err != nil {
		return err
	}
	if acc.Reserve < delta {
		return errors.Errorf("reserve underflow on %v", addr)
	}
	acc.Reserve -= delta
	return l.setAccount(addr, acc)
}

// RegisterKeys brings addr online with the given participation keys.
// incentive marks the registration as eligible for participation incentives.
func (l *Ledger) RegisterKeys(addr board.Address, keys *Keys, incentive bool) error {
	if keys == nil {
		return reverts.Wrap(reverts.ErrBadArgs, "no keys")
	}
	acc, err := l.Account(addr)
	if err != nil {
		return err
	}
	if acc.IsClosed() {
		return reverts.Wrap(reverts.ErrAccountClosed, "%v", addr)
	}
	k := *keys
	acc.Keys = &k
	acc.IncentiveEligible = incentive
	return l.setAccount(addr, acc)
}

// GoOffline removes the participation keys of addr.
func (l *Ledger) GoOffline(addr board.Address) error {
	acc, err := l.Account(addr)
	if err != nil {
		return err
	}
	acc.Keys = nil
	acc.IncentiveEligible = false
	return l.setAccount(addr, acc)
}

// Suspend revokes incentive eligibility of addr while keeping its keys,
// as consensus does for absent participants.
func (l *Ledger) Suspend(addr board.Address) error {
	acc, err := l.Account(addr)
	if err != nil {
		return err
	}
	acc.IncentiveEligible = false
	return l.setAccount(addr, acc)
}
