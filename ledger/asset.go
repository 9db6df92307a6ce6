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

// Asset describes a fungible asset.
type Asset struct {
	Creator board.Address `json:"creator"`
	Manager board.Address `json:"manager"` // freeze and claw-back authority
	Total   uint64        `json:"total"`
	Name    string        `json:"name"`
}

// Holding is the balance of one asset in one account.
type Holding struct {
	Amount uint64 `json:"amount"`
	Frozen bool   `json:"frozen"`
}

func assetKey(id board.AssetID) []byte {
	return append([]byte{prefixAsset}, id.Bytes()...)
}

func holdingKey(addr board.Address, id board.AssetID) []byte {
	k := append([]byte{prefixHolding}, addr.Bytes()...)
	return append(k, id.Bytes()...)
}

// CreateAsset mints total units of a new asset to creator, which is opted in.
func (l *Ledger) CreateAsset(creator, manager board.Address, total uint64, name string) (board.AssetID, error) {
	n, err := l.nextID(metaNextAsset)
	if err != nil {
		return 0, err
	}
	id := board.AssetID(n)
	if err := l.encode(assetKey(id), &Asset{Creator: creator, Manager: manager, Total: total, Name: name}); err != nil {
		return 0, err
	}
	if err := l.OptIn(creator, id); err != nil {
		return 0, err
	}
	if err := l.setHolding(creator, id, &Holding{Amount: total}); err != nil {
		return 0, err
	}
	logger.Debug("asset created", "id", id, "name", name, "total", total)
	return id, nil
}

// Asset returns the asset params, or nil if it does not exist.
func (l *Ledger) Asset(id board.AssetID) (*Asset, error) {
	if id.IsNative() {
		return nil, nil
	}
	var a Asset
	found, err := l.decode(assetKey(id), &a)
	if err != nil || !found {
		return nil, err
	}
	return &a, nil
}

// Holding returns the holding of asset in addr, or nil if addr is not opted in.
func (l *Ledger) Holding(addr board.Address, id board.AssetID) (*Holding, error) {
	var h Holding
	found, err := l.decode(holdingKey(addr, id), &h)
	if err != nil || !found {
		return nil, err
	}
	return &h, nil
}

func (l *Ledger) setHolding(addr board.Address, id board.AssetID, h *Holding) error {
	l.touch(addr)
	return l.encode(holdingKey(addr, id), h)
}

// OptIn creates an empty holding of the asset in addr, raising its reserve.
// Opting in twice is a no-op.
func (l *Ledger) OptIn(addr board.Address, id board.AssetID) error {
	if id.IsNative() {
		return reverts.Wrap(reverts.ErrNativeAsset, "cannot opt in")
	}
	a, err := l.Asset(id)
	if err != nil {
		return err
	}
	if a == nil {
		return reverts.Wrap(reverts.ErrAssetID, "asset %v does not exist", id)
	}
	h, err := l.Holding(addr, id)
	if err != nil {
		return err
	}
	if h != nil {
		return nil
	}
	acc, err := l.Account(addr)
	if err != nil {
		return err
	}
	acc.Assets++
	acc.Reserve, _ = math.SafeAdd(acc.Reserve, board.AssetReserve)
	if err := l.setAccount(addr, acc); err != nil {
		return err
	}
	return l.setHolding(addr, id, &Holding{})
}

// IsOptedIn reports whether addr holds the asset. The native asset is always held.
func (l *Ledger) IsOptedIn(addr board.Address, id board.AssetID) (bool, error) {
	if id.IsNative() {
		return true, nil
	}
	h, err := l.Holding(addr, id)
	return h != nil, err
}

func (l *Ledger) moveAsset(from, to board.Address, id board.AssetID, amount uint64) error {
	src, err := l.Holding(from, id)
	if err != nil {
		return err
	}
	if src == nil {
		return reverts.Wrap(reverts.ErrNotOptedIn, "%v not opted in to %v", from, id)
	}
	dst, err := l.Holding(to, id)
	if err != nil {
		return err
	}
	if dst == nil {
		return reverts.Wrap(reverts.ErrNotOptedIn, "%v not opted in to %v", to, id)
	}
	if src.Frozen || dst.Frozen {
		return reverts.Wrap(reverts.ErrFrozen, "asset %v frozen", id)
	}
	if src.Amount < amount {
		return reverts.Wrap(reverts.ErrInsufficientBalance, "%v holds %d of %v, needs %d", from, src.Amount, id, amount)
	}
	src.Amount -= amount
	if err := l.setHolding(from, id, src); err != nil {
		return err
	}
	// re-read, from and to may alias through the overlay
	if dst, err = l.Holding(to, id); err != nil {
		return err
	}
	amt, overflow := math.SafeAdd(dst.Amount, amount)
	if overflow {
		return errors.New("holding overflow")
	}
	dst.Amount = amt
	return l.setHolding(to, id, dst)
}

// AssetCloseOut sends the whole holding of addr to the receiver and removes the holding,
// releasing its reserve.
func (l *Ledger) AssetCloseOut(addr board.Address, id board.AssetID, to board.Address) error {
	h, err := l.Holding(addr, id)
	if err != nil {
		return err
	}
	if h == nil {
		return nil
	}
	if err := l.Transfer(addr, to, id, h.Amount); err != nil {
		return err
	}
	acc, err := l.Account(addr)
	if err != nil {
		return err
	}
	acc.Assets--
	acc.Reserve -= board.AssetReserve
	if err := l.setAccount(addr, acc); err != nil {
		return err
	}
	l.putRaw(holdingKey(addr, id), nil)
	return nil
}

// Freeze sets the frozen flag of a holding. Only the asset manager may freeze.
func (l *Ledger) Freeze(sender board.Address, id board.AssetID, addr board.Address, frozen bool) error {
	if err := l.requireManager(sender, id); err != nil {
		return err
	}
	h, err := l.Holding(addr, id)
	if err != nil {
		return err
	}
	if h == nil {
		return reverts.Wrap(reverts.ErrNotOptedIn, "%v not opted in to %v", addr, id)
	}
	h.Frozen = frozen
	return l.setHolding(addr, id, h)
}

// Clawback moves asset out of any holding, frozen or not. Only the asset manager may claw back.
func (l *Ledger) Clawback(sender board.Address, id board.AssetID, from, to board.Address, amount uint64) error {
	if err := l.requireManager(sender, id); err != nil {
		return err
	}
	src, err := l.Holding(from, id)
	if err != nil {
		return err
	}
	if src == nil {
		return reverts.Wrap(reverts.ErrNotOptedIn, "%v not opted in to %v", from, id)
	}
	frozen := src.Frozen
	if frozen {
		src.Frozen = false
		if err := l.setHolding(from, id, src); err != nil {
			return err
		}
	}
	if err := l.Transfer(from, to, id, amount); err != nil {
		return err
	}
	if frozen {
		if src, err = l.Holding(from, id); err != nil {
			return err
		}
		src.Frozen = true
		return l.setHolding(from, id, src)
	}
	return nil
}

func (l *Ledger) requireManager(sender board.Address, id board.AssetID) error {
	if id.IsNative() {
		return reverts.Wrap(reverts.ErrNativeAsset, "native asset has no manager")
	}
	a, err := l.Asset(id)
	if err != nil {
		return err
	}
	if a == nil {
		return reverts.Wrap(reverts.ErrAssetID, "asset %v does not exist", id)
	}
	if a.Manager != sender {
		return reverts.Wrap(reverts.ErrSender, "%v is not the manager of %v", sender, id)
	}
	return nil
}
