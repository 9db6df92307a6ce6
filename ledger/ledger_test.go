// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/lvldb"
	"github.com/delegard/delegard/pebbledb"
	"github.com/delegard/delegard/reverts"
)

func newLedger(t *testing.T) *Ledger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	l, err := New(db, Options{})
	require.NoError(t, err)
	return l
}

var (
	alice = board.BytesToAddress([]byte("alice"))
	bob   = board.BytesToAddress([]byte("bob"))
	carol = board.BytesToAddress([]byte("carol"))
)

func TestNativeTransfer(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.Mint(alice, 1_000_000))

	require.NoError(t, l.Transfer(alice, bob, board.NativeAsset, 200_000))
	bal, err := l.Balance(bob, board.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(200_000), bal)
	require.NoError(t, l.CheckReserves())

	err = l.Transfer(bob, carol, board.NativeAsset, 300_000)
	assert.ErrorIs(t, err, reverts.ErrInsufficientBalance)

	// leaving bob below the account minimum is caught at the end of the call
	require.NoError(t, l.Transfer(bob, carol, board.NativeAsset, 150_000))
	assert.ErrorIs(t, l.CheckReserves(), reverts.ErrMinBalance)

	assert.Len(t, l.Transfers(), 2)
}

func TestCloseOutAndCanReceive(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.Mint(alice, 500_000))

	ok, err := l.CanReceive(bob, board.NativeAsset)
	require.NoError(t, err)
	assert.False(t, ok, "closed account")

	require.NoError(t, l.CloseOut(alice, bob))
	acc, err := l.Account(alice)
	require.NoError(t, err)
	assert.True(t, acc.IsClosed())
	assert.Equal(t, uint64(0), acc.MinBalance())

	ok, err = l.CanReceive(bob, board.NativeAsset)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanSend(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.Mint(alice, 1_000_000))

	ok, err := l.CanSend(alice, board.NativeAsset, 1_000_000-board.AccountMinBalance)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.CanSend(alice, board.NativeAsset, 1_000_000-board.AccountMinBalance+1)
	require.NoError(t, err)
	assert.False(t, ok, "would break the minimum balance")

	id, err := l.CreateAsset(alice, carol, 1_000, "USD")
	require.NoError(t, err)
	ok, err = l.CanSend(alice, id, 1_000)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = l.CanSend(alice, id, 1_001)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = l.CanSend(bob, id, 1)
	require.NoError(t, err)
	assert.False(t, ok, "no holding")

	require.NoError(t, l.Freeze(carol, id, alice, true))
	ok, err = l.CanSend(alice, id, 1)
	require.NoError(t, err)
	assert.False(t, ok, "frozen")
}

func TestAssets(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.Mint(alice, 1_000_000))
	require.NoError(t, l.Mint(bob, 1_000_000))

	id, err := l.CreateAsset(alice, carol, 1_000, "USD")
	require.NoError(t, err)
	assert.Equal(t, board.AssetID(1), id)

	min, err := l.MinBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, board.AccountMinBalance+board.AssetReserve, min)

	err = l.Transfer(alice, bob, id, 10)
	assert.ErrorIs(t, err, reverts.ErrNotOptedIn)

	require.NoError(t, l.OptIn(bob, id))
	require.NoError(t, l.Transfer(alice, bob, id, 10))

	assert.ErrorIs(t, l.Freeze(alice, id, bob, true), reverts.ErrSender)
	require.NoError(t, l.Freeze(carol, id, bob, true))
	assert.ErrorIs(t, l.Transfer(bob, alice, id, 1), reverts.ErrFrozen)
	ok, err := l.CanReceive(bob, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Clawback(carol, id, bob, alice, 4))
	h, err := l.Holding(bob, id)
	require.NoError(t, err)
	assert.Equal(t, &Holding{Amount: 6, Frozen: true}, h)

	require.NoError(t, l.Freeze(carol, id, bob, false))
	require.NoError(t, l.AssetCloseOut(bob, id, alice))
	h, err = l.Holding(bob, id)
	require.NoError(t, err)
	assert.Nil(t, h)
	bal, err := l.Balance(alice, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), bal)

	assert.ErrorIs(t, l.OptIn(bob, board.NativeAsset), reverts.ErrNativeAsset)
	assert.ErrorIs(t, l.Freeze(carol, board.NativeAsset, bob, true), reverts.ErrNativeAsset)
}

type item struct {
	Owner board.Address
	Count uint64
}

func TestRecordReserve(t *testing.T) {
	l := newLedger(t)
	app, err := l.CreateApp(KindPlatform, 0, alice)
	require.NoError(t, err)
	ctx := l.Context(app)
	m := NewMapping[board.Address, *item](ctx, "items", 64)

	before, err := l.MinBalance(ctx.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), before)

	require.NoError(t, m.Insert(bob, &item{Owner: bob, Count: 1}))
	assert.ErrorIs(t, m.Insert(bob, &item{}), reverts.ErrRecordExists)

	acc, err := l.Account(ctx.Address())
	require.NoError(t, err)
	assert.Equal(t, m.Reserve(bob), acc.Reserve)
	assert.Equal(t, board.RecordReserve(uint64(len("items")+board.AddressLength), 64), acc.Reserve)

	// the app account does not hold the reserve yet
	assert.ErrorIs(t, l.CheckReserves(), reverts.ErrMinBalance)
	require.NoError(t, l.Mint(ctx.Address(), board.AccountMinBalance+acc.Reserve))
	require.NoError(t, l.CheckReserves())

	got, found, err := m.Get(bob)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(1), got.Count)

	got.Count = 2
	require.NoError(t, m.Update(bob, got))
	assert.Error(t, m.Update(carol, got))

	_, found, err = m.Get(carol)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Delete(bob))
	acc, err = l.Account(ctx.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), acc.Reserve)

	raw := NewRaw[[]byte](ctx, "blob", 4)
	assert.Error(t, raw.Insert([]byte("too large")))
	require.NoError(t, raw.Insert([]byte("ok")))
	v, found, err := raw.Get()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("ok"), v)
}

func TestCheckpointRevert(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.Mint(alice, 1_000_000))
	require.NoError(t, l.Emit(1, "before", nil))

	cp := l.Checkpoint()
	require.NoError(t, l.Transfer(alice, bob, board.NativeAsset, 500_000))
	app, err := l.CreateApp(KindAd, 1, alice)
	require.NoError(t, err)
	_, err = l.App(app)
	require.NoError(t, err)
	require.NoError(t, l.Emit(app, "inside", map[string]uint64{"x": 1}))
	l.RevertTo(cp)

	bal, err := l.Balance(alice, board.NativeAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), bal)
	assert.Len(t, l.Events(), 1)
	assert.Empty(t, l.Transfers())
	assert.NotContains(t, l.touched, bob)
	assert.Contains(t, l.touched, alice)
	_, err = l.App(app)
	assert.ErrorIs(t, err, reverts.ErrAppNotFound)

	// ids are reused after revert
	again, err := l.CreateApp(KindContract, 1, bob)
	require.NoError(t, err)
	assert.Equal(t, app, again)
	got, err := l.AppOfKind(again, KindContract)
	require.NoError(t, err)
	assert.Equal(t, bob, got.Owner)
}

func TestCommitPersists(t *testing.T) {
	for name, open := range map[string]func(dir string) (*Ledger, func()){
		"leveldb": func(dir string) (*Ledger, func()) {
			db, err := lvldb.New(dir, lvldb.Options{})
			require.NoError(t, err)
			l, err := New(db, Options{})
			require.NoError(t, err)
			return l, func() { db.Close() }
		},
		"pebble": func(dir string) (*Ledger, func()) {
			db, err := pebbledb.New(dir, pebbledb.Options{})
			require.NoError(t, err)
			l, err := New(db, Options{})
			require.NoError(t, err)
			return l, func() { db.Close() }
		},
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			l, closeFn := open(dir)
			require.NoError(t, l.Mint(alice, 1_000_000))
			_, err := l.AdvanceRound(10)
			require.NoError(t, err)
			require.NoError(t, l.Emit(0, "minted", nil))
			changes, err := l.Commit()
			require.NoError(t, err)
			assert.Equal(t, board.Round(10), changes.Round)
			assert.Len(t, changes.Events, 1)
			assert.Empty(t, l.Events())

			// staged but not committed
			require.NoError(t, l.Transfer(alice, bob, board.NativeAsset, 300_000))
			closeFn()

			l, closeFn = open(dir)
			defer closeFn()
			round, err := l.Round()
			require.NoError(t, err)
			assert.Equal(t, board.Round(10), round)
			bal, err := l.Balance(alice, board.NativeAsset)
			require.NoError(t, err)
			assert.Equal(t, uint64(1_000_000), bal)
			bal, err = l.Balance(bob, board.NativeAsset)
			require.NoError(t, err)
			assert.Equal(t, uint64(0), bal)
		})
	}
}

func TestKeys(t *testing.T) {
	l := newLedger(t)
	keys := &Keys{VoteFirst: 1, VoteLast: 100, VoteKeyDilution: 10}

	assert.ErrorIs(t, l.RegisterKeys(alice, keys, true), reverts.ErrAccountClosed)

	require.NoError(t, l.Mint(alice, 1_000_000))
	require.NoError(t, l.RegisterKeys(alice, keys, true))
	acc, err := l.Account(alice)
	require.NoError(t, err)
	assert.True(t, acc.Keys.Equal(keys))
	assert.True(t, acc.IncentiveEligible)

	require.NoError(t, l.Suspend(alice))
	acc, err = l.Account(alice)
	require.NoError(t, err)
	assert.False(t, acc.IncentiveEligible)
	assert.NotNil(t, acc.Keys)

	require.NoError(t, l.GoOffline(alice))
	acc, err = l.Account(alice)
	require.NoError(t, err)
	assert.Nil(t, acc.Keys)
}
