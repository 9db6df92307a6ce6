// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/logdb"
	"github.com/delegard/delegard/test/datagen"
)

func newChanges(round board.Round, app board.AppID, n int) *ledger.Changes {
	c := &ledger.Changes{Round: round}
	for i := range n {
		c.Events = append(c.Events, &ledger.Event{Round: round, App: app, Name: "claimed", Data: json.RawMessage(`{"i":` + string(rune('0'+i)) + `}`)})
		c.Transfers = append(c.Transfers, &ledger.Transfer{
			Round:  round,
			From:   datagen.RandAddress(),
			To:     datagen.RandAddress(),
			Asset:  board.AssetID(i),
			Amount: uint64(1000 + i),
		})
	}
	return c
}

func TestWriteAndFilter(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	sender := datagen.RandAddress()
	call1, call2 := datagen.RandomHash(), datagen.RandomHash()

	w := db.NewWriter()
	require.NoError(t, w.Write(call1, sender, newChanges(10, 1, 3)))
	require.NoError(t, w.Write(call2, sender, newChanges(10, 2, 2)))
	assert.Equal(t, 10, w.UncommittedCount())
	require.NoError(t, w.Commit())
	assert.Equal(t, 0, w.UncommittedCount())

	// a fresh writer continues the indexes of round 10
	w = db.NewWriter()
	require.NoError(t, w.Write(datagen.RandomHash(), sender, newChanges(10, 1, 1)))
	require.NoError(t, w.Write(datagen.RandomHash(), sender, newChanges(12, 3, 1)))
	require.NoError(t, w.Commit())

	all, err := db.FilterEvents(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 7)
	for i := range 6 {
		assert.Equal(t, board.Round(10), all[i].Round)
		assert.Equal(t, uint32(i), all[i].Index)
	}
	assert.Equal(t, board.Round(12), all[6].Round)
	assert.Equal(t, uint32(0), all[6].Index)
	assert.JSONEq(t, `{"i":0}`, string(all[0].Data))

	app := board.AppID(1)
	events, err := db.FilterEvents(ctx, &logdb.EventFilter{CriteriaSet: []*logdb.EventCriteria{{App: &app}}})
	require.NoError(t, err)
	assert.Len(t, events, 4)

	events, err = db.FilterEvents(ctx, &logdb.EventFilter{CallID: &call2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, board.AppID(2), events[0].App)

	events, err = db.FilterEvents(ctx, &logdb.EventFilter{
		Range:   &logdb.Range{From: 11, To: 20},
		Order:   logdb.DESC,
		Options: &logdb.Options{Offset: 0, Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, board.AppID(3), events[0].App)

	name := "claimed"
	other := board.AppID(3)
	events, err = db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{App: &app, Name: &name}, {App: &other}},
		Order:       logdb.DESC,
		Options:     &logdb.Options{Offset: 1, Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, board.AppID(1), events[0].App)

	transfers, err := db.FilterTransfers(ctx, &logdb.TransferFilter{CallID: &call1})
	require.NoError(t, err)
	require.Len(t, transfers, 3)
	assert.Equal(t, uint64(1002), transfers[2].Amount)
	assert.Equal(t, sender, transfers[0].Sender)

	asset := board.AssetID(1)
	to := transfers[1].To
	transfers, err = db.FilterTransfers(ctx, &logdb.TransferFilter{
		CriteriaSet: []*logdb.TransferCriteria{{Asset: &asset}, {To: &to}},
	})
	require.NoError(t, err)
	assert.Len(t, transfers, 2)
}

func TestPersistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := logdb.New(path)
	require.NoError(t, err)
	w := db.NewWriter()
	require.NoError(t, w.Write(datagen.RandomHash(), datagen.RandAddress(), newChanges(5, 1, 2)))
	require.NoError(t, w.Commit())
	require.NoError(t, db.Close())

	db, err = logdb.New(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())

	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	w = db.NewWriter()
	require.NoError(t, w.Write(datagen.RandomHash(), datagen.RandAddress(), newChanges(5, 1, 1)))
	require.NoError(t, w.Commit())
	events, err = db.FilterEvents(context.Background(), &logdb.EventFilter{Order: logdb.DESC})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), events[0].Index)
}

func TestRollback(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	w := db.NewWriter()
	require.NoError(t, w.Write(datagen.RandomHash(), datagen.RandAddress(), newChanges(1, 1, 2)))
	w.Rollback()
	require.NoError(t, w.Commit())

	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}
