// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb stores the events and transfers of committed calls in sqlite.
package logdb

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/log"
)

var logger = log.WithContext("pkg", "logdb")

const (
	insertEvent    = "INSERT OR REPLACE INTO event(seq, callID, sender, app, name, data) VALUES(?, ?, ?, ?, ?, ?)"
	insertTransfer = "INSERT OR REPLACE INTO transfer(seq, callID, sender, src, dst, asset, amount) VALUES(?, ?, ?, ?, ?, ?, ?)"
	maxEventSeq    = "SELECT MAX(seq) FROM event WHERE seq >= ? AND seq <= ?"
	maxTransferSeq = "SELECT MAX(seq) FROM transfer WHERE seq >= ? AND seq <= ?"
)

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmts         *statements
}

// New create or open log db at given path.
func New(path string) (*LogDB, error) {
	return open(path, path+"?_journal_mode=WAL")
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return open(":memory:", ":memory:")
}

func open(path, dsn string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// sqlite serializes writers; a single connection keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	stmts, err := prepareStatements(db)
	if err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmts:         stmts,
	}, nil
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmts.close()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func roundBounds(r *Range) (sequence, sequence) {
	from, to := r.From, r.To
	if to > math.MaxUint32 {
		to = math.MaxUint32
	}
	if from > to {
		from = to
	}
	return newSequence(from, 0), newSequence(to, math.MaxInt32)
}

func order(o Order) string {
	if o == DESC {
		return " ORDER BY seq DESC"
	}
	return " ORDER BY seq ASC"
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	const query = "SELECT seq, callID, sender, app, name, data FROM event"
	if filter == nil {
		return db.queryEvents(ctx, query+order(ASC))
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := query + " WHERE 1"
	if filter.Range != nil {
		from, to := roundBounds(filter.Range)
		stmt += " AND seq >= ? AND seq <= ?"
		args = append(args, from, to)
	}
	if filter.CallID != nil {
		stmt += " AND callID = ?"
		args = append(args, filter.CallID.Bytes())
	}
	for i, c := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if c.App != nil {
			stmt += " AND app = ?"
			args = append(args, int64(*c.App))
		}
		if c.Name != nil {
			stmt += " AND name = ?"
			args = append(args, *c.Name)
		}
		stmt += " )"
		if i == len(filter.CriteriaSet)-1 {
			stmt += " )"
		}
	}
	stmt += order(filter.Order)
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	const query = "SELECT seq, callID, sender, src, dst, asset, amount FROM transfer"
	if filter == nil {
		return db.queryTransfers(ctx, query+order(ASC))
	}
	metricsHandleCommon(filter.Options, filter.Order, len(filter.CriteriaSet), "transfer")

	var args []any
	stmt := query + " WHERE 1"
	if filter.Range != nil {
		from, to := roundBounds(filter.Range)
		stmt += " AND seq >= ? AND seq <= ?"
		args = append(args, from, to)
	}
	if filter.CallID != nil {
		stmt += " AND callID = ?"
		args = append(args, filter.CallID.Bytes())
	}
	for i, c := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if c.Sender != nil {
			stmt += " AND sender = ?"
			args = append(args, c.Sender.Bytes())
		}
		if c.From != nil {
			stmt += " AND src = ?"
			args = append(args, c.From.Bytes())
		}
		if c.To != nil {
			stmt += " AND dst = ?"
			args = append(args, c.To.Bytes())
		}
		if c.Asset != nil {
			stmt += " AND asset = ?"
			args = append(args, int64(*c.Asset))
		}
		stmt += " )"
		if i == len(filter.CriteriaSet)-1 {
			stmt += " )"
		}
	}
	stmt += order(filter.Order)
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryTransfers(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq    sequence
			callID []byte
			sender []byte
			app    int64
			name   string
			data   []byte
		)
		if err := rows.Scan(&seq, &callID, &sender, &app, &name, &data); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			Round:  seq.Round(),
			Index:  seq.Index(),
			CallID: board.BytesToBytes32(callID),
			Sender: board.BytesToAddress(sender),
			App:    board.AppID(app),
			Name:   name,
			Data:   data,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryTransfers(ctx context.Context, stmt string, args ...any) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq      sequence
			callID   []byte
			sender   []byte
			src, dst []byte
			asset    int64
			amount   []byte
		)
		if err := rows.Scan(&seq, &callID, &sender, &src, &dst, &asset, &amount); err != nil {
			return nil, err
		}
		if len(amount) != 8 {
			return nil, fmt.Errorf("transfer %d: bad amount encoding", seq)
		}
		transfers = append(transfers, &Transfer{
			Round:  seq.Round(),
			Index:  seq.Index(),
			CallID: board.BytesToBytes32(callID),
			Sender: board.BytesToAddress(sender),
			From:   board.BytesToAddress(src),
			To:     board.BytesToAddress(dst),
			Asset:  board.AssetID(asset),
			Amount: binary.BigEndian.Uint64(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

// nextIndex returns the index after the last one stored for round.
func (db *LogDB) nextIndex(stmt *sql.Stmt, round board.Round) (uint32, error) {
	var last sql.NullInt64
	if err := stmt.QueryRow(newSequence(round, 0), newSequence(round, math.MaxInt32)).Scan(&last); err != nil {
		return 0, err
	}
	if !last.Valid {
		return 0, nil
	}
	return sequence(last.Int64).Index() + 1, nil
}

// Writer accumulates the logs of committed calls until Commit.
type Writer struct {
	db        *LogDB
	events    []*Event
	transfers []*Transfer
	cursor    map[board.Round][2]uint32
}

// NewWriter creates a log writer.
func (db *LogDB) NewWriter() *Writer {
	return &Writer{db: db, cursor: make(map[board.Round][2]uint32)}
}

func (w *Writer) next(round board.Round) ([2]uint32, error) {
	if c, ok := w.cursor[round]; ok {
		return c, nil
	}
	ev, err := w.db.nextIndex(w.db.stmts.maxEventSeq, round)
	if err != nil {
		return [2]uint32{}, err
	}
	tr, err := w.db.nextIndex(w.db.stmts.maxTransferSeq, round)
	if err != nil {
		return [2]uint32{}, err
	}
	return [2]uint32{ev, tr}, nil
}

// Write appends the changes of one committed call.
func (w *Writer) Write(callID board.Bytes32, sender board.Address, changes *ledger.Changes) error {
	c, err := w.next(changes.Round)
	if err != nil {
		return err
	}
	for _, ev := range changes.Events {
		w.events = append(w.events, &Event{
			Round:  changes.Round,
			Index:  c[0],
			CallID: callID,
			Sender: sender,
			App:    ev.App,
			Name:   ev.Name,
			Data:   ev.Data,
		})
		c[0]++
	}
	for _, tr := range changes.Transfers {
		w.transfers = append(w.transfers, &Transfer{
			Round:  changes.Round,
			Index:  c[1],
			CallID: callID,
			Sender: sender,
			From:   tr.From,
			To:     tr.To,
			Asset:  tr.Asset,
			Amount: tr.Amount,
		})
		c[1]++
	}
	w.cursor[changes.Round] = c
	return nil
}

// UncommittedCount returns the count of uncommitted logs.
func (w *Writer) UncommittedCount() int {
	return len(w.events) + len(w.transfers)
}

// Commit writes the accumulated logs in one transaction.
func (w *Writer) Commit() error {
	tx, err := w.db.db.Begin()
	if err != nil {
		return err
	}
	if err := w.exec(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	w.Rollback()
	return nil
}

func (w *Writer) exec(tx *sql.Tx) error {
	evStmt, trStmt := tx.Stmt(w.db.stmts.insertEvent), tx.Stmt(w.db.stmts.insertTransfer)
	for _, ev := range w.events {
		if _, err := evStmt.Exec(
			newSequence(ev.Round, ev.Index),
			ev.CallID.Bytes(),
			ev.Sender.Bytes(),
			int64(ev.App),
			ev.Name,
			[]byte(ev.Data),
		); err != nil {
			return errors.Wrap(err, "insert event")
		}
	}
	var amount [8]byte
	for _, tr := range w.transfers {
		binary.BigEndian.PutUint64(amount[:], tr.Amount)
		if _, err := trStmt.Exec(
			newSequence(tr.Round, tr.Index),
			tr.CallID.Bytes(),
			tr.Sender.Bytes(),
			tr.From.Bytes(),
			tr.To.Bytes(),
			int64(tr.Asset),
			amount[:],
		); err != nil {
			return errors.Wrap(err, "insert transfer")
		}
	}
	return nil
}

// Rollback drops all uncommitted logs.
func (w *Writer) Rollback() {
	w.events = nil
	w.transfers = nil
	w.cursor = make(map[board.Round][2]uint32)
}
