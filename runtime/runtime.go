// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes calls against the ledger one at a time. Each call,
// its payments included, is one unit of work: it commits as a whole or
// leaves no trace.
package runtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/log"
	"github.com/delegard/delegard/logdb"
	"github.com/delegard/delegard/reverts"
)

var logger = log.WithContext("pkg", "runtime")

// Runtime serializes access to the ledger.
type Runtime struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	logDB  *logdb.LogDB
	nonce  uint64
}

// New creates a runtime. logDB may be nil.
func New(l *ledger.Ledger, logDB *logdb.LogDB) *Runtime {
	return &Runtime{ledger: l, logDB: logDB}
}

// Exec runs a call and commits it if no guard failed. A failed guard yields
// a reverted receipt; other failures are returned as errors.
func (rt *Runtime) Exec(ctx context.Context, call *Call) (*Receipt, error) {
	return rt.run(ctx, call, true)
}

// Simulate runs a call like Exec and discards its effects.
func (rt *Runtime) Simulate(ctx context.Context, call *Call) (*Receipt, error) {
	return rt.run(ctx, call, false)
}

// Query runs a read-only method.
func (rt *Runtime) Query(ctx context.Context, call *Call) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := builtin.Lookup(call.Method)
	if m == nil || m.Write {
		return nil, reverts.Wrap(reverts.ErrUnknownMethod, "no query %q", call.Method)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	defer rt.ledger.Discard()

	out, err := m.Call(builtin.NewEnv(rt.ledger, call.Sender, call.App, call.Args, nil))
	if err != nil {
		return nil, err
	}
	return marshalOutput(out)
}

func (rt *Runtime) run(ctx context.Context, call *Call, commit bool) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()

	start := time.Now()
	round, err := rt.ledger.Round()
	if err != nil {
		return nil, err
	}
	rt.nonce++
	receipt := &Receipt{CallID: call.ID(round, rt.nonce), Round: round, Method: call.Method}
	logger.Debug("call", "id", receipt.CallID.AbbrevString(), "method", call.Method, "sender", call.Sender)

	cp := rt.ledger.Checkpoint()
	out, err := rt.execute(call)
	if err == nil {
		receipt.Output, err = marshalOutput(out)
	}
	if err != nil {
		if !reverts.IsRevertErr(err) {
			rt.ledger.Discard()
			metricCallCount().AddWithLabel(1, map[string]string{"method": call.Method, "outcome": "error"})
			logger.Error("call failed", "id", receipt.CallID.AbbrevString(), "method", call.Method, "err", err)
			return nil, err
		}
		// payments and method effects go together
		rt.ledger.RevertTo(cp)
		receipt.Reverted = true
		receipt.Code = reverts.CodeOf(err)
		receipt.Kind = reverts.KindOf(err).String()
		receipt.Message = err.Error()
		metricCallCount().AddWithLabel(1, map[string]string{"method": call.Method, "outcome": "reverted"})
		logger.Debug("call reverted", "id", receipt.CallID.AbbrevString(), "method", call.Method, "code", receipt.Code, "err", err)
		return receipt, nil
	}

	if !commit {
		receipt.Events = rt.ledger.Events()
		receipt.Transfers = rt.ledger.Transfers()
		rt.ledger.Discard()
		return receipt, nil
	}
	changes, err := rt.ledger.Commit()
	if err != nil {
		rt.ledger.Discard()
		return nil, errors.WithMessage(err, "commit call")
	}
	receipt.Events = changes.Events
	receipt.Transfers = changes.Transfers
	rt.writeLogs(receipt.CallID, call.Sender, changes)

	metricCallCount().AddWithLabel(1, map[string]string{"method": call.Method, "outcome": "ok"})
	metricCallDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"method": call.Method})
	logger.Info("call executed", "id", receipt.CallID.AbbrevString(), "method", call.Method, "events", len(changes.Events))
	return receipt, nil
}

func (rt *Runtime) execute(call *Call) (any, error) {
	m := builtin.Lookup(call.Method)
	if m == nil {
		return nil, reverts.Wrap(reverts.ErrUnknownMethod, "%q", call.Method)
	}
	payments := make([]*ledger.Payment, len(call.Payments))
	for i, p := range call.Payments {
		if p == nil {
			return nil, reverts.Wrap(reverts.ErrBadArgs, "payment %d is empty", i)
		}
		pay := *p
		pay.Sender = call.Sender
		if err := rt.ledger.Transfer(pay.Sender, pay.Receiver, pay.Asset, pay.Amount); err != nil {
			return nil, err
		}
		payments[i] = &pay
	}

	out, err := m.Call(builtin.NewEnv(rt.ledger, call.Sender, call.App, call.Args, payments))
	if err != nil {
		return nil, err
	}
	if err := rt.ledger.CheckReserves(); err != nil {
		return nil, err
	}
	return out, nil
}

// writeLogs stores the logs of a committed call. The ledger is already
// committed, so failures are logged and not returned.
func (rt *Runtime) writeLogs(id board.Bytes32, sender board.Address, changes *ledger.Changes) {
	if rt.logDB == nil || len(changes.Events)+len(changes.Transfers) == 0 {
		return
	}
	w := rt.logDB.NewWriter()
	if err := w.Write(id, sender, changes); err != nil {
		logger.Warn("failed to write logs", "id", id.AbbrevString(), "err", err)
		return
	}
	if err := w.Commit(); err != nil {
		logger.Warn("failed to commit logs", "id", id.AbbrevString(), "err", err)
	}
}

// Round returns the current round.
func (rt *Runtime) Round() (board.Round, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.ledger.Round()
}

// AdvanceRound moves the round counter forward by n and commits it.
func (rt *Runtime) AdvanceRound(ctx context.Context, n uint64) (board.Round, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()

	round, err := rt.ledger.AdvanceRound(n)
	if err != nil {
		rt.ledger.Discard()
		return 0, err
	}
	if _, err := rt.ledger.Commit(); err != nil {
		rt.ledger.Discard()
		return 0, err
	}
	metricRound().Set(int64(round))
	logger.Debug("round advanced", "round", round)
	return round, nil
}

// Setup runs fn directly on the ledger and commits its changes. It is meant
// for genesis allocation, which has no call surface; fn's events are not logged.
func (rt *Runtime) Setup(fn func(l *ledger.Ledger) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if err := fn(rt.ledger); err != nil {
		rt.ledger.Discard()
		return err
	}
	if err := rt.ledger.CheckReserves(); err != nil {
		rt.ledger.Discard()
		return err
	}
	if _, err := rt.ledger.Commit(); err != nil {
		rt.ledger.Discard()
		return errors.WithMessage(err, "commit setup")
	}
	round, err := rt.ledger.Round()
	if err != nil {
		return err
	}
	metricRound().Set(int64(round))
	return nil
}

func marshalOutput(out any) (json.RawMessage, error) {
	if out == nil {
		return nil, nil
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, "encode output")
	}
	return data, nil
}
