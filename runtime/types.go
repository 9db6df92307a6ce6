// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/ledger"
)

// Call is one request against the ledger. Payments are transfers from the
// sender applied before the method runs, in the same unit of work.
type Call struct {
	Sender   board.Address     `json:"sender"`
	App      board.AppID       `json:"app,omitempty"`
	Method   string            `json:"method"`
	Args     json.RawMessage   `json:"args,omitempty"`
	Payments []*ledger.Payment `json:"payments,omitempty"`
}

// ID derives the call id from its content, the round and a nonce.
func (c *Call) ID(round board.Round, nonce uint64) board.Bytes32 {
	return board.Blake2bFn(func(w io.Writer) {
		var b [8]byte
		w.Write(c.Sender.Bytes())
		w.Write(c.App.Bytes())
		w.Write([]byte(c.Method))
		w.Write(c.Args)
		for _, p := range c.Payments {
			if p == nil {
				continue
			}
			w.Write(p.Receiver.Bytes())
			w.Write(p.Asset.Bytes())
			binary.BigEndian.PutUint64(b[:], p.Amount)
			w.Write(b[:])
		}
		binary.BigEndian.PutUint64(b[:], round)
		w.Write(b[:])
		binary.BigEndian.PutUint64(b[:], nonce)
		w.Write(b[:])
	})
}

// Receipt is the outcome of a call.
type Receipt struct {
	CallID    board.Bytes32      `json:"callId"`
	Round     board.Round        `json:"round"`
	Method    string             `json:"method"`
	Reverted  bool               `json:"reverted"`
	Code      string             `json:"code,omitempty"`
	Kind      string             `json:"kind,omitempty"`
	Message   string             `json:"message,omitempty"`
	Output    json.RawMessage    `json:"output,omitempty"`
	Events    []*ledger.Event    `json:"events"`
	Transfers []*ledger.Transfer `json:"transfers"`
}
