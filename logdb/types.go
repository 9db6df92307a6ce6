// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"encoding/json"

	"github.com/delegard/delegard/board"
)

// Event is an app event of a committed call.
type Event struct {
	Round  board.Round     `json:"round"`
	Index  uint32          `json:"index"`
	CallID board.Bytes32   `json:"callId"`
	Sender board.Address   `json:"sender"`
	App    board.AppID     `json:"app"`
	Name   string          `json:"name"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Transfer is a value movement of a committed call.
type Transfer struct {
	Round  board.Round   `json:"round"`
	Index  uint32        `json:"index"`
	CallID board.Bytes32 `json:"callId"`
	Sender board.Address `json:"sender"` // who sent the call
	From   board.Address `json:"from"`
	To     board.Address `json:"to"`
	Asset  board.AssetID `json:"asset"`
	Amount uint64        `json:"amount"`
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive round range.
type Range struct {
	From board.Round `json:"from"`
	To   board.Round `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventCriteria struct {
	App  *board.AppID `json:"app"`
	Name *string      `json:"name"`
}

// EventFilter selects events matching any of the criteria.
type EventFilter struct {
	CallID      *board.Bytes32   `json:"callId"`
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       Order            `json:"order"` // default asc
}

type TransferCriteria struct {
	Sender *board.Address `json:"sender"` // who sent the call
	From   *board.Address `json:"from"`
	To     *board.Address `json:"to"`
	Asset  *board.AssetID `json:"asset"`
}

// TransferFilter selects transfers matching any of the criteria.
type TransferFilter struct {
	CallID      *board.Bytes32      `json:"callId"`
	CriteriaSet []*TransferCriteria `json:"criteriaSet"`
	Range       *Range              `json:"range"`
	Options     *Options            `json:"options"`
	Order       Order               `json:"order"` // default asc
}
