// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package contract implements the delegator contract: one delegation of a
// beneficiary's stake to a validator ad, with an escrow paying the validator
// as the delegation runs.
package contract

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/log"
	"github.com/delegard/delegard/reverts"
)

var logger = log.WithContext("pkg", "contract")

const (
	stateName = "state"
	stateSize = 640
)

// Reserve returns the minimum balance a new contract priced in asset must be funded with.
func Reserve(asset board.AssetID) uint64 {
	r := board.AccountMinBalance + board.RecordReserve(uint64(len(stateName)), stateSize)
	if !asset.IsNative() {
		r += board.AssetReserve
	}
	return r
}

// Contract is a handle on one delegator contract app.
type Contract struct {
	id    board.AppID
	l     *ledger.Ledger
	state *ledger.Raw[*Delegation]
}

func bind(l *ledger.Ledger, id board.AppID) *Contract {
	return &Contract{
		id:    id,
		l:     l,
		state: ledger.NewRaw[*Delegation](l.Context(id), stateName, stateSize),
	}
}

// Create creates a contract app owned by ad. The caller funds its reserve.
func Create(l *ledger.Ledger, platform, ad board.AppID, manager board.Address) (*Contract, error) {
	id, err := l.CreateApp(ledger.KindContract, ad, manager)
	if err != nil {
		return nil, err
	}
	c := bind(l, id)
	d := &Delegation{State: StateCreated, Platform: platform, Ad: ad, Manager: manager}
	if err := c.state.Insert(d); err != nil {
		return nil, err
	}
	return c, l.Emit(id, "contract_created", map[string]any{"ad": ad, "manager": manager})
}

// Open binds an existing contract app.
func Open(l *ledger.Ledger, id board.AppID) (*Contract, error) {
	if _, err := l.AppOfKind(id, ledger.KindContract); err != nil {
		return nil, err
	}
	return bind(l, id), nil
}

// ID returns the app id.
func (c *Contract) ID() board.AppID { return c.id }

// Address returns the app account address.
func (c *Contract) Address() board.Address { return board.AppAddress(c.id) }

// Get returns the stored state.
func (c *Contract) Get() (*Delegation, error) {
	d, found, err := c.state.Get()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Errorf("contract %v has no state", c.id)
	}
	return d, nil
}

// load returns the state after checking caller is the creating ad and the
// contract is in one of states.
func (c *Contract) load(caller board.AppID, states ...State) (*Delegation, error) {
	d, err := c.Get()
	if err != nil {
		return nil, err
	}
	if caller != d.Ad {
		return nil, reverts.Wrap(reverts.ErrCalledByNotCreator, "contract %v created by %v, called by %v", c.id, d.Ad, caller)
	}
	if len(states) > 0 && !slices.Contains(states, d.State) {
		return nil, reverts.Wrap(reverts.ErrState, "contract %v is %v", c.id, d.State)
	}
	return d, nil
}

func (c *Contract) save(d *Delegation) error {
	return c.state.Update(d)
}

func (c *Contract) emit(name string, data any) error {
	return c.l.Emit(c.id, name, data)
}

// Eligible reports whether the beneficiary currently respects the balance terms.
func (c *Contract) Eligible(d *Delegation) (bool, error) {
	bal, err := c.l.Balance(d.Beneficiary, board.NativeAsset)
	if err != nil {
		return false, err
	}
	if bal > d.Balance.StakeMax {
		return false, nil
	}
	for _, g := range d.Balance.Gating {
		if g.ID.IsNative() {
			continue
		}
		h, err := c.l.Holding(d.Beneficiary, g.ID)
		if err != nil {
			return false, err
		}
		if h == nil || h.Amount < g.Min {
			return false, nil
		}
	}
	return true, nil
}

// end moves the contract to a terminal state.
func (c *Contract) end(d *Delegation, state State) error {
	now, err := c.l.Round()
	if err != nil {
		return err
	}
	d.State = state
	d.RoundEnded = now
	logger.Debug("contract ended", "id", c.id, "state", state, "round", now)
	return c.emit("contract_ended", map[string]any{"state": state.String()})
}

// refund returns amount of the fee asset to the manager if the escrow can pay it
// and the manager can receive it. Otherwise the amount stays in escrow until the
// contract is deleted.
func (c *Contract) refund(d *Delegation, amount uint64) error {
	if amount == 0 {
		return nil
	}
	canSend, err := c.l.CanSend(c.Address(), d.General.Asset, amount)
	if err != nil {
		return err
	}
	if !canSend {
		logger.Debug("refund withheld, escrow cannot pay", "id", c.id, "asset", d.General.Asset, "amount", amount)
		return nil
	}
	canReceive, err := c.l.CanReceive(d.Manager, d.General.Asset)
	if err != nil {
		return err
	}
	if !canReceive {
		logger.Debug("refund withheld", "id", c.id, "manager", d.Manager, "amount", amount)
		return nil
	}
	return c.l.Transfer(c.Address(), d.Manager, d.General.Asset, amount)
}
