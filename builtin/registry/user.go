// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/reverts"
)

// Role of a registered user.
type Role uint8

const (
	RoleValidator Role = iota + 1
	RoleDelegator
)

// Bytes implements ledger.Key.
func (r Role) Bytes() []byte { return []byte{byte(r)} }

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleValidator || r == RoleDelegator }

func (r Role) String() string {
	switch r {
	case RoleValidator:
		return "validator"
	case RoleDelegator:
		return "delegator"
	}
	return "unknown"
}

// ParseRole parses "validator" or "delegator".
func ParseRole(s string) (Role, error) {
	switch s {
	case "validator":
		return RoleValidator, nil
	case "delegator":
		return RoleDelegator, nil
	}
	return 0, reverts.Wrap(reverts.ErrUserRole, "unknown role %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	v, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// User is the registry record of one address.
// AppIDs holds the ads (validators) or contracts (delegators) the user owns;
// Cnt always equals the number of non-zero entries.
type User struct {
	Role   Role                         `json:"role"`
	Prev   board.Address                `json:"prev"`
	Next   board.Address                `json:"next"`
	AppIDs [board.UserSlots]board.AppID `json:"appIds"`
	Cnt    uint64                       `json:"cnt"`
}

// Slot returns the id at idx, or zero if idx is out of range.
func (u *User) Slot(idx uint64) board.AppID {
	if idx >= board.UserSlots {
		return 0
	}
	return u.AppIDs[idx]
}

// FreeSlot returns the first empty slot index, or false if the table is full.
func (u *User) FreeSlot() (uint64, bool) {
	for i, id := range u.AppIDs {
		if id.IsZero() {
			return uint64(i), true
		}
	}
	return 0, false
}

// List is the head/tail/count of one role's doubly linked user list.
type List struct {
	First board.Address `json:"first"`
	Last  board.Address `json:"last"`
	Count uint64        `json:"count"`
}

// encoded sizes, with headroom over the worst case rlp length
const (
	userRecordSize = 2 + 2*(1+board.AddressLength) + (3 + board.UserSlots*9) + 9 + 8
	listRecordSize = 3 + 2*(1+board.AddressLength) + 9 + 8
)
