// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry keeps the platform's user records: one doubly linked list
// per role threaded through the records by address, and a per-user slot
// table of owned app ids. Slot indices are supplied by callers and only
// validated here.
package registry

import (
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/log"
	"github.com/delegard/delegard/reverts"
)

var logger = log.WithContext("pkg", "registry")

// Registry is the user registry of a platform.
type Registry struct {
	users *ledger.Mapping[board.Address, *User]
	lists *ledger.Mapping[Role, *List]
}

// New binds a registry to the platform's record storage.
func New(ctx *ledger.Context) *Registry {
	return &Registry{
		users: ledger.NewMapping[board.Address, *User](ctx, "user", userRecordSize),
		lists: ledger.NewMapping[Role, *List](ctx, "list", listRecordSize),
	}
}

// Init creates the empty lists.
func (r *Registry) Init() error {
	for _, role := range []Role{RoleValidator, RoleDelegator} {
		if err := r.lists.Insert(role, &List{}); err != nil {
			return err
		}
	}
	return nil
}

// UserReserve returns the storage reserve one user record holds.
func (r *Registry) UserReserve(addr board.Address) uint64 {
	return r.users.Reserve(addr)
}

// User returns the record of addr, or nil if not registered.
func (r *Registry) User(addr board.Address) (*User, error) {
	u, found, err := r.users.Get(addr)
	if err != nil || !found {
		return nil, err
	}
	return u, nil
}

// RequireRole returns the record of addr and checks its role.
func (r *Registry) RequireRole(addr board.Address, role Role) (*User, error) {
	u, err := r.User(addr)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, reverts.Wrap(reverts.ErrUserNotRegistered, "%v", addr)
	}
	if u.Role != role {
		return nil, reverts.Wrap(reverts.ErrUserRole, "%v is a %v", addr, u.Role)
	}
	return u, nil
}

// List returns the list of a role.
func (r *Registry) List(role Role) (*List, error) {
	l, _, err := r.lists.Get(role)
	return l, err
}

// Create registers addr with role and appends it to the role's list.
func (r *Registry) Create(addr board.Address, role Role) error {
	if !role.Valid() {
		return reverts.Wrap(reverts.ErrUserRole, "role %d", role)
	}
	if addr.IsZero() {
		return reverts.Wrap(reverts.ErrBadArgs, "zero address")
	}
	existing, err := r.User(addr)
	if err != nil {
		return err
	}
	if existing != nil {
		return reverts.Wrap(reverts.ErrUserExists, "%v", addr)
	}
	if err := r.users.Insert(addr, &User{Role: role}); err != nil {
		return err
	}
	if err := r.insertTail(addr, role); err != nil {
		return err
	}
	logger.Debug("user created", "addr", addr, "role", role)
	return nil
}

// Delete unlinks and removes the record of addr. The user must own no apps.
func (r *Registry) Delete(addr board.Address) error {
	u, err := r.User(addr)
	if err != nil {
		return err
	}
	if u == nil {
		return reverts.Wrap(reverts.ErrUserNotRegistered, "%v", addr)
	}
	if u.Cnt > 0 {
		return reverts.Wrap(reverts.ErrUserHasApps, "%v owns %d apps", addr, u.Cnt)
	}
	if err := r.remove(addr); err != nil {
		return err
	}
	if err := r.users.Delete(addr); err != nil {
		return err
	}
	logger.Debug("user deleted", "addr", addr)
	return nil
}

// insertTail appends addr to the list of role, updating the former tail.
func (r *Registry) insertTail(addr board.Address, role Role) error {
	list, err := r.List(role)
	if err != nil {
		return err
	}
	u, err := r.User(addr)
	if err != nil {
		return err
	}

	if list.Last.IsZero() {
		// the list is empty, this entry becomes head and tail
		list.First = addr
	} else {
		tail, err := r.User(list.Last)
		if err != nil {
			return err
		}
		tail.Next = addr
		if err := r.users.Update(list.Last, tail); err != nil {
			return err
		}
		u.Prev = list.Last
	}
	u.Next = board.Address{}
	list.Last = addr
	list.Count++

	if err := r.users.Update(addr, u); err != nil {
		return err
	}
	return r.lists.Update(role, list)
}

// remove unlinks addr from its list, relinking its neighbours.
func (r *Registry) remove(addr board.Address) error {
	u, err := r.User(addr)
	if err != nil {
		return err
	}
	list, err := r.List(u.Role)
	if err != nil {
		return err
	}

	switch {
	case u.Prev.IsZero() && u.Next.IsZero():
		// sole entry
		list.First = board.Address{}
		list.Last = board.Address{}
	case u.Prev.IsZero():
		// head
		next, err := r.User(u.Next)
		if err != nil {
			return err
		}
		next.Prev = board.Address{}
		if err := r.users.Update(u.Next, next); err != nil {
			return err
		}
		list.First = u.Next
	case u.Next.IsZero():
		// tail
		prev, err := r.User(u.Prev)
		if err != nil {
			return err
		}
		prev.Next = board.Address{}
		if err := r.users.Update(u.Prev, prev); err != nil {
			return err
		}
		list.Last = u.Prev
	default:
		prev, err := r.User(u.Prev)
		if err != nil {
			return err
		}
		next, err := r.User(u.Next)
		if err != nil {
			return err
		}
		prev.Next = u.Next
		next.Prev = u.Prev
		if err := r.users.Update(u.Prev, prev); err != nil {
			return err
		}
		if err := r.users.Update(u.Next, next); err != nil {
			return err
		}
	}
	list.Count--

	u.Prev = board.Address{}
	u.Next = board.Address{}
	if err := r.users.Update(addr, u); err != nil {
		return err
	}
	return r.lists.Update(u.Role, list)
}

// Iter walks the list of role from head to tail.
func (r *Registry) Iter(role Role, cb func(board.Address, *User) error) error {
	list, err := r.List(role)
	if err != nil {
		return err
	}
	for ptr := list.First; !ptr.IsZero(); {
		u, err := r.User(ptr)
		if err != nil {
			return err
		}
		if err := cb(ptr, u); err != nil {
			return err
		}
		ptr = u.Next
	}
	return nil
}

// ReserveSlot stores a non-zero id at idx of addr's slot table. The slot must be empty.
func (r *Registry) ReserveSlot(addr board.Address, idx uint64, id board.AppID) error {
	if id.IsZero() {
		return reverts.Wrap(reverts.ErrBadArgs, "zero app id")
	}
	u, err := r.slotUser(addr, idx)
	if err != nil {
		return err
	}
	if !u.AppIDs[idx].IsZero() {
		return reverts.Wrap(reverts.ErrSlotTaken, "slot %d of %v holds %v", idx, addr, u.AppIDs[idx])
	}
	u.AppIDs[idx] = id
	u.Cnt++
	return r.users.Update(addr, u)
}

// ReleaseSlot clears idx of addr's slot table. The slot must hold id.
func (r *Registry) ReleaseSlot(addr board.Address, idx uint64, id board.AppID) error {
	u, err := r.CheckSlot(addr, idx, id)
	if err != nil {
		return err
	}
	u.AppIDs[idx] = 0
	u.Cnt--
	return r.users.Update(addr, u)
}

// CheckSlot verifies idx of addr's slot table holds id, and returns the record.
func (r *Registry) CheckSlot(addr board.Address, idx uint64, id board.AppID) (*User, error) {
	u, err := r.slotUser(addr, idx)
	if err != nil {
		return nil, err
	}
	if id.IsZero() || u.AppIDs[idx] != id {
		return nil, reverts.Wrap(reverts.ErrSlotMismatch, "slot %d of %v holds %v, not %v", idx, addr, u.AppIDs[idx], id)
	}
	return u, nil
}

func (r *Registry) slotUser(addr board.Address, idx uint64) (*User, error) {
	if idx >= board.UserSlots {
		return nil, reverts.Wrap(reverts.ErrSlotOutOfRange, "slot %d", idx)
	}
	u, err := r.User(addr)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, reverts.Wrap(reverts.ErrUserNotRegistered, "%v", addr)
	}
	return u, nil
}
