// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/reverts"
)

// Key is a record key.
type Key interface {
	Bytes() []byte
}

// Context binds record storage to one app.
type Context struct {
	ledger *Ledger
	app    board.AppID
}

// Context returns the record storage context of app.
func (l *Ledger) Context(app board.AppID) *Context {
	return &Context{ledger: l, app: app}
}

// Ledger returns the underlying ledger.
func (c *Context) Ledger() *Ledger { return c.ledger }

// App returns the owning app id.
func (c *Context) App() board.AppID { return c.app }

// Address returns the account address of the owning app.
func (c *Context) Address() board.Address { return board.AppAddress(c.app) }

func (c *Context) recordKey(name []byte) []byte {
	k := append([]byte{prefixRecord}, c.app.Bytes()...)
	return append(k, name...)
}

// record is the shared implementation of Mapping and Raw.
// Each record charges the owning app account a reserve depending only on
// its key length and the declared size, so insert and delete balance out.
type record[V any] struct {
	ctx  *Context
	name []byte
	size uint64
}

func (r *record[V]) fullName(key []byte) []byte {
	return append(append([]byte{}, r.name...), key...)
}

func (r *record[V]) reserve(key []byte) uint64 {
	return board.RecordReserve(uint64(len(r.name)+len(key)), r.size)
}

func (r *record[V]) get(key []byte) (value V, found bool, err error) {
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	raw, err := r.ctx.ledger.getRaw(r.ctx.recordKey(r.fullName(key)))
	if err != nil || len(raw) == 0 {
		return value, false, err
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, false, errors.Wrapf(err, "decode record %q", r.fullName(key))
	}
	return value, true, nil
}

func (r *record[V]) put(key []byte, value V, insert bool) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrapf(err, "encode record %q", r.fullName(key))
	}
	if uint64(len(raw)) > r.size {
		return errors.Errorf("record %q exceeds declared size %d", r.fullName(key), r.size)
	}
	rk := r.ctx.recordKey(r.fullName(key))
	existing, err := r.ctx.ledger.getRaw(rk)
	if err != nil {
		return err
	}
	switch {
	case insert && len(existing) > 0:
		return reverts.Wrap(reverts.ErrRecordExists, "record %q", r.fullName(key))
	case !insert && len(existing) == 0:
		return errors.Errorf("record %q does not exist", r.fullName(key))
	}
	if insert {
		if err := r.ctx.ledger.addReserve(r.ctx.Address(), r.reserve(key)); err != nil {
			return err
		}
	}
	r.ctx.ledger.putRaw(rk, raw)
	return nil
}

func (r *record[V]) del(key []byte) error {
	rk := r.ctx.recordKey(r.fullName(key))
	existing, err := r.ctx.ledger.getRaw(rk)
	if err != nil || len(existing) == 0 {
		return err
	}
	if err := r.ctx.ledger.subReserve(r.ctx.Address(), r.reserve(key)); err != nil {
		return err
	}
	r.ctx.ledger.putRaw(rk, nil)
	return nil
}

// Mapping is a keyed record collection owned by an app.
type Mapping[K Key, V any] struct {
	record[V]
}

// NewMapping declares a mapping named name whose encoded values never exceed size bytes.
func NewMapping[K Key, V any](ctx *Context, name string, size uint64) *Mapping[K, V] {
	return &Mapping[K, V]{record[V]{ctx: ctx, name: []byte(name), size: size}}
}

// Get returns the value at key. Pointer values are allocated even when absent.
func (m *Mapping[K, V]) Get(key K) (V, bool, error) {
	return m.get(key.Bytes())
}

// Insert creates the record, charging its reserve. Fails if it exists.
func (m *Mapping[K, V]) Insert(key K, value V) error {
	return m.put(key.Bytes(), value, true)
}

// Update overwrites an existing record.
func (m *Mapping[K, V]) Update(key K, value V) error {
	return m.put(key.Bytes(), value, false)
}

// Upsert inserts or updates the record.
func (m *Mapping[K, V]) Upsert(key K, value V) error {
	_, found, err := m.get(key.Bytes())
	if err != nil {
		return err
	}
	return m.put(key.Bytes(), value, !found)
}

// Delete removes the record and releases its reserve. Deleting an absent record is a no-op.
func (m *Mapping[K, V]) Delete(key K) error {
	return m.del(key.Bytes())
}

// Reserve returns the reserve one record of this mapping holds.
func (m *Mapping[K, V]) Reserve(key K) uint64 {
	return m.reserve(key.Bytes())
}

// Raw is a single record owned by an app.
type Raw[V any] struct {
	record[V]
}

// NewRaw declares a single record named name whose encoded value never exceeds size bytes.
func NewRaw[V any](ctx *Context, name string, size uint64) *Raw[V] {
	return &Raw[V]{record[V]{ctx: ctx, name: []byte(name), size: size}}
}

func (r *Raw[V]) Get() (V, bool, error) { return r.get(nil) }
func (r *Raw[V]) Insert(value V) error  { return r.put(nil, value, true) }
func (r *Raw[V]) Update(value V) error  { return r.put(nil, value, false) }
func (r *Raw[V]) Delete() error         { return r.del(nil) }
func (r *Raw[V]) Reserve() uint64       { return r.reserve(nil) }
func (r *Raw[V]) Exists() (bool, error) {
	_, found, err := r.get(nil)
	return found, err
}
