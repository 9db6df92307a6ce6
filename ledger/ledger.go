// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the host ledger the platform, validator ads and
// delegator contracts execute on: accounts, assets, apps with record storage,
// participation keys and the round counter. All mutations are staged in a
// journaled overlay and written to the backing store on Commit.
package ledger

import (
	"encoding/binary"
	"encoding/json"
	"maps"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/cache"
	"github.com/delegard/delegard/kv"
	"github.com/delegard/delegard/log"
	"github.com/delegard/delegard/stackedmap"
)

var logger = log.WithContext("pkg", "ledger")

// key prefixes of the flat key space.
const (
	prefixMeta    = 'm'
	prefixAccount = 'a'
	prefixHolding = 'h'
	prefixAsset   = 's'
	prefixApp     = 'p'
	prefixRecord  = 'r'
)

var (
	metaRound     = []byte{prefixMeta, 'r'}
	metaNextApp   = []byte{prefixMeta, 'p'}
	metaNextAsset = []byte{prefixMeta, 's'}
)

// Event is a named notification emitted by an app during a call.
type Event struct {
	Round board.Round     `json:"round"`
	App   board.AppID     `json:"app"`
	Name  string          `json:"name"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Transfer records a movement of value between accounts.
type Transfer struct {
	Round  board.Round   `json:"round"`
	From   board.Address `json:"from"`
	To     board.Address `json:"to"`
	Asset  board.AssetID `json:"asset"`
	Amount uint64        `json:"amount"`
}

// Changes are the events and transfers of a committed unit of work.
type Changes struct {
	Round     board.Round
	Events    []*Event
	Transfers []*Transfer
}

type mark struct {
	depth     int
	events    int
	transfers int
	touched   map[board.Address]struct{}
}

// Ledger is the host ledger state.
// It is not safe for concurrent use; callers serialize access.
type Ledger struct {
	store kv.Store
	blobs *cache.Blobs
	apps  *cache.LRU

	sm        *stackedmap.StackedMap[string, []byte]
	marks     []mark
	events    []*Event
	transfers []*Transfer
	touched   map[board.Address]struct{}
}

// Options configures the ledger caches.
type Options struct {
	CacheSizeMB int
	AppCacheLen int
}

// New creates a ledger over the given store.
func New(store kv.Store, opts Options) (*Ledger, error) {
	if opts.CacheSizeMB <= 0 {
		opts.CacheSizeMB = 16
	}
	if opts.AppCacheLen <= 0 {
		opts.AppCacheLen = 1024
	}
	apps, err := cache.NewLRU("apps", opts.AppCacheLen)
	if err != nil {
		return nil, errors.Wrap(err, "new app cache")
	}
	l := &Ledger{
		store: store,
		blobs: cache.NewBlobs("ledger", opts.CacheSizeMB),
		apps:  apps,
	}
	l.reset()
	return l, nil
}

func (l *Ledger) reset() {
	l.sm = stackedmap.New(l.load)
	l.marks = nil
	l.events = nil
	l.transfers = nil
	l.touched = make(map[board.Address]struct{})
}

// load reads committed values, nil value means absent.
func (l *Ledger) load(key string) ([]byte, bool, error) {
	k := []byte(key)
	if v, cached, exists := l.blobs.Get(k); cached {
		return v, exists, nil
	}
	v, err := l.store.Get(k)
	if err != nil {
		if l.store.IsNotFound(err) {
			l.blobs.SetAbsent(k)
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "load")
	}
	l.blobs.Set(k, v)
	return v, true, nil
}

func (l *Ledger) getRaw(key []byte) ([]byte, error) {
	v, _, err := l.sm.Get(string(key))
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (l *Ledger) putRaw(key, val []byte) {
	l.sm.Put(string(key), val)
}

// decode loads and decodes the value at key. It reports false if absent.
func (l *Ledger) decode(key []byte, val any) (bool, error) {
	raw, err := l.getRaw(key)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(raw, val); err != nil {
		return false, errors.Wrapf(err, "decode %x", key)
	}
	return true, nil
}

func (l *Ledger) encode(key []byte, val any) error {
	raw, err := rlp.EncodeToBytes(val)
	if err != nil {
		return errors.Wrapf(err, "encode %x", key)
	}
	l.putRaw(key, raw)
	return nil
}

func (l *Ledger) getUint(key []byte) (uint64, error) {
	raw, err := l.getRaw(key)
	if err != nil || len(raw) == 0 {
		return 0, err
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (l *Ledger) putUint(key []byte, v uint64) {
	l.putRaw(key, binary.BigEndian.AppendUint64(nil, v))
}

// Round returns the current round.
func (l *Ledger) Round() (board.Round, error) {
	return l.getUint(metaRound)
}

// AdvanceRound moves the round counter forward by n.
func (l *Ledger) AdvanceRound(n uint64) (board.Round, error) {
	r, err := l.Round()
	if err != nil {
		return 0, err
	}
	if r+n < r {
		return 0, errors.New("round overflow")
	}
	l.putUint(metaRound, r+n)
	return r + n, nil
}

func (l *Ledger) nextID(key []byte) (uint64, error) {
	id, err := l.getUint(key)
	if err != nil {
		return 0, err
	}
	id++
	l.putUint(key, id)
	return id, nil
}

// Emit records a named event of app. data is encoded as JSON.
func (l *Ledger) Emit(app board.AppID, name string, data any) error {
	round, err := l.Round()
	if err != nil {
		return err
	}
	ev := &Event{Round: round, App: app, Name: name}
	if data != nil {
		if ev.Data, err = json.Marshal(data); err != nil {
			return errors.Wrap(err, "encode event")
		}
	}
	l.events = append(l.events, ev)
	logger.Trace("event", "app", app, "name", name)
	return nil
}

// Events returns events emitted in the current unit of work.
func (l *Ledger) Events() []*Event {
	return l.events
}

// Transfers returns transfers made in the current unit of work.
func (l *Ledger) Transfers() []*Transfer {
	return l.transfers
}

func (l *Ledger) touch(addr board.Address) {
	l.touched[addr] = struct{}{}
}

// Checkpoint saves the current state and returns a handle for RevertTo.
func (l *Ledger) Checkpoint() int {
	depth := l.sm.Push()
	l.marks = append(l.marks, mark{depth, len(l.events), len(l.transfers), maps.Clone(l.touched)})
	return len(l.marks) - 1
}

// RevertTo discards all changes made after the checkpoint.
func (l *Ledger) RevertTo(cp int) {
	if cp < 0 || cp >= len(l.marks) {
		return
	}
	m := l.marks[cp]
	l.sm.PopTo(m.depth)
	l.events = l.events[:m.events]
	l.transfers = l.transfers[:m.transfers]
	l.touched = m.touched
	l.marks = l.marks[:cp]
	// apps created in the reverted span may be cached
	l.apps.Purge()
}

// Discard drops every staged change.
func (l *Ledger) Discard() {
	l.apps.Purge()
	l.reset()
}

// Commit writes all staged changes to the store in one batch and
// returns the events and transfers of the unit of work.
func (l *Ledger) Commit() (*Changes, error) {
	start := time.Now()
	round, err := l.Round()
	if err != nil {
		return nil, err
	}

	final := make(map[string][]byte)
	var order []string
	l.sm.Journal(func(k string, v []byte) bool {
		if _, ok := final[k]; !ok {
			order = append(order, k)
		}
		final[k] = v
		return true
	})

	batch := l.store.NewBatch()
	for _, k := range order {
		v := final[k]
		if len(v) == 0 {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), v)
		}
		if err != nil {
			return nil, errors.Wrap(err, "commit")
		}
	}
	if err := batch.Write(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	for _, k := range order {
		if v := final[k]; len(v) == 0 {
			l.blobs.SetAbsent([]byte(k))
		} else {
			l.blobs.Set([]byte(k), v)
		}
	}

	changes := &Changes{Round: round, Events: l.events, Transfers: l.transfers}
	metricCommits().Add(1)
	metricCommitDuration().Observe(time.Since(start).Milliseconds())
	_, _, hitRate := l.blobs.Stats().Snapshot()
	logger.Debug("committed", "keys", len(order), "events", len(l.events), "transfers", len(l.transfers), "cacheHitPerMille", hitRate)
	l.reset()
	return changes, nil
}
