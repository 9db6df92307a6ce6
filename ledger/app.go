// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/reverts"
)

// AppKind tells which program an app runs.
type AppKind uint8

const (
	KindPlatform AppKind = iota + 1
	KindAd
	KindContract
)

func (k AppKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindAd:
		return "ad"
	case KindContract:
		return "contract"
	}
	return "unknown"
}

// App is the immutable metadata of an app.
type App struct {
	Kind    AppKind       `json:"kind"`
	Creator board.AppID   `json:"creator"` // zero for the platform
	Owner   board.Address `json:"owner"`   // account that deployed the app
}

func appKey(id board.AppID) []byte {
	return append([]byte{prefixApp}, id.Bytes()...)
}

// CreateApp registers a new app and returns its id.
func (l *Ledger) CreateApp(kind AppKind, creator board.AppID, owner board.Address) (board.AppID, error) {
	n, err := l.nextID(metaNextApp)
	if err != nil {
		return 0, err
	}
	id := board.AppID(n)
	if err := l.encode(appKey(id), &App{Kind: kind, Creator: creator, Owner: owner}); err != nil {
		return 0, err
	}
	logger.Debug("app created", "id", id, "kind", kind, "creator", creator)
	return id, nil
}

// App returns the app metadata, or ERROR_APP_DOES_NOT_EXIST.
func (l *Ledger) App(id board.AppID) (*App, error) {
	v, err := l.apps.GetOrLoad(id, func(any) (any, error) {
		var app App
		found, err := l.decode(appKey(id), &app)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, reverts.Wrap(reverts.ErrAppNotFound, "app %v", id)
		}
		return &app, nil
	})
	if err != nil {
		return nil, err
	}
	app := *v.(*App)
	return &app, nil
}

// AppOfKind returns the app metadata and checks its kind.
func (l *Ledger) AppOfKind(id board.AppID, kind AppKind) (*App, error) {
	app, err := l.App(id)
	if err != nil {
		return nil, err
	}
	if app.Kind != kind {
		return nil, reverts.Wrap(reverts.ErrAppNotFound, "app %v is a %v, not a %v", id, app.Kind, kind)
	}
	return app, nil
}

// DeleteApp removes the app. Its account must already be emptied of records.
func (l *Ledger) DeleteApp(id board.AppID) error {
	acc, err := l.Account(board.AppAddress(id))
	if err != nil {
		return err
	}
	if acc.Reserve != 0 || acc.Assets != 0 {
		return errors.Errorf("app %v still holds reserve %d and %d assets", id, acc.Reserve, acc.Assets)
	}
	l.putRaw(appKey(id), nil)
	l.apps.Remove(id)
	logger.Debug("app deleted", "id", id)
	return nil
}
