// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin/platform"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/reverts"
)

// Env is the environment of one method invocation.
type Env struct {
	Ledger   *ledger.Ledger
	Sender   board.Address
	App      board.AppID // target platform, zero for host methods
	Payments []*ledger.Payment

	args json.RawMessage
}

// NewEnv creates an env for a call with the given JSON arguments.
func NewEnv(l *ledger.Ledger, sender board.Address, app board.AppID, args json.RawMessage, payments []*ledger.Payment) *Env {
	return &Env{Ledger: l, Sender: sender, App: app, Payments: payments, args: args}
}

type argsError struct {
	cause error
}

// ParseArgs decodes the call arguments into v. It panics on malformed
// input; Method.Call recovers it as a revert.
func (env *Env) ParseArgs(v any) {
	if len(env.args) == 0 {
		return
	}
	if err := json.Unmarshal(env.args, v); err != nil {
		panic(&argsError{err})
	}
}

// Payment returns the i-th payment of the call, or nil.
func (env *Env) Payment(i int) *ledger.Payment {
	if i < len(env.Payments) {
		return env.Payments[i]
	}
	return nil
}

// Platform opens the target platform.
func (env *Env) Platform() (*platform.Platform, error) {
	return platform.Open(env.Ledger, env.App)
}

// Method is a named operation callable through the runtime.
type Method struct {
	Name  string
	Write bool

	run func(env *Env) (any, error)
}

// Call runs the method.
func (m *Method) Call(env *Env) (out any, err error) {
	defer func() {
		if e := recover(); e != nil {
			if ae, ok := e.(*argsError); ok {
				err = reverts.Wrap(reverts.ErrBadArgs, "%s: %v", m.Name, ae.cause)
				return
			}
			err = errors.Errorf("%s: %v", m.Name, e)
		}
	}()
	return m.run(env)
}

var methods = make(map[string]*Method)

func register(write bool, name string, run func(env *Env) (any, error)) {
	if _, dup := methods[name]; dup {
		panic(fmt.Sprintf("builtin: method %q registered twice", name))
	}
	methods[name] = &Method{Name: name, Write: write, run: run}
}

// Lookup returns the method with the given name, or nil.
func Lookup(name string) *Method {
	return methods[name]
}

// Methods returns the sorted names of all methods.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
