// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies why a call was aborted.
type Kind uint8

const (
	KindAuthorization Kind = iota + 1 // wrong caller identity or role
	KindState                         // method invoked outside its valid state
	KindTiming                        // before or after a round deadline window
	KindReference                     // claimed slot or cross-reference does not match
	KindPayment                       // wrong asset, amount or receiver
	KindResource                      // balance, freeze, capacity or slot occupancy
	KindTerms                         // proposed terms outside the allowed bounds
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindTiming:
		return "timing"
	case KindReference:
		return "reference"
	case KindPayment:
		return "payment"
	case KindResource:
		return "resource"
	case KindTerms:
		return "terms"
	}
	return "unknown"
}

// ErrRevert aborts the whole call chain it is returned from.
type ErrRevert struct {
	kind    Kind
	code    string
	message string
}

// New creates a revert with a stable code.
func New(kind Kind, code string) *ErrRevert {
	return &ErrRevert{kind: kind, code: code}
}

// Newf creates a revert with a code and detail message.
func Newf(kind Kind, code string, format string, args ...any) *ErrRevert {
	return &ErrRevert{kind: kind, code: code, message: fmt.Sprintf(format, args...)}
}

func (e *ErrRevert) Error() string {
	if e.message == "" {
		return e.code
	}
	return e.code + ": " + e.message
}

// Kind returns the taxonomy kind.
func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Code returns the ERROR_* code.
func (e *ErrRevert) Code() string {
	return e.code
}

// Is matches reverts by code, so sentinel values can be used with errors.Is.
func (e *ErrRevert) Is(target error) bool {
	var t *ErrRevert
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// IsRevertErr reports whether err (or anything it wraps) is a revert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// CodeOf returns the revert code of err, or empty if err is not a revert.
func CodeOf(err error) string {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.code
	}
	return ""
}

// KindOf returns the revert kind of err, or zero if err is not a revert.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return 0
}
