// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsRevertErr(t *testing.T) {
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("string"))
	assert.False(t, IsRevertErr(errors.New("plain")))
	assert.True(t, IsRevertErr(ErrAmount))
	assert.True(t, IsRevertErr(pkgerrors.Wrap(ErrAmount, "pay")))
}

func TestWrapKeepsCode(t *testing.T) {
	err := Wrap(ErrState, "want %s", "SET")
	assert.Equal(t, "ERROR_STATE: want SET", err.Error())
	assert.True(t, errors.Is(err, ErrState))
	assert.False(t, errors.Is(err, ErrAmount))
	assert.Equal(t, KindState, KindOf(err))
	assert.Equal(t, "ERROR_STATE", CodeOf(pkgerrors.WithMessage(err, "outer")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "timing", KindTiming.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
