// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delegard/delegard/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{nil, http.StatusOK, ""},
		{BadRequest(errors.New("bad body")), http.StatusBadRequest, "bad body\n"},
		{Forbidden(errors.New("limit")), http.StatusForbidden, "limit\n"},
		{HTTPError(nil, http.StatusNotFound), http.StatusNotFound, ""},
		{errors.New("disk"), http.StatusInternalServerError, "disk\n"},
	}
	for _, c := range cases {
		rr := httptest.NewRecorder()
		WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return c.err })(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, c.status, rr.Code)
		assert.Equal(t, c.body, rr.Body.String())
	}
}

func TestRevertResponse(t *testing.T) {
	cause := reverts.Wrap(reverts.ErrUnknownMethod, "round")
	rr := httptest.NewRecorder()
	WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return BadRequest(cause) })(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, JSONContentType, rr.Header().Get("Content-Type"))

	var resp RevertResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, reverts.CodeOf(reverts.ErrUnknownMethod), resp.Code)
	assert.Equal(t, reverts.KindOf(reverts.ErrUnknownMethod).String(), resp.Kind)
	assert.Equal(t, cause.Error(), resp.Error)
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	assert.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"a":1,"b":2}`), &v))
}
