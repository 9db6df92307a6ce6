// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/delegard/delegard/api/utils"
	"github.com/delegard/delegard/reverts"
	"github.com/delegard/delegard/runtime"
)

// Calls submits calls to the runtime. A reverted call is answered with a
// receipt marked reverted; only infrastructure failures yield 5xx.
type Calls struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Calls {
	return &Calls{rt}
}

func parseCall(req *http.Request) (*runtime.Call, error) {
	var call runtime.Call
	if err := utils.ParseJSON(req.Body, &call); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if call.Method == "" {
		return nil, utils.BadRequest(errors.New("method: empty"))
	}
	return &call, nil
}

func (c *Calls) handleExec(w http.ResponseWriter, req *http.Request) error {
	call, err := parseCall(req)
	if err != nil {
		return err
	}
	receipt, err := c.rt.Exec(req.Context(), call)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (c *Calls) handleSimulate(w http.ResponseWriter, req *http.Request) error {
	call, err := parseCall(req)
	if err != nil {
		return err
	}
	receipt, err := c.rt.Simulate(req.Context(), call)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (c *Calls) handleQuery(w http.ResponseWriter, req *http.Request) error {
	call, err := parseCall(req)
	if err != nil {
		return err
	}
	out, err := c.rt.Query(req.Context(), call)
	if err != nil {
		if reverts.IsRevertErr(err) {
			return utils.BadRequest(err)
		}
		return err
	}
	w.Header().Set("Content-Type", utils.JSONContentType)
	_, err = w.Write(out)
	return err
}

func (c *Calls) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /calls").
		HandlerFunc(utils.WrapHandlerFunc(c.handleExec))
	sub.Path("/simulate").
		Methods(http.MethodPost).
		Name("POST /calls/simulate").
		HandlerFunc(utils.WrapHandlerFunc(c.handleSimulate))
	sub.Path("/query").
		Methods(http.MethodPost).
		Name("POST /calls/query").
		HandlerFunc(utils.WrapHandlerFunc(c.handleQuery))
}
