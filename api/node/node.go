// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/delegard/delegard/api/utils"
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/builtin"
	"github.com/delegard/delegard/runtime"
)

// RoundResponse reports the current round.
type RoundResponse struct {
	Round board.Round `json:"round"`
}

// AdvanceRequest asks a solo node to move the round counter.
type AdvanceRequest struct {
	Rounds uint64 `json:"rounds"`
}

type Node struct {
	rt   *runtime.Runtime
	solo bool
}

// New creates the node api. Rounds can only be advanced over http in solo mode.
func New(rt *runtime.Runtime, solo bool) *Node {
	return &Node{rt, solo}
}

func (n *Node) handleGetRound(w http.ResponseWriter, _ *http.Request) error {
	round, err := n.rt.Round()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &RoundResponse{round})
}

func (n *Node) handleAdvanceRound(w http.ResponseWriter, req *http.Request) error {
	if !n.solo {
		return utils.Forbidden(errors.New("rounds can only be advanced in solo mode"))
	}
	var body AdvanceRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Rounds == 0 {
		return utils.BadRequest(errors.New("rounds: must be positive"))
	}
	round, err := n.rt.AdvanceRound(req.Context(), body.Rounds)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &RoundResponse{round})
}

func (n *Node) handleGetMethods(w http.ResponseWriter, _ *http.Request) error {
	type method struct {
		Name  string `json:"name"`
		Write bool   `json:"write"`
	}
	names := builtin.Methods()
	methods := make([]method, 0, len(names))
	for _, name := range names {
		methods = append(methods, method{name, builtin.Lookup(name).Write})
	}
	return utils.WriteJSON(w, methods)
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/round").
		Methods(http.MethodGet).
		Name("GET /node/round").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetRound))
	sub.Path("/rounds").
		Methods(http.MethodPost).
		Name("POST /node/rounds").
		HandlerFunc(utils.WrapHandlerFunc(n.handleAdvanceRound))
	sub.Path("/methods").
		Methods(http.MethodGet).
		Name("GET /node/methods").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetMethods))
}
