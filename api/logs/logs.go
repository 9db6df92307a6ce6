// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/delegard/delegard/api/utils"
	"github.com/delegard/delegard/logdb"
)

// Logs serves the committed event and transfer logs.
type Logs struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Logs {
	return &Logs{
		db,
		logsLimit,
	}
}

// checkPaging validates the paging options and fills the default limit.
// It returns the options to query with; the extra row detects overflow.
func (l *Logs) checkPaging(opts *logdb.Options, rng *logdb.Range) (*logdb.Options, error) {
	if opts != nil && opts.Limit > l.limit {
		return nil, utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", l.limit))
	}
	if opts != nil && opts.Offset > math.MaxInt64 {
		return nil, utils.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	if rng != nil && rng.From > rng.To {
		return nil, utils.BadRequest(errors.New("range.to must be greater than or equal to range.from"))
	}
	if opts == nil {
		return &logdb.Options{Limit: l.limit + 1}, nil
	}
	return opts, nil
}

func (l *Logs) tooMany(n int) error {
	if n > int(l.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", l.limit))
	}
	return nil
}

func (l *Logs) handleFilterEvents(w http.ResponseWriter, req *http.Request) error {
	var filter logdb.EventFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	for i, criterion := range filter.CriteriaSet {
		if criterion == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	opts, err := l.checkPaging(filter.Options, filter.Range)
	if err != nil {
		return err
	}
	filter.Options = opts

	events, err := l.db.FilterEvents(req.Context(), &filter)
	if err != nil {
		return err
	}
	if err := l.tooMany(len(events)); err != nil {
		return err
	}
	return utils.WriteJSON(w, events)
}

func (l *Logs) handleFilterTransfers(w http.ResponseWriter, req *http.Request) error {
	var filter logdb.TransferFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	for i, criterion := range filter.CriteriaSet {
		if criterion == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	opts, err := l.checkPaging(filter.Options, filter.Range)
	if err != nil {
		return err
	}
	filter.Options = opts

	transfers, err := l.db.FilterTransfers(req.Context(), &filter)
	if err != nil {
		return err
	}
	if err := l.tooMany(len(transfers)); err != nil {
		return err
	}
	return utils.WriteJSON(w, transfers)
}

func (l *Logs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodPost).
		Name("POST /logs/events").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilterEvents))
	sub.Path("/transfers").
		Methods(http.MethodPost).
		Name("POST /logs/transfers").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilterTransfers))
}
