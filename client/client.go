// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client is an HTTP client of the node api, used by the
// orchestration daemon to submit calls and poll state and logs.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/delegard/delegard/api/node"
	"github.com/delegard/delegard/api/utils"
	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/logdb"
	"github.com/delegard/delegard/runtime"
)

var ErrNot200Status = errors.New("not 200 status code")

// StatusError is returned for any non 200 response.
// Revert is set when the node rejected the request with a reverted call.
type StatusError struct {
	Code   int
	Body   string
	Revert *utils.RevertResponse
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error - status code %d - %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrNot200Status }

// Client talks to one node.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{url: url, c: c}
}

// NewCall builds a call with args encoded as JSON.
func NewCall(sender board.Address, app board.AppID, method string, args any, payments ...*ledger.Payment) (*runtime.Call, error) {
	call := &runtime.Call{Sender: sender, App: app, Method: method, Payments: payments}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("unable to marshal args - %w", err)
		}
		call.Args = raw
	}
	return call, nil
}

// Exec submits a call. A reverted call is not an error; check Receipt.Reverted.
func (c *Client) Exec(call *runtime.Call) (*runtime.Receipt, error) {
	return c.receipt("/calls", call)
}

// Simulate runs a call without committing it.
func (c *Client) Simulate(call *runtime.Call) (*runtime.Receipt, error) {
	return c.receipt("/calls/simulate", call)
}

func (c *Client) receipt(path string, call *runtime.Call) (*runtime.Receipt, error) {
	body, err := c.httpPOST(c.url+path, call)
	if err != nil {
		return nil, fmt.Errorf("unable to submit call - %w", err)
	}
	var receipt runtime.Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("unable to unmarshal receipt - %w", err)
	}
	return &receipt, nil
}

// Query runs a read-only method and decodes its output into out.
func (c *Client) Query(call *runtime.Call, out any) error {
	body, err := c.httpPOST(c.url+"/calls/query", call)
	if err != nil {
		return fmt.Errorf("unable to query %s - %w", call.Method, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unable to unmarshal %s - %w", call.Method, err)
	}
	return nil
}

// Round returns the node's current round.
func (c *Client) Round() (board.Round, error) {
	body, err := c.httpGET(c.url + "/node/round")
	if err != nil {
		return 0, fmt.Errorf("unable to retrieve round - %w", err)
	}
	var resp node.RoundResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("unable to unmarshal round - %w", err)
	}
	return resp.Round, nil
}

// AdvanceRounds moves a solo node forward by n rounds.
func (c *Client) AdvanceRounds(n uint64) (board.Round, error) {
	body, err := c.httpPOST(c.url+"/node/rounds", &node.AdvanceRequest{Rounds: n})
	if err != nil {
		return 0, fmt.Errorf("unable to advance rounds - %w", err)
	}
	var resp node.RoundResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("unable to unmarshal round - %w", err)
	}
	return resp.Round, nil
}

// FilterEvents returns committed events matching filter.
func (c *Client) FilterEvents(filter *logdb.EventFilter) ([]*logdb.Event, error) {
	body, err := c.httpPOST(c.url+"/logs/events", filter)
	if err != nil {
		return nil, fmt.Errorf("unable to filter events - %w", err)
	}
	var events []*logdb.Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("unable to unmarshal events - %w", err)
	}
	return events, nil
}

// FilterTransfers returns committed transfers matching filter.
func (c *Client) FilterTransfers(filter *logdb.TransferFilter) ([]*logdb.Transfer, error) {
	body, err := c.httpPOST(c.url+"/logs/transfers", filter)
	if err != nil {
		return nil, fmt.Errorf("unable to filter transfers - %w", err)
	}
	var transfers []*logdb.Transfer
	if err := json.Unmarshal(body, &transfers); err != nil {
		return nil, fmt.Errorf("unable to unmarshal transfers - %w", err)
	}
	return transfers, nil
}

func (c *Client) httpRequest(method, url string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		se := &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
		if resp.Header.Get("Content-Type") == utils.JSONContentType {
			var revert utils.RevertResponse
			if json.Unmarshal(body, &revert) == nil {
				se.Revert = &revert
			}
		}
		return nil, se
	}
	return body, nil
}

func (c *Client) httpGET(url string) ([]byte, error) {
	return c.httpRequest(http.MethodGet, url, nil)
}

func (c *Client) httpPOST(url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}
	return c.httpRequest(http.MethodPost, url, bytes.NewReader(data))
}
