// Package httpledger implements the ledger capability against a remote
// logchain instance's HTTP API. Network failures and timeouts map to
// ErrUnreachable; HTTP status codes map onto the rest of the ledger error
// taxonomy.
package httpledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rahulshendre/secure-logchain/internal/ledger"
)

// Client talks to a remote ledger over HTTP.
type Client struct {
	base string
	hc   *http.Client
}

var _ ledger.Ledger = (*Client)(nil)
var _ ledger.BulkReader = (*Client)(nil)

// New returns a client for the ledger API at base (e.g. "http://host:8080").
// Per-call deadlines come from the caller's context.
func New(base string) *Client {
	return &Client{base: base, hc: &http.Client{}}
}

type estimateReq struct {
	Message string `json:"message"`
}

type estimateResp struct {
	Cost uint64 `json:"cost"`
}

// EstimateAppendCost implements ledger.Ledger.
func (c *Client) EstimateAppendCost(ctx context.Context, message string) (ledger.Cost, error) {
	var out estimateResp
	status, err := c.postJSON(ctx, "/v1/ledger/estimate", estimateReq{Message: message}, &out)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ledger.ErrCostEstimation, status)
	}
	return ledger.Cost(out.Cost), nil
}

type appendReq struct {
	Message string `json:"message"`
}

// Append implements ledger.Ledger.
func (c *Client) Append(ctx context.Context, message string) (ledger.Receipt, error) {
	var out ledger.Receipt
	status, err := c.postJSON(ctx, "/v1/ledger/append", appendReq{Message: message}, &out)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	switch {
	case status == http.StatusAccepted || status == http.StatusOK:
		return out, nil
	case status >= 400 && status < 500:
		return ledger.Receipt{}, fmt.Errorf("%w: status %d", ledger.ErrRejected, status)
	default:
		return ledger.Receipt{}, fmt.Errorf("%w: status %d", ledger.ErrUnreachable, status)
	}
}

// ReadByIndex implements ledger.Ledger.
func (c *Client) ReadByIndex(ctx context.Context, index uint64) (ledger.Entry, error) {
	u := c.base + "/v1/ledger/entry?index=" + strconv.FormatUint(index, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		var e ledger.Entry
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
			return ledger.Entry{}, fmt.Errorf("%w: decode: %v", ledger.ErrUnreachable, err)
		}
		return e, nil
	case resp.StatusCode == http.StatusNotFound:
		return ledger.Entry{}, fmt.Errorf("%w: index %d", ledger.ErrAbsent, index)
	default:
		return ledger.Entry{}, fmt.Errorf("%w: status %d", ledger.ErrUnreachable, resp.StatusCode)
	}
}

type rangeResp struct {
	Entries []ledger.Entry `json:"entries"`
}

// ReadRange implements ledger.BulkReader.
func (c *Client) ReadRange(ctx context.Context, from, to uint64) ([]ledger.Entry, error) {
	u := fmt.Sprintf("%s/v1/ledger/range?from=%d&to=%d", c.base, from, to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ledger.ErrUnreachable, resp.StatusCode)
	}
	var out rangeResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ledger.ErrUnreachable, err)
	}
	return out.Entries, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}
