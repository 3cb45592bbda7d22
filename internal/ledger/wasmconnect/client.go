// Copyright © 2024 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wasmconnect

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmesworld/wasmdeploy/internal/constants"
	"github.com/jmesworld/wasmdeploy/internal/core"
	"github.com/jmesworld/wasmdeploy/internal/log"
	"github.com/jmesworld/wasmdeploy/pkg/types"
)

const (
	TxTypeStoreCode   = "StoreCode"
	TxTypeInstantiate = "Instantiate"
	TxTypeExecute     = "Execute"
	TxTypeUpdateAdmin = "UpdateAdmin"

	TxStatusPending   = "Pending"
	TxStatusSucceeded = "Succeeded"
	TxStatusFailed    = "Failed"
)

type WasmconnectRequest struct {
	Headers      WasmconnectHeaders `json:"headers"`
	From         string             `json:"from"`
	Contract     string             `json:"contract,omitempty"`
	CodeID       uint64             `json:"codeId,omitempty"`
	Admin        string             `json:"admin,omitempty"`
	NewAdmin     string             `json:"newAdmin,omitempty"`
	Label        string             `json:"label,omitempty"`
	Msg          interface{}        `json:"msg,omitempty"`
	WasmByteCode []byte             `json:"wasmByteCode,omitempty"`
}

type WasmconnectHeaders struct {
	Type string `json:"type"`
}

type WasmconnectTransactionResponse struct {
	ID           string         `json:"id"`
	Status       string         `json:"status"`
	TxHash       string         `json:"txHash,omitempty"`
	Height       int64          `json:"height,omitempty"`
	Events       []*types.Event `json:"events,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
}

type WasmconnectStatus struct {
	ChainID string `json:"chainId"`
	Height  int64  `json:"height"`
}

type TransactionFailedError struct {
	ID      string
	TxHash  string
	Message string
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction %s (%s) failed: %s", e.ID, e.TxHash, e.Message)
}

var errPending = errors.New("transaction pending")

// Client talks to a wasmconnect instance. Submissions are sent once, receipts
// and chain status are polled.
type Client struct {
	baseURL      string
	http         *core.HTTPClient
	settle       *types.SettleConfig
	pollInterval time.Duration
	maxPoll      time.Duration
}

func NewClient(connector *types.ConnectorConfig, settle *types.SettleConfig) *Client {
	s := types.SettleConfig{}
	if settle != nil {
		s = *settle
	}
	if s.Timeout <= 0 {
		s.Timeout = constants.DefaultSettleTimeout
	}
	return &Client{
		baseURL:      strings.TrimSuffix(connector.URL, "/"),
		http:         core.NewHTTPClient(connector.RequestTimeout, connector.Retries),
		settle:       &s,
		pollInterval: 500 * time.Millisecond,
		maxPoll:      5 * time.Second,
	}
}

// WithPollInterval sets the initial and maximum receipt/status polling intervals.
func (c *Client) WithPollInterval(initial, max time.Duration) *Client {
	c.pollInterval = initial
	c.maxPoll = max
	c.http.WithRetryDelay(initial)
	return c
}

func (c *Client) Name() string {
	return "wasmconnect"
}

func (c *Client) url(elem ...string) (string, error) {
	u, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", err
	}
	u, err = u.Parse(path.Join(elem...))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (c *Client) StoreCode(ctx context.Context, sender string, wasm []byte) (*types.TxResult, error) {
	return c.submit(ctx, &WasmconnectRequest{
		Headers:      WasmconnectHeaders{Type: TxTypeStoreCode},
		From:         sender,
		WasmByteCode: wasm,
	})
}

func (c *Client) Instantiate(ctx context.Context, sender, admin string, codeID uint64, msg interface{}, label string) (*types.TxResult, error) {
	return c.submit(ctx, &WasmconnectRequest{
		Headers: WasmconnectHeaders{Type: TxTypeInstantiate},
		From:    sender,
		Admin:   admin,
		CodeID:  codeID,
		Label:   label,
		Msg:     msg,
	})
}

func (c *Client) Execute(ctx context.Context, sender, contract string, msg interface{}) (*types.TxResult, error) {
	return c.submit(ctx, &WasmconnectRequest{
		Headers:  WasmconnectHeaders{Type: TxTypeExecute},
		From:     sender,
		Contract: contract,
		Msg:      msg,
	})
}

func (c *Client) UpdateAdmin(ctx context.Context, sender, contract, newAdmin string) (*types.TxResult, error) {
	return c.submit(ctx, &WasmconnectRequest{
		Headers:  WasmconnectHeaders{Type: TxTypeUpdateAdmin},
		From:     sender,
		Contract: contract,
		NewAdmin: newAdmin,
	})
}

func (c *Client) ContractInfo(ctx context.Context, address string) (*types.ContractInfo, error) {
	requestURL, err := c.url("contracts", address)
	if err != nil {
		return nil, err
	}
	info := &types.ContractInfo{}
	if err := c.http.RequestWithRetry(ctx, "GET", requestURL, nil, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) Status(ctx context.Context) (*WasmconnectStatus, error) {
	requestURL, err := c.url("status")
	if err != nil {
		return nil, err
	}
	status := &WasmconnectStatus{}
	if err := c.http.RequestWithRetry(ctx, "GET", requestURL, nil, status); err != nil {
		return nil, err
	}
	return status, nil
}

// AwaitSettled waits for the configured number of blocks on top of the one
// holding tx, and never returns sooner than the configured minimum interval.
func (c *Client) AwaitSettled(ctx context.Context, tx *types.TxResult) error {
	start := time.Now()
	l := log.LoggerFromContext(ctx)

	if tx != nil && tx.Height > 0 && c.settle.Confirmations > 0 {
		target := tx.Height + int64(c.settle.Confirmations)
		err := c.poll(ctx, func() error {
			status, err := c.Status(ctx)
			if err != nil {
				return backoff.Permanent(err)
			}
			if status.Height < target {
				l.Debug(fmt.Sprintf("waiting for block %d (at %d)", target, status.Height))
				return errPending
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("ledger did not reach block %d: %w", target, err)
		}
	}

	if remaining := c.settle.MinInterval - time.Since(start); remaining > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(remaining):
		}
	}
	return nil
}

func (c *Client) submit(ctx context.Context, req *WasmconnectRequest) (*types.TxResult, error) {
	l := log.LoggerFromContext(ctx)
	requestURL, err := c.url("transactions")
	if err != nil {
		return nil, err
	}
	txResponse := &WasmconnectTransactionResponse{}
	if err := c.http.Request(ctx, "POST", requestURL, req, txResponse); err != nil {
		return nil, err
	}
	l.Debug(fmt.Sprintf("submitted %s transaction %s", req.Headers.Type, txResponse.ID))

	if txResponse.Status != TxStatusSucceeded && txResponse.Status != TxStatusFailed {
		if txResponse, err = c.waitForReceipt(ctx, txResponse.ID); err != nil {
			return nil, err
		}
	}
	if txResponse.Status == TxStatusFailed {
		return nil, &TransactionFailedError{ID: txResponse.ID, TxHash: txResponse.TxHash, Message: txResponse.ErrorMessage}
	}
	return &types.TxResult{
		ID:     txResponse.ID,
		TxHash: txResponse.TxHash,
		Height: txResponse.Height,
		Events: txResponse.Events,
	}, nil
}

func (c *Client) waitForReceipt(ctx context.Context, id string) (*WasmconnectTransactionResponse, error) {
	requestURL, err := c.url("transactions", id)
	if err != nil {
		return nil, err
	}
	var tx *WasmconnectTransactionResponse
	err = c.poll(ctx, func() error {
		reply := &WasmconnectTransactionResponse{}
		if err := c.http.RequestWithRetry(ctx, "GET", requestURL, nil, reply); err != nil {
			return backoff.Permanent(err)
		}
		if reply.Status != TxStatusSucceeded && reply.Status != TxStatusFailed {
			return errPending
		}
		tx = reply
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("no receipt for transaction %s: %w", id, err)
	}
	return tx, nil
}

func (c *Client) poll(ctx context.Context, op backoff.Operation) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.pollInterval
	b.MaxInterval = c.maxPoll
	b.MaxElapsedTime = c.settle.Timeout
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
