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

package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jmesworld/wasmdeploy/internal/log"
)

type HTTPClient struct {
	client         *http.Client
	requestTimeout time.Duration
	retries        int
	retryDelay     time.Duration
}

func NewHTTPClient(requestTimeout time.Duration, retries int) *HTTPClient {
	return &HTTPClient{
		client:         &http.Client{Timeout: requestTimeout},
		requestTimeout: requestTimeout,
		retries:        retries,
		retryDelay:     1 * time.Second,
	}
}

func (c *HTTPClient) WithRetryDelay(d time.Duration) *HTTPClient {
	c.retryDelay = d
	return c
}

// RequestWithRetry is only for idempotent reads. Transactions must go through
// Request so a lost response is never turned into a second submission.
func (c *HTTPClient) RequestWithRetry(ctx context.Context, method, url string, body, result interface{}) (err error) {
	verbose := log.VerbosityFromContext(ctx)
	logger := log.LoggerFromContext(ctx)
	retries := c.retries
	for {
		if err = c.Request(ctx, method, url, body, result); err == nil {
			return nil
		}
		if retries <= 0 {
			return err
		}
		if verbose {
			logger.Debug(fmt.Sprintf("%s - retrying request", err.Error()))
		}
		retries--
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
}

func (c *HTTPClient) Request(ctx context.Context, method, url string, body, result interface{}) (err error) {
	var bodyReader io.Reader
	if body != nil {
		requestBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return err
	}
	if c.requestTimeout > 0 {
		req.Header.Set("Request-Timeout", fmt.Sprintf("%d", int(c.requestTimeout.Seconds())))
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var responseBytes []byte
		if resp.StatusCode != 204 {
			responseBytes, _ = io.ReadAll(resp.Body)
		}
		return fmt.Errorf("%s [%d] %s", url, resp.StatusCode, responseBytes)
	}

	if resp.StatusCode == 204 || result == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
