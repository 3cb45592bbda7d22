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

package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmesworld/wasmdeploy/internal/constants"
	"github.com/jmesworld/wasmdeploy/pkg/types"
)

// Client is the remote ledger as seen by the deploy pipelines. Every mutating
// call returns once the transaction is included, and AwaitSettled blocks until
// the ledger will accept the next transaction that depends on it.
type Client interface {
	StoreCode(ctx context.Context, sender string, wasm []byte) (*types.TxResult, error)
	Instantiate(ctx context.Context, sender, admin string, codeID uint64, msg interface{}, label string) (*types.TxResult, error)
	Execute(ctx context.Context, sender, contract string, msg interface{}) (*types.TxResult, error)
	UpdateAdmin(ctx context.Context, sender, contract, newAdmin string) (*types.TxResult, error)
	ContractInfo(ctx context.Context, address string) (*types.ContractInfo, error)
	AwaitSettled(ctx context.Context, tx *types.TxResult) error
}

func CodeIDFromResult(tx *types.TxResult) (uint64, error) {
	v, err := tx.Attribute(constants.StoreCodeEvent, constants.CodeIDAttribute)
	if err != nil {
		return 0, err
	}
	codeID, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid code id '%s' in transaction %s: %w", v, tx.TxHash, err)
	}
	return codeID, nil
}

func ContractAddressFromResult(tx *types.TxResult) (string, error) {
	return tx.Attribute(constants.InstantiateEvent, constants.ContractAddrAttribute)
}
