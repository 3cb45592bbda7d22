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

// Ledger is an in-memory ledger.Client for pipeline tests
package mocks

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jmesworld/wasmdeploy/internal/constants"
	"github.com/jmesworld/wasmdeploy/pkg/types"
)

const (
	OpStoreCode    = "StoreCode"
	OpInstantiate  = "Instantiate"
	OpExecute      = "Execute"
	OpUpdateAdmin  = "UpdateAdmin"
	OpContractInfo = "ContractInfo"
	OpAwaitSettled = "AwaitSettled"
)

type InstantiateCall struct {
	Sender string
	Admin  string
	CodeID uint64
	Msg    interface{}
	Label  string
}

type ExecuteCall struct {
	Sender   string
	Contract string
	Msg      interface{}
}

type failure struct {
	call int
	err  error
}

type Ledger struct {
	mux          sync.Mutex
	height       int64
	nextCodeID   uint64
	nextContract int
	codes        map[uint64][]byte
	contracts    map[string]*types.ContractInfo
	calls        map[string]int
	failures     map[string]*failure

	Instantiations []*InstantiateCall
	Executions     []*ExecuteCall
	// Sequence of every operation in call order
	Log []string
}

func NewLedger() *Ledger {
	return &Ledger{
		height:     1,
		nextCodeID: 1,
		codes:      map[uint64][]byte{},
		contracts:  map[string]*types.ContractInfo{},
		calls:      map[string]int{},
		failures:   map[string]*failure{},
	}
}

// FailOn makes the nth (1-based) call of op return err. Earlier and later calls succeed.
func (l *Ledger) FailOn(op string, n int, err error) *Ledger {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.failures[op] = &failure{call: n, err: err}
	return l
}

// WithNextCodeID sets the code id the next upload will be assigned.
func (l *Ledger) WithNextCodeID(id uint64) *Ledger {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.nextCodeID = id
	return l
}

func (l *Ledger) Calls(op string) int {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.calls[op]
}

// MutatingCalls counts every call that would have submitted a transaction.
func (l *Ledger) MutatingCalls() int {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.calls[OpStoreCode] + l.calls[OpInstantiate] + l.calls[OpExecute] + l.calls[OpUpdateAdmin]
}

func (l *Ledger) Contract(address string) *types.ContractInfo {
	l.mux.Lock()
	defer l.mux.Unlock()
	if c, ok := l.contracts[address]; ok {
		cp := *c
		return &cp
	}
	return nil
}

func (l *Ledger) Code(codeID uint64) []byte {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.codes[codeID]
}

func (l *Ledger) record(op string) error {
	l.calls[op]++
	l.Log = append(l.Log, op)
	if f, ok := l.failures[op]; ok && f.call == l.calls[op] {
		return f.err
	}
	return nil
}

func (l *Ledger) tx(events ...*types.Event) *types.TxResult {
	l.height++
	return &types.TxResult{
		ID:     fmt.Sprintf("tx%d", l.height),
		TxHash: fmt.Sprintf("%064X", l.height),
		Height: l.height,
		Events: events,
	}
}

func (l *Ledger) StoreCode(ctx context.Context, sender string, wasm []byte) (*types.TxResult, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if err := l.record(OpStoreCode); err != nil {
		return nil, err
	}
	codeID := l.nextCodeID
	l.nextCodeID++
	l.codes[codeID] = wasm
	return l.tx(&types.Event{
		Type:       constants.StoreCodeEvent,
		Attributes: []*types.Attribute{{Key: constants.CodeIDAttribute, Value: strconv.FormatUint(codeID, 10)}},
	}), nil
}

func (l *Ledger) Instantiate(ctx context.Context, sender, admin string, codeID uint64, msg interface{}, label string) (*types.TxResult, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if err := l.record(OpInstantiate); err != nil {
		return nil, err
	}
	if _, ok := l.codes[codeID]; !ok {
		return nil, fmt.Errorf("no such code id %d", codeID)
	}
	l.nextContract++
	address := fmt.Sprintf("jmes1contract%d", l.nextContract)
	l.contracts[address] = &types.ContractInfo{Address: address, CodeID: codeID, Creator: sender, Admin: admin, Label: label}
	l.Instantiations = append(l.Instantiations, &InstantiateCall{Sender: sender, Admin: admin, CodeID: codeID, Msg: msg, Label: label})
	return l.tx(&types.Event{
		Type:       constants.InstantiateEvent,
		Attributes: []*types.Attribute{{Key: constants.ContractAddrAttribute, Value: address}, {Key: constants.CodeIDAttribute, Value: strconv.FormatUint(codeID, 10)}},
	}), nil
}

func (l *Ledger) Execute(ctx context.Context, sender, contract string, msg interface{}) (*types.TxResult, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if err := l.record(OpExecute); err != nil {
		return nil, err
	}
	if _, ok := l.contracts[contract]; !ok {
		return nil, fmt.Errorf("no such contract %s", contract)
	}
	l.Executions = append(l.Executions, &ExecuteCall{Sender: sender, Contract: contract, Msg: msg})
	return l.tx(&types.Event{Type: "execute", Attributes: []*types.Attribute{{Key: constants.ContractAddrAttribute, Value: contract}}}), nil
}

func (l *Ledger) UpdateAdmin(ctx context.Context, sender, contract, newAdmin string) (*types.TxResult, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if err := l.record(OpUpdateAdmin); err != nil {
		return nil, err
	}
	c, ok := l.contracts[contract]
	if !ok {
		return nil, fmt.Errorf("no such contract %s", contract)
	}
	if c.Admin != sender {
		return nil, fmt.Errorf("unauthorized: %s is not the admin of %s", sender, contract)
	}
	c.Admin = newAdmin
	return l.tx(&types.Event{Type: "update_contract_admin", Attributes: []*types.Attribute{{Key: constants.ContractAddrAttribute, Value: contract}}}), nil
}

func (l *Ledger) ContractInfo(ctx context.Context, address string) (*types.ContractInfo, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if err := l.record(OpContractInfo); err != nil {
		return nil, err
	}
	c, ok := l.contracts[address]
	if !ok {
		return nil, fmt.Errorf("no such contract %s", address)
	}
	cp := *c
	return &cp, nil
}

func (l *Ledger) AwaitSettled(ctx context.Context, tx *types.TxResult) error {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.record(OpAwaitSettled)
}
