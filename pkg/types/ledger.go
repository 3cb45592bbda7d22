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

package types

import "fmt"

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Event struct {
	Type       string       `json:"type"`
	Attributes []*Attribute `json:"attributes"`
}

type TxResult struct {
	ID     string   `json:"id,omitempty"`
	TxHash string   `json:"txHash,omitempty"`
	Height int64    `json:"height,omitempty"`
	Events []*Event `json:"events,omitempty"`
}

type ContractInfo struct {
	Address string `json:"address"`
	CodeID  uint64 `json:"codeId"`
	Creator string `json:"creator,omitempty"`
	Admin   string `json:"admin,omitempty"`
	Label   string `json:"label,omitempty"`
}

type MissingAttributeError struct {
	EventType string
	Key       string
	TxHash    string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("transaction %s has no '%s' attribute in a '%s' event", e.TxHash, e.Key, e.EventType)
}

// Attribute returns the value of the first attribute named key inside the first
// event of type eventType.
func (r *TxResult) Attribute(eventType, key string) (string, error) {
	if r != nil {
		for _, e := range r.Events {
			if e == nil || e.Type != eventType {
				continue
			}
			for _, a := range e.Attributes {
				if a != nil && a.Key == key {
					return a.Value, nil
				}
			}
		}
	}
	txHash := ""
	if r != nil {
		txHash = r.TxHash
	}
	return "", &MissingAttributeError{EventType: eventType, Key: key, TxHash: txHash}
}
