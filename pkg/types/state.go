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

import "sort"

// ChecksumDocument maps an artifact file name to the sha256 of its last uploaded content.
type ChecksumDocument map[string]string

// CodeIDDocument maps a contract name to the code id assigned by the ledger.
type CodeIDDocument map[string]uint64

// AddressDocument maps a contract name to its instantiated address.
type AddressDocument map[string]string

func (d ChecksumDocument) Copy() ChecksumDocument {
	c := make(ChecksumDocument, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

func (d CodeIDDocument) Copy() CodeIDDocument {
	c := make(CodeIDDocument, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

func (d AddressDocument) Copy() AddressDocument {
	c := make(AddressDocument, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

func (d AddressDocument) Lookup(name string) (string, bool) {
	addr, ok := d[name]
	return addr, ok && addr != ""
}

func (d CodeIDDocument) Lookup(name string) (uint64, bool) {
	id, ok := d[name]
	return id, ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d ChecksumDocument) Keys() []string { return sortedKeys(d) }
func (d CodeIDDocument) Keys() []string   { return sortedKeys(d) }
func (d AddressDocument) Keys() []string  { return sortedKeys(d) }

// NetworkState is the combined view printed by the status command.
type NetworkState struct {
	Network   string           `json:"network" yaml:"network"`
	Checksums ChecksumDocument `json:"checksums" yaml:"checksums"`
	CodeIDs   CodeIDDocument   `json:"codeIds" yaml:"codeIds"`
	Addresses AddressDocument  `json:"addresses" yaml:"addresses"`
}
