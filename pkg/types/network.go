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

import (
	"time"
)

type Network struct {
	Name           string            `yaml:"name" json:"name"`
	ChainID        string            `yaml:"chainId" json:"chainId"`
	Connector      *ConnectorConfig  `yaml:"connector" json:"connector"`
	Deployer       string            `yaml:"deployer" json:"deployer"`
	BootstrapAdmin string            `yaml:"bootstrapAdmin" json:"bootstrapAdmin"`
	ArtifactsDir   string            `yaml:"artifactsDir" json:"artifactsDir"`
	Settle         *SettleConfig     `yaml:"settle,omitempty" json:"settle,omitempty"`
	GovernanceRoot string            `yaml:"governanceRoot" json:"governanceRoot"`
	Contracts      []*ContractConfig `yaml:"contracts" json:"contracts"`
	Wiring         *WiringConfig     `yaml:"wiring,omitempty" json:"wiring,omitempty"`

	// Set when the network file is loaded, never read from the file itself
	ConfigPath string `yaml:"-" json:"-"`
	StateDir   string `yaml:"-" json:"-"`
}

type ConnectorConfig struct {
	URL            string        `yaml:"url" json:"url"`
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty" json:"requestTimeout,omitempty"`
	Retries        int           `yaml:"retries,omitempty" json:"retries,omitempty"`
}

// SettleConfig describes how long to wait after a state-mutating transaction
// before the next dependent transaction is submitted from the same account.
type SettleConfig struct {
	MinInterval   time.Duration `yaml:"minInterval,omitempty" json:"minInterval,omitempty"`
	Confirmations int           `yaml:"confirmations,omitempty" json:"confirmations,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

type ContractConfig struct {
	Name  string    `yaml:"name" json:"name"`
	Label string    `yaml:"label,omitempty" json:"label,omitempty"`
	Msg   *Template `yaml:"msg" json:"msg"`
}

// WiringConfig is the execute message sent to the governance root once every
// contract has an address, e.g. {"set_contract": {"art_dealer": "...", ...}}
type WiringConfig struct {
	Msg       string   `yaml:"msg" json:"msg"`
	Contracts []string `yaml:"contracts,omitempty" json:"contracts,omitempty"`
}

func (c *ContractConfig) GetLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

func (n *Network) GetContract(name string) *ContractConfig {
	for _, c := range n.Contracts {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// WiredContracts returns the names passed to the governance root in the
// wiring message. When none are configured every non-root contract is wired.
func (n *Network) WiredContracts() []string {
	if n.Wiring != nil && len(n.Wiring.Contracts) > 0 {
		return n.Wiring.Contracts
	}
	names := make([]string, 0, len(n.Contracts))
	for _, c := range n.Contracts {
		if c.Name != n.GovernanceRoot {
			names = append(names, c.Name)
		}
	}
	return names
}
