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
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmesworld/wasmdeploy/internal/constants"
	"github.com/jmesworld/wasmdeploy/pkg/types"
	"github.com/miracl/conflate"
	"gopkg.in/yaml.v3"
)

const NetworkConfigFileName = "network.yaml"

func NetworkDir(homeDir, networkName string) string {
	return filepath.Join(homeDir, constants.NetworksDirName, networkName)
}

func NetworkConfigPath(homeDir, networkName string) string {
	return filepath.Join(NetworkDir(homeDir, networkName), NetworkConfigFileName)
}

// LoadNetworkConfig reads a network file and merges any overlay files on top of
// it. Overlays are intended for per-machine overrides such as the connector URL
// or the deployer address.
func LoadNetworkConfig(filename string, extraConfigPaths ...string) (*types.Network, error) {
	var (
		b   []byte
		err error
	)
	if len(extraConfigPaths) == 0 {
		b, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	} else {
		c, err := conflate.FromFiles(append([]string{filename}, extraConfigPaths...)...)
		if err != nil {
			return nil, err
		}
		if b, err = c.MarshalYAML(); err != nil {
			return nil, err
		}
	}

	var network *types.Network
	if err := yaml.Unmarshal(b, &network); err != nil {
		return nil, fmt.Errorf("invalid network config '%s': %w", filename, err)
	}
	if network == nil {
		return nil, fmt.Errorf("network config '%s' is empty", filename)
	}
	network.ConfigPath = filename
	setNetworkDefaults(network, filepath.Dir(filename))
	if err := ValidateNetwork(network); err != nil {
		return nil, fmt.Errorf("invalid network config '%s': %w", filename, err)
	}
	return network, nil
}

func setNetworkDefaults(n *types.Network, baseDir string) {
	if n.Connector == nil {
		n.Connector = &types.ConnectorConfig{}
	}
	if n.Connector.RequestTimeout == 0 {
		n.Connector.RequestTimeout = constants.DefaultRequestTimeout
	}
	if n.Connector.Retries == 0 {
		n.Connector.Retries = constants.DefaultRequestRetries
	}
	if n.Settle == nil {
		n.Settle = &types.SettleConfig{}
	}
	if n.Settle.MinInterval == 0 {
		n.Settle.MinInterval = constants.DefaultSettleInterval
	}
	if n.Settle.Confirmations == 0 {
		n.Settle.Confirmations = constants.DefaultSettleConfirmations
	}
	if n.Settle.Timeout == 0 {
		n.Settle.Timeout = constants.DefaultSettleTimeout
	}
	if n.ArtifactsDir == "" {
		n.ArtifactsDir = "artifacts"
	}
	if !filepath.IsAbs(n.ArtifactsDir) {
		n.ArtifactsDir = filepath.Join(baseDir, n.ArtifactsDir)
	}
	if n.GovernanceRoot == "" && len(n.Contracts) > 0 {
		n.GovernanceRoot = n.Contracts[0].Name
	}
	for _, c := range n.Contracts {
		if c != nil && c.Msg == nil {
			c.Msg = types.Object(nil)
		}
	}
}

// ValidateNetwork checks that the instantiation order is satisfiable: every
// address reference in a contract's message names a contract earlier in the list.
func ValidateNetwork(n *types.Network) error {
	if n.Name == "" {
		return fmt.Errorf("network name is required")
	}
	if n.Connector == nil || n.Connector.URL == "" {
		return fmt.Errorf("connector url is required")
	}
	if n.Deployer == "" {
		return fmt.Errorf("deployer address is required")
	}
	if len(n.Contracts) == 0 {
		return fmt.Errorf("at least one contract is required")
	}
	seen := make(map[string]bool, len(n.Contracts))
	for i, c := range n.Contracts {
		if c == nil || c.Name == "" {
			return fmt.Errorf("contract %d has no name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("contract '%s' is listed more than once", c.Name)
		}
		for _, ref := range c.Msg.References() {
			if ref == c.Name {
				return fmt.Errorf("contract '%s' references its own address", c.Name)
			}
			if !seen[ref] {
				return fmt.Errorf("contract '%s' references '%s' which is not instantiated before it", c.Name, ref)
			}
		}
		seen[c.Name] = true
	}
	if !seen[n.GovernanceRoot] {
		return fmt.Errorf("governance root '%s' is not a configured contract", n.GovernanceRoot)
	}
	if n.Contracts[0].Name != n.GovernanceRoot {
		return fmt.Errorf("governance root '%s' must be instantiated first as it administers every other contract", n.GovernanceRoot)
	}
	if n.BootstrapAdmin == "" {
		return fmt.Errorf("bootstrap admin is required to instantiate governance root '%s'", n.GovernanceRoot)
	}
	if n.Wiring != nil {
		if n.Wiring.Msg == "" {
			return fmt.Errorf("wiring msg name is required")
		}
		for _, name := range n.Wiring.Contracts {
			if !seen[name] {
				return fmt.Errorf("wiring references unknown contract '%s'", name)
			}
		}
	}
	return nil
}

func ListNetworks(homeDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(homeDir, constants.NetworksDirName))
	if os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, err
	}
	networks := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(NetworkConfigPath(homeDir, e.Name())); err == nil {
			networks = append(networks, e.Name())
		}
	}
	return networks, nil
}
