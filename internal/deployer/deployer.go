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

package deployer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmesworld/wasmdeploy/internal/artifacts"
	"github.com/jmesworld/wasmdeploy/internal/core"
	"github.com/jmesworld/wasmdeploy/internal/ledger"
	"github.com/jmesworld/wasmdeploy/internal/ledger/wasmconnect"
	"github.com/jmesworld/wasmdeploy/internal/log"
	"github.com/jmesworld/wasmdeploy/internal/state"
	"github.com/jmesworld/wasmdeploy/pkg/types"
)

type Deployer struct {
	Log     log.Logger
	Network *types.Network
	Store   *state.Store
	Client  ledger.Client
}

type ContractReport struct {
	Name     string   `json:"name" yaml:"name"`
	Address  string   `json:"address" yaml:"address"`
	CodeID   uint64   `json:"codeId" yaml:"codeId"`
	Admin    string   `json:"admin" yaml:"admin"`
	Problems []string `json:"problems,omitempty" yaml:"problems,omitempty"`
}

func NewDeployer(logger log.Logger) *Deployer {
	return &Deployer{
		Log: logger,
	}
}

// LoadNetwork reads <home>/networks/<name>/network.yaml, or configPath when set,
// and connects to the network's wasmconnect instance.
func (d *Deployer) LoadNetwork(homeDir, networkName, configPath string, extraConfigPaths ...string) error {
	if configPath == "" {
		configPath = core.NetworkConfigPath(homeDir, networkName)
	}
	network, err := core.LoadNetworkConfig(configPath, extraConfigPaths...)
	if err != nil {
		return err
	}
	if network.Name != networkName {
		return fmt.Errorf("network config '%s' is for network '%s', not '%s'", configPath, network.Name, networkName)
	}
	network.StateDir = core.NetworkDir(homeDir, networkName)
	d.UseNetwork(network, wasmconnect.NewClient(network.Connector, network.Settle))
	return nil
}

// UseNetwork sets up the deployer for an already loaded network and ledger client.
func (d *Deployer) UseNetwork(network *types.Network, client ledger.Client) {
	d.Network = network
	d.Store = state.NewStore(network.StateDir)
	d.Client = client
}

func (d *Deployer) context(ctx context.Context) context.Context {
	if d.Log != nil {
		return log.WithLogger(ctx, d.Log)
	}
	return ctx
}

func (d *Deployer) loadState(ctx context.Context) (*types.NetworkState, error) {
	if d.Network == nil {
		return nil, fmt.Errorf("no network loaded")
	}
	return d.Store.Load(ctx, d.Network.Name)
}

func (d *Deployer) uploadPipeline() *UploadPipeline {
	return &UploadPipeline{Network: d.Network, Client: d.Client, Store: d.Store}
}

func (d *Deployer) instantiationPipeline() *InstantiationPipeline {
	return &InstantiationPipeline{Network: d.Network, Client: d.Client, Store: d.Store}
}

func (d *Deployer) Artifacts(options *types.UploadOptions) ([]*artifacts.Artifact, error) {
	found, err := artifacts.Discover(d.Network.ArtifactsDir)
	if err != nil {
		return nil, err
	}
	if err := artifacts.VerifyOptimizerChecksums(d.Network.ArtifactsDir, found); err != nil {
		return nil, err
	}
	if options != nil {
		return artifacts.Filter(found, options.Only)
	}
	return found, nil
}

func (d *Deployer) Upload(ctx context.Context, options *types.UploadOptions) (types.CodeIDDocument, error) {
	ctx = d.context(ctx)
	st, err := d.loadState(ctx)
	if err != nil {
		return nil, err
	}
	found, err := d.Artifacts(options)
	if err != nil {
		return nil, err
	}
	return d.uploadPipeline().Run(ctx, found, st.Checksums, st.CodeIDs)
}

func (d *Deployer) Instantiate(ctx context.Context, options *types.InstantiateOptions) (types.AddressDocument, error) {
	ctx = d.context(ctx)
	st, err := d.loadState(ctx)
	if err != nil {
		return nil, err
	}
	mode := types.InstantiateModeResume
	if options != nil && options.Mode != "" {
		mode = options.Mode
	}
	return d.instantiationPipeline().Run(ctx, d.Network.Contracts, st.CodeIDs, st.Addresses, mode)
}

// Deploy uploads changed artifacts and then instantiates the contracts.
func (d *Deployer) Deploy(ctx context.Context, options *types.DeployOptions) (*types.NetworkState, error) {
	if options == nil {
		options = &types.DeployOptions{}
	}
	if !options.SkipUpload {
		if _, err := d.Upload(ctx, &options.UploadOptions); err != nil {
			return nil, err
		}
	}
	if _, err := d.Instantiate(ctx, &options.InstantiateOptions); err != nil {
		return nil, err
	}
	return d.Status(ctx)
}

func (d *Deployer) Status(ctx context.Context) (*types.NetworkState, error) {
	return d.loadState(d.context(ctx))
}

// Verify reads every recorded contract back from the ledger and checks its
// code id and admin against the local state.
func (d *Deployer) Verify(ctx context.Context) ([]*ContractReport, error) {
	ctx = d.context(ctx)
	st, err := d.loadState(ctx)
	if err != nil {
		return nil, err
	}
	rootAddr, _ := st.Addresses.Lookup(d.Network.GovernanceRoot)

	reports := make([]*ContractReport, 0, len(d.Network.Contracts))
	failed := []string{}
	for _, c := range d.Network.Contracts {
		report := &ContractReport{Name: c.Name}
		reports = append(reports, report)
		addr, ok := st.Addresses.Lookup(c.Name)
		if !ok {
			report.Problems = append(report.Problems, "not instantiated")
			failed = append(failed, c.Name)
			continue
		}
		report.Address = addr
		info, err := d.Client.ContractInfo(ctx, addr)
		if err != nil {
			return nil, err
		}
		report.CodeID = info.CodeID
		report.Admin = info.Admin
		if codeID, ok := st.CodeIDs.Lookup(c.Name); ok && codeID != info.CodeID {
			report.Problems = append(report.Problems, fmt.Sprintf("running code id %d, latest upload is %d", info.CodeID, codeID))
		}
		if info.Admin != rootAddr {
			report.Problems = append(report.Problems, fmt.Sprintf("admin is %s, expected governance root %s", info.Admin, rootAddr))
		}
		if len(report.Problems) > 0 {
			failed = append(failed, c.Name)
		}
	}
	if len(failed) > 0 {
		return reports, fmt.Errorf("verification failed for %s", strings.Join(failed, ", "))
	}
	return reports, nil
}
