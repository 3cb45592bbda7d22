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
	"time"

	"github.com/jmesworld/wasmdeploy/internal/ledger"
	"github.com/jmesworld/wasmdeploy/internal/log"
	"github.com/jmesworld/wasmdeploy/internal/state"
	"github.com/jmesworld/wasmdeploy/pkg/types"
)

// InstantiationPipeline creates the configured contracts in order. The
// governance root is created with the bootstrap admin and then made its own
// admin. Every other contract is administered by the root.
type InstantiationPipeline struct {
	Network *types.Network
	Client  ledger.Client
	Store   *state.Store
}

type registryResolver struct {
	addresses types.AddressDocument
	codeIDs   types.CodeIDDocument
}

func (r *registryResolver) Address(contract string) (string, bool) {
	return r.addresses.Lookup(contract)
}

func (r *registryResolver) CodeID(contract string) (uint64, bool) {
	return r.codeIDs.Lookup(contract)
}

func (p *InstantiationPipeline) Run(ctx context.Context, contracts []*types.ContractConfig, codeIDs types.CodeIDDocument, addresses types.AddressDocument, mode types.InstantiateMode) (types.AddressDocument, error) {
	l := log.LoggerFromContext(ctx)
	addresses = addresses.Copy()

	switch mode {
	case types.InstantiateModeRedeploy:
		if len(addresses) > 0 {
			backup, err := p.Store.Backup(fmt.Sprintf("%s-redeploy", time.Now().UTC().Format("20060102T150405Z")))
			if err != nil {
				return nil, err
			}
			l.Info(fmt.Sprintf("previous addresses backed up to %s", backup))
			addresses = types.AddressDocument{}
			if err := p.Store.SaveAddresses(addresses); err != nil {
				return nil, err
			}
		}
	case types.InstantiateModeResume, "":
	default:
		return nil, fmt.Errorf("unknown instantiate mode '%s'", mode)
	}

	resolver := &registryResolver{addresses: addresses, codeIDs: codeIDs}
	for _, c := range contracts {
		if addr, ok := addresses.Lookup(c.Name); ok {
			l.Info(fmt.Sprintf("%s already instantiated at %s", c.Name, addr))
			if c.Name == p.Network.GovernanceRoot {
				if err := p.ensureSelfAdmin(ctx, addr); err != nil {
					l.Error(err)
					return nil, err
				}
			}
			continue
		}
		if err := p.instantiate(ctx, c, resolver); err != nil {
			l.Error(err)
			return nil, err
		}
	}

	if err := p.wire(ctx, addresses); err != nil {
		l.Error(err)
		return nil, err
	}
	return addresses, nil
}

func (p *InstantiationPipeline) instantiate(ctx context.Context, c *types.ContractConfig, resolver *registryResolver) error {
	l := log.LoggerFromContext(ctx)
	isRoot := c.Name == p.Network.GovernanceRoot

	codeID, ok := resolver.codeIDs.Lookup(c.Name)
	if !ok {
		return fmt.Errorf("contract '%s' has no code id - upload it first", c.Name)
	}
	msg, err := c.Msg.Resolve(resolver)
	if err != nil {
		return fmt.Errorf("cannot instantiate '%s': %w", c.Name, err)
	}

	admin := p.Network.BootstrapAdmin
	if !isRoot {
		if admin, ok = resolver.addresses.Lookup(p.Network.GovernanceRoot); !ok {
			return fmt.Errorf("cannot instantiate '%s': governance root '%s' has no address", c.Name, p.Network.GovernanceRoot)
		}
	}

	l.Info(fmt.Sprintf("instantiating %s from code id %d", c.Name, codeID))
	tx, err := p.Client.Instantiate(ctx, p.Network.Deployer, admin, codeID, msg, c.GetLabel())
	if err != nil {
		return fmt.Errorf("failed to instantiate '%s': %w", c.Name, err)
	}
	addr, err := ledger.ContractAddressFromResult(tx)
	if err != nil {
		return fmt.Errorf("failed to instantiate '%s': %w", c.Name, err)
	}

	// Recorded before the admin handover so a retry never creates a second root
	resolver.addresses[c.Name] = addr
	if err := p.Store.SaveAddresses(resolver.addresses); err != nil {
		return err
	}
	l.Info(fmt.Sprintf("instantiated %s at %s", c.Name, addr))
	if err := p.Client.AwaitSettled(ctx, tx); err != nil {
		return err
	}

	if isRoot {
		return p.updateAdmin(ctx, addr)
	}
	return nil
}

// ensureSelfAdmin finishes a root handover interrupted after the instantiate.
func (p *InstantiationPipeline) ensureSelfAdmin(ctx context.Context, addr string) error {
	info, err := p.Client.ContractInfo(ctx, addr)
	if err != nil {
		return fmt.Errorf("unable to read governance root '%s': %w", addr, err)
	}
	if info.Admin == addr {
		return nil
	}
	if info.Admin != p.Network.BootstrapAdmin {
		return fmt.Errorf("governance root '%s' is administered by %s, expected itself or the bootstrap admin", addr, info.Admin)
	}
	log.LoggerFromContext(ctx).Warn(fmt.Sprintf("governance root %s is still administered by the bootstrap admin", addr))
	return p.updateAdmin(ctx, addr)
}

func (p *InstantiationPipeline) updateAdmin(ctx context.Context, addr string) error {
	log.LoggerFromContext(ctx).Info(fmt.Sprintf("making %s its own admin", addr))
	tx, err := p.Client.UpdateAdmin(ctx, p.Network.BootstrapAdmin, addr, addr)
	if err != nil {
		return fmt.Errorf("failed to update admin of governance root '%s': %w", addr, err)
	}
	return p.Client.AwaitSettled(ctx, tx)
}

// WiringMsg builds e.g. {"set_contract": {"art_dealer": "jmes1...", "identityservice": "jmes1..."}}
func WiringMsg(network *types.Network, addresses types.AddressDocument) (map[string]interface{}, error) {
	pointers := map[string]interface{}{}
	for _, name := range network.WiredContracts() {
		addr, ok := addresses.Lookup(name)
		if !ok {
			return nil, &types.UnresolvedReferenceError{Kind: types.TemplateAddressRef, Contract: name, Path: fmt.Sprintf("$.%s.%s", network.Wiring.Msg, name)}
		}
		pointers[name] = addr
	}
	return map[string]interface{}{network.Wiring.Msg: pointers}, nil
}

func (p *InstantiationPipeline) wire(ctx context.Context, addresses types.AddressDocument) error {
	if p.Network.Wiring == nil || p.Network.Wiring.Msg == "" {
		log.LoggerFromContext(ctx).Warn(fmt.Sprintf("no wiring configured for network '%s', the governance root is not sent the contract addresses", p.Network.Name))
		return nil
	}
	rootAddr, ok := addresses.Lookup(p.Network.GovernanceRoot)
	if !ok {
		return fmt.Errorf("governance root '%s' has no address", p.Network.GovernanceRoot)
	}
	msg, err := WiringMsg(p.Network, addresses)
	if err != nil {
		return fmt.Errorf("cannot wire governance root: %w", err)
	}
	log.LoggerFromContext(ctx).Info(fmt.Sprintf("sending %s to %s", p.Network.Wiring.Msg, p.Network.GovernanceRoot))
	tx, err := p.Client.Execute(ctx, p.Network.Deployer, rootAddr, msg)
	if err != nil {
		return fmt.Errorf("failed to wire governance root: %w", err)
	}
	return p.Client.AwaitSettled(ctx, tx)
}
