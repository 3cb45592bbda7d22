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

	"github.com/jmesworld/wasmdeploy/internal/artifacts"
	"github.com/jmesworld/wasmdeploy/internal/ledger"
	"github.com/jmesworld/wasmdeploy/internal/log"
	"github.com/jmesworld/wasmdeploy/internal/state"
	"github.com/jmesworld/wasmdeploy/pkg/types"
)

// UploadPipeline stores every artifact whose content changed since its last
// successful upload, recording progress after each one.
type UploadPipeline struct {
	Network *types.Network
	Client  ledger.Client
	Store   *state.Store
}

// Changed returns the artifacts whose checksum differs from the recorded one, in input order.
func Changed(found []*artifacts.Artifact, checksums types.ChecksumDocument) []*artifacts.Artifact {
	changed := make([]*artifacts.Artifact, 0, len(found))
	for _, a := range found {
		if prev, ok := checksums[a.FileName]; !ok || prev != a.Checksum {
			changed = append(changed, a)
		}
	}
	return changed
}

// Run returns the updated code ids. On error nothing is returned, but every
// artifact uploaded before the failure is already persisted.
func (p *UploadPipeline) Run(ctx context.Context, found []*artifacts.Artifact, checksums types.ChecksumDocument, codeIDs types.CodeIDDocument) (types.CodeIDDocument, error) {
	l := log.LoggerFromContext(ctx)
	checksums = checksums.Copy()
	codeIDs = codeIDs.Copy()

	changed := Changed(found, checksums)
	if len(changed) == 0 {
		l.Info("all artifacts are up to date")
		return codeIDs, nil
	}
	l.Info(fmt.Sprintf("%d of %d artifacts changed", len(changed), len(found)))

	for _, a := range changed {
		if err := p.upload(ctx, a, checksums, codeIDs); err != nil {
			l.Error(err)
			return nil, err
		}
	}
	return codeIDs, nil
}

func (p *UploadPipeline) upload(ctx context.Context, a *artifacts.Artifact, checksums types.ChecksumDocument, codeIDs types.CodeIDDocument) error {
	l := log.LoggerFromContext(ctx)
	name := a.ContractName()
	wasm, err := a.Read()
	if err != nil {
		return fmt.Errorf("unable to read artifact '%s': %w", a.FileName, err)
	}

	l.Info(fmt.Sprintf("storing %s", a.FileName))
	tx, err := p.Client.StoreCode(ctx, p.Network.Deployer, wasm)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", a.FileName, err)
	}
	codeID, err := ledger.CodeIDFromResult(tx)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", a.FileName, err)
	}
	if prev, ok := codeIDs.Lookup(name); ok && codeID < prev {
		l.Warn(fmt.Sprintf("contract '%s' was assigned code id %d, lower than the previous %d", name, codeID, prev))
	}

	// Code id first, so a crash in between leaves the artifact looking new
	codeIDs[name] = codeID
	if err := p.Store.SaveCodeIDs(codeIDs); err != nil {
		return err
	}
	checksums[a.FileName] = a.Checksum
	if err := p.Store.SaveChecksums(checksums); err != nil {
		return err
	}
	l.Info(fmt.Sprintf("stored %s as code id %d", name, codeID))

	return p.Client.AwaitSettled(ctx, tx)
}
