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

package constants

import (
	"os"
	"path/filepath"
	"time"
)

var homeDir, _ = os.UserHomeDir()
var DefaultHomeDir = filepath.Join(homeDir, ".wasmdeploy")

const (
	NetworksDirName = "networks"
	BackupsDirName  = "backups"

	ChecksumsFileName = "contractChecksums.json"
	CodeIDsFileName   = "codeIds.json"
	AddressesFileName = "contractAddrs.json"

	// Written by the cosmwasm workspace optimizer next to the artifacts
	OptimizerChecksumsFileName = "checksums.txt"
	ArtifactExtension          = ".wasm"
)

const (
	StoreCodeEvent        = "store_code"
	CodeIDAttribute       = "code_id"
	InstantiateEvent      = "instantiate"
	ContractAddrAttribute = "_contract_address"
)

const (
	DefaultSettleInterval      = 2 * time.Second
	DefaultSettleTimeout       = 2 * time.Minute
	DefaultSettleConfirmations = 1
	DefaultRequestTimeout      = 30 * time.Second
	DefaultRequestRetries      = 5
)
