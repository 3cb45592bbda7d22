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
	"github.com/hyperledger/firefly-common/pkg/fftypes"
)

type InstantiateMode = fftypes.FFEnum

// InstantiateModeType is lowercase as enum lookups lowercase the type name
const InstantiateModeType = "instantiatemode"

var (
	// InstantiateModeResume skips every contract that already has an address
	InstantiateModeResume = fftypes.FFEnumValue(InstantiateModeType, "resume")
	// InstantiateModeRedeploy backs up and discards known addresses, then instantiates everything again
	InstantiateModeRedeploy = fftypes.FFEnumValue(InstantiateModeType, "redeploy")
)

type UploadOptions struct {
	Only []string
}

type InstantiateOptions struct {
	Mode InstantiateMode
}

type DeployOptions struct {
	UploadOptions
	InstantiateOptions
	SkipUpload bool
}
