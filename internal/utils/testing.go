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

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
)

type TestHelper struct {
	WasmConnectURL string
}

var (
	WasmConnectEndpoint = "http://localhost:5008"
)

func StartMockServer(t *testing.T) {
	httpmock.Activate()
}

// mock connector endpoint for testing
func NewTestEndPoint(t *testing.T) *TestHelper {
	return &TestHelper{
		WasmConnectURL: WasmConnectEndpoint,
	}
}

func StopMockServer(_ *testing.T) {
	httpmock.DeactivateAndReset()
}

// WriteArtifacts creates one .wasm file per entry in dir, in the order given.
func WriteArtifacts(t *testing.T, dir string, contents ...[2]string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, c := range contents {
		if err := os.WriteFile(filepath.Join(dir, c[0]), []byte(c[1]), 0644); err != nil {
			t.Fatal(err)
		}
	}
}
