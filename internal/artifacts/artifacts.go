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

package artifacts

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmesworld/wasmdeploy/internal/constants"
)

// Suffixes the cosmwasm optimizer appends for non-x86 builds
var platformSuffixes = []string{"-aarch64", "-x86_64", "-arm64", "-amd64"}

type Artifact struct {
	FileName string `json:"fileName"`
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

func (a *Artifact) ContractName() string {
	return ContractName(a.FileName)
}

func (a *Artifact) Read() ([]byte, error) {
	return os.ReadFile(a.Path)
}

// ContractName derives the logical contract name from an artifact file name,
// e.g. "art_dealer-aarch64.wasm" -> "art_dealer"
func ContractName(fileName string) string {
	name := strings.TrimSuffix(filepath.Base(fileName), constants.ArtifactExtension)
	for _, suffix := range platformSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// Discover returns every artifact in dir in directory enumeration order
func Discover(dir string) ([]*Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read artifacts directory '%s': %w", dir, err)
	}
	artifacts := make([]*Artifact, 0, len(entries))
	seen := map[string]string{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != constants.ArtifactExtension {
			continue
		}
		name := ContractName(e.Name())
		if other, ok := seen[name]; ok {
			return nil, fmt.Errorf("artifacts '%s' and '%s' both build contract '%s'", other, e.Name(), name)
		}
		seen[name] = e.Name()

		p := filepath.Join(dir, e.Name())
		checksum, err := Checksum(p)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, &Artifact{
			FileName: e.Name(),
			Path:     p,
			Checksum: checksum,
		})
	}
	return artifacts, nil
}

func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Filter keeps the artifacts named by file name or contract name, preserving order.
func Filter(artifacts []*Artifact, names []string) ([]*Artifact, error) {
	if len(names) == 0 {
		return artifacts, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = false
	}
	filtered := make([]*Artifact, 0, len(names))
	for _, a := range artifacts {
		for _, key := range []string{a.FileName, a.ContractName()} {
			if _, ok := wanted[key]; ok {
				wanted[key] = true
				filtered = append(filtered, a)
				break
			}
		}
	}
	for n, found := range wanted {
		if !found {
			return nil, fmt.Errorf("no artifact found for '%s'", n)
		}
	}
	return filtered, nil
}

// VerifyOptimizerChecksums compares the artifacts against the optimizer's
// checksums.txt ("<sha256>  <file>" per line) when one is present.
func VerifyOptimizerChecksums(dir string, artifacts []*Artifact) error {
	f, err := os.Open(filepath.Join(dir, constants.OptimizerChecksumsFileName))
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	defer f.Close()

	expected := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		expected[fields[1]] = strings.ToLower(fields[0])
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	for _, a := range artifacts {
		if sum, ok := expected[a.FileName]; ok && sum != a.Checksum {
			return fmt.Errorf("artifact '%s' has checksum %s but %s lists %s - rebuild the artifacts", a.FileName, a.Checksum, constants.OptimizerChecksumsFileName, sum)
		}
	}
	return nil
}
