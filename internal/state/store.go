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

package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmesworld/wasmdeploy/internal/artifacts"
	"github.com/jmesworld/wasmdeploy/internal/constants"
	"github.com/jmesworld/wasmdeploy/internal/log"
	"github.com/jmesworld/wasmdeploy/pkg/types"
	"github.com/otiai10/copy"
)

// Store persists the three per-network state documents. Each network has its
// own directory, so two networks never share a document.
type Store struct {
	Dir string
}

func NewStore(networkDir string) *Store {
	return &Store{Dir: networkDir}
}

type InconsistentStateError struct {
	Network   string
	Artifacts []string
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("inconsistent state for network '%s': artifacts %s have a recorded checksum but no code id - remove their entries from %s to upload them again",
		e.Network, strings.Join(e.Artifacts, ", "), constants.ChecksumsFileName)
}

func (s *Store) path(fileName string) string {
	return filepath.Join(s.Dir, fileName)
}

func (s *Store) LoadChecksums() (types.ChecksumDocument, error) {
	doc := types.ChecksumDocument{}
	return doc, s.load(constants.ChecksumsFileName, &doc)
}

func (s *Store) LoadCodeIDs() (types.CodeIDDocument, error) {
	doc := types.CodeIDDocument{}
	return doc, s.load(constants.CodeIDsFileName, &doc)
}

func (s *Store) LoadAddresses() (types.AddressDocument, error) {
	doc := types.AddressDocument{}
	return doc, s.load(constants.AddressesFileName, &doc)
}

func (s *Store) SaveChecksums(doc types.ChecksumDocument) error {
	return s.save(constants.ChecksumsFileName, doc)
}

func (s *Store) SaveCodeIDs(doc types.CodeIDDocument) error {
	return s.save(constants.CodeIDsFileName, doc)
}

func (s *Store) SaveAddresses(doc types.AddressDocument) error {
	return s.save(constants.AddressesFileName, doc)
}

// A missing file is a first run, not an error. The destination keeps its empty value.
func (s *Store) load(fileName string, dst interface{}) error {
	b, err := os.ReadFile(s.path(fileName))
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("unable to parse %s: %w", s.path(fileName), err)
	}
	return nil
}

func (s *Store) save(fileName string, doc interface{}) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path(fileName), append(b, '\n'), 0644)
}

// CheckConsistency fails when an artifact has a checksum but its contract has
// no code id, as the upload diff would otherwise skip it forever. A code id
// without a checksum is only reported, it just means the artifact uploads again.
func (s *Store) CheckConsistency(ctx context.Context, network string, checksums types.ChecksumDocument, codeIDs types.CodeIDDocument) error {
	l := log.LoggerFromContext(ctx)
	var missing []string
	withChecksum := map[string]bool{}
	for _, fileName := range checksums.Keys() {
		name := artifacts.ContractName(fileName)
		withChecksum[name] = true
		if _, ok := codeIDs.Lookup(name); !ok {
			missing = append(missing, fileName)
		}
	}
	for _, name := range codeIDs.Keys() {
		if !withChecksum[name] {
			l.Warn(fmt.Sprintf("contract '%s' has code id %d but no recorded checksum, it will be uploaded again", name, codeIDs[name]))
		}
	}
	if len(missing) > 0 {
		return &InconsistentStateError{Network: network, Artifacts: missing}
	}
	return nil
}

// Backup copies the network directory into backups/<label>, leaving earlier backups alone.
func (s *Store) Backup(label string) (string, error) {
	backupsDir := filepath.Join(s.Dir, constants.BackupsDirName)
	dest := filepath.Join(backupsDir, label)
	if _, err := os.Stat(s.Dir); os.IsNotExist(err) {
		return "", nil
	}
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("backup '%s' already exists", dest)
	}
	if err := copy.Copy(s.Dir, dest, copy.Options{
		Skip: func(src string) (bool, error) {
			return src == backupsDir || strings.Contains(filepath.Base(src), ".tmp."), nil
		},
	}); err != nil {
		return "", fmt.Errorf("unable to back up %s: %w", s.Dir, err)
	}
	return dest, nil
}

// Load reads all three documents and checks them against each other.
func (s *Store) Load(ctx context.Context, network string) (*types.NetworkState, error) {
	checksums, err := s.LoadChecksums()
	if err != nil {
		return nil, err
	}
	codeIDs, err := s.LoadCodeIDs()
	if err != nil {
		return nil, err
	}
	addresses, err := s.LoadAddresses()
	if err != nil {
		return nil, err
	}
	if err := s.CheckConsistency(ctx, network, checksums, codeIDs); err != nil {
		return nil, err
	}
	return &types.NetworkState{
		Network:   network,
		Checksums: checksums,
		CodeIDs:   codeIDs,
		Addresses: addresses,
	}, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
