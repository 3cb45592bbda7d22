package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmesworld/wasmdeploy/internal/log"
	"github.com/jmesworld/wasmdeploy/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	return NewStore(filepath.Join(t.TempDir(), "networks", "testnet"))
}

func TestLoadEmpty(t *testing.T) {
	s := newTestStore(t)

	checksums, err := s.LoadChecksums()
	assert.NoError(t, err)
	assert.Empty(t, checksums)

	codeIDs, err := s.LoadCodeIDs()
	assert.NoError(t, err)
	assert.Empty(t, codeIDs)

	addresses, err := s.LoadAddresses()
	assert.NoError(t, err)
	assert.NotNil(t, addresses)
	assert.Empty(t, addresses)
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveChecksums(types.ChecksumDocument{"a.wasm": "h1"}))
	require.NoError(t, s.SaveCodeIDs(types.CodeIDDocument{"a": 12}))
	require.NoError(t, s.SaveAddresses(types.AddressDocument{"a": "jmes1aaa"}))

	checksums, err := s.LoadChecksums()
	assert.NoError(t, err)
	assert.Equal(t, types.ChecksumDocument{"a.wasm": "h1"}, checksums)

	codeIDs, err := s.LoadCodeIDs()
	assert.NoError(t, err)
	assert.Equal(t, types.CodeIDDocument{"a": 12}, codeIDs)

	addresses, err := s.LoadAddresses()
	assert.NoError(t, err)
	assert.Equal(t, types.AddressDocument{"a": "jmes1aaa"}, addresses)

	// overwrite, and no temp files left behind
	require.NoError(t, s.SaveCodeIDs(types.CodeIDDocument{"a": 13}))
	codeIDs, err = s.LoadCodeIDs()
	assert.NoError(t, err)
	assert.Equal(t, uint64(13), codeIDs["a"])

	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestSavedDocumentIsPlainJSON(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveCodeIDs(types.CodeIDDocument{"b": 2, "a": 1}))
	b, err := os.ReadFile(filepath.Join(s.Dir, "codeIds.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2\n}\n", string(b))
}

func TestLoadMalformed(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "contractAddrs.json"), []byte("{not json"), 0644))
	_, err := s.LoadAddresses()
	assert.Regexp(t, "unable to parse", err)
}

func TestCheckConsistency(t *testing.T) {
	s := newTestStore(t)
	ctx := log.WithLogger(context.Background(), log.NewLogrusLogger(log.Error))

	err := s.CheckConsistency(ctx, "testnet",
		types.ChecksumDocument{"a.wasm": "h1", "b-aarch64.wasm": "h2"},
		types.CodeIDDocument{"a": 1, "b": 2})
	assert.NoError(t, err)

	// code id without checksum is tolerated
	err = s.CheckConsistency(ctx, "testnet",
		types.ChecksumDocument{"a.wasm": "h1"},
		types.CodeIDDocument{"a": 1, "b": 2})
	assert.NoError(t, err)

	err = s.CheckConsistency(ctx, "testnet",
		types.ChecksumDocument{"a.wasm": "h1", "b.wasm": "h2"},
		types.CodeIDDocument{"a": 1})
	var inconsistent *InconsistentStateError
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, []string{"b.wasm"}, inconsistent.Artifacts)
	assert.Regexp(t, "inconsistent state for network 'testnet'", err)
}

func TestLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveChecksums(types.ChecksumDocument{"a.wasm": "h1"}))
	require.NoError(t, s.SaveCodeIDs(types.CodeIDDocument{"a": 1}))

	st, err := s.Load(ctx, "testnet")
	require.NoError(t, err)
	assert.Equal(t, "testnet", st.Network)
	assert.Equal(t, uint64(1), st.CodeIDs["a"])
	assert.Empty(t, st.Addresses)

	require.NoError(t, s.SaveCodeIDs(types.CodeIDDocument{}))
	_, err = s.Load(ctx, "testnet")
	assert.Error(t, err)
}

func TestBackup(t *testing.T) {
	s := newTestStore(t)

	dest, err := s.Backup("first")
	assert.NoError(t, err)
	assert.Empty(t, dest)

	require.NoError(t, s.SaveAddresses(types.AddressDocument{"a": "jmes1aaa"}))
	dest, err = s.Backup("first")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "backups", "first"), dest)

	backup := NewStore(dest)
	addresses, err := backup.LoadAddresses()
	assert.NoError(t, err)
	assert.Equal(t, "jmes1aaa", addresses["a"])

	// a second backup does not nest the first
	dest, err = s.Backup("second")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dest, "backups"))
	assert.True(t, os.IsNotExist(err))

	_, err = s.Backup("first")
	assert.Regexp(t, "already exists", err)
}
