package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmesworld/wasmdeploy/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNetworkYAML = `name: testnet
connector:
  url: http://localhost:5008
deployer: jmes1deployer
bootstrapAdmin: jmes1bootstrap
contracts:
  - name: governance
  - name: art_dealer
    msg:
      owner: __governance
`

func setupHome(t *testing.T) string {
	home := t.TempDir()
	dir := filepath.Join(home, "networks", "testnet")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "network.yaml"), []byte(testNetworkYAML), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(home, "networks", "empty"), 0755))
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append(args, "--ansi", "never"))
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestNetworksList(t *testing.T) {
	home := setupHome(t)
	out, err := execute(t, "networks", "ls", "--home", home)
	require.NoError(t, err)
	assert.Equal(t, "testnet\n", out)
}

func TestStatusEmpty(t *testing.T) {
	home := setupHome(t)
	defer func() { outputFormat = "yaml" }()
	out, err := execute(t, "status", "testnet", "--home", home, "-o", "json")
	require.NoError(t, err)

	var st types.NetworkState
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "testnet", st.Network)
	assert.Empty(t, st.CodeIDs)
}

func TestStatusUnknownNetwork(t *testing.T) {
	home := setupHome(t)
	_, err := execute(t, "status", "mainnet", "--home", home)
	assert.Error(t, err)
}

func TestInstantiateInvalidMode(t *testing.T) {
	home := setupHome(t)
	_, err := execute(t, "instantiate", "testnet", "--home", home, "--mode", "fresh")
	assert.Regexp(t, "invalid mode 'fresh'", err)
	instantiateMode = types.InstantiateModeResume.String()
}

func TestParseInstantiateMode(t *testing.T) {
	defer func() { instantiateMode = types.InstantiateModeResume.String() }()

	instantiateMode = "redeploy"
	mode, err := parseInstantiateMode(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, types.InstantiateModeRedeploy, mode)

	instantiateMode = "resume"
	mode, err = parseInstantiateMode(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, types.InstantiateModeResume, mode)
}

func TestConfirm(t *testing.T) {
	defer func() { stdin = os.Stdin }()

	stdin = strings.NewReader("y\n")
	assert.NoError(t, confirm("continue?"))

	stdin = strings.NewReader("no\n")
	assert.Regexp(t, "confirmation declined with response: 'no'", confirm("continue?"))

	stdin = strings.NewReader("")
	assert.Error(t, confirm("continue?"))
}

func TestVersion(t *testing.T) {
	BuildVersionOverride = "v1.2.3"
	defer func() { BuildVersionOverride = "" }()

	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3\n", out)
	shortened = false

	out, err = execute(t, "version", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: v1.2.3")
	assert.Contains(t, out, "License: Apache-2.0")
	versionOutput = "json"
}

func TestDocs(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "docs", dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "wasmdeploy_deploy.md"))
	assert.NoError(t, err)
}
