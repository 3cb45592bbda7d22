package deployer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmesworld/wasmdeploy/internal/ledger/mocks"
	"github.com/jmesworld/wasmdeploy/internal/ledger/wasmconnect"
	"github.com/jmesworld/wasmdeploy/internal/utils"
	"github.com/jmesworld/wasmdeploy/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const networkYAML = `name: testnet
chainId: jmes-888
connector:
  url: http://localhost:5008
deployer: jmes1deployer
bootstrapAdmin: jmes1bootstrap
contracts:
  - name: governance
    msg:
      owner: jmes1owner
  - name: identityservice
    msg:
      owner: __governance
      dao_members_code_id: "$$dao_members"
  - name: art_dealer
    msg:
      owner: __governance
      identityservice_contract: __identityservice
wiring:
  msg: set_contract
`

func setupHome(t *testing.T) string {
	home := t.TempDir()
	networkDir := filepath.Join(home, "networks", "testnet")
	require.NoError(t, os.MkdirAll(networkDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(networkDir, "network.yaml"), []byte(networkYAML), 0644))
	utils.WriteArtifacts(t, filepath.Join(networkDir, "artifacts"),
		[2]string{"art_dealer-aarch64.wasm", "art"},
		[2]string{"dao_members.wasm", "members"},
		[2]string{"governance.wasm", "gov"},
		[2]string{"identityservice.wasm", "ids"},
	)
	return home
}

func newTestDeployer(t *testing.T) (*Deployer, *mocks.Ledger, *testLogger) {
	home := setupHome(t)
	logger := &testLogger{}
	d := NewDeployer(logger)
	require.NoError(t, d.LoadNetwork(home, "testnet", ""))
	_, ok := d.Client.(*wasmconnect.Client)
	assert.True(t, ok)

	l := mocks.NewLedger()
	d.UseNetwork(d.Network, l)
	return d, l, logger
}

func TestLoadNetwork(t *testing.T) {
	d, _, _ := newTestDeployer(t)
	assert.Equal(t, "jmes-888", d.Network.ChainID)
	assert.Equal(t, "governance", d.Network.GovernanceRoot)
	assert.Equal(t, filepath.Dir(d.Network.ConfigPath), d.Network.StateDir)
	assert.Equal(t, d.Network.StateDir, d.Store.Dir)
}

func TestLoadNetworkWrongName(t *testing.T) {
	home := setupHome(t)
	d := NewDeployer(&testLogger{})
	err := d.LoadNetwork(home, "mainnet", filepath.Join(home, "networks", "testnet", "network.yaml"))
	assert.Regexp(t, "is for network 'testnet', not 'mainnet'", err)
}

func TestDeploy(t *testing.T) {
	d, l, logger := newTestDeployer(t)
	ctx := context.Background()

	st, err := d.Deploy(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "testnet", st.Network)
	assert.Equal(t, []string{"art_dealer-aarch64.wasm", "dao_members.wasm", "governance.wasm", "identityservice.wasm"}, st.Checksums.Keys())
	assert.Equal(t, []string{"art_dealer", "dao_members", "governance", "identityservice"}, st.CodeIDs.Keys())
	assert.Equal(t, []string{"art_dealer", "governance", "identityservice"}, st.Addresses.Keys())
	assert.NotEmpty(t, logger.infos)

	// a second deploy changes nothing on the ledger except the wiring call
	mutating := l.MutatingCalls()
	again, err := d.Deploy(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, st, again)
	assert.Equal(t, mutating+1, l.MutatingCalls())

	reports, err := d.Verify(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	for _, r := range reports {
		assert.Equal(t, st.Addresses["governance"], r.Admin)
		assert.Empty(t, r.Problems)
	}
}

func TestDeployOnlyNamedArtifacts(t *testing.T) {
	d, l, _ := newTestDeployer(t)
	codeIDs, err := d.Upload(context.Background(), &types.UploadOptions{Only: []string{"governance"}})
	require.NoError(t, err)
	assert.Equal(t, types.CodeIDDocument{"governance": 1}, codeIDs)
	assert.Equal(t, 1, l.Calls(mocks.OpStoreCode))
}

func TestInstantiateBeforeUpload(t *testing.T) {
	d, l, _ := newTestDeployer(t)
	_, err := d.Deploy(context.Background(), &types.DeployOptions{SkipUpload: true})
	assert.Regexp(t, "'governance' has no code id", err)
	assert.Equal(t, 0, l.MutatingCalls())
}

func TestVerifyDetectsProblems(t *testing.T) {
	d, l, _ := newTestDeployer(t)
	ctx := context.Background()
	st, err := d.Deploy(ctx, nil)
	require.NoError(t, err)

	govAddr := st.Addresses["governance"]
	_, err = l.UpdateAdmin(ctx, govAddr, st.Addresses["art_dealer"], "jmes1someone")
	require.NoError(t, err)

	reports, err := d.Verify(ctx)
	assert.Regexp(t, "verification failed for art_dealer", err)
	require.Len(t, reports, 3)
	assert.Equal(t, []string{"admin is jmes1someone, expected governance root " + govAddr}, reports[2].Problems)
}

func TestStatusInconsistentState(t *testing.T) {
	d, _, _ := newTestDeployer(t)
	require.NoError(t, d.Store.SaveChecksums(types.ChecksumDocument{"governance.wasm": "abc"}))
	_, err := d.Status(context.Background())
	assert.Regexp(t, "inconsistent state for network 'testnet'", err)
}

func TestUploadStaleOptimizerChecksums(t *testing.T) {
	d, l, _ := newTestDeployer(t)
	require.NoError(t, os.WriteFile(filepath.Join(d.Network.ArtifactsDir, "checksums.txt"),
		[]byte("0000000000000000000000000000000000000000000000000000000000000000  governance.wasm\n"), 0644))
	_, err := d.Upload(context.Background(), nil)
	assert.Regexp(t, "rebuild the artifacts", err)
	assert.Equal(t, 0, l.Calls(mocks.OpStoreCode))
}
