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

package cmd

import (
	"context"
	"fmt"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/jmesworld/wasmdeploy/internal/deployer"
	"github.com/jmesworld/wasmdeploy/pkg/types"
	"github.com/spf13/cobra"
)

var (
	instantiateMode string
	skipUpload      bool
	onlyArtifacts   []string
	assumeYes       bool
)

// deployCmd represents the deploy command
var deployCmd = &cobra.Command{
	Use:               "deploy <network>",
	Short:             "Upload changed artifacts and instantiate missing contracts",
	ValidArgsFunction: listNetworks,
	Long: `Upload every artifact whose content changed since it was last uploaded, then
instantiate, in order, every configured contract that has no recorded address.
Finally the governance root is sent the wiring message with the addresses of
the other contracts.

Running deploy again after a failure resumes where the previous run stopped.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := parseInstantiateMode(cmd.Context())
		if err != nil {
			return err
		}
		d, err := loadDeployer(args[0])
		if err != nil {
			return err
		}
		if err := confirmRedeploy(d, mode); err != nil {
			return err
		}
		options := &types.DeployOptions{
			UploadOptions:      types.UploadOptions{Only: onlyArtifacts},
			InstantiateOptions: types.InstantiateOptions{Mode: mode},
			SkipUpload:         skipUpload,
		}
		var st *types.NetworkState
		err = runWithSpinner(cmd, d, fmt.Sprintf("deploying to %s", d.Network.Name), func(ctx context.Context) (err error) {
			st, err = d.Deploy(ctx, options)
			return err
		})
		if err != nil {
			return err
		}
		return printState(cmd, st)
	},
}

func parseInstantiateMode(ctx context.Context) (types.InstantiateMode, error) {
	mode, err := fftypes.FFEnumParseString(ctx, types.InstantiateModeType, instantiateMode)
	if err != nil {
		return "", fmt.Errorf("invalid mode '%s'. Options are: %v", instantiateMode, fftypes.FFEnumValues(types.InstantiateModeType))
	}
	return mode, nil
}

func confirmRedeploy(d *deployer.Deployer, mode types.InstantiateMode) error {
	if mode != types.InstantiateModeRedeploy || assumeYes {
		return nil
	}
	return confirm(fmt.Sprintf("instantiate every contract on '%s' again? The current addresses are backed up and then forgotten.", d.Network.Name))
}

func addInstantiateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&instantiateMode, "mode", types.InstantiateModeResume.String(), fmt.Sprintf("Instantiate mode, '%s' skips contracts that already have an address. Options are: %v", types.InstantiateModeResume, fftypes.FFEnumValues(types.InstantiateModeType)))
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation before a redeploy")
}

func init() {
	addInstantiateFlags(deployCmd)
	deployCmd.Flags().BoolVar(&skipUpload, "skip-upload", false, "only instantiate, using the code ids already recorded")
	deployCmd.Flags().StringSliceVar(&onlyArtifacts, "only", nil, "only upload the named artifacts or contracts")
	addOutputFlag(deployCmd)
	rootCmd.AddCommand(deployCmd)
}
