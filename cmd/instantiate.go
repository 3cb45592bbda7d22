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

	"github.com/jmesworld/wasmdeploy/pkg/types"
	"github.com/spf13/cobra"
)

var instantiateCmd = &cobra.Command{
	Use:               "instantiate <network>",
	Short:             "Instantiate the configured contracts from recorded code ids",
	ValidArgsFunction: listNetworks,
	Long: `Instantiate the network's contracts in the configured order, substituting
"__<contract>" with the address and "$$<contract>" with the code id of another
contract. The governance root is created with the bootstrap admin and then made
its own admin. Every other contract is administered by the governance root.

With --mode resume (the default) contracts that already have an address are
skipped. With --mode redeploy the recorded addresses are backed up and every
contract is instantiated again.
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
		var addresses types.AddressDocument
		err = runWithSpinner(cmd, d, fmt.Sprintf("instantiating on %s", d.Network.Name), func(ctx context.Context) (err error) {
			addresses, err = d.Instantiate(ctx, &types.InstantiateOptions{Mode: mode})
			return err
		})
		if err != nil {
			return err
		}
		return printOutput(cmd, addresses)
	},
}

func init() {
	addInstantiateFlags(instantiateCmd)
	addOutputFlag(instantiateCmd)
	rootCmd.AddCommand(instantiateCmd)
}
