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

	"github.com/jmesworld/wasmdeploy/internal/deployer"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:               "verify <network>",
	Short:             "Check the recorded contracts against the ledger",
	ValidArgsFunction: listNetworks,
	Long: `Read every recorded contract back from the ledger and check that it runs the
latest uploaded code id and is administered by the governance root.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeployer(args[0])
		if err != nil {
			return err
		}
		var reports []*deployer.ContractReport
		verifyErr := runWithSpinner(cmd, d, fmt.Sprintf("verifying %s", d.Network.Name), func(ctx context.Context) (err error) {
			reports, err = d.Verify(ctx)
			return err
		})
		if reports != nil {
			if err := printOutput(cmd, reports); err != nil {
				return err
			}
		}
		return verifyErr
	},
}

func init() {
	addOutputFlag(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}
