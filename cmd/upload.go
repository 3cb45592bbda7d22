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

var uploadCmd = &cobra.Command{
	Use:               "upload <network> [artifact...]",
	Short:             "Upload artifacts whose content changed",
	ValidArgsFunction: listNetworks,
	Long: `Upload every artifact in the network's artifacts directory whose sha256 differs
from the one recorded at its last upload. Name artifacts or contracts to upload
only those. Code ids are recorded after each upload, so an interrupted upload
can simply be run again.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeployer(args[0])
		if err != nil {
			return err
		}
		var codeIDs types.CodeIDDocument
		err = runWithSpinner(cmd, d, fmt.Sprintf("uploading to %s", d.Network.Name), func(ctx context.Context) (err error) {
			codeIDs, err = d.Upload(ctx, &types.UploadOptions{Only: args[1:]})
			return err
		})
		if err != nil {
			return err
		}
		return printOutput(cmd, codeIDs)
	},
}

func init() {
	addOutputFlag(uploadCmd)
	rootCmd.AddCommand(uploadCmd)
}
