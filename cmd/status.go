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
	"encoding/json"
	"fmt"

	"github.com/jmesworld/wasmdeploy/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var outputFormat string

var statusCmd = &cobra.Command{
	Use:               "status <network>",
	Short:             "Print the recorded checksums, code ids and addresses",
	ValidArgsFunction: listNetworks,
	Long: `Print the state recorded for a network without contacting the ledger. Fails
when an artifact has a recorded checksum but no code id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeployer(args[0])
		if err != nil {
			return err
		}
		st, err := d.Status(cmd.Context())
		if err != nil {
			return err
		}
		return printState(cmd, st)
	},
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "output format (\"yaml\"|\"json\")")
}

func printState(cmd *cobra.Command, st *types.NetworkState) error {
	return printOutput(cmd, st)
}

func printOutput(cmd *cobra.Command, v interface{}) error {
	var (
		b   []byte
		err error
	)
	switch outputFormat {
	case "json":
		b, err = json.MarshalIndent(v, "", "  ")
		b = append(b, '\n')
	case "yaml":
		b, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("invalid output '%s'", outputFormat)
	}
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}

func init() {
	addOutputFlag(statusCmd)
	rootCmd.AddCommand(statusCmd)
}
