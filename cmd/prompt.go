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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmesworld/wasmdeploy/internal/core"
	"github.com/spf13/cobra"
)

var stdin io.Reader = os.Stdin

func confirm(promptText string) error {
	reader := bufio.NewReader(stdin)
	fmt.Printf("%s [y/N] ", promptText)
	str, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	str = strings.ToLower(strings.TrimSpace(str))
	if str == "y" || str == "yes" {
		return nil
	}
	return fmt.Errorf("confirmation declined with response: '%s'", str)
}

func printWarning(msg string) {
	if fancyFeatures {
		fmt.Fprintf(os.Stderr, "\u001b[33mWarning: %s\u001b[0m\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// listNetworks aids in completion, to provide completion to command for network name.
func listNetworks(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	networks, err := core.ListNetworks(homeDir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return networks, cobra.ShellCompDirectiveNoFileComp
}
