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
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jmesworld/wasmdeploy/internal/constants"
	"github.com/jmesworld/wasmdeploy/internal/deployer"
	"github.com/jmesworld/wasmdeploy/internal/log"
	"github.com/mattn/go-isatty"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ExecutableName = "wasmdeploy"

var (
	cfgFile       string
	homeDir       string
	networkFile   string
	extraConfig   []string
	verbose       bool
	ansi          string
	fancyFeatures bool
	logger        log.Logger = log.NewLogrusLogger(log.Info)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   ExecutableName,
	Short: "wasmdeploy uploads and instantiates CosmWasm contracts incrementally",
	Long: `wasmdeploy uploads and instantiates CosmWasm contracts incrementally

Each network is described by <home>/networks/<network>/network.yaml. Upload
checksums, code ids and contract addresses are recorded next to it, so running
a deploy again only uploads artifacts that changed and only instantiates
contracts that do not have an address yet.

To get started run: wasmdeploy deploy <network>
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		fancyFeatures = ansi == "always" || (ansi == "auto" && isatty.IsTerminal(os.Stdout.Fd()))
		level := log.Info
		if verbose {
			level = log.Debug
		}
		logger = log.NewLogrusLogger(level)
		homeDir = viper.GetString("home")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wasmdeploy.yaml)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", constants.DefaultHomeDir, "directory holding the networks and their deploy state")
	rootCmd.PersistentFlags().StringVarP(&networkFile, "network-file", "f", "", "network config file to use instead of <home>/networks/<network>/network.yaml")
	rootCmd.PersistentFlags().StringArrayVar(&extraConfig, "extra-config", nil, "additional YAML files merged on top of the network config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose log output")
	rootCmd.PersistentFlags().StringVar(&ansi, "ansi", "auto", "control when to print ANSI control characters (\"never\"|\"always\"|\"auto\")")

	cobra.CheckErr(viper.BindPFlag("home", rootCmd.PersistentFlags().Lookup("home")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".wasmdeploy" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".wasmdeploy")
	}

	viper.SetEnvPrefix("WASMDEPLOY")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func loadDeployer(networkName string) (*deployer.Deployer, error) {
	d := deployer.NewDeployer(logger)
	if err := d.LoadNetwork(homeDir, networkName, networkFile, extraConfig...); err != nil {
		return nil, err
	}
	return d, nil
}

// runWithSpinner runs fn with a spinner showing its progress when the output
// is an interactive terminal, and with plain log lines otherwise.
func runWithSpinner(cmd *cobra.Command, d *deployer.Deployer, action string, fn func(ctx context.Context) error) error {
	ctx := log.WithVerbosity(cmd.Context(), verbose)
	if !fancyFeatures || verbose {
		return fn(log.WithLogger(ctx, logger))
	}

	spin := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	spin.Writer = os.Stderr
	spin.Suffix = fmt.Sprintf(" %s...", action)
	spinLogger := log.NewSpinnerLogger(spin)
	d.Log = spinLogger
	spin.Start()
	err := fn(log.WithLogger(ctx, spinLogger))
	spin.Stop()
	for _, w := range spinLogger.Warnings() {
		printWarning(w)
	}
	return err
}
