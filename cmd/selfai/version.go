package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	aicore "github.com/selfai-labs/selfai/src/ai/core"
	_ "github.com/selfai-labs/selfai/src/ai/providers"
)

var version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the registered generation providers",
	Run: func(cmd *cobra.Command, args []string) {
		providers := aicore.Registered()
		sort.Strings(providers)
		fmt.Fprintf(cmd.OutOrStdout(), "selfai version %s\nproviders: %s\n", version, strings.Join(providers, ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
