// Command kvconfig loads secrets from an Azure Key Vault and prints them as
// configuration.
package main

import (
	"fmt"
	"os"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/send"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "kvconfig",
		Short:         "Load configuration secrets from Azure Key Vault",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			threshold := level.Info
			if debug {
				threshold = level.Debug
			}
			return grip.GetSender().SetLevel(send.LevelInfo{Default: level.Info, Threshold: threshold})
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.AddCommand(newGetCommand())

	return cmd
}
