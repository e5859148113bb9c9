package cmd

import (
	"fmt"
	"os"

	"github.com/replikativ/konserve-lmdb/cmd/kv"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "konserve",
		Short: "embedded key-value store on LMDB",
		Long: fmt.Sprintf(`konserve-lmdb (v%s)

An embedded key-value store library built on LMDB, with a
self-describing binary codec, per-entry metadata and atomic
multi-key batches.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of konserve-lmdb",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("konserve-lmdb v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
