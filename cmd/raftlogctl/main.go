// Command raftlogctl operates a standalone replicated-log core directly,
// standing in for the full cluster layer (RPC framing, election, cluster
// membership) which is out of scope for this repository.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var logPath string

func main() {
	root := &cobra.Command{
		Use:   "raftlogctl",
		Short: "Inspect and drive a replicated-log core from the command line",
	}
	root.PersistentFlags().StringVar(&logPath, "log", "", "path to the log file (required)")

	root.AddCommand(newStatusCmd())
	root.AddCommand(newProposeCmd())
	root.AddCommand(newIngestCmd())
	root.AddCommand(newApplyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "raftlogctl:", err)
		os.Exit(1)
	}
}

func requireLogPath() error {
	if logPath == "" {
		return fmt.Errorf("--log is required")
	}
	return nil
}
