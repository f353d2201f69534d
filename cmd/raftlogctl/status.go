package main

import (
	"fmt"

	"github.com/anikak11/raftlog/internal/config"
	"github.com/anikak11/raftlog/pkg/raftlog"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print last index, last term, commit index, and last applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogPath(); err != nil {
				return err
			}
			core, err := raftlog.Open(config.Default(logPath))
			if err != nil {
				return err
			}
			defer core.Close()

			lastIndex, lastTerm, commitIndex := core.SnapshotState()
			fmt.Printf("last_index=%d last_term=%d commit_index=%d last_applied=%d\n",
				lastIndex, lastTerm, commitIndex, core.LastApplied())
			return nil
		},
	}
}
