package main

import (
	"fmt"

	"github.com/anikak11/raftlog/internal/config"
	"github.com/anikak11/raftlog/internal/demo"
	"github.com/anikak11/raftlog/pkg/raftlog"
	"github.com/spf13/cobra"
)

func newApplyCmd() *cobra.Command {
	var commitIndex uint64

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Advance the commit index and drain the apply loop against the demo state machine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireLogPath(); err != nil {
				return err
			}
			core, err := raftlog.Open(config.Default(logPath))
			if err != nil {
				return err
			}
			defer core.Close()

			sm := demo.New()
			sm.Register(core)

			if err := core.AdvanceCommitAndApply(commitIndex); err != nil {
				return err
			}
			fmt.Printf("last_applied=%d\n", core.LastApplied())
			return nil
		},
	}
	cmd.Flags().Uint64Var(&commitIndex, "commit-index", 0, "leader-advertised commit index to advance to")
	return cmd
}
