package main

import (
	"context"
	"fmt"

	"github.com/anikak11/raftlog/internal/config"
	"github.com/anikak11/raftlog/pkg/raftlog"
	"github.com/spf13/cobra"
)

func newProposeCmd() *cobra.Command {
	var name, args string
	var term uint64

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose a command as if this node were the current leader",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireLogPath(); err != nil {
				return err
			}
			core, err := raftlog.Open(config.Default(logPath))
			if err != nil {
				return err
			}
			defer core.Close()

			core.SetTerm(term)
			core.SetRole(raftlog.Leader)

			index, err := core.Propose(context.Background(), name, []byte(args), nil)
			if err != nil {
				return err
			}
			fmt.Printf("proposed index=%d\n", index)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "command name (<=16 bytes)")
	cmd.Flags().StringVar(&args, "args", "", "whitespace/quote-escaped command arguments")
	cmd.Flags().Uint64Var(&term, "term", 0, "current Raft term")
	cmd.MarkFlagRequired("name")
	return cmd
}
