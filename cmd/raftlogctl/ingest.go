package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anikak11/raftlog/internal/config"
	"github.com/anikak11/raftlog/pkg/raftlog"
	"github.com/spf13/cobra"
)

// jsonEntry mirrors raftlog.Entry for CLI input; the log file's own wire
// format is the length-prefixed frame codec defines, this JSON shape is
// purely a convenience for driving IngestBatch from the shell.
type jsonEntry struct {
	Index       uint64 `json:"index"`
	Term        uint64 `json:"term"`
	CommandName string `json:"command_name"`
	Command     string `json:"command"`
}

func newIngestCmd() *cobra.Command {
	var prevIndex, prevTerm, leaderCommit uint64
	var entriesJSON string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run a leader-pushed batch through the Enforcer and commit/apply pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireLogPath(); err != nil {
				return err
			}
			var raw []jsonEntry
			if err := json.Unmarshal([]byte(entriesJSON), &raw); err != nil {
				return fmt.Errorf("parsing --entries: %w", err)
			}
			entries := make([]raftlog.Entry, len(raw))
			for i, e := range raw {
				entries[i] = raftlog.Entry{
					Index: e.Index, Term: e.Term,
					CommandName: e.CommandName, Command: []byte(e.Command),
				}
			}

			core, err := raftlog.Open(config.Default(logPath))
			if err != nil {
				return err
			}
			defer core.Close()

			if err := core.IngestBatch(context.Background(), prevIndex, prevTerm, leaderCommit, entries); err != nil {
				return err
			}
			lastIndex, lastTerm, commitIndex := core.SnapshotState()
			fmt.Printf("ingest ok: last_index=%d last_term=%d commit_index=%d\n", lastIndex, lastTerm, commitIndex)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&prevIndex, "prev-index", 0, "leader's prevLogIndex anchor")
	cmd.Flags().Uint64Var(&prevTerm, "prev-term", 0, "leader's prevLogTerm anchor")
	cmd.Flags().Uint64Var(&leaderCommit, "leader-commit", 0, "leader's advertised commit index")
	cmd.Flags().StringVar(&entriesJSON, "entries", "[]", `JSON array of {"index","term","command_name","command"}`)
	return cmd
}
