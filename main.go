package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/anikak11/raftlog/internal/config"
	"github.com/anikak11/raftlog/internal/demo"
	"github.com/anikak11/raftlog/pkg/raftlog"
)

func main() {
	tmpDir, err := os.MkdirTemp("", "raftlog_demo")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	logPath := filepath.Join(tmpDir, "demo.log")
	fmt.Printf("--- Phase 1: Opening the log and proposing entries as leader ---\n")
	fmt.Printf("File: %s\n\n", logPath)

	core, err := raftlog.Open(config.Default(logPath))
	if err != nil {
		log.Fatalf("failed to open log: %v", err)
	}
	sm := demo.New()
	sm.Register(core)
	core.SetTerm(1)
	core.SetRole(raftlog.Leader)

	proposals := []struct{ name, args string }{
		{"SET", "user_1 100"},
		{"INCR", "user_1"},
		{"DEL", "session_99"},
	}
	for i, p := range proposals {
		index, err := core.Propose(context.Background(), p.name, []byte(p.args), nil)
		if err != nil {
			log.Fatalf("failed to propose: %v", err)
		}
		fmt.Printf("Proposed entry %d at index %d: %s %s\n", i+1, index, p.name, p.args)
	}

	if err := core.AdvanceCommitAndApply(core.LastApplied() + 3); err != nil {
		log.Fatalf("failed to advance commit: %v", err)
	}
	fmt.Printf("\nCurrent last_applied: %d\n", core.LastApplied())
	core.Close()

	fmt.Printf("\n--- Phase 2: Simulating restart and recovery ---\n")
	reopened, err := raftlog.Open(config.Default(logPath))
	if err != nil {
		log.Fatalf("failed to recover log: %v", err)
	}
	defer reopened.Close()

	lastIndex, lastTerm, commitIndex := reopened.SnapshotState()
	fmt.Printf("Recovered log: last_index=%d last_term=%d commit_index=%d\n", lastIndex, lastTerm, commitIndex)
	for i := uint64(1); i <= lastIndex; i++ {
		e, _ := reopened.Lookup(i)
		fmt.Printf("  [%d] %s %s\n", i, e.CommandName, e.Command)
	}

	fmt.Printf("\n--- Phase 3: Leader change, conflicting entry at index 2 ---\n")
	conflict := []raftlog.Entry{
		{Index: 2, Term: 2, CommandName: "SET", Command: []byte("user_1 999")},
	}
	if err := reopened.IngestBatch(context.Background(), 1, 1, commitIndex, conflict); err != nil {
		log.Fatalf("failed to ingest conflicting batch: %v", err)
	}

	newLastIndex, newLastTerm, _ := reopened.SnapshotState()
	fmt.Printf("New last_index=%d last_term=%d\n", newLastIndex, newLastTerm)
	fmt.Printf("Final log content:\n")
	for i := uint64(1); i <= newLastIndex; i++ {
		e, _ := reopened.Lookup(i)
		fmt.Printf("  [%d] %s %s\n", i, e.CommandName, e.Command)
	}
}
