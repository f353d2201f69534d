// Package demo implements a minimal in-process state machine (SET/INCR/DEL
// over a string->int64 map) used by cmd/raftlogctl to exercise the apply
// pipeline without a real cluster layer.
package demo

import (
	"fmt"
	"strconv"

	"github.com/anikak11/raftlog/pkg/raftlog"
)

// StateMachine is a tiny key/value store driven entirely by applied log
// entries; its only observable effect is on this map.
type StateMachine struct {
	values map[string]int64
}

// New returns an empty state machine.
func New() *StateMachine {
	return &StateMachine{values: make(map[string]int64)}
}

// Get returns the current value for key.
func (sm *StateMachine) Get(key string) (int64, bool) {
	v, ok := sm.values[key]
	return v, ok
}

// Register installs SET, INCR, and DEL handlers on core.
func (sm *StateMachine) Register(core *raftlog.Core) {
	core.RegisterCommand("SET", 2, func(args []string) error {
		v, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("SET: bad value %q: %w", args[1], err)
		}
		sm.values[args[0]] = v
		fmt.Printf("SET %s = %d\n", args[0], v)
		return nil
	})

	core.RegisterCommand("INCR", 1, func(args []string) error {
		sm.values[args[0]]++
		fmt.Printf("INCR %s -> %d\n", args[0], sm.values[args[0]])
		return nil
	})

	core.RegisterCommand("DEL", 1, func(args []string) error {
		delete(sm.values, args[0])
		fmt.Printf("DEL %s\n", args[0])
		return nil
	})
}
