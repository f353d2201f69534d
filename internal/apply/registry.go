// Package apply drains committed log entries into a registered state
// machine, with a leader fast-path that bypasses re-parsing for pending
// client calls.
package apply

import (
	"errors"
	"fmt"

	"github.com/mattn/go-shellwords"
)

// ErrUnknownCommand is returned when no handler is registered for a
// command_name found in an applied entry.
var ErrUnknownCommand = errors.New("unknown_command")

// ErrBadArity is returned when the parsed argument count doesn't satisfy
// the registered arity spec.
var ErrBadArity = errors.New("bad_arity")

// CommandHandler is invoked with the decoded argument vector for a command.
// The command name itself is not part of args; it was already consumed as
// the entry's command_name field.
type CommandHandler func(args []string) error

type commandSpec struct {
	arity   int // positive: exactly n args; negative: at least -n args
	handler CommandHandler
}

// Registry maps command names to (arity spec, handler) pairs, populated by
// the (out-of-scope) cluster layer at startup.
type Registry struct {
	commands map[string]commandSpec
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]commandSpec)}
}

// Register adds name to the table. arity > 0 requires exactly arity
// arguments; arity < 0 requires at least -arity arguments.
func (r *Registry) Register(name string, arity int, handler CommandHandler) {
	r.commands[name] = commandSpec{arity: arity, handler: handler}
}

// Dispatch parses raw using the shell-style argument splitter, looks up the
// command by its registered name, and invokes it. Parse failures, unknown
// commands, and arity mismatches are returned as errors for the caller to
// log; the entry is still counted as applied.
func (r *Registry) Dispatch(commandName string, raw []byte) error {
	args, err := shellwords.Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parsing command arguments: %w", err)
	}

	spec, ok := r.commands[commandName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, commandName)
	}

	argc := len(args)
	if (spec.arity > 0 && argc != spec.arity) || (spec.arity < 0 && argc < -spec.arity) {
		return fmt.Errorf("%w: %q takes %s, got %d", ErrBadArity, commandName, arityDesc(spec.arity), argc)
	}
	return spec.handler(args)
}

func arityDesc(arity int) string {
	if arity >= 0 {
		return fmt.Sprintf("exactly %d args", arity)
	}
	return fmt.Sprintf("at least %d args", -arity)
}
