package domain

import "context"

// ActionKind discriminates the action variants a target can carry.
type ActionKind int

const (
	// ActionExec runs an external process to completion.
	ActionExec ActionKind = iota
	// ActionFunc runs an in-process function.
	ActionFunc
)

// ActionFuncBody runs with the change set and environment; the walker applies
// a uniform policy around it without inspecting closure internals.
type ActionFuncBody func(ctx context.Context, change ChangeSet, env *Environment) error

// Action is the tagged variant over an external-process invocation and a pure
// in-process function. Keeping the variant explicit lets the walker apply
// timeout/cancellation policy uniformly later.
type Action struct {
	Kind ActionKind

	// Command is the argv for ActionExec. Elements go through the same {KEY}
	// substitution as pattern sources, so commands can reference
	// {BUILD_DIR}, artifacts already resolved into defines, and so on.
	Command []string
	// WorkingDir overrides the project dir as the process working directory.
	WorkingDir string
	// Env carries extra KEY=VALUE pairs for the process environment.
	Env map[string]string

	// Func is the body for ActionFunc.
	Func ActionFuncBody
}

// ExecAction declares an external-process action.
func ExecAction(command ...string) Action {
	return Action{Kind: ActionExec, Command: command}
}

// FuncAction declares an in-process action.
func FuncAction(fn ActionFuncBody) Action {
	return Action{Kind: ActionFunc, Func: fn}
}

// Target is a named, statically declared build step: input and output source
// declarations, dependency edges, and the action that produces the outputs.
// Targets are configuration; they are not created or destroyed at runtime.
type Target struct {
	Name         InternedString
	Inputs       []Source
	Outputs      []Source
	Dependencies []InternedString
	Action       Action
}

// ChangeSet is the subset of a stale target's resolved inputs that differ
// from its last successful run. Non-incremental actions ignore it.
type ChangeSet struct {
	// All is true when no prior stamp exists, meaning every input must be
	// treated as changed.
	All bool
	// Paths lists the changed or newly appeared input files. Empty with
	// All=false means the target was stale for a non-content reason
	// (changed defines, missing output, changed path set).
	Paths []string
}
