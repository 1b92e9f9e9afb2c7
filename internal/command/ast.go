// Package command implements the debugger's command language: the AST,
// the error-recovering parser with byte-span diagnostics, and the
// short-circuiting executor.
package command

// Command is one node of the parsed command tree.
type Command interface {
	isCommand()
}

// Continue resumes every stopped tracee until the next stop.
type Continue struct{}

// Exit ends the interactive session.
type Exit struct{}

// Info prints the tracee table.
type Info struct{}

// Sequence is an ordered list of commands separated by `;`.
type Sequence []Command

// Unexpected is a recognized-but-invalid token run, kept in the tree so a
// bad command never aborts the whole parse.
type Unexpected struct {
	Text string
}

func (Continue) isCommand()   {}
func (Exit) isCommand()       {}
func (Info) isCommand()       {}
func (Sequence) isCommand()   {}
func (Unexpected) isCommand() {}
