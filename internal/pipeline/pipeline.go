// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package pipeline implements the Pipeline data model and the Pipeline
// Collector (spec.md §3, §4.I): folding expanded jobs into a Pipeline
// with per-job redirections, pipe-connection kind, and disposition.
package pipeline

// Disposition is how a Pipeline runs relative to the shell's own
// foreground (spec.md §3, glossary).
type Disposition int

const (
	Foreground Disposition = iota
	Background
	Disowned
)

// Connector is the pipe-connection kind between two PipeItems
// (spec.md §4.I, glossary RedirectFrom).
type Connector int

const (
	ConnNone Connector = iota
	ConnStdout          // "|"
	ConnStderr          // "^|"
	ConnBoth            // "&|"
)

// RedirOp is a redirection operator recognized at the pipeline boundary
// (spec.md §6).
type RedirOp int

const (
	RedirOutTrunc   RedirOp = iota // ">"
	RedirOutAppend                 // ">>"
	RedirErrTrunc                  // "^>"
	RedirErrAppend                 // "^>>"
	RedirBothTrunc                 // "&>"
	RedirBothAppend                // "&>>"
	RedirIn                        // "<"
	RedirHereString                // "<<<"
	RedirHeredoc                   // "<<"
)

// Redirect is one input or output redirection attached to a PipeItem.
type Redirect struct {
	Op   RedirOp
	Word string // target path, here-string literal, or heredoc body
}

// Job holds one command's expanded argv, an optional resolved built-in,
// and how its output connects to the next PipeItem (spec.md §3).
type Job struct {
	Argv        []string
	BuiltinName string // non-empty if resolved to a registered built-in
	IsFunction  bool
	RedirectTo  Connector // how THIS item's output connects to the next
}

// PipeItem is one command within a Pipeline, with its own redirections
// (spec.md §3, glossary).
type PipeItem struct {
	Job     Job
	Inputs  []Redirect
	Outputs []Redirect
}

// Pipeline is the ordered chain of PipeItems plus a disposition
// (spec.md §3).
type Pipeline struct {
	Items       []PipeItem
	Disposition Disposition
	// CommandText is the original source line, kept for job-table
	// display (spec.md §3 BackgroundProcess.command).
	CommandText string
}
