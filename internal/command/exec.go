package command

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/vburojevic/sdbg/internal/engine"
)

// Engine is the slice of the process-control engine the executor drives.
type Engine interface {
	Continue() error
	Tracees() []engine.Tracee
}

// Execute walks the command tree depth-first, left to right. The boolean
// reports whether the session should keep running: false only after Exit.
// An engine error aborts the remainder of the sequence; Unexpected nodes
// print one line and execution continues.
func Execute(cmd Command, eng Engine, out io.Writer) (bool, error) {
	switch c := cmd.(type) {
	case Continue:
		if err := eng.Continue(); err != nil {
			return true, err
		}
	case Exit:
		return false, nil
	case Info:
		writeTracees(out, eng.Tracees())
	case Sequence:
		for _, sub := range c {
			cont, err := Execute(sub, eng, out)
			if err != nil {
				return true, err
			}
			if !cont {
				return false, nil
			}
		}
	case Unexpected:
		fmt.Fprintf(out, "error: unexpected command %q\n", c.Text)
	}
	return true, nil
}

// Run parses input, reports any diagnostics to out, and executes the
// resulting tree. Malformed commands never abort the pipeline.
func Run(input string, eng Engine, out io.Writer) (bool, error) {
	input = strings.TrimSpace(input)
	seq, diags := Parse(input)
	if len(diags) > 0 {
		io.WriteString(out, RenderDiagnostics(input, diags))
	}
	return Execute(seq, eng, out)
}

func writeTracees(out io.Writer, tracees []engine.Tracee) {
	if len(tracees) == 0 {
		fmt.Fprintln(out, "no tracees")
		return
	}
	tbl := tablewriter.NewTable(out)
	tbl.Header([]string{"PID", "ORIGIN", "STATE"})
	rows := lo.Map(tracees, func(t engine.Tracee, _ int) []string {
		return []string{strconv.Itoa(t.PID), t.Origin.String(), t.State.String()}
	})
	for _, row := range rows {
		_ = tbl.Append(row)
	}
	_ = tbl.Render()
}
