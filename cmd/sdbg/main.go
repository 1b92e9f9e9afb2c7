package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/vburojevic/sdbg/internal/cli"
	"github.com/vburojevic/sdbg/internal/config"
)

const quickstart = `sdbg - a minimal ptrace debugger

Quick start:
  sdbg /path/to/program [args...]   spawn a program under the debugger
  sdbg --pid 1234                   attach to a running process

At the prompt:
  continue          resume stopped tracees and wait for the next stop
  info              show tracee states
  exit              end the session (Ctrl-D works too)
  continue; info    chain commands with ';'

Run 'sdbg --help' for all flags.`

func main() {
	if len(os.Args) == 1 {
		fmt.Println(quickstart)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name("sdbg"),
		kong.Description("Interactive ptrace debugger: spawn or attach, then drive tracees from a prompt."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"config_prompt":        cfg.Prompt,
			"config_tick":          cfg.TickInterval.String(),
			"config_history_limit": strconv.Itoa(cfg.HistoryLimit),
			"config_verbose":       strconv.FormatBool(cfg.Verbose),
			"config_log_dir":       cfg.LogDir,
			"config_tmux_session":  cfg.Tmux.Session,
		},
	)

	globals := cli.NewGlobalsWithConfig(cfg)
	if err := ctx.Run(globals); err != nil {
		fmt.Fprintf(os.Stderr, "sdbg: %v\n", err)
		os.Exit(1)
	}
}
