// Command cascade is a CLI front end over runtime.Runtime: it loads a
// YAML config.Root, runs the scheduler, and renders --stats/--info
// summaries as a go-pretty table. It takes no Verilog input and never
// calls Eval or Declare, so the runtime it runs has no modules.
// Grounded on oisee-z80-optimizer's cmd/z80opt/main.go (one cobra.Command
// tree, RunE closures over parsed flags) and the teacher's core/util.go
// use of github.com/jedib0t/go-pretty/v6/table for structured terminal
// output.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cascade/config"
	"github.com/sarchlab/cascade/runtime"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var showStats bool
	var showInfo bool

	root := &cobra.Command{
		Use:   "cascade",
		Short: "Cascade — a JIT compiler and runtime for a Verilog-2005 subset",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()

			rt := runtime.New(logger)
			if configPath != "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("cascade: %w", err)
				}
				if err := rt.ApplyConfig(cfg); err != nil {
					return fmt.Errorf("cascade: %w", err)
				}
			}

			if showInfo {
				printInfo(rt)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			runErr := rt.Run(ctx)

			if showStats {
				printStats(rt)
			}

			rt.Shutdown()
			return runErr
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to a Cascade YAML configuration")
	root.Flags().BoolVar(&showStats, "stats", false, "print a run summary table after exit")
	root.Flags().BoolVar(&showInfo, "info", false, "print runtime configuration before running")

	return root
}

func printStats(rt *runtime.Runtime) {
	st := rt.Stats()
	t := table.NewWriter()
	t.SetTitle("Cascade run summary")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"Logical time", st.LogicalTime})
	t.AppendRow(table.Row{"Engines built", st.EnginesBuilt})
	t.AppendRow(table.Row{"Compile errors", st.CompileErrors})
	t.AppendRow(table.Row{"Open-loop batch", st.OpenLoopBatch})
	t.AppendRow(table.Row{"Wall-clock CPU %", fmt.Sprintf("%.1f", st.WallClockCPUPct)})
	fmt.Println(t.Render())
}

func printInfo(rt *runtime.Runtime) {
	st := rt.Stats()
	t := table.NewWriter()
	t.SetTitle("Cascade runtime configuration")
	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRow(table.Row{"Open-loop target", st.OpenLoopBatch})
	fmt.Println(t.Render())
}
