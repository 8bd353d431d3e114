package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Amir23156/BottleAsec/internal/scenario"
	"github.com/Amir23156/BottleAsec/internal/tagnet"
)

var attackCmd = &cobra.Command{
	Use:   "attack <scenario>",
	Short: "Run an attack scenario against a running PLC",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signalContext()
		defer stop()

		client, err := tagnet.Dial(a.cfg.Transport.Dial, a.cfg.Transport.Timeout())
		if err != nil {
			return err
		}
		defer client.Close()

		con, err := a.newConsole(client)
		if err != nil {
			return err
		}
		orch, err := a.newOrchestrator(client, con, os.Stdout)
		if err != nil {
			return err
		}

		run := orch.Run(ctx, args[0])
		return report(run)
	},
}

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the attack scenarios",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, sc := range scenario.Catalog(0) {
			fmt.Fprintf(out, "%-22s %d steps  %s\n", sc.Name, len(sc.Steps), sc.Description)
		}
	},
}

// report prints the run summary and turns a failed run into an error
func report(run scenario.ScenarioRun) error {
	fmt.Printf("%s: %s (%d/%d steps in %v)\n",
		run.Name, run.Outcome, run.StepsCompleted, len(run.Steps), run.Duration().Round(time.Millisecond))
	if run.Outcome.Kind != scenario.Success {
		return fmt.Errorf("scenario %s %s", run.Name, run.Outcome)
	}
	return nil
}
