package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Amir23156/BottleAsec/internal/console"
	"github.com/Amir23156/BottleAsec/internal/scenario"
	"github.com/Amir23156/BottleAsec/internal/tag"
)

var (
	simulateWarmup time.Duration
	simulateSettle time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [scenario]",
	Short: "Run the whole cell in one process, with the console or a scenario",
	Long: `Runs the tag store, control loop and plant in-process. Without a scenario
the operator console reads from stdin. With a scenario, the cell warms up,
the scenario runs, and the final panel is printed once the cell has settled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signalContext()
		defer stop()

		store := tag.NewMemory()
		con, err := a.newConsole(store)
		if err != nil {
			return err
		}

		var wg sync.WaitGroup
		a.serveMetrics(ctx, &wg)
		loop := a.runCell(ctx, &wg, store)
		defer func() {
			stop()
			wg.Wait()
		}()

		if len(args) == 0 {
			err := console.NewShell(con, os.Stdin, os.Stdout).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		orch, err := a.newOrchestrator(store, con, os.Stdout)
		if err != nil {
			return err
		}
		if _, ok := orch.Lookup(args[0]); !ok {
			return fmt.Errorf("%w: %q", scenario.ErrUnknownScenario, args[0])
		}

		if err := sleep(ctx, simulateWarmup); err != nil {
			return nil
		}
		run := orch.Run(ctx, args[0])
		if err := sleep(ctx, simulateSettle); err != nil {
			return report(run)
		}

		st, err := con.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Println(console.RenderPanel("simulate", false, st))
		fmt.Printf("control loop: %s\n", loop.State())
		return report(run)
	},
}

func init() {
	simulateCmd.Flags().DurationVar(&simulateWarmup, "warmup", 2*time.Second, "Cell run time before the scenario starts")
	simulateCmd.Flags().DurationVar(&simulateSettle, "settle", 3*time.Second, "Cell run time after the scenario ends")
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
