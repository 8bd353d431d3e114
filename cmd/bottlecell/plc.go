package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Amir23156/BottleAsec/internal/tag"
	"github.com/Amir23156/BottleAsec/internal/tagnet"
)

var plcCmd = &cobra.Command{
	Use:   "plc",
	Short: "Run the tank PLC: tag store, control loop, plant model and tag server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signalContext()
		defer stop()

		store := tag.NewMemory()
		srv, err := tagnet.Listen(store, a.cfg.Transport.Listen, a.logger)
		if err != nil {
			return err
		}
		defer srv.Close()

		var wg sync.WaitGroup
		a.serveMetrics(ctx, &wg)
		loop := a.runCell(ctx, &wg, store)

		a.logger.Printf("bottlecell: plc running, tick %v", a.cfg.Control.Tick())
		serveErr := srv.Serve(ctx)

		stop()
		wg.Wait()
		a.logger.Printf("bottlecell: plc stopped in %s state", loop.State())
		if serveErr != nil {
			return fmt.Errorf("tag server: %w", serveErr)
		}
		return nil
	},
}
