package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/Amir23156/BottleAsec/internal/console"
	"github.com/Amir23156/BottleAsec/internal/tagnet"
)

var consoleServe bool

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the HMI3 emergency console against a running PLC",
	Long: `Opens the HMI3 emergency console on this terminal. With --serve the
console is offered as a TCP terminal on console.listen instead.`,
	Args:  cobra.NoArgs,
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

		if consoleServe {
			cc := a.cfg.Console
			srv, err := console.NewServer(con, console.ServerConfig{
				Listen:         cc.Listen,
				AllowedCIDRs:   cc.AllowedCIDRs,
				MaxConnections: cc.MaxConnections,
				IdleTimeout:    cc.IdleTimeout(),
			}, a.logger)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		}

		err = console.NewShell(con, os.Stdin, os.Stdout).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	consoleCmd.Flags().BoolVar(&consoleServe, "serve", false, "Serve the console as a TCP terminal on console.listen")
}
