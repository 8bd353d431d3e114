// Command bottlecell runs the bottle filling cell: the tank PLC with its
// control loop, the HMI3 emergency console, and the attack scenarios used
// for security training.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "bottlecell",
	Short:         "Bottle filling cell with emergency console and attack scenarios",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $BOTTLECELL_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every control tick spent in emergency override")

	rootCmd.AddCommand(plcCmd, consoleCmd, attackCmd, scenariosCmd, simulateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
