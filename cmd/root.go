package cmd

import (
	"fmt"
	"os"

	"github.com/fcelec/cablesize/internal/circuit"
	"github.com/fcelec/cablesize/internal/config"
	"github.com/fcelec/cablesize/internal/logging"
	"github.com/fcelec/cablesize/internal/version"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	jsonOutput bool

	// Set by loadRuntime before any subcommand runs.
	cfg    *config.Config
	engine *circuit.Engine
)

var rootCmd = &cobra.Command{
	Use:   "cablesize",
	Short: "Low-voltage cable and breaker sizing tool",
	Long: `cablesize - NF C 15-100 cable sizing

A CLI tool that sizes low-voltage circuits per the NF C 15-100
simplified method. For each circuit it selects:
  - the protective breaker rating from the standard ladder
  - the smallest commercial cross-section meeting the voltage-drop limit
  - the smallest commercial cross-section carrying the breaker current
    for the installation method (derated ampacity)

Configuration is read from an optional ini file (--config), a .env file
and CABLESIZE_* environment variables. Command-line flags win.`,
	PersistentPreRunE: loadRuntime,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   cablesize v%-45s║\n", version.Version)
		fmt.Println("  ║   Low-Voltage Cable & Breaker Sizing                      ║")
		fmt.Printf("  ║   %-56s║\n", version.Standard+" simplified method")
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Design current from power or direct entry")
		fmt.Println("    • Breaker selection on the standard rating ladder")
		fmt.Println("    • Voltage-drop and ampacity sizing with reconciliation")
		fmt.Println("    • Project files with board feeders and bill of quantities")
		fmt.Println("    • Run history and websocket sizing service")
		fmt.Println()
		fmt.Println("  Use 'cablesize --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to ini configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of the text report")
}

// loadRuntime reads the configuration, sets up logging and builds the
// sizing engine shared by all commands.
func loadRuntime(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if err := logging.Setup(os.Stderr, c.LogLevel, c.LogFormat); err != nil {
		return err
	}

	tables, err := c.Tables()
	if err != nil {
		return err
	}
	e, err := circuit.New(tables)
	if err != nil {
		return err
	}

	cfg, engine = c, e
	return nil
}
