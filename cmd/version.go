package cmd

import (
	"fmt"

	"github.com/fcelec/cablesize/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cablesize",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Summary())
		fmt.Println("Low-Voltage Cable & Breaker Sizing Tool")
		fmt.Printf("Based on %s (simplified method)\n", version.Standard)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
