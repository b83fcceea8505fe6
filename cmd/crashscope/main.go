// Package main is the crashscope command. It reads crash reports out of
// modpack bug reports and comments on what it finds, either as a GitHub
// Actions step or as an HTTP service.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "crashscope",
	Short:        "Primitive automated analysis of Minecraft crash reports",
	Long:         `crashscope finds crash reports pasted or linked in an issue form, parses them and compares their mod list with the official modpack release`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "TOML config file (default "+defaultConfigHint+")")
	rootCmd.PersistentFlags().Bool("debug", false, "log debug messages")
	rootCmd.PersistentFlags().String("color", "auto", "colorize console logs (auto|on|off)")

	rootCmd.AddCommand(actionCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
