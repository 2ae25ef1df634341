// Package main provides the entry point for the Munazzam server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/munazzamapp/munazzam-server/internal/config"
)

var flags config.Flags

var rootCmd = &cobra.Command{
	Use:   "munazzam",
	Short: "Munazzam - contact directory and campaign exporter",
	Long: `Munazzam keeps a tagged contact directory and turns tag-filtered
audiences into personalized campaign files for bulk messaging tools.

Run "munazzam serve" to start the HTTP API.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.EnvFile, "env-file", "", "path to .env file (default .env)")
	pf.StringVar(&flags.Env, "env", "", "environment: development or production")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.DataPath, "data-path", "", "directory holding the database")

	serveCmd.Flags().StringVar(&flags.Port, "port", "", "HTTP port")
	serveCmd.Flags().StringVar(&flags.ExportFormat, "export-format", "", "default export format: xlsx or csv")
	serveCmd.Flags().StringVar(&flags.WatchDir, "watch-dir", "", "drop folder for automatic imports")

	importCmd.Flags().StringSliceVar(&importTags, "tags", nil, "tags applied to every imported contact")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
