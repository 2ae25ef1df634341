package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/munazzamapp/munazzam-server/internal/config"
	"github.com/munazzamapp/munazzam-server/internal/di"
	"github.com/munazzamapp/munazzam-server/internal/di/providers"
	"github.com/munazzamapp/munazzam-server/internal/service"
)

var importTags []string

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database and its schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		injector := di.NewContainer(flags)
		defer func() { _ = injector.Shutdown() }()

		handle, err := do.Invoke[*providers.StoreHandle](injector)
		if err != nil {
			return err
		}
		if err := handle.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		n, err := do.MustInvoke[*service.ContactService](injector).CountContacts(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s (%d contacts)\n", do.MustInvoke[*config.Config](injector).Data.DBPath(), n)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import contacts from an .xlsx or .csv file",
	Long: `Reads name and phone columns from the file and adds every contact
whose phone number is not already known. Existing contacts are left untouched.

Example:
  munazzam import customers.xlsx --tags "VIP,Riyadh"`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	injector := di.NewContainer(flags)
	defer func() { _ = injector.Shutdown() }()

	importer, err := do.Invoke[*service.ImportService](injector)
	if err != nil {
		return err
	}
	log := do.MustInvoke[*slog.Logger](injector)

	result, err := importer.ImportFile(cmd.Context(), filepath.Base(path), f, importTags)
	if err != nil {
		return err
	}

	log.Debug("Import finished", "file", path, "tags", importTags)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d contacts, skipped %d\n", result.Imported, result.Skipped)
	return nil
}
