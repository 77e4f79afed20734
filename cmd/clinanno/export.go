package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/clinanno/internal/duckdb"
)

func newExportCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog to a DuckDB database",
		Long: `Write every catalog entry to the clinvar_entries table of a DuckDB
database, replacing its previous contents. The database can be queried with
SQL or passed to "clinanno annotate --catalog".`,
		Example: `  clinanno export --duckdb clinvar.duckdb
  duckdb clinvar.duckdb "SELECT * FROM clinvar_entries WHERE transcript = 'NP_004976.2'"`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd.Flags(), map[string]string{"catalog.path": "catalog"})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(viper.GetString("catalog.path"), dbPath)
		},
	}

	cmd.Flags().String("catalog", "", "Catalog file (default: ~/.clinanno/clinvar_catalog.gob)")
	cmd.Flags().StringVar(&dbPath, "duckdb", "", "Output DuckDB database")

	return cmd
}

func runExport(catalogPath, dbPath string) error {
	if dbPath == "" {
		return &usageError{fmt.Errorf("--duckdb is required")}
	}
	if isDuckDBPath(catalogPath) {
		return &usageError{fmt.Errorf("--catalog %s is already a DuckDB database", catalogPath)}
	}

	c, meta, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}

	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ReplaceCatalog(c, meta); err != nil {
		return fmt.Errorf("export catalog: %w", err)
	}

	logger.Info("catalog exported",
		zap.String("path", dbPath),
		zap.Int("transcripts", c.TranscriptCount()),
		zap.Int("entries", c.EntryCount()))
	return nil
}
