package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leadbase/leadbase/internal/config"
	"github.com/leadbase/leadbase/internal/db"
	"github.com/leadbase/leadbase/internal/leadcsv"
	"github.com/leadbase/leadbase/internal/pipeline"
	"github.com/leadbase/leadbase/internal/repository"
)

var (
	importFile string
	importName string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a CSV file into a new campaign",
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "CSV file to import")
	importCmd.Flags().StringVar(&importName, "name", "", "name of the campaign to create")
	importCmd.MarkFlagRequired("file")
	importCmd.MarkFlagRequired("name")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	f, err := os.Open(importFile)
	if err != nil {
		return err
	}
	defer f.Close()

	raws, err := leadcsv.Read(f)
	if err != nil {
		return err
	}
	if len(raws) == 0 {
		return pipeline.ErrNoLeads
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	campaigns := repository.NewCampaignRepository(database.DB)
	leads := repository.NewLeadRepository(database.DB)
	p := pipeline.New(database.DB, campaigns, leads, logger)

	meta := pipeline.CampaignMeta{Name: importName, Source: "csv"}
	result, err := p.Ingest(cmd.Context(), meta, raws, pipeline.FirstSeen)
	if err != nil {
		return err
	}

	fmt.Printf("Campaign %s created\n", result.CampaignID)
	fmt.Printf("  added:      %d\n", result.Added)
	fmt.Printf("  duplicates: %d\n", result.DuplicatesRemoved)
	fmt.Printf("  suppressed: %d\n", result.Suppressed)

	return nil
}
