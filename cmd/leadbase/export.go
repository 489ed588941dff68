package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leadbase/leadbase/internal/config"
	"github.com/leadbase/leadbase/internal/db"
	"github.com/leadbase/leadbase/internal/leadcsv"
	"github.com/leadbase/leadbase/internal/models"
	"github.com/leadbase/leadbase/internal/repository"
)

var (
	exportCampaign string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a campaign's leads as CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportCampaign, "campaign", "", "campaign id to export")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	exportCmd.MarkFlagRequired("campaign")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	campaigns := repository.NewCampaignRepository(database.DB)
	campaign, err := campaigns.GetByID(exportCampaign)
	if err != nil {
		return err
	}
	if campaign == nil {
		return fmt.Errorf("campaign %s not found", exportCampaign)
	}

	leads := repository.NewLeadRepository(database.DB)
	records, _, err := leads.ListByCampaign(models.LeadFilter{CampaignID: exportCampaign})
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return leadcsv.Write(out, records)
}
