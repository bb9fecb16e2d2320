package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vision-fit-guide/backend/internal/api"
	"vision-fit-guide/backend/internal/scoring"
	"vision-fit-guide/backend/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect stored fit guides",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored fit guides, newest first",
	Args:  cobra.NoArgs,
	RunE:  runLeadsList,
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored fit guides as CSV or JSON",
	Args:  cobra.NoArgs,
	RunE:  runLeadsExport,
}

func init() {
	leadsCmd.PersistentFlags().String("db", filepath.FromSlash("data/fit-guide.db"), "path to the SQLite database")
	leadsCmd.PersistentFlags().String("country", "", "only include guides whose top country matches")

	leadsListCmd.Flags().Int("limit", 20, "maximum number of guides to print (0 for all)")
	leadsExportCmd.Flags().String("format", "csv", "output format (csv|json)")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsExportCmd)
}

func loadLeads(cmd *cobra.Command, limit int) ([]api.FitGuideDTO, int64, error) {
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get db flag: %w", err)
	}
	country, err := cmd.Flags().GetString("country")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get country flag: %w", err)
	}

	db, err := store.Open(dbPath, true)
	if err != nil {
		return nil, 0, fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("close database")
		}
	}()

	rows, total, err := db.ListFitGuides(context.Background(), store.FitGuideQuery{
		Country: country,
		Sort:    store.SortCreatedDesc,
		Limit:   limit,
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]api.FitGuideDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, api.FromModel(row))
	}
	return out, total, nil
}

func runLeadsList(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to get limit flag: %w", err)
	}
	leads, total, err := loadLeads(cmd, limit)
	if err != nil {
		return err
	}
	printLeads(cmd.OutOrStdout(), leads, total)
	return nil
}

func printLeads(w io.Writer, leads []api.FitGuideDTO, total int64) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tCHURCH\tCONTACT\tTOP\tCONFIDENCE\tEMAILS")
	for _, lead := range leads {
		conf := lead.ConfidenceLevel
		if c := confidenceColors[scoring.Confidence(conf)]; c != nil {
			conf = c.Sprint(conf)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s/%s\n",
			lead.CreatedAt.Local().Format("2006-01-02 15:04"),
			lead.ChurchName,
			lead.ContactName,
			lead.TopCountry,
			conf,
			lead.InternalEmailStatus,
			lead.PastorEmailStatus,
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d of %d fit guides\n", len(leads), total)
}

func runLeadsExport(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown format %q (csv|json)", format)
	}
	leads, _, err := loadLeads(cmd, 0)
	if err != nil {
		return err
	}
	return writeExport(cmd.OutOrStdout(), format, leads)
}

func writeExport(w io.Writer, format string, leads []api.FitGuideDTO) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(leads)
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(api.CSVHeader); err != nil {
		return err
	}
	for _, lead := range leads {
		if err := writer.Write(api.CSVRecord(lead)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
