package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/BigWhaleDJY/MCMP-stack/internal/domain/model"
)

// Форматы вывода команды dashboard.
const (
	formatJSON  = "json"
	formatTable = "table"
)

type dashboardFlags struct {
	format string
	orgID  int64
}

func newDashboardCmd() *cobra.Command {
	var flags dashboardFlags
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Вывести карточки подрядчиков",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logger, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			return runDashboard(cmd.OutOrStdout(), a, flags, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.format, "format", formatTable, "Формат вывода: json или table")
	f.Int64Var(&flags.orgID, "org", 0, "ID подрядчика (0 — все)")
	return cmd
}

func runDashboard(w io.Writer, a *app, flags dashboardFlags, logger *slog.Logger) error {
	format := strings.ToLower(flags.format)
	if format != formatJSON && format != formatTable {
		return fmt.Errorf("недопустимый формат %q, допустимые: json, table", flags.format)
	}

	var cards []model.ContractorCard
	if flags.orgID != 0 {
		card, err := a.dashboard.Contractor(flags.orgID)
		if err != nil {
			return err
		}
		cards = []model.ContractorCard{*card}
	} else {
		cards = a.dashboard.Contractors()
	}
	logger.Debug("Карточки подрядчиков собраны", slog.Int("count", len(cards)))

	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cards)
	}
	return writeCardsTable(w, cards)
}

// writeCardsTable выводит карточки и их документы таблицей.
func writeCardsTable(w io.Writer, cards []model.ContractorCard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tRATE\tLAST UPLOAD\tCONTACT\tDOCS")
	for _, c := range cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d%%\t%s\t%s\t%d\n",
			c.ID, c.Name, c.Status, c.ComplianceRate, c.LastUpload, c.ContactName,
			len(c.ComplianceDocs)+len(c.ReportingDocs))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ORG\tDOCUMENT\tTYPE\tSTATUS\tDUE\tUPLOADED")
	for _, c := range cards {
		for _, docs := range [][]model.DocumentView{c.ComplianceDocs, c.ReportingDocs} {
			for _, d := range docs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					c.Name, d.Title, d.Type, d.Status, d.DueDate, d.UploadedDate)
			}
		}
	}
	return tw.Flush()
}
