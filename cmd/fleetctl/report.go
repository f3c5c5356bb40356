package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/fleet-tracking/internal/report"
)

func (a *App) reportCmd() *cobra.Command {
	var xlsxPath, snapshotPath string
	cmd := &cobra.Command{
		Use:       "report [NAME...]",
		Short:     "Run fleet reports and print them as text tables",
		Long:      "Run the named reports, or all of them when none is given.",
		ValidArgs: report.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, release, err := a.source(ctx, snapshotPath)
			if err != nil {
				return err
			}
			defer release()

			engine := report.NewEngine(src)
			var tables []report.Table
			if len(args) == 0 {
				if tables, err = engine.RunAll(ctx); err != nil {
					return err
				}
			} else {
				for _, name := range args {
					t, err := engine.Run(ctx, name)
					if err != nil {
						return err
					}
					tables = append(tables, t)
				}
			}

			for _, t := range tables {
				if err := t.WriteText(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			if xlsxPath != "" {
				return writeWorkbookFile(xlsxPath, tables)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the reports to this workbook")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "read from a SQLite snapshot instead of MongoDB")
	return cmd
}

func writeWorkbookFile(path string, tables []report.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	if err := report.WriteWorkbook(f, tables...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.WithFields(log.Fields{"path": path, "sheets": len(tables)}).Info("Workbook written")
	return nil
}
