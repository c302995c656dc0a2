package cmd

import (
	"fmt"

	"github.com/KaramelBytes/sheetql-cli/internal/bridge"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	tblInfo string
)

var tablesCmd = &cobra.Command{
	Use:   "tables <file>",
	Short: "List the tables a workbook's sheets load as",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := openWorkbook(ctx, args[0])
		if err != nil {
			return err
		}
		defer b.Close()

		out := cmd.OutOrStdout()
		if tblInfo != "" {
			info, err := b.TableMetadata(ctx, bridge.SanitizeTableName(tblInfo))
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.SetTitle(fmt.Sprintf("%s (%s rows)", info.Name, humanize.Comma(info.RowCount)))
			t.AppendHeader(table.Row{"#", "column", "type", "nullable", "pk"})
			for _, c := range info.Columns {
				t.AppendRow(table.Row{c.Position, c.Name, c.Type, c.Nullable, c.PrimaryKey})
			}
			t.Render()
			return nil
		}

		names, err := b.ListTables(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			_, _ = fmt.Fprintln(out, "(no tables)")
			return nil
		}
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"sheet", "table", "columns", "rows"})
		for _, name := range names {
			info, err := b.TableMetadata(ctx, name)
			if err != nil {
				return err
			}
			t.AppendRow(table.Row{sheetForTable(b, name), name, len(info.Columns), humanize.Comma(info.RowCount)})
		}
		t.Render()
		return nil
	},
}

var (
	pvLimit  int
	pvFormat string
)

var previewCmd = &cobra.Command{
	Use:   "preview <file> <table>",
	Short: "Show the first rows of a sheet's table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openWorkbook(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer b.Close()

		limit := pvLimit
		if limit <= 0 && cfg != nil {
			limit = cfg.PreviewLimit
		}
		ds, err := b.Preview(cmd.Context(), bridge.SanitizeTableName(args[1]), limit)
		if err != nil {
			return err
		}
		return renderDataset(cmd.OutOrStdout(), ds, outputFormat(pvFormat))
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(previewCmd)
	tablesCmd.Flags().StringVar(&tblInfo, "info", "", "show the columns of one table")
	previewCmd.Flags().IntVarP(&pvLimit, "limit", "n", 0, "rows to show (default from config)")
	previewCmd.Flags().StringVarP(&pvFormat, "format", "f", "", "output format: table|csv|json|markdown")
}
