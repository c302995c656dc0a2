package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/sheetql-cli/internal/bridge"
	"github.com/KaramelBytes/sheetql-cli/internal/cleaning"
	"github.com/KaramelBytes/sheetql-cli/internal/query"
	"github.com/KaramelBytes/sheetql-cli/internal/store"
	"github.com/spf13/cobra"
)

var (
	clTable       string
	clDedupe      []string
	clFill        []string
	clStandardize []string
	clStrip       []string
	clOutput      string
	clNoBackup    bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Clean a sheet in place: dedupe, fill blanks, standardize text, strip symbols",
	Long: `Apply cleaning operations to one sheet's table and write the cleaned sheet
back. Operations run in this order: --dedupe, --fill, --standardize, --strip.

  --dedupe nom,ville          keep the first row of every (nom, ville) group
  --fill ville=Inconnue       replace NULL and empty values
  --standardize nom:title     upper | lower | trim | title
  --strip code                remove ! @ # $ % characters`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if clTable == "" {
			return fmt.Errorf("--table is required")
		}
		stmts, err := cleaningStatements(bridge.SanitizeTableName(clTable))
		if err != nil {
			return err
		}
		if len(stmts) == 0 {
			return fmt.Errorf("nothing to do: pass at least one of --dedupe, --fill, --standardize or --strip")
		}

		ctx := cmd.Context()
		b, err := openWorkbook(ctx, path)
		if err != nil {
			return err
		}
		defer b.Close()

		table := bridge.SanitizeTableName(clTable)
		for _, s := range stmts {
			n, err := b.RunMutation(ctx, s.sql)
			if err != nil {
				return fmt.Errorf("%s: %w", s.label, err)
			}
			fmt.Printf("✓ %s: %d row(s) changed\n", s.label, n)
		}
		sheet := sheetForTable(b, table)
		if err := b.ReplaceDataset(ctx, sheet, query.SelectAll(table)); err != nil {
			return err
		}
		target := saveTarget(clOutput, path)
		if target == path && backupEnabled(clNoBackup) {
			backup, err := b.Snapshot("")
			if err != nil {
				return err
			}
			fmt.Printf("✓ Backup written to %s\n", backup)
		}
		if err := b.Persist(target); err != nil {
			return err
		}
		printSaved(b, target)
		return nil
	},
}

type cleaningStmt struct {
	label string
	sql   string
}

// cleaningStatements builds the mutations requested by the flags, in order.
func cleaningStatements(table string) ([]cleaningStmt, error) {
	var out []cleaningStmt
	if err := checkColumns(clDedupe...); err != nil {
		return nil, err
	}
	if err := checkColumns(clStrip...); err != nil {
		return nil, err
	}
	if len(clDedupe) > 0 {
		out = append(out, cleaningStmt{
			label: "dedupe " + strings.Join(clDedupe, ","),
			sql:   cleaning.RemoveDuplicates(table, clDedupe),
		})
	}
	for _, f := range clFill {
		col, val, ok := strings.Cut(f, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --fill %q (use column=value)", f)
		}
		if err := checkColumns(col); err != nil {
			return nil, err
		}
		def := store.ParseCell(val)
		if def == nil {
			def = ""
		}
		out = append(out, cleaningStmt{label: "fill " + col, sql: cleaning.FillNulls(table, col, def)})
	}
	for _, s := range clStandardize {
		col, mode, ok := strings.Cut(s, ":")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --standardize %q (use column:mode)", s)
		}
		if err := checkColumns(col); err != nil {
			return nil, err
		}
		q, err := cleaning.StandardizeText(table, col, cleaning.TextMode(strings.ToLower(mode)))
		if err != nil {
			return nil, err
		}
		out = append(out, cleaningStmt{label: "standardize " + col, sql: q})
	}
	for _, col := range clStrip {
		out = append(out, cleaningStmt{label: "strip " + col, sql: cleaning.RemoveSpecialCharacters(table, col)})
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&clTable, "table", "t", "", "sheet or table to clean")
	cleanCmd.Flags().StringSliceVar(&clDedupe, "dedupe", nil, "columns identifying duplicate rows")
	cleanCmd.Flags().StringArrayVar(&clFill, "fill", nil, "column=value default for NULL or empty cells (repeatable)")
	cleanCmd.Flags().StringArrayVar(&clStandardize, "standardize", nil, "column:mode with mode upper|lower|trim|title (repeatable)")
	cleanCmd.Flags().StringSliceVar(&clStrip, "strip", nil, "columns to strip of ! @ # $ % characters")
	cleanCmd.Flags().StringVarP(&clOutput, "output", "o", "", "write to this workbook instead of overwriting the source")
	cleanCmd.Flags().BoolVar(&clNoBackup, "no-backup", false, "do not copy the source to <name>_backup<ext> first")
}
