package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/sheetql-cli/internal/analytics"
	"github.com/KaramelBytes/sheetql-cli/internal/bridge"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	anaTable     string
	anaCategory  string
	anaValue     string
	anaColumn    string
	anaThreshold float64
	anaDate      string
	anaQuarterly bool
	anaFormat    string
	anaSaveAs    string
	anaOutput    string
	anaQuiet     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run analytical queries over a workbook's sheets",
}

var analyzeParetoCmd = &cobra.Command{
	Use:   "pareto <file>",
	Short: "Rank categories by total value and split them 80/20",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if anaTable == "" || anaCategory == "" || anaValue == "" {
			return fmt.Errorf("--table, --category and --value are required")
		}
		if err := checkColumns(anaCategory, anaValue); err != nil {
			return err
		}
		return runAnalysis(cmd, args[0], analytics.ParetoQuery(bridge.SanitizeTableName(anaTable), anaCategory, anaValue))
	},
}

var analyzeOutliersCmd = &cobra.Command{
	Use:   "outliers <file>",
	Short: "Score rows by z-score and flag outliers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if anaTable == "" || anaColumn == "" {
			return fmt.Errorf("--table and --column are required")
		}
		if err := checkColumns(anaColumn); err != nil {
			return err
		}
		thr := anaThreshold
		if thr <= 0 && cfg != nil {
			thr = cfg.OutlierThreshold
		}
		return runAnalysis(cmd, args[0], analytics.OutlierQuery(bridge.SanitizeTableName(anaTable), anaColumn, thr))
	},
}

var analyzeTrendCmd = &cobra.Command{
	Use:   "trend <file>",
	Short: "Aggregate a value per month (or per quarter) of a date column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if anaTable == "" || anaDate == "" || anaValue == "" {
			return fmt.Errorf("--table, --date and --value are required")
		}
		if err := checkColumns(anaDate, anaValue); err != nil {
			return err
		}
		tbl := bridge.SanitizeTableName(anaTable)
		q := analytics.MonthlyTrend(tbl, anaDate, anaValue)
		if anaQuarterly {
			q = analytics.QuarterlyAnalysis(tbl, anaDate, anaValue)
		}
		return runAnalysis(cmd, args[0], q)
	},
}

// runAnalysis executes q and either renders the result or, with --save-as,
// writes it back as a sheet.
func runAnalysis(cmd *cobra.Command, path, q string) error {
	b, err := openWorkbook(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.RunQuery(cmd.Context(), q)
	if err != nil {
		return err
	}
	if anaSaveAs == "" {
		return renderDataset(cmd.OutOrStdout(), res, outputFormat(anaFormat))
	}
	if err := b.SetDataset(anaSaveAs, res); err != nil {
		return err
	}
	target := saveTarget(anaOutput, path)
	if err := b.Persist(target); err != nil {
		return err
	}
	fmt.Printf("✓ Analysis written to sheet %q (%d rows)\n", anaSaveAs, res.Len())
	printSaved(b, target)
	return nil
}

var analyzeSuggestCmd = &cobra.Command{
	Use:   "suggest <file>",
	Short: "Suggest useful queries for a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if anaTable == "" {
			return fmt.Errorf("--table is required")
		}
		b, err := openWorkbook(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer b.Close()
		sugg, err := analytics.Suggestions(cmd.Context(), b, bridge.SanitizeTableName(anaTable))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, s := range sugg {
			_, _ = fmt.Fprintf(out, "-- %d. %s\n%s;\n\n", i+1, s.Description, s.Query)
		}
		return nil
	},
}

var analyzeQualityCmd = &cobra.Command{
	Use:   "quality <files...>",
	Short: "Report per-column completeness for every table of one or more workbooks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		var reports []string
		for i, f := range files {
			if !anaQuiet && len(files) > 1 {
				fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", i+1, len(files), f)
			}
			mds, err := qualityReports(cmd, f)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			reports = append(reports, mds...)
		}
		md := strings.Join(reports, "\n")
		if anaOutput != "" {
			if err := os.WriteFile(anaOutput, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote %d report(s) to %s\n", len(reports), anaOutput)
			return nil
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

// qualityReports renders a report for --table, or for every table of path.
func qualityReports(cmd *cobra.Command, path string) ([]string, error) {
	b, err := openWorkbook(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	tables := []string{bridge.SanitizeTableName(anaTable)}
	if anaTable == "" {
		if tables, err = b.ListTables(cmd.Context()); err != nil {
			return nil, err
		}
	}
	var out []string
	for _, t := range tables {
		rep, err := analytics.BuildQualityReport(cmd.Context(), b, t)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(outputFormat(anaFormat), "table") && anaOutput == "" {
			out = append(out, qualityTable(rep))
			continue
		}
		out = append(out, fmt.Sprintf("File: %s\n%s", filepath.Base(path), rep.Markdown()))
	}
	return out, nil
}

func qualityTable(rep *analytics.QualityReport) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s (%d rows)", rep.Table, rep.RowCount))
	t.AppendHeader(table.Row{"column", "type", "non-null", "null", "unique", "completeness"})
	for _, c := range rep.Columns {
		t.AppendRow(table.Row{c.Name, c.Type, c.NonNull, c.Null, c.Distinct, fmt.Sprintf("%.2f%%", c.Completeness)})
	}
	return t.Render() + "\n"
}

// expandInputs resolves globs and literal paths, deduplicated and sorted.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeParetoCmd, analyzeOutliersCmd, analyzeTrendCmd, analyzeSuggestCmd, analyzeQualityCmd)

	analyzeCmd.PersistentFlags().StringVarP(&anaTable, "table", "t", "", "sheet or table to analyze")
	analyzeCmd.PersistentFlags().StringVarP(&anaFormat, "format", "f", "", "output format: table|csv|json|markdown")
	analyzeCmd.PersistentFlags().StringVarP(&anaOutput, "output", "o", "", "workbook for --save-as, or report file for quality")

	for _, c := range []*cobra.Command{analyzeParetoCmd, analyzeOutliersCmd, analyzeTrendCmd} {
		c.Flags().StringVar(&anaSaveAs, "save-as", "", "write the result to this sheet")
	}
	analyzeParetoCmd.Flags().StringVar(&anaCategory, "category", "", "category column")
	analyzeParetoCmd.Flags().StringVar(&anaValue, "value", "", "numeric value column")
	analyzeOutliersCmd.Flags().StringVar(&anaColumn, "column", "", "numeric column to score")
	analyzeOutliersCmd.Flags().Float64Var(&anaThreshold, "threshold", 0, "z-score threshold (default from config, 2.0)")
	analyzeTrendCmd.Flags().StringVar(&anaDate, "date", "", "date column (ISO text)")
	analyzeTrendCmd.Flags().StringVar(&anaValue, "value", "", "numeric value column")
	analyzeTrendCmd.Flags().BoolVar(&anaQuarterly, "quarterly", false, "aggregate per quarter instead of per month")
	analyzeQualityCmd.Flags().BoolVar(&anaQuiet, "quiet", false, "suppress progress output")
}
