package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	qSheets []string
	qFormat string
	qSaveAs string
	qOutput string
)

var queryCmd = &cobra.Command{
	Use:   "query <file> <sql>",
	Short: "Run a SQL query against the sheets of a workbook",
	Long: `Load the workbook's sheets as tables and run a read query. Sheet names are
turned into table names by replacing every non-word character with '_'
(e.g. "Sales 2024" becomes Sales_2024).

With --save-as the result is written back to the workbook as a sheet.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, sql := args[0], args[1]
		b, err := openWorkbook(cmd.Context(), path, qSheets...)
		if err != nil {
			return err
		}
		defer b.Close()

		res, err := b.RunQuery(cmd.Context(), sql)
		if err != nil {
			return err
		}
		if qSaveAs == "" {
			return renderDataset(cmd.OutOrStdout(), res, outputFormat(qFormat))
		}
		if err := b.SetDataset(qSaveAs, res); err != nil {
			return err
		}
		target := saveTarget(qOutput, path)
		if target == path && backupEnabled(false) {
			backup, err := b.Snapshot("")
			if err != nil {
				return err
			}
			fmt.Printf("✓ Backup written to %s\n", backup)
		}
		if err := b.Persist(target); err != nil {
			return err
		}
		fmt.Printf("✓ Sheet %q written with %d rows\n", qSaveAs, res.Len())
		printSaved(b, target)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringSliceVar(&qSheets, "sheets", nil, "comma-separated sheets to load (default: all)")
	queryCmd.Flags().StringVarP(&qFormat, "format", "f", "", "output format: table|csv|json|markdown (default from config)")
	queryCmd.Flags().StringVar(&qSaveAs, "save-as", "", "write the result to this sheet")
	queryCmd.Flags().StringVarP(&qOutput, "output", "o", "", "workbook to write with --save-as (default: overwrite the source)")
}
