package cmd

import (
	"fmt"

	"github.com/KaramelBytes/sheetql-cli/internal/bridge"
	"github.com/KaramelBytes/sheetql-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	upSheet    string
	upQuery    string
	upOutput   string
	upNoBackup bool
)

var updateCmd = &cobra.Command{
	Use:   "update <file>",
	Short: "Replace a sheet with the result of a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if upSheet == "" || upQuery == "" {
			return fmt.Errorf("--sheet and --query are required")
		}
		backup := backupEnabled(upNoBackup)
		if err := bridge.UpdateWithQuery(cmd.Context(), path, upSheet, upQuery, upOutput, backup, bridgeOptions()); err != nil {
			return err
		}
		if backup {
			fmt.Printf("✓ Backup written to %s\n", utils.BackupPath(path))
		}
		target := saveTarget(upOutput, path)
		fmt.Printf("✓ Sheet %q updated in %s (%s)\n", upSheet, target, fileSize(target))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVarP(&upSheet, "sheet", "s", "", "sheet to replace or create")
	updateCmd.Flags().StringVarP(&upQuery, "query", "q", "", "SQL query producing the new sheet content")
	updateCmd.Flags().StringVarP(&upOutput, "output", "o", "", "write to this workbook instead of overwriting the source")
	updateCmd.Flags().BoolVar(&upNoBackup, "no-backup", false, "do not copy the source to <name>_backup<ext> first")
}
