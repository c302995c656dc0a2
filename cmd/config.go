package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/sheetql-cli/internal/config"
	"github.com/KaramelBytes/sheetql-cli/internal/sqlite"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set sheetql configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		dbPath := cfg.DBPath
		if dbPath == "" {
			dbPath = "(temporary)"
		}
		fmt.Printf("db_path: %s\n", dbPath)
		if cfg.TempDir != "" {
			fmt.Printf("temp_dir: %s\n", cfg.TempDir)
		}
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		fmt.Printf("log_format: %s\n", cfg.LogFormat)
		fmt.Printf("preview_limit: %d\n", cfg.PreviewLimit)
		fmt.Printf("outlier_threshold: %.2f\n", cfg.OutlierThreshold)
		fmt.Printf("output_format: %s\n", cfg.OutputFormat)
		fmt.Printf("backup: %t\n", cfg.Backup)
		fmt.Printf("projects_dir: %s\n", cfg.ProjectsDir)
		info := sqlite.GetInfo()
		fmt.Printf("sqlite_driver: %s (%s)\n", info.Package, info.DriverType)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := cfg.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
