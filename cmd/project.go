package cmd

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/sheetql-cli/internal/project"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	pmProject  string
	pmOutput   string
	pmNoBackup bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage and run projects",
}

var projectSetWorkbookCmd = &cobra.Command{
	Use:   "set-workbook <path>",
	Short: "Bind a project to a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProjectByName(pmProject)
		if err != nil {
			return err
		}
		if err := p.SetWorkbook(args[0]); err != nil {
			return err
		}
		if cmd.Flags().Changed("output") {
			p.Output = pmOutput
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Set workbook for %s: %s\n", pmProject, p.Workbook)
		return nil
	},
}

var projectRemoveStepCmd = &cobra.Command{
	Use:   "remove-step <step-id>",
	Short: "Remove a step by ID or ID prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProjectByName(pmProject)
		if err != nil {
			return err
		}
		s, err := p.RemoveStep(args[0])
		if err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Removed step %s from %s\n", project.ShortID(s.ID), pmProject)
		return nil
	},
}

var projectRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Apply a project's steps to its workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProjectByName(pmProject)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("output") {
			p.Output = pmOutput
		}
		if pmNoBackup {
			p.Backup = false
		}
		rep, err := p.Run(cmd.Context(), bridgeOptions())
		if err != nil {
			return err
		}
		if rep.Backup != "" {
			fmt.Printf("✓ Backup written to %s\n", rep.Backup)
		}
		for i, s := range rep.Steps {
			target := s.Sheet
			if target == "" {
				target = "tables"
			}
			fmt.Printf("  %d. %s %s → %s: %s rows\n", i+1, project.ShortID(s.ID), s.Kind, target, humanize.Comma(s.Rows))
		}
		fmt.Printf("✓ Wrote %d sheet(s) to %s (%s) in %s\n", len(rep.Sheets), rep.Output, fileSize(rep.Output), rep.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectSetWorkbookCmd, projectRemoveStepCmd, projectRunCmd)

	projectCmd.PersistentFlags().StringVarP(&pmProject, "project", "p", "", "project name")
	projectSetWorkbookCmd.Flags().StringVarP(&pmOutput, "output", "o", "", "write results here instead of overwriting the workbook")
	projectRunCmd.Flags().StringVarP(&pmOutput, "output", "o", "", "override the project's output path for this run")
	projectRunCmd.Flags().BoolVar(&pmNoBackup, "no-backup", false, "skip the workbook backup")
}
