package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/sheetql-cli/internal/project"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	listProjects bool
	listSteps    bool
	listProjName string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects or the steps of a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listProjects == listSteps { // either both true or both false
			return fmt.Errorf("specify exactly one of --projects or --steps")
		}
		if listProjects {
			return listAllProjects()
		}
		if listProjName == "" {
			return fmt.Errorf("--project is required when using --steps")
		}
		p, err := loadProjectByName(listProjName)
		if err != nil {
			return err
		}
		if p.Workbook != "" {
			fmt.Printf("workbook: %s\n", p.Workbook)
		}
		if len(p.Steps) == 0 {
			fmt.Println("(no steps)")
			return nil
		}
		for i, s := range p.Steps {
			target := s.Sheet
			if target == "" {
				target = "-"
			}
			fmt.Printf("%d. %s [%s → %s] %s (added %s)\n", i+1, project.ShortID(s.ID), s.Kind, target, oneLine(s.Query), humanize.Time(s.AddedAt))
			if s.Description != "" {
				fmt.Printf("   %s\n", s.Description)
			}
		}
		return nil
	},
}

func listAllProjects() error {
	root, err := defaultProjectsDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		pj := filepath.Join(root, e.Name(), "project.json")
		if _, err := os.Stat(pj); err == nil {
			fmt.Printf("- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Println("(no projects)")
	}
	return nil
}

// oneLine collapses whitespace and truncates long queries for listings.
func oneLine(q string) string {
	var out []rune
	space := false
	for _, r := range q {
		if r == '\n' || r == '\t' || r == ' ' || r == '\r' {
			space = true
			continue
		}
		if space && len(out) > 0 {
			out = append(out, ' ')
		}
		space = false
		out = append(out, r)
	}
	if len(out) > 60 {
		return string(out[:57]) + "..."
	}
	return string(out)
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listProjects, "projects", false, "list projects")
	listCmd.Flags().BoolVar(&listSteps, "steps", false, "list the steps of a project")
	listCmd.Flags().StringVarP(&listProjName, "project", "p", "", "project name for --steps")
}
