package cmd

import (
	"fmt"

	"github.com/KaramelBytes/sheetql-cli/internal/project"
	"github.com/spf13/cobra"
)

var (
	addProjectName string
	addKind        string
	addSheet       string
	addStepDesc    string
)

var addCmd = &cobra.Command{
	Use:   "add <sql>",
	Short: "Add an update step to a project",
	Long: `Append a step to a project. Step kinds:

  replace  replace --sheet with the query result
  mutate   run an UPDATE/DELETE/INSERT against the tables; later steps see the change
  query    store the query result as --sheet (new sheets are appended)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if addProjectName == "" {
			return fmt.Errorf("--project is required")
		}
		kind, err := project.ParseKind(addKind)
		if err != nil {
			return err
		}
		p, err := loadProjectByName(addProjectName)
		if err != nil {
			return err
		}
		s, err := p.AddStep(kind, addSheet, args[0], addStepDesc)
		if err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Step added: %s (%s)\n", project.ShortID(s.ID), s.Kind)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addProjectName, "project", "p", "", "project name")
	addCmd.Flags().StringVarP(&addKind, "kind", "k", string(project.KindReplace), "step kind: replace|mutate|query")
	addCmd.Flags().StringVarP(&addSheet, "sheet", "s", "", "target sheet (replace and query steps)")
	addCmd.Flags().StringVar(&addStepDesc, "desc", "", "step description")
}
