package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/criteria"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List built-in search templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		templates, err := criteria.LoadTemplates()
		if err != nil {
			return err
		}
		return printJSON(templates)
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
