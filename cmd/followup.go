package main

import (
	"github.com/spf13/cobra"
)

var followupCmd = &cobra.Command{
	Use:   "follow-up",
	Short: "List messaged prospects due for a follow-up",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		due, err := st.ListNeedingFollowUp(ctx)
		if err != nil {
			return err
		}
		return printJSON(due)
	},
}

func init() {
	rootCmd.AddCommand(followupCmd)
}
