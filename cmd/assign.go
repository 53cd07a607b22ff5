package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/model"
)

var assignOpts struct {
	campaignID string
	status     string
	limit      int
	fields     []string
}

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign stored prospects to an outreach campaign",
	Long:  "Loads prospects in the given status that have a profile URL and assigns them to a campaign instance.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.Outreach == nil {
			return eris.New("outreach API credentials are not configured (PROSPECT_EXPANDI_KEY / PROSPECT_EXPANDI_SECRET)")
		}

		campaignID := assignOpts.campaignID
		if campaignID == "" {
			campaignID = cfg.Expandi.CampaignID
		}
		if campaignID == "" {
			return eris.New("campaign id is required (--campaign or PROSPECT_EXPANDI_CAMPAIGN_ID)")
		}

		status := model.ProspectStatus(assignOpts.status)
		if !status.Valid() {
			return eris.Errorf("invalid status %q", assignOpts.status)
		}

		result, err := env.Outreach.AssignFromDatabase(ctx, campaignID, status, assignOpts.limit, parseFields(assignOpts.fields))
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	assignCmd.Flags().StringVar(&assignOpts.campaignID, "campaign", "", "campaign instance id (default from config)")
	assignCmd.Flags().StringVar(&assignOpts.status, "status", string(model.StatusNew), "prospect status to assign from")
	assignCmd.Flags().IntVar(&assignOpts.limit, "limit", 50, "max prospects to assign")
	assignCmd.Flags().StringArrayVar(&assignOpts.fields, "field", nil, "custom campaign field as key=value (repeatable)")
	rootCmd.AddCommand(assignCmd)
}
