package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/pkg/expandi"
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Control outreach campaign contacts",
}

var campaignPauseCmd = &cobra.Command{
	Use:   "pause [campaign-contact-id]",
	Short: "Pause outreach for a campaign contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initExpandi()
		if err != nil {
			return err
		}
		if err := client.PauseContact(cmd.Context(), args[0]); err != nil {
			return err
		}
		return printJSON(map[string]string{"campaignContactId": args[0], "state": "paused"})
	},
}

var campaignResumeCmd = &cobra.Command{
	Use:   "resume [campaign-contact-id]",
	Short: "Resume outreach for a campaign contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initExpandi()
		if err != nil {
			return err
		}
		if err := client.ResumeContact(cmd.Context(), args[0]); err != nil {
			return err
		}
		return printJSON(map[string]string{"campaignContactId": args[0], "state": "resumed"})
	},
}

func initExpandi() (expandi.Client, error) {
	if cfg.Expandi.Key == "" || cfg.Expandi.Secret == "" {
		return nil, eris.New("outreach API credentials are required (PROSPECT_EXPANDI_KEY, PROSPECT_EXPANDI_SECRET)")
	}
	return expandi.NewClient(cfg.Expandi.Key, cfg.Expandi.Secret,
		expandi.WithBaseURL(cfg.Expandi.BaseURL)), nil
}

func init() {
	campaignCmd.AddCommand(campaignPauseCmd, campaignResumeCmd)
	rootCmd.AddCommand(campaignCmd)
}
