package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/model"
)

var prospectsCmd = &cobra.Command{
	Use:   "prospects",
	Short: "Inspect and update stored prospects",
}

var listOpts struct {
	status   string
	company  string
	industry string
	hasEmail bool
	limit    int
}

var prospectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored prospects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		prospects, err := st.ListProspects(ctx, model.ProspectFilter{
			Status:   model.ProspectStatus(listOpts.status),
			Company:  listOpts.company,
			Industry: listOpts.industry,
			HasEmail: listOpts.hasEmail,
			Limit:    listOpts.limit,
		})
		if err != nil {
			return err
		}
		return printJSON(prospects)
	},
}

var statusOpts struct {
	campaignID string
	connected  bool
}

var prospectsStatusCmd = &cobra.Command{
	Use:   "status [id] [status]",
	Short: "Update a prospect's lifecycle status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		update := model.StatusUpdate{
			Status:     model.ProspectStatus(args[1]),
			CampaignID: statusOpts.campaignID,
		}
		if cmd.Flags().Changed("connected") {
			update.Connected = &statusOpts.connected
		}
		if !update.Status.Valid() {
			return eris.Errorf("invalid status %q", args[1])
		}

		if err := st.UpdateProspectStatus(ctx, args[0], update); err != nil {
			return err
		}

		updated, err := st.GetProspect(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

var messageOpts struct {
	platform    string
	sender      string
	messageType string
}

var prospectsMessageCmd = &cobra.Command{
	Use:   "message [id] [text]",
	Short: "Append a message to a prospect's conversation log",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		err = st.AddConversationMessage(ctx, args[0], model.ConversationMessage{
			Platform:    messageOpts.platform,
			Message:     args[1],
			Sender:      messageOpts.sender,
			MessageType: messageOpts.messageType,
		})
		if err != nil {
			return err
		}

		updated, err := st.GetProspect(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

func init() {
	prospectsListCmd.Flags().StringVar(&listOpts.status, "status", "", "filter by lifecycle status")
	prospectsListCmd.Flags().StringVar(&listOpts.company, "company", "", "filter by company name substring")
	prospectsListCmd.Flags().StringVar(&listOpts.industry, "industry", "", "filter by industry")
	prospectsListCmd.Flags().BoolVar(&listOpts.hasEmail, "has-email", false, "only prospects with a real email")
	prospectsListCmd.Flags().IntVar(&listOpts.limit, "limit", 50, "max prospects to list")

	prospectsStatusCmd.Flags().StringVar(&statusOpts.campaignID, "campaign", "", "campaign instance id to record")
	prospectsStatusCmd.Flags().BoolVar(&statusOpts.connected, "connected", false, "mark the connection state")

	prospectsMessageCmd.Flags().StringVar(&messageOpts.platform, "platform", "linkedin", "message platform")
	prospectsMessageCmd.Flags().StringVar(&messageOpts.sender, "sender", "ai", "message sender (ai or prospect)")
	prospectsMessageCmd.Flags().StringVar(&messageOpts.messageType, "type", "outreach", "message type")

	prospectsCmd.AddCommand(prospectsListCmd, prospectsStatusCmd, prospectsMessageCmd)
	rootCmd.AddCommand(prospectsCmd)
}
