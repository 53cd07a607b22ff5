package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/model"
)

var searchOpts struct {
	limit        int
	page         int
	maxCompanies int
	noSave       bool
	enrich       bool
	revealPhone  bool
	webhookURL   string
	assign       bool
	campaignID   string
	crm          bool
	fields       []string
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for prospects and optionally assign them",
	Long:  "Runs the full pipeline for a natural-language query or template name: criteria translation, cascading search, enrichment, persistence, and fan-out.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		opts := model.DefaultSearchOptions()
		opts.Limit = searchOpts.limit
		opts.Page = searchOpts.page
		opts.MaxCompanies = searchOpts.maxCompanies
		opts.SaveToDatabase = !searchOpts.noSave
		opts.RevealPersonalEmails = searchOpts.enrich
		opts.RevealPhoneNumber = searchOpts.revealPhone
		opts.WebhookURL = searchOpts.webhookURL
		opts.AssignToOutreach = searchOpts.assign
		opts.AssignToCRM = searchOpts.crm
		opts.CampaignID = searchOpts.campaignID
		opts.CustomFields = parseFields(searchOpts.fields)

		result := env.Pipeline.Run(ctx, strings.Join(args, " "), opts)
		return printJSON(result)
	},
}

// parseFields converts repeated key=value flags into a map.
func parseFields(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	fields := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		if k, v, ok := strings.Cut(pair, "="); ok {
			fields[k] = v
		}
	}
	return fields
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	searchCmd.Flags().IntVar(&searchOpts.limit, "limit", 0, "max prospects to return (default from config)")
	searchCmd.Flags().IntVar(&searchOpts.page, "page", 0, "result page")
	searchCmd.Flags().IntVar(&searchOpts.maxCompanies, "max-companies", 0, "max companies for the company sweep")
	searchCmd.Flags().BoolVar(&searchOpts.noSave, "no-save", false, "skip persisting results")
	searchCmd.Flags().BoolVar(&searchOpts.enrich, "enrich", false, "unlock personal emails via enrichment")
	searchCmd.Flags().BoolVar(&searchOpts.revealPhone, "reveal-phone", false, "request phone numbers (requires --webhook-url)")
	searchCmd.Flags().StringVar(&searchOpts.webhookURL, "webhook-url", "", "webhook for asynchronous phone reveals")
	searchCmd.Flags().BoolVar(&searchOpts.assign, "assign", false, "assign saved prospects to an outreach campaign")
	searchCmd.Flags().StringVar(&searchOpts.campaignID, "campaign", "", "campaign instance id (default from config)")
	searchCmd.Flags().BoolVar(&searchOpts.crm, "crm", false, "sync saved prospects to the CRM")
	searchCmd.Flags().StringArrayVar(&searchOpts.fields, "field", nil, "custom campaign field as key=value (repeatable)")
	rootCmd.AddCommand(searchCmd)
}
