package model

import "github.com/sells-group/prospect-cli/pkg/apollo"

// SearchOptions control a single pipeline invocation.
type SearchOptions struct {
	Limit                int               `json:"limit,omitempty"`
	Page                 int               `json:"page,omitempty"`
	MaxCompanies         int               `json:"maxCompanies,omitempty"`
	SaveToDatabase       bool              `json:"saveToDatabase"`
	RevealPersonalEmails bool              `json:"revealPersonalEmails,omitempty"`
	RevealPhoneNumber    bool              `json:"revealPhoneNumber,omitempty"`
	AssignToOutreach     bool              `json:"assignToOutreach,omitempty"`
	AssignToCRM          bool              `json:"assignToCrm,omitempty"`
	CampaignID           string            `json:"campaignId,omitempty"`
	CustomFields         map[string]string `json:"customFields,omitempty"`
	WebhookURL           string            `json:"webhookUrl,omitempty"`
}

// DefaultSearchOptions returns the options applied when the caller supplies
// none. Saving is on by default; enrichment and assignment are opt-in.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{SaveToDatabase: true}
}

// SaveResult is the outcome of persisting one normalized batch.
type SaveResult struct {
	Saved   int `json:"saved"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`

	// SavedForOutreach holds persisted prospects with a professional-network
	// URL; SavedForCRM holds every persisted prospect.
	SavedForOutreach []Prospect `json:"savedForOutreach,omitempty"`
	SavedForCRM      []Prospect `json:"savedForCrm,omitempty"`
}

// OutreachResult aggregates per-prospect campaign assignment outcomes.
type OutreachResult struct {
	Skipped             bool       `json:"skipped,omitempty"`
	Total               int        `json:"total"`
	Successful          int        `json:"successful"`
	Failed              int        `json:"failed"`
	Errors              []string   `json:"errors,omitempty"`
	SuccessfulProspects []Prospect `json:"successfulProspects,omitempty"`
	FailedProspects     []Prospect `json:"failedProspects,omitempty"`
}

// CRMSyncResult is the outcome of syncing one prospect to the CRM.
type CRMSyncResult struct {
	ProspectID string `json:"prospectId"`
	Success    bool   `json:"success"`
	Action     string `json:"action,omitempty"` // "created" or "updated"
	ContactID  string `json:"contactId,omitempty"`
	CompanyID  string `json:"companyId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SearchResult is the structured result of a full pipeline invocation. It is
// always returned, even on partial failure; Success is false only for
// pipeline-fatal errors that abort before persistence.
type SearchResult struct {
	Success        bool            `json:"success"`
	Error          string          `json:"error,omitempty"`
	Message        string          `json:"message,omitempty"`
	OriginalInput  string          `json:"originalInput"`
	ParsedCriteria *SearchCriteria `json:"parsedCriteria,omitempty"`
	Prospects      []apollo.Person `json:"prospects"`
	EnrichedCount  int             `json:"enrichedCount"`
	DatabaseResult *SaveResult     `json:"databaseResult,omitempty"`
	OutreachResult *OutreachResult `json:"outreachResult,omitempty"`
	CRMResults     []CRMSyncResult `json:"crmResults,omitempty"`
}

// ProspectStats summarizes the prospect table.
type ProspectStats struct {
	Total            int            `json:"totalProspects"`
	ByStatus         map[string]int `json:"statusBreakdown"`
	AvgResponseCount float64        `json:"avgResponseRate"` // among responders only
}

// ProspectFilter selects prospects for listing.
type ProspectFilter struct {
	Status   ProspectStatus `json:"status,omitempty"`
	Company  string         `json:"company,omitempty"` // case-insensitive substring
	Industry string         `json:"industry,omitempty"`
	HasEmail bool           `json:"hasEmail,omitempty"`
	Limit    int            `json:"limit,omitempty"`
}

// StatusUpdate describes a status transition. Every applied update stamps
// the prospect's last-interaction time.
type StatusUpdate struct {
	Status     ProspectStatus `json:"status"`
	CampaignID string         `json:"campaignId,omitempty"`
	Connected  *bool          `json:"connected,omitempty"`
}
