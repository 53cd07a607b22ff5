package model

import (
	"strings"
	"time"
)

// LockedEmailSentinel is the placeholder the search provider returns for
// email addresses that have not been unlocked with credits. It must never be
// persisted or used as a dedup key.
const LockedEmailSentinel = "email_not_unlocked@domain.com"

// ProspectStatus is the lifecycle state of a prospect.
type ProspectStatus string

const (
	StatusNew            ProspectStatus = "NEW"
	StatusMessaged       ProspectStatus = "MESSAGED"
	StatusConnectionSent ProspectStatus = "CONNECTION_SENT"
	StatusFollowed       ProspectStatus = "FOLLOWED"
	StatusInCampaign     ProspectStatus = "IN_CAMPAIGN"
	StatusConnected      ProspectStatus = "CONNECTED"
	StatusFollowing      ProspectStatus = "FOLLOWING"
	StatusResponded      ProspectStatus = "RESPONDED"
	StatusQualified      ProspectStatus = "QUALIFIED"
)

// Valid reports whether s is a known lifecycle status. Transitions are driven
// by external events (assignment outcomes, conversation events, follow-up
// scans) and are not globally ordered, so any known status is accepted.
func (s ProspectStatus) Valid() bool {
	switch s {
	case StatusNew, StatusMessaged, StatusConnectionSent, StatusFollowed,
		StatusInCampaign, StatusConnected, StatusFollowing, StatusResponded,
		StatusQualified:
		return true
	}
	return false
}

// ConversationMessage is a single entry in a prospect's conversation log.
type ConversationMessage struct {
	Platform    string    `json:"platform"`
	Message     string    `json:"message"`
	Sender      string    `json:"sender"` // "ai" or "prospect"
	MessageType string    `json:"messageType"`
	Timestamp   time.Time `json:"timestamp"`
}

// Prospect is a sourced individual contact tracked through the outreach
// lifecycle.
type Prospect struct {
	ID              string                `json:"id"`
	FirstName       string                `json:"first_name"`
	LastName        string                `json:"last_name"`
	Title           string                `json:"title,omitempty"`
	Company         string                `json:"company,omitempty"`
	Email           string                `json:"email,omitempty"`
	Phone           string                `json:"phone,omitempty"`
	LinkedInURL     string                `json:"linkedin_url,omitempty"`
	Industry        string                `json:"industry,omitempty"`
	Location        string                `json:"location,omitempty"`
	ContactID       string                `json:"contact_id,omitempty"`  // search-provider contact id
	CampaignID      string                `json:"campaign_id,omitempty"` // outreach campaign instance
	OrganizationID  string                `json:"organization_id,omitempty"`
	Status          ProspectStatus        `json:"status"`
	Connected       bool                  `json:"connected"`
	ConnectionDate  *time.Time            `json:"connection_date,omitempty"`
	Conversation    []ConversationMessage `json:"conversation,omitempty"`
	ResponseCount   int                   `json:"response_count"`
	LastInteraction *time.Time            `json:"last_interaction,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// Organization is a company a prospect belongs to. Domain is the unique key;
// when no website is known it is synthesized from the name and is a
// best-effort key, not a verified one.
type Organization struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Domain        string    `json:"domain"`
	Industry      string    `json:"industry,omitempty"`
	EmployeeCount int       `json:"employee_count,omitempty"`
	Location      string    `json:"location,omitempty"`
	LinkedInURL   string    `json:"linkedin_url,omitempty"`
	WebsiteURL    string    `json:"website_url,omitempty"`
	Revenue       string    `json:"revenue,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsPlaceholderEmail reports whether email is a synthesized dummy address or
// the provider's locked sentinel. Placeholder emails satisfy the non-null
// contact requirement but are not deliverable and must never be used to
// match contacts in external systems.
func IsPlaceholderEmail(email string) bool {
	if email == "" || email == LockedEmailSentinel {
		return true
	}
	lower := strings.ToLower(email)
	return strings.HasPrefix(lower, "dummy") && strings.HasSuffix(lower, "@gmail.com")
}
