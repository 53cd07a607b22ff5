package apollo

// Person is a raw person record as returned by the people-search API.
type Person struct {
	ID          string        `json:"id"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	Title       string        `json:"title,omitempty"`
	Email       string        `json:"email,omitempty"`
	PhoneNumber string        `json:"phone_number,omitempty"`
	LinkedInURL string        `json:"linkedin_url,omitempty"`
	City        string        `json:"city,omitempty"`
	State       string        `json:"state,omitempty"`
	Country     string        `json:"country,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
}

// Organization is a raw company record from the organization-search API.
type Organization struct {
	ID                      string `json:"id,omitempty"`
	Name                    string `json:"name"`
	Industry                string `json:"industry,omitempty"`
	EstimatedNumEmployees   int    `json:"estimated_num_employees,omitempty"`
	City                    string `json:"city,omitempty"`
	State                   string `json:"state,omitempty"`
	LinkedInURL             string `json:"linkedin_url,omitempty"`
	WebsiteURL              string `json:"website_url,omitempty"`
	PrimaryDomain           string `json:"primary_domain,omitempty"`
	EstimatedRevenuePrinted string `json:"estimated_revenue_printed,omitempty"`
}

// PeopleSearchRequest holds the filters for a people search. Empty slices
// are omitted from the request; the caller is responsible for defaults.
type PeopleSearchRequest struct {
	Titles              []string
	Locations           []string
	SizeRanges          []string
	SeniorityLevels     []string
	OrganizationNames   []string
	OrganizationDomains []string
	Page                int
	PerPage             int
}

// CompanySearchRequest holds the filters for an organization search.
type CompanySearchRequest struct {
	Locations  []string
	Industries []string
	SizeRanges []string
	Page       int
	PerPage    int
}

// EnrichRequest identifies a person to enrich. The strongest available
// identifier should be set: ID, then LinkedInURL, then Email, then
// name + organization.
type EnrichRequest struct {
	ID               string
	LinkedInURL      string
	Email            string
	FirstName        string
	LastName         string
	OrganizationName string

	RevealPersonalEmails bool
	RevealPhoneNumber    bool
	WebhookURL           string
}
