package model

// SearchCriteria is the structured search input produced by the free-text
// translator (or a template, or the degraded fallback). All fields are
// optional; the orchestrator applies defaults per strategy.
type SearchCriteria struct {
	JobTitles      []string `json:"jobTitles,omitempty" yaml:"job_titles"`
	Locations      []string `json:"locations,omitempty" yaml:"locations"`
	Industries     []string `json:"industries,omitempty" yaml:"industries"`
	CompanySizes   []string `json:"companySizes,omitempty" yaml:"company_sizes"`
	Keywords       []string `json:"keywords,omitempty" yaml:"keywords"`
	SeniorityLevel string   `json:"seniorityLevel,omitempty" yaml:"seniority_level"`
	TargetCompany  string   `json:"targetCompany,omitempty" yaml:"target_company"`

	Page            int `json:"page,omitempty" yaml:"-"`
	Limit           int `json:"limit,omitempty" yaml:"-"`
	MaxCompanies    int `json:"maxCompanies,omitempty" yaml:"-"`
	PerCompanyLimit int `json:"perCompanyLimit,omitempty" yaml:"-"`
}

// DefaultSizeRanges are the employee-count bands used when the caller
// supplies none for the broad search strategy.
var DefaultSizeRanges = []string{"1,10", "11,50", "51,200", "201,500"}

// WideSizeRanges extend the defaults for the very-broad strategy.
var WideSizeRanges = []string{"1,10", "11,50", "51,200", "201,500", "501,1000"}

// DefaultLocation is applied when the caller supplies no locations.
const DefaultLocation = "united states"
