// Package apollo provides an HTTP client for the people-search provider's
// person search, organization search, and enrichment endpoints.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

const defaultBaseURL = "https://api.apollo.io/api/v1"

// Client performs searches and enrichment against the provider API.
type Client interface {
	SearchPeople(ctx context.Context, req PeopleSearchRequest) ([]Person, error)
	SearchCompanies(ctx context.Context, req CompanySearchRequest) ([]Organization, error)
	EnrichPerson(ctx context.Context, req EnrichRequest) (*Person, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a provider API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SearchPeople calls POST /mixed_people/search. Filters are passed as
// repeated query parameters, matching the provider's API shape.
func (c *httpClient) SearchPeople(ctx context.Context, req PeopleSearchRequest) ([]Person, error) {
	params := url.Values{}
	for _, t := range req.Titles {
		params.Add("person_titles[]", t)
	}
	for _, l := range req.Locations {
		params.Add("person_locations[]", l)
	}
	for _, s := range req.SizeRanges {
		params.Add("organization_num_employees_ranges[]", s)
	}
	for _, s := range req.SeniorityLevels {
		params.Add("person_seniority_levels[]", s)
	}
	for _, n := range req.OrganizationNames {
		params.Add("organization_names[]", n)
	}
	for _, d := range req.OrganizationDomains {
		params.Add("organization_domains[]", d)
	}
	if req.Page > 0 {
		params.Set("page", strconv.Itoa(req.Page))
	}
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	params.Set("per_page", strconv.Itoa(perPage))

	var result struct {
		People []Person `json:"people"`
	}
	if err := c.post(ctx, "/mixed_people/search?"+params.Encode(), struct{}{}, &result); err != nil {
		return nil, eris.Wrap(err, "apollo: search people")
	}
	return result.People, nil
}

// SearchCompanies calls POST /organizations/search with a JSON body.
func (c *httpClient) SearchCompanies(ctx context.Context, req CompanySearchRequest) ([]Organization, error) {
	body := map[string]any{
		"page":     max(req.Page, 1),
		"per_page": req.PerPage,
	}
	if body["per_page"] == 0 {
		body["per_page"] = 10
	}
	if len(req.Locations) > 0 {
		body["organization_locations"] = req.Locations
	}
	if len(req.Industries) > 0 {
		body["organization_industries"] = req.Industries
	}
	if len(req.SizeRanges) > 0 {
		body["organization_num_employees_ranges"] = req.SizeRanges
	}

	var result struct {
		Organizations []Organization `json:"organizations"`
	}
	if err := c.post(ctx, "/organizations/search", body, &result); err != nil {
		return nil, eris.Wrap(err, "apollo: search companies")
	}
	return result.Organizations, nil
}

// EnrichPerson calls POST /people/enrich. Returns nil without error when the
// provider has no enrichment for the person.
func (c *httpClient) EnrichPerson(ctx context.Context, req EnrichRequest) (*Person, error) {
	body := map[string]any{
		"reveal_personal_emails": req.RevealPersonalEmails,
		"reveal_phone_number":    req.RevealPhoneNumber,
	}
	if req.RevealPhoneNumber && req.WebhookURL != "" {
		body["webhook_url"] = req.WebhookURL
	}
	switch {
	case req.ID != "":
		body["id"] = req.ID
	case req.LinkedInURL != "":
		body["linkedin_url"] = req.LinkedInURL
	case req.Email != "":
		body["email"] = req.Email
	default:
		body["first_name"] = req.FirstName
		body["last_name"] = req.LastName
		if req.OrganizationName != "" {
			body["organization_name"] = req.OrganizationName
		}
	}

	var result struct {
		Person *Person `json:"person"`
	}
	if err := c.post(ctx, "/people/enrich", body, &result); err != nil {
		return nil, eris.Wrap(err, "apollo: enrich person")
	}
	return result.Person, nil
}

func (c *httpClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}
