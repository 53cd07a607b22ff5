// Package expandi provides an HTTP client for the outreach campaign
// assignment API.
package expandi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

const defaultBaseURL = "https://api.liaufa.com/api/v1/open-api"

// Client assigns prospects to campaign instances and controls per-contact
// campaign state.
type Client interface {
	AssignToCampaign(ctx context.Context, campaignID string, req AssignRequest) error
	PauseContact(ctx context.Context, campaignContactID string) error
	ResumeContact(ctx context.Context, campaignContactID string) error
}

// AssignRequest is the payload for a campaign assignment. ProfileLink is
// required by the API; everything else is optional.
type AssignRequest struct {
	ProfileLink  string
	FirstName    string
	CompanyName  string
	Email        string
	CustomFields map[string]string
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
	apiKey    string
	apiSecret string
	baseURL   string
	http      *http.Client
}

// NewClient creates an outreach API client. Auth is passed as query
// parameters per the provider's open-api scheme.
func NewClient(apiKey, apiSecret string, opts ...Option) Client {
	c := &httpClient{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) AssignToCampaign(ctx context.Context, campaignID string, req AssignRequest) error {
	if req.ProfileLink == "" {
		return eris.New("expandi: profile link is required")
	}

	payload := map[string]any{
		"profile_link": req.ProfileLink,
		"first_name":   req.FirstName,
		"company_name": req.CompanyName,
		"email":        req.Email,
	}
	for k, v := range req.CustomFields {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "expandi: marshal payload")
	}

	endpoint := fmt.Sprintf("%s/campaign-instance/%s/assign/?%s", c.baseURL, url.PathEscape(campaignID), c.auth())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "expandi: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, "assign to campaign "+campaignID)
}

func (c *httpClient) PauseContact(ctx context.Context, campaignContactID string) error {
	if campaignContactID == "" {
		return eris.New("expandi: campaign contact id is required")
	}
	endpoint := fmt.Sprintf("%s/campaign-contact/%s/pause/?%s", c.baseURL, url.PathEscape(campaignContactID), c.auth())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return eris.Wrap(err, "expandi: create request")
	}
	return c.do(httpReq, "pause contact "+campaignContactID)
}

func (c *httpClient) ResumeContact(ctx context.Context, campaignContactID string) error {
	if campaignContactID == "" {
		return eris.New("expandi: campaign contact id is required")
	}
	endpoint := fmt.Sprintf("%s/campaign-contact/%s/resume/?%s", c.baseURL, url.PathEscape(campaignContactID), c.auth())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return eris.Wrap(err, "expandi: create request")
	}
	return c.do(httpReq, "resume contact "+campaignContactID)
}

func (c *httpClient) auth() string {
	v := url.Values{}
	v.Set("key", c.apiKey)
	v.Set("secret", c.apiSecret)
	return v.Encode()
}

func (c *httpClient) do(req *http.Request, action string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "expandi: %s", action)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		err := eris.Errorf("expandi: %s: unexpected status %d: %s", action, resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}
	return nil
}
