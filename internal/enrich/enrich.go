// Package enrich upgrades raw search results with unlocked contact details
// and normalizes records for persistence.
package enrich

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/pkg/apollo"
)

// Config tunes the enricher.
type Config struct {
	// Pause is the minimum gap between enrichment calls.
	Pause time.Duration
	// CallTimeout bounds each individual enrichment call.
	CallTimeout time.Duration
	// RevealPersonalEmails asks the provider to unlock personal emails.
	RevealPersonalEmails bool
	// RevealPhoneNumber asks the provider to unlock phone numbers.
	// Requires WebhookURL.
	RevealPhoneNumber bool
	// WebhookURL receives asynchronous phone reveals.
	WebhookURL string
}

// DefaultConfig returns the standard enrichment tuning.
func DefaultConfig() Config {
	return Config{
		Pause:                500 * time.Millisecond,
		CallTimeout:          30 * time.Second,
		RevealPersonalEmails: true,
	}
}

// Enricher enriches people one at a time against the provider API.
type Enricher struct {
	client  apollo.Client
	cfg     Config
	limiter *rate.Limiter
}

// New creates an Enricher.
func New(client apollo.Client, cfg Config) *Enricher {
	def := DefaultConfig()
	if cfg.Pause <= 0 {
		cfg.Pause = def.Pause
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	return &Enricher{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.Pause), 1),
	}
}

// Enrich fetches enriched details for a single person. The strongest
// identifier available is used. A nil result with nil error means the
// provider had nothing for this person.
func (e *Enricher) Enrich(ctx context.Context, p apollo.Person) (*apollo.Person, error) {
	req := apollo.EnrichRequest{
		ID:                   p.ID,
		LinkedInURL:          p.LinkedInURL,
		Email:                p.Email,
		FirstName:            p.FirstName,
		LastName:             p.LastName,
		RevealPersonalEmails: e.cfg.RevealPersonalEmails,
		RevealPhoneNumber:    e.cfg.RevealPhoneNumber,
		WebhookURL:           e.cfg.WebhookURL,
	}
	if p.Organization != nil {
		req.OrganizationName = p.Organization.Name
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()
	return e.client.EnrichPerson(callCtx, req)
}

// BulkEnrich enriches people sequentially, pausing between calls. Failures
// are logged per person and skipped; the returned map holds only successful
// enrichments, keyed by the index into people.
func (e *Enricher) BulkEnrich(ctx context.Context, people []apollo.Person) map[int]*apollo.Person {
	enriched := make(map[int]*apollo.Person)
	for i, p := range people {
		if err := e.limiter.Wait(ctx); err != nil {
			break
		}

		res, err := e.Enrich(ctx, p)
		if err != nil {
			zap.L().Warn("enrichment failed",
				zap.String("first_name", p.FirstName),
				zap.String("last_name", p.LastName),
				zap.Error(err))
			continue
		}
		if res == nil {
			continue
		}
		enriched[i] = res
	}
	zap.L().Info("bulk enrichment complete",
		zap.Int("requested", len(people)), zap.Int("enriched", len(enriched)))
	return enriched
}
