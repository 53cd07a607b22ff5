// Package search runs the cascading people-search strategies and collapses
// duplicate results.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/apollo"
)

// Config tunes the cascade.
type Config struct {
	// DefaultLimit caps the result set when the criteria carry no limit.
	DefaultLimit int
	// MaxCompanies bounds the company-scoped strategy.
	MaxCompanies int
	// PerCompanyLimit caps people fetched per company.
	PerCompanyLimit int
	// CompanyPause is the minimum gap between per-company searches.
	CompanyPause time.Duration
	// CallTimeout bounds each individual provider call.
	CallTimeout time.Duration
}

// DefaultConfig returns the standard cascade tuning.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:    25,
		MaxCompanies:    3,
		PerCompanyLimit: 5,
		CompanyPause:    time.Second,
		CallTimeout:     30 * time.Second,
	}
}

// Orchestrator runs search strategies in order until one produces results.
type Orchestrator struct {
	client  apollo.Client
	cfg     Config
	limiter *rate.Limiter
}

// NewOrchestrator creates an orchestrator over the given provider client.
func NewOrchestrator(client apollo.Client, cfg Config) *Orchestrator {
	def := DefaultConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxCompanies <= 0 {
		cfg.MaxCompanies = def.MaxCompanies
	}
	if cfg.PerCompanyLimit <= 0 {
		cfg.PerCompanyLimit = def.PerCompanyLimit
	}
	if cfg.CompanyPause <= 0 {
		cfg.CompanyPause = def.CompanyPause
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	return &Orchestrator{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.CompanyPause), 1),
	}
}

// Search runs the cascade: a company-targeted search short-circuits
// everything else; otherwise a broad search, then a widened one, then a
// company-by-company sweep. Individual strategy failures are logged and the
// cascade moves on, so a degraded provider yields a short list rather than
// an error.
func (o *Orchestrator) Search(ctx context.Context, c *model.SearchCriteria) ([]apollo.Person, error) {
	limit := c.Limit
	if limit <= 0 {
		limit = o.cfg.DefaultLimit
	}

	if c.TargetCompany != "" {
		people := o.targetCompanySearch(ctx, c, limit)
		if len(people) > 0 {
			return trim(Dedupe(people), limit), nil
		}
		zap.L().Info("target company search returned nothing, continuing cascade",
			zap.String("company", c.TargetCompany))
	}

	// A non-empty broad search wins outright; the wider strategies only run
	// when the step before them produced nothing.
	if broad := o.broadSearch(ctx, c, limit); len(broad) > 0 {
		return trim(Dedupe(broad), limit), nil
	}

	all := o.veryBroadSearch(ctx, c, limit)
	if len(all) == 0 {
		all = o.companySweep(ctx, c)
	}

	return trim(Dedupe(all), limit), nil
}

// targetCompanySearch scopes the people search to the named company.
func (o *Orchestrator) targetCompanySearch(ctx context.Context, c *model.SearchCriteria, limit int) []apollo.Person {
	req := apollo.PeopleSearchRequest{
		Titles:            c.JobTitles,
		SeniorityLevels:   seniority(c),
		OrganizationNames: []string{c.TargetCompany},
		Page:              pageOf(c),
		PerPage:           limit,
	}
	people, err := o.searchPeople(ctx, req)
	if err != nil {
		zap.L().Warn("target company search failed",
			zap.String("company", c.TargetCompany), zap.Error(err))
		return nil
	}
	return people
}

// broadSearch queries across companies by title and location.
func (o *Orchestrator) broadSearch(ctx context.Context, c *model.SearchCriteria, limit int) []apollo.Person {
	sizes := c.CompanySizes
	if len(sizes) == 0 {
		sizes = model.DefaultSizeRanges
	}
	locations := c.Locations
	if len(locations) == 0 {
		locations = []string{model.DefaultLocation}
	}

	req := apollo.PeopleSearchRequest{
		Titles:          c.JobTitles,
		Locations:       locations,
		SizeRanges:      sizes,
		SeniorityLevels: seniority(c),
		Page:            pageOf(c),
		PerPage:         limit,
	}
	people, err := o.searchPeople(ctx, req)
	if err != nil {
		zap.L().Warn("broad search failed", zap.Error(err))
		return nil
	}
	zap.L().Debug("broad search results",
		zap.Int("count", len(people)), zap.Strings("sizes", sizes))
	return people
}

// veryBroadSearch drops everything but the titles and widens the size bands.
func (o *Orchestrator) veryBroadSearch(ctx context.Context, c *model.SearchCriteria, limit int) []apollo.Person {
	req := apollo.PeopleSearchRequest{
		Titles:     c.JobTitles,
		SizeRanges: model.WideSizeRanges,
		Page:       pageOf(c),
		PerPage:    limit,
	}
	people, err := o.searchPeople(ctx, req)
	if err != nil {
		zap.L().Warn("very broad search failed", zap.Error(err))
		return nil
	}
	zap.L().Debug("very broad search results", zap.Int("count", len(people)))
	return people
}

// companySweep finds matching companies and searches each one for people,
// pausing between companies to respect provider rate limits.
func (o *Orchestrator) companySweep(ctx context.Context, c *model.SearchCriteria) []apollo.Person {
	maxCompanies := c.MaxCompanies
	if maxCompanies <= 0 {
		maxCompanies = o.cfg.MaxCompanies
	}
	perCompany := c.PerCompanyLimit
	if perCompany <= 0 {
		perCompany = o.cfg.PerCompanyLimit
	}

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
	companies, err := o.client.SearchCompanies(callCtx, apollo.CompanySearchRequest{
		Locations:  c.Locations,
		Industries: c.Industries,
		SizeRanges: c.CompanySizes,
		PerPage:    maxCompanies,
	})
	cancel()
	if err != nil {
		zap.L().Warn("company search failed", zap.Error(err))
		return nil
	}
	if len(companies) > maxCompanies {
		companies = companies[:maxCompanies]
	}

	var all []apollo.Person
	for _, org := range companies {
		if err := o.limiter.Wait(ctx); err != nil {
			break
		}

		req := apollo.PeopleSearchRequest{
			Titles:          c.JobTitles,
			SeniorityLevels: seniority(c),
			PerPage:         perCompany,
		}
		// Domain scoping is more precise than name matching when available.
		if org.PrimaryDomain != "" {
			req.OrganizationDomains = []string{org.PrimaryDomain}
		} else {
			req.OrganizationNames = []string{org.Name}
		}

		people, err := o.searchPeople(ctx, req)
		if err != nil {
			zap.L().Warn("per-company search failed",
				zap.String("company", org.Name), zap.Error(err))
			continue
		}
		all = append(all, people...)
	}
	return all
}

func (o *Orchestrator) searchPeople(ctx context.Context, req apollo.PeopleSearchRequest) ([]apollo.Person, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
	defer cancel()
	return o.client.SearchPeople(callCtx, req)
}

func seniority(c *model.SearchCriteria) []string {
	if c.SeniorityLevel == "" {
		return nil
	}
	return []string{c.SeniorityLevel}
}

func pageOf(c *model.SearchCriteria) int {
	if c.Page > 0 {
		return c.Page
	}
	return 1
}

func trim(people []apollo.Person, limit int) []apollo.Person {
	if limit > 0 && len(people) > limit {
		return people[:limit]
	}
	return people
}
