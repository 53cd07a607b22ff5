// Package pipeline runs the end-to-end prospect flow: translate a query
// into criteria, search, enrich, persist, and fan out to outreach and CRM.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/assign"
	"github.com/sells-group/prospect-cli/internal/criteria"
	"github.com/sells-group/prospect-cli/internal/enrich"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/search"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/apollo"
)

// Pipeline wires the stages together. Only the orchestrator is required;
// absent stages degrade gracefully (no parsing, no enrichment, no
// persistence, no fan-out).
type Pipeline struct {
	parser       criteria.Parser
	orchestrator *search.Orchestrator
	enricher     *enrich.Enricher
	store        store.Store
	fanout       *assign.Fanout
}

// New creates a Pipeline. Nil stages are skipped at run time.
func New(parser criteria.Parser, orchestrator *search.Orchestrator, enricher *enrich.Enricher, s store.Store, fanout *assign.Fanout) *Pipeline {
	return &Pipeline{
		parser:       parser,
		orchestrator: orchestrator,
		enricher:     enricher,
		store:        s,
		fanout:       fanout,
	}
}

// Run executes the full flow for one query. It always returns a structured
// result: stage failures degrade the result rather than replacing it with an
// error, and Success is false only when the run could not produce prospects
// at all.
func (p *Pipeline) Run(ctx context.Context, query string, opts model.SearchOptions) *model.SearchResult {
	result := &model.SearchResult{OriginalInput: query}

	query = strings.TrimSpace(query)
	if query == "" {
		result.Error = "search query is required"
		return result
	}

	c := criteria.Resolve(ctx, p.parser, query)
	applyOptionOverrides(c, opts)
	result.ParsedCriteria = c

	people, err := p.orchestrator.Search(ctx, c)
	if err != nil {
		result.Error = fmt.Sprintf("search failed: %s", err)
		return result
	}

	people = p.enrichStage(ctx, people, opts, result)
	result.Prospects = people
	result.Success = true

	if len(people) == 0 {
		result.Message = "no prospects matched the search criteria"
		return result
	}

	saved := p.saveStage(ctx, people, opts, result)

	if p.fanout != nil && saved != nil {
		outreach, crm := p.fanout.Assign(ctx, saved, opts)
		result.OutreachResult = outreach
		result.CRMResults = crm
	}

	result.Message = summarize(result)
	return result
}

// enrichStage unlocks contact details when requested and normalizes every
// record so placeholder emails are in place before persistence.
func (p *Pipeline) enrichStage(ctx context.Context, people []apollo.Person, opts model.SearchOptions, result *model.SearchResult) []apollo.Person {
	enriched := map[int]*apollo.Person{}
	if p.enricher != nil && (opts.RevealPersonalEmails || opts.RevealPhoneNumber) {
		enriched = p.enricher.BulkEnrich(ctx, people)
		result.EnrichedCount = len(enriched)
	}
	return enrich.Normalize(people, enriched)
}

func (p *Pipeline) saveStage(ctx context.Context, people []apollo.Person, opts model.SearchOptions, result *model.SearchResult) *model.SaveResult {
	if !opts.SaveToDatabase || p.store == nil {
		return nil
	}

	saved, err := store.SaveProspects(ctx, p.store, people)
	if err != nil {
		// Persistence trouble degrades the result; the prospects are still
		// returned to the caller.
		zap.L().Error("batch save failed", zap.Error(err))
		result.Error = fmt.Sprintf("save failed: %s", err)
		return nil
	}
	result.DatabaseResult = saved
	return saved
}

func applyOptionOverrides(c *model.SearchCriteria, opts model.SearchOptions) {
	if opts.Limit > 0 {
		c.Limit = opts.Limit
	}
	if opts.Page > 0 {
		c.Page = opts.Page
	}
	if opts.MaxCompanies > 0 {
		c.MaxCompanies = opts.MaxCompanies
	}
}

func summarize(r *model.SearchResult) string {
	msg := fmt.Sprintf("found %d prospects", len(r.Prospects))
	if r.EnrichedCount > 0 {
		msg += fmt.Sprintf(", enriched %d", r.EnrichedCount)
	}
	if r.DatabaseResult != nil {
		msg += fmt.Sprintf(", saved %d (%d updated)", r.DatabaseResult.Saved, r.DatabaseResult.Updated)
	}
	if r.OutreachResult != nil && !r.OutreachResult.Skipped {
		msg += fmt.Sprintf(", assigned %d to campaign", r.OutreachResult.Successful)
	}
	if n := len(r.CRMResults); n > 0 {
		msg += fmt.Sprintf(", synced %d to CRM", n)
	}
	return msg
}
