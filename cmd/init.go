package main

import (
	"context"
	"os"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/assign"
	"github.com/sells-group/prospect-cli/internal/criteria"
	"github.com/sells-group/prospect-cli/internal/enrich"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/search"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
	"github.com/sells-group/prospect-cli/pkg/apollo"
	"github.com/sells-group/prospect-cli/pkg/expandi"
	sfpkg "github.com/sells-group/prospect-cli/pkg/salesforce"
)

// env holds the initialized pipeline and its dependencies for one command
// invocation.
type env struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Outreach *assign.OutreachAssigner
}

func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("store close failed", zap.Error(err))
		}
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "prospects.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		poolCfg := &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, poolCfg)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initSalesforce builds the CRM client, or returns nil when CRM sync is not
// configured.
func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, nil
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.Salesforce.RateLimit)), nil
}

// initPipeline wires every configured stage together. Optional integrations
// (criteria translation, outreach, CRM) are skipped when unconfigured.
func initPipeline(ctx context.Context) (*env, error) {
	if cfg.Apollo.Key == "" {
		return nil, eris.New("search provider API key is required (PROSPECT_APOLLO_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	apolloClient := apollo.NewClient(cfg.Apollo.Key, apollo.WithBaseURL(cfg.Apollo.BaseURL))

	var parser criteria.Parser
	if cfg.Anthropic.Key != "" {
		parser = criteria.NewAnthropicParser(
			anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
	} else {
		zap.L().Warn("no anthropic key configured, queries fall back to literal matching")
	}

	orchestrator := search.NewOrchestrator(apolloClient, search.Config{
		DefaultLimit:    cfg.Search.DefaultLimit,
		MaxCompanies:    cfg.Search.MaxCompanies,
		PerCompanyLimit: cfg.Search.PerCompanyLimit,
		CompanyPause:    time.Duration(cfg.Search.CompanyPauseMS) * time.Millisecond,
		CallTimeout:     time.Duration(cfg.Search.TimeoutSecs) * time.Second,
	})

	enricher := enrich.New(apolloClient, enrich.Config{
		Pause:                time.Duration(cfg.Enrich.PauseMS) * time.Millisecond,
		CallTimeout:          time.Duration(cfg.Enrich.TimeoutSecs) * time.Second,
		RevealPersonalEmails: true,
	})

	var outreach *assign.OutreachAssigner
	if cfg.Expandi.Key != "" && cfg.Expandi.Secret != "" {
		expandiClient := expandi.NewClient(cfg.Expandi.Key, cfg.Expandi.Secret,
			expandi.WithBaseURL(cfg.Expandi.BaseURL))
		outreach = assign.NewOutreachAssigner(expandiClient, st)
	}

	var crm *assign.CRMSyncer
	sfClient, err := initSalesforce()
	if err != nil {
		st.Close()
		return nil, err
	}
	if sfClient != nil {
		crm = assign.NewCRMSyncer(sfClient, time.Duration(cfg.CRM.ContactPauseMS)*time.Millisecond)
	}

	fanout := assign.NewFanout(outreach, crm, cfg.Expandi.CampaignID)

	return &env{
		Store:    st,
		Pipeline: pipeline.New(parser, orchestrator, enricher, st, fanout),
		Outreach: outreach,
	}, nil
}
