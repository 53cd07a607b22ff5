package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/assign"
	"github.com/sells-group/prospect-cli/internal/enrich"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/search"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/apollo"
	"github.com/sells-group/prospect-cli/pkg/expandi"
)

type stubApollo struct {
	people   []apollo.Person
	enriched map[string]*apollo.Person // keyed by person id
}

func (s *stubApollo) SearchPeople(context.Context, apollo.PeopleSearchRequest) ([]apollo.Person, error) {
	return s.people, nil
}

func (s *stubApollo) SearchCompanies(context.Context, apollo.CompanySearchRequest) ([]apollo.Organization, error) {
	return nil, nil
}

func (s *stubApollo) EnrichPerson(_ context.Context, req apollo.EnrichRequest) (*apollo.Person, error) {
	return s.enriched[req.ID], nil
}

type stubExpandi struct {
	assigned []string
}

func (s *stubExpandi) AssignToCampaign(_ context.Context, _ string, req expandi.AssignRequest) error {
	s.assigned = append(s.assigned, req.ProfileLink)
	return nil
}

func (s *stubExpandi) PauseContact(context.Context, string) error  { return nil }
func (s *stubExpandi) ResumeContact(context.Context, string) error { return nil }

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func fastOrchestrator(client apollo.Client) *search.Orchestrator {
	return search.NewOrchestrator(client, search.Config{
		CompanyPause: time.Millisecond,
		CallTimeout:  time.Second,
	})
}

func TestRun_EmptyQuery(t *testing.T) {
	p := New(nil, fastOrchestrator(&stubApollo{}), nil, nil, nil)

	result := p.Run(context.Background(), "   ", model.DefaultSearchOptions())
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "required")
	assert.Empty(t, result.Prospects)
}

func TestRun_SearchSaveAndAssign(t *testing.T) {
	client := &stubApollo{people: []apollo.Person{
		{
			ID: "a1", FirstName: "Ada", LastName: "Lovelace",
			Email: model.LockedEmailSentinel, LinkedInURL: "https://linkedin.com/in/ada",
			Organization: &apollo.Organization{Name: "Acme", WebsiteURL: "https://acme.com"},
		},
		{ID: "a2", FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil"},
	}}
	st := newTestStore(t)
	ex := &stubExpandi{}
	fanout := assign.NewFanout(assign.NewOutreachAssigner(ex, st), nil, "c42")

	p := New(nil, fastOrchestrator(client), nil, st, fanout)
	result := p.Run(context.Background(), "founders", model.SearchOptions{
		SaveToDatabase:   true,
		AssignToOutreach: true,
	})

	require.True(t, result.Success)
	require.Len(t, result.Prospects, 2)

	// Locked email was replaced with the deterministic placeholder.
	assert.Equal(t, "dummyadalovelace@gmail.com", result.Prospects[0].Email)
	assert.Equal(t, "grace@navy.mil", result.Prospects[1].Email)

	require.NotNil(t, result.DatabaseResult)
	assert.Equal(t, 2, result.DatabaseResult.Saved)

	// Only the prospect with a profile URL went to outreach.
	require.NotNil(t, result.OutreachResult)
	assert.False(t, result.OutreachResult.Skipped)
	assert.Equal(t, 1, result.OutreachResult.Successful)
	assert.Equal(t, []string{"https://linkedin.com/in/ada"}, ex.assigned)

	// The assigned prospect transitioned in the store.
	saved, err := st.GetProspectByLinkedInURL(context.Background(), "https://linkedin.com/in/ada")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, model.StatusInCampaign, saved.Status)
	assert.Equal(t, "c42", saved.CampaignID)

	assert.Contains(t, result.Message, "found 2 prospects")
}

func TestRun_EnrichmentUpgradesEmails(t *testing.T) {
	client := &stubApollo{
		people: []apollo.Person{
			{ID: "a1", FirstName: "Ada", LastName: "Lovelace", Email: model.LockedEmailSentinel},
		},
		enriched: map[string]*apollo.Person{
			"a1": {Email: "ada@acme.com", PhoneNumber: "+1 555 0100"},
		},
	}
	enricher := enrich.New(client, enrich.Config{
		Pause: time.Millisecond, CallTimeout: time.Second, RevealPersonalEmails: true,
	})

	p := New(nil, fastOrchestrator(client), enricher, nil, nil)
	result := p.Run(context.Background(), "founders", model.SearchOptions{
		RevealPersonalEmails: true,
	})

	require.True(t, result.Success)
	assert.Equal(t, 1, result.EnrichedCount)
	require.Len(t, result.Prospects, 1)
	assert.Equal(t, "ada@acme.com", result.Prospects[0].Email)
	assert.Equal(t, "+1 555 0100", result.Prospects[0].PhoneNumber)
	assert.Nil(t, result.DatabaseResult) // no store wired
}

func TestRun_NoResults(t *testing.T) {
	p := New(nil, fastOrchestrator(&stubApollo{}), nil, nil, nil)

	result := p.Run(context.Background(), "unicorn wranglers", model.DefaultSearchOptions())
	assert.True(t, result.Success)
	assert.Empty(t, result.Prospects)
	assert.Contains(t, result.Message, "no prospects")
}

func TestRun_SaveDisabled(t *testing.T) {
	client := &stubApollo{people: []apollo.Person{
		{ID: "a1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@acme.com"},
	}}
	st := newTestStore(t)

	p := New(nil, fastOrchestrator(client), nil, st, nil)
	result := p.Run(context.Background(), "founders", model.SearchOptions{SaveToDatabase: false})

	require.True(t, result.Success)
	assert.Nil(t, result.DatabaseResult)

	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
}

func TestRun_OptionOverrides(t *testing.T) {
	c := &model.SearchCriteria{}
	applyOptionOverrides(c, model.SearchOptions{Limit: 5, Page: 2, MaxCompanies: 7})
	assert.Equal(t, 5, c.Limit)
	assert.Equal(t, 2, c.Page)
	assert.Equal(t, 7, c.MaxCompanies)
}
