package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/apollo"
)

type fakeEnrichClient struct {
	requests []apollo.EnrichRequest
	results  []*apollo.Person
	errs     []error
	calls    int
}

func (f *fakeEnrichClient) SearchPeople(context.Context, apollo.PeopleSearchRequest) ([]apollo.Person, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEnrichClient) SearchCompanies(context.Context, apollo.CompanySearchRequest) ([]apollo.Organization, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEnrichClient) EnrichPerson(_ context.Context, req apollo.EnrichRequest) (*apollo.Person, error) {
	f.requests = append(f.requests, req)
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(f.results) {
		return f.results[i], nil
	}
	return nil, nil
}

func fastEnricher(c apollo.Client) *Enricher {
	return New(c, Config{Pause: time.Millisecond, CallTimeout: time.Second, RevealPersonalEmails: true})
}

func TestEnrichUsesStrongestIdentifier(t *testing.T) {
	fake := &fakeEnrichClient{}
	e := fastEnricher(fake)

	_, err := e.Enrich(context.Background(), apollo.Person{
		ID:          "p1",
		LinkedInURL: "https://linkedin.com/in/one",
		FirstName:   "One",
		LastName:    "Person",
	})
	require.NoError(t, err)
	require.Len(t, fake.requests, 1)
	assert.Equal(t, "p1", fake.requests[0].ID)
	assert.True(t, fake.requests[0].RevealPersonalEmails)
}

func TestBulkEnrichSkipsFailures(t *testing.T) {
	fake := &fakeEnrichClient{
		results: []*apollo.Person{
			{Email: "a@x.com"},
			nil,
			{Email: "c@z.com"},
		},
		errs: []error{nil, errors.New("rate limited"), nil},
	}
	e := fastEnricher(fake)

	people := []apollo.Person{
		{FirstName: "A"}, {FirstName: "B"}, {FirstName: "C"},
	}
	got := e.BulkEnrich(context.Background(), people)
	require.Len(t, got, 2)
	assert.Equal(t, "a@x.com", got[0].Email)
	assert.Equal(t, "c@z.com", got[2].Email)
	_, hasFailed := got[1]
	assert.False(t, hasFailed)
}

func TestBulkEnrichStopsOnCancel(t *testing.T) {
	fake := &fakeEnrichClient{}
	e := fastEnricher(fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := e.BulkEnrich(ctx, []apollo.Person{{FirstName: "A"}, {FirstName: "B"}})
	assert.Empty(t, got)
}

func TestPlaceholderEmail(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"John", "Smith", "dummyjohnsmith@gmail.com"},
		{"Jo Ann", "O'Neil", "dummyjoannoneil@gmail.com"},
		{"", "", "dummy@gmail.com"},
		{"Anne-Marie", "", "dummyannemarie@gmail.com"},
		{"", "Smith", "dummysmith@gmail.com"},
		{"José", "Núñez", "dummyjosnez@gmail.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlaceholderEmail(tt.first, tt.last))
	}
}

func TestNormalizeEmailRules(t *testing.T) {
	people := []apollo.Person{
		{FirstName: "A", LastName: "One", Email: model.LockedEmailSentinel},
		{FirstName: "B", LastName: "Two", Email: ""},
		{FirstName: "C", LastName: "Three", Email: "c@real.com"},
		{FirstName: "D", LastName: "Four", Email: model.LockedEmailSentinel},
	}
	enriched := map[int]*apollo.Person{
		0: {Email: "a@real.com", PhoneNumber: "+1 555 0100"},
		3: {Email: model.LockedEmailSentinel}, // enrichment still locked
	}

	got := Normalize(people, enriched)
	require.Len(t, got, 4)
	assert.Equal(t, "a@real.com", got[0].Email)
	assert.Equal(t, "+1 555 0100", got[0].PhoneNumber)
	assert.Equal(t, "dummybtwo@gmail.com", got[1].Email)
	assert.Equal(t, "c@real.com", got[2].Email)
	assert.Equal(t, "dummydfour@gmail.com", got[3].Email)
}

func TestNormalizeFillsMissingFields(t *testing.T) {
	people := []apollo.Person{
		{FirstName: "E", LastName: "Five", Email: "e@real.com"},
	}
	enriched := map[int]*apollo.Person{
		0: {Title: "CEO", LinkedInURL: "https://linkedin.com/in/efive"},
	}

	got := Normalize(people, enriched)
	assert.Equal(t, "CEO", got[0].Title)
	assert.Equal(t, "https://linkedin.com/in/efive", got[0].LinkedInURL)
	assert.Equal(t, "e@real.com", got[0].Email)
}
