package search

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

type fakeApollo struct {
	peopleCalls    []apollo.PeopleSearchRequest
	companyCalls   []apollo.CompanySearchRequest
	peopleResults  [][]apollo.Person
	peopleErrs     []error
	companies      []apollo.Organization
	companyErr     error
	peopleCallSeen int
}

func (f *fakeApollo) SearchPeople(_ context.Context, req apollo.PeopleSearchRequest) ([]apollo.Person, error) {
	f.peopleCalls = append(f.peopleCalls, req)
	i := f.peopleCallSeen
	f.peopleCallSeen++
	var err error
	if i < len(f.peopleErrs) {
		err = f.peopleErrs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(f.peopleResults) {
		return f.peopleResults[i], nil
	}
	return nil, nil
}

func (f *fakeApollo) SearchCompanies(_ context.Context, req apollo.CompanySearchRequest) ([]apollo.Organization, error) {
	f.companyCalls = append(f.companyCalls, req)
	return f.companies, f.companyErr
}

func (f *fakeApollo) EnrichPerson(context.Context, apollo.EnrichRequest) (*apollo.Person, error) {
	return nil, errors.New("not implemented")
}

func person(first, last, email, company string) apollo.Person {
	p := apollo.Person{FirstName: first, LastName: last, Email: email}
	if company != "" {
		p.Organization = &apollo.Organization{Name: company}
	}
	return p
}

func fastConfig() Config {
	return Config{CompanyPause: time.Millisecond, CallTimeout: time.Second}
}

func TestTargetCompanyShortCircuits(t *testing.T) {
	fake := &fakeApollo{
		peopleResults: [][]apollo.Person{
			{person("Ada", "Lovelace", "ada@acme.com", "Acme")},
		},
	}
	o := NewOrchestrator(fake, fastConfig())

	got, err := o.Search(context.Background(), &model.SearchCriteria{
		JobTitles:     []string{"cto"},
		TargetCompany: "Acme",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].FirstName)

	// Only the targeted search ran.
	require.Len(t, fake.peopleCalls, 1)
	assert.Equal(t, []string{"Acme"}, fake.peopleCalls[0].OrganizationNames)
	assert.Empty(t, fake.companyCalls)
}

func TestTargetCompanyEmptyFallsThrough(t *testing.T) {
	fake := &fakeApollo{
		peopleResults: [][]apollo.Person{
			nil, // target company
			{person("Bob", "Jones", "bob@x.com", "X Co")}, // broad
		},
	}
	o := NewOrchestrator(fake, fastConfig())

	got, err := o.Search(context.Background(), &model.SearchCriteria{
		JobTitles:     []string{"ceo"},
		TargetCompany: "Ghost Corp",
		Limit:         1,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bob", got[0].FirstName)
}

func TestBroadSearchDefaults(t *testing.T) {
	fake := &fakeApollo{
		peopleResults: [][]apollo.Person{
			{person("Eve", "Adams", "eve@y.com", "Y Co")},
		},
	}
	o := NewOrchestrator(fake, fastConfig())

	_, err := o.Search(context.Background(), &model.SearchCriteria{
		JobTitles: []string{"founder"},
		Limit:     1,
	})
	require.NoError(t, err)

	require.NotEmpty(t, fake.peopleCalls)
	first := fake.peopleCalls[0]
	assert.Equal(t, []string{model.DefaultLocation}, first.Locations)
	assert.Equal(t, model.DefaultSizeRanges, first.SizeRanges)
}

func TestCascadeWidensThenSweepsCompanies(t *testing.T) {
	fake := &fakeApollo{
		peopleResults: [][]apollo.Person{
			nil, // broad
			nil, // very broad
			{person("Carol", "King", "carol@acme.com", "Acme")},  // company 1
			{person("Dan", "Field", "dan@globex.com", "Globex")}, // company 2
		},
		companies: []apollo.Organization{
			{Name: "Acme", PrimaryDomain: "acme.com"},
			{Name: "Globex"},
		},
	}
	o := NewOrchestrator(fake, fastConfig())

	got, err := o.Search(context.Background(), &model.SearchCriteria{
		JobTitles: []string{"owner"},
		Locations: []string{"austin"},
		Limit:     5,
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// The widened attempt drops everything but the titles.
	require.GreaterOrEqual(t, len(fake.peopleCalls), 2)
	assert.Equal(t, model.WideSizeRanges, fake.peopleCalls[1].SizeRanges)
	assert.Empty(t, fake.peopleCalls[1].Locations)

	// Per-company searches prefer domain scoping when present.
	require.Len(t, fake.peopleCalls, 4)
	assert.Equal(t, []string{"acme.com"}, fake.peopleCalls[2].OrganizationDomains)
	assert.Equal(t, []string{"Globex"}, fake.peopleCalls[3].OrganizationNames)
}

func TestBroadNonEmptyReturnsImmediately(t *testing.T) {
	fake := &fakeApollo{
		peopleResults: [][]apollo.Person{
			{person("A", "One", "a@1.com", "C1")},
		},
	}
	o := NewOrchestrator(fake, fastConfig())

	got, err := o.Search(context.Background(), &model.SearchCriteria{
		JobTitles: []string{"ceo"},
		Limit:     10,
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// One result under the limit still ends the cascade: no widened
	// attempt, no company search.
	assert.Len(t, fake.peopleCalls, 1)
	assert.Empty(t, fake.companyCalls)
}

func TestVeryBroadHitSkipsCompanySearch(t *testing.T) {
	fake := &fakeApollo{
		peopleResults: [][]apollo.Person{
			nil, // broad
			{
				person("A", "One", "a@1.com", "C1"),
				person("B", "Two", "b@2.com", "C2"),
				person("C", "Three", "c@3.com", "C3"),
			},
		},
		companies: []apollo.Organization{{Name: "Acme"}},
	}
	o := NewOrchestrator(fake, fastConfig())

	got, err := o.Search(context.Background(), &model.SearchCriteria{
		JobTitles: []string{"ceo"},
	})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Empty(t, fake.companyCalls)
	assert.Len(t, fake.peopleCalls, 2)
}

func TestStrategyErrorsAreSwallowed(t *testing.T) {
	fake := &fakeApollo{
		peopleErrs: []error{
			errors.New("broad down"),
			errors.New("very broad down"),
		},
		companyErr: errors.New("companies down"),
	}
	o := NewOrchestrator(fake, fastConfig())

	got, err := o.Search(context.Background(), &model.SearchCriteria{
		JobTitles: []string{"ceo"},
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMaxCompaniesRespected(t *testing.T) {
	fake := &fakeApollo{
		companies: []apollo.Organization{
			{Name: "C1"}, {Name: "C2"}, {Name: "C3"}, {Name: "C4"},
		},
	}
	cfg := fastConfig()
	cfg.MaxCompanies = 2
	o := NewOrchestrator(fake, cfg)

	_, err := o.Search(context.Background(), &model.SearchCriteria{
		JobTitles: []string{"ceo"},
		Limit:     10,
	})
	require.NoError(t, err)

	// Two broad attempts plus one per kept company.
	assert.Len(t, fake.peopleCalls, 4)
}

func TestDedupe(t *testing.T) {
	people := []apollo.Person{
		person("Ada", "Lovelace", "ada@acme.com", "Acme"),
		person("ADA", "LOVELACE", "ADA@ACME.COM", "ACME"), // case-insensitive dup
		person("Ada", "Lovelace", "", "Acme"),             // missing email differs
		person("Ada", "Lovelace", "", ""),                 // missing both differs again
		person("Ada", "Lovelace", "", ""),                 // exact dup of the sentinel form
	}
	got := Dedupe(people)
	require.Len(t, got, 3)
	assert.Equal(t, "ada@acme.com", got[0].Email)
}

func TestDedupeAcrossCompanySweep(t *testing.T) {
	dup := person("Sam", "Lee", "sam@z.com", "Z Co")
	fake := &fakeApollo{
		peopleResults: [][]apollo.Person{
			nil, // broad
			nil, // very broad
			{dup},
			{dup, person("Kim", "Park", "kim@z.com", "Z Co")},
		},
		companies: []apollo.Organization{{Name: "Z Co"}, {Name: "Z Holdings"}},
	}
	o := NewOrchestrator(fake, fastConfig())

	got, err := o.Search(context.Background(), &model.SearchCriteria{
		JobTitles: []string{"vp"},
		Limit:     5,
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
