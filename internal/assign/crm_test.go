package assign

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/salesforce"
)

// fakeSalesforce implements salesforce.Client with canned query results.
type fakeSalesforce struct {
	queries     []string
	accounts    []salesforce.Account
	contacts    []salesforce.Contact
	inserted    []map[string]any
	insertedObj []string
	updated     map[string]map[string]any
	nextID      string
}

func (f *fakeSalesforce) Query(_ context.Context, soql string, out any) error {
	f.queries = append(f.queries, soql)
	var payload []byte
	var err error
	switch {
	case strings.Contains(soql, "FROM Account"):
		payload, err = json.Marshal(f.accounts)
	case strings.Contains(soql, "FROM Contact"):
		payload, err = json.Marshal(f.contacts)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

func (f *fakeSalesforce) InsertOne(_ context.Context, sObjectName string, record map[string]any) (string, error) {
	f.insertedObj = append(f.insertedObj, sObjectName)
	f.inserted = append(f.inserted, record)
	if f.nextID == "" {
		f.nextID = "sf-1"
	}
	return f.nextID, nil
}

func (f *fakeSalesforce) UpdateOne(_ context.Context, _ string, id string, fields map[string]any) error {
	if f.updated == nil {
		f.updated = make(map[string]map[string]any)
	}
	f.updated[id] = fields
	return nil
}

func fastSyncer(c salesforce.Client) *CRMSyncer {
	return NewCRMSyncer(c, time.Millisecond)
}

func TestSyncBatch_CreatesAccountAndContact(t *testing.T) {
	fake := &fakeSalesforce{nextID: "sf-new"}
	syncer := fastSyncer(fake)

	results := syncer.SyncBatch(context.Background(), []model.Prospect{{
		ID:        "p1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Company:   "Acme",
		Email:     "ada@acme.com",
		Title:     "CTO",
		Industry:  "software",
	}})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, "created", results[0].Action)
	assert.Equal(t, "sf-new", results[0].ContactID)
	assert.Equal(t, "sf-new", results[0].CompanyID)

	require.Len(t, fake.inserted, 2)
	assert.Equal(t, []string{"Account", "Contact"}, fake.insertedObj)
	assert.Equal(t, "Acme", fake.inserted[0]["Name"])
	assert.Equal(t, "software", fake.inserted[0]["Industry"])
	assert.Equal(t, "ada@acme.com", fake.inserted[1]["Email"])
	assert.Equal(t, "sf-new", fake.inserted[1]["AccountId"])
}

func TestSyncBatch_UpdatesExistingContact(t *testing.T) {
	fake := &fakeSalesforce{
		accounts: []salesforce.Account{{ID: "acc-1", Name: "Acme"}},
		contacts: []salesforce.Contact{{ID: "con-1", Email: "ada@acme.com", AccountID: "acc-other"}},
	}
	syncer := fastSyncer(fake)

	results := syncer.SyncBatch(context.Background(), []model.Prospect{{
		ID: "p1", FirstName: "Ada", LastName: "Lovelace",
		Company: "Acme", Email: "ada@acme.com",
	}})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, "updated", results[0].Action)
	assert.Equal(t, "con-1", results[0].ContactID)

	// The contact keeps its existing account link.
	fields := fake.updated["con-1"]
	require.NotNil(t, fields)
	_, hasAccount := fields["AccountId"]
	assert.False(t, hasAccount)

	assert.Empty(t, fake.inserted)
}

func TestSyncBatch_PlaceholderEmailSkipsLookup(t *testing.T) {
	fake := &fakeSalesforce{nextID: "sf-new"}
	syncer := fastSyncer(fake)

	results := syncer.SyncBatch(context.Background(), []model.Prospect{{
		ID: "p1", FirstName: "No", LastName: "Email",
		Email: "dummynoemail@gmail.com",
	}})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, "created", results[0].Action)

	// No contact query ran, and the dummy address was not written.
	for _, q := range fake.queries {
		assert.NotContains(t, q, "FROM Contact")
	}
	require.Len(t, fake.inserted, 1)
	_, hasEmail := fake.inserted[0]["Email"]
	assert.False(t, hasEmail)
}

func TestSyncBatch_NoCompanySkipsAccount(t *testing.T) {
	fake := &fakeSalesforce{nextID: "sf-new"}
	syncer := fastSyncer(fake)

	results := syncer.SyncBatch(context.Background(), []model.Prospect{{
		ID: "p1", FirstName: "Solo", LastName: "Operator", Email: "solo@ops.com",
	}})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Empty(t, results[0].CompanyID)
	require.Len(t, fake.insertedObj, 1)
	assert.Equal(t, "Contact", fake.insertedObj[0])
}
