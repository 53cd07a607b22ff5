package salesforce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	fake := &fakeClient{nextID: "001new"}

	id, err := CreateAccount(context.Background(), fake, map[string]any{
		"Name":     "Acme Corp",
		"Industry": "Software",
	})
	require.NoError(t, err)
	assert.Equal(t, "001new", id)
	assert.Equal(t, []string{"Account"}, fake.insertObj)
	assert.Equal(t, "Acme Corp", fake.inserted[0]["Name"])
}

func TestCreateAccount_RequiresName(t *testing.T) {
	fake := &fakeClient{}

	_, err := CreateAccount(context.Background(), fake, map[string]any{"Industry": "Software"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name is required")
	assert.Empty(t, fake.insertObj)

	_, err = CreateAccount(context.Background(), fake, map[string]any{"Name": ""})
	require.Error(t, err)
}

func TestCreateContact(t *testing.T) {
	fake := &fakeClient{nextID: "003new"}

	id, err := CreateContact(context.Background(), fake, "001xx", map[string]any{
		"FirstName": "Ada",
		"LastName":  "Lovelace",
	})
	require.NoError(t, err)
	assert.Equal(t, "003new", id)
	assert.Equal(t, []string{"Contact"}, fake.insertObj)
	assert.Equal(t, "001xx", fake.inserted[0]["AccountId"])
}

func TestCreateContact_NoAccount(t *testing.T) {
	fake := &fakeClient{nextID: "003new"}

	_, err := CreateContact(context.Background(), fake, "", map[string]any{"LastName": "Lovelace"})
	require.NoError(t, err)
	assert.NotContains(t, fake.inserted[0], "AccountId")
}

func TestCreateContact_InsertError(t *testing.T) {
	fake := &fakeClient{insertErr: errors.New("boom")}

	_, err := CreateContact(context.Background(), fake, "", map[string]any{"LastName": "Lovelace"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create contact")
}

func TestUpdateContact(t *testing.T) {
	fake := &fakeClient{}

	err := UpdateContact(context.Background(), fake, "003xx", map[string]any{"Title": "CTO"})
	require.NoError(t, err)
	assert.Equal(t, "003xx", fake.updatedID)
	assert.Equal(t, "CTO", fake.updated["Title"])
}

func TestUpdateContact_Validation(t *testing.T) {
	fake := &fakeClient{}
	ctx := context.Background()

	err := UpdateContact(ctx, fake, "", map[string]any{"Title": "CTO"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact id is required")

	err = UpdateContact(ctx, fake, "003xx", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fields to update")
}
