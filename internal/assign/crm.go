package assign

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/salesforce"
)

// CRMSyncer mirrors prospects into the CRM as Accounts and Contacts.
type CRMSyncer struct {
	client  salesforce.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewCRMSyncer creates a CRMSyncer. pause is the minimum gap between
// per-prospect syncs.
func NewCRMSyncer(client salesforce.Client, pause time.Duration) *CRMSyncer {
	if pause <= 0 {
		pause = 1500 * time.Millisecond
	}
	return &CRMSyncer{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(pause), 1),
		retry:   resilience.DefaultRetryConfig(),
	}
}

// SyncBatch syncs prospects sequentially. Every prospect yields a result;
// failures never abort the batch.
func (c *CRMSyncer) SyncBatch(ctx context.Context, prospects []model.Prospect) []model.CRMSyncResult {
	results := make([]model.CRMSyncResult, 0, len(prospects))
	for _, p := range prospects {
		if err := c.limiter.Wait(ctx); err != nil {
			break
		}
		results = append(results, c.syncOne(ctx, p))
	}
	return results
}

// syncOne finds or creates the prospect's company and contact. Contacts are
// matched by email only when the email is real; placeholder addresses would
// collide across prospects.
func (c *CRMSyncer) syncOne(ctx context.Context, p model.Prospect) model.CRMSyncResult {
	result := model.CRMSyncResult{ProspectID: p.ID}

	accountID, err := c.findOrCreateAccount(ctx, p)
	if err != nil {
		zap.L().Warn("crm account sync failed",
			zap.String("prospect_id", p.ID), zap.String("company", p.Company), zap.Error(err))
		// Continue without an account link rather than dropping the contact.
	}
	result.CompanyID = accountID

	var existing *salesforce.Contact
	if !model.IsPlaceholderEmail(p.Email) {
		existing, err = salesforce.FindContactByEmail(ctx, c.client, p.Email)
		if err != nil {
			result.Error = err.Error()
			return result
		}
	}

	if existing != nil {
		fields := contactFields(p, accountID, existing.AccountID)
		err := resilience.Do(ctx, c.retry, func(ctx context.Context) error {
			return salesforce.UpdateContact(ctx, c.client, existing.ID, fields)
		})
		if err != nil {
			result.Error = err.Error()
			return result
		}
		result.Success = true
		result.Action = "updated"
		result.ContactID = existing.ID
		return result
	}

	var contactID string
	err = resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		contactID, err = salesforce.CreateContact(ctx, c.client, accountID, contactFields(p, accountID, ""))
		return err
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.Action = "created"
	result.ContactID = contactID
	return result
}

func (c *CRMSyncer) findOrCreateAccount(ctx context.Context, p model.Prospect) (string, error) {
	if p.Company == "" {
		return "", nil
	}

	account, err := salesforce.FindAccountByName(ctx, c.client, p.Company)
	if err != nil {
		return "", err
	}
	if account != nil {
		return account.ID, nil
	}

	fields := map[string]any{"Name": p.Company}
	if p.Industry != "" {
		fields["Industry"] = p.Industry
	}
	return salesforce.CreateAccount(ctx, c.client, fields)
}

// contactFields builds the Contact field map. The account link is only set
// when the contact is not already linked elsewhere.
func contactFields(p model.Prospect, accountID, existingAccountID string) map[string]any {
	fields := map[string]any{
		"FirstName": p.FirstName,
		"LastName":  p.LastName,
	}
	if p.Title != "" {
		fields["Title"] = p.Title
	}
	if p.Phone != "" {
		fields["Phone"] = p.Phone
	}
	if !model.IsPlaceholderEmail(p.Email) {
		fields["Email"] = p.Email
	}
	if accountID != "" && existingAccountID == "" {
		fields["AccountId"] = accountID
	}
	return fields
}
