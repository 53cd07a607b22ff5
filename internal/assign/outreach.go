// Package assign fans persisted prospects out to the outreach campaign API
// and the CRM.
package assign

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/expandi"
)

// OutreachAssigner assigns prospects to outreach campaigns and records the
// resulting status transition.
type OutreachAssigner struct {
	client expandi.Client
	store  store.Store
	retry  resilience.RetryConfig
}

// NewOutreachAssigner creates an OutreachAssigner.
func NewOutreachAssigner(client expandi.Client, s store.Store) *OutreachAssigner {
	return &OutreachAssigner{client: client, store: s, retry: resilience.DefaultRetryConfig()}
}

// AssignBatch assigns prospects to a campaign one at a time. Each failure is
// item-scoped; the batch always runs to completion unless the context is
// cancelled. Successfully assigned prospects transition to IN_CAMPAIGN.
func (a *OutreachAssigner) AssignBatch(ctx context.Context, campaignID string, prospects []model.Prospect, customFields map[string]string) *model.OutreachResult {
	result := &model.OutreachResult{Total: len(prospects)}

	for _, p := range prospects {
		if ctx.Err() != nil {
			break
		}

		if err := a.assignOne(ctx, campaignID, p, customFields); err != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s %s: %s", p.FirstName, p.LastName, err.Error()))
			result.FailedProspects = append(result.FailedProspects, p)
			zap.L().Warn("campaign assignment failed",
				zap.String("prospect_id", p.ID),
				zap.String("campaign_id", campaignID),
				zap.Error(err))
			continue
		}

		result.Successful++
		result.SuccessfulProspects = append(result.SuccessfulProspects, p)
	}

	zap.L().Info("campaign assignment batch complete",
		zap.String("campaign_id", campaignID),
		zap.Int("total", result.Total),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed))
	return result
}

func (a *OutreachAssigner) assignOne(ctx context.Context, campaignID string, p model.Prospect, customFields map[string]string) error {
	if p.LinkedInURL == "" {
		return fmt.Errorf("no profile URL")
	}

	req := expandi.AssignRequest{
		ProfileLink:  p.LinkedInURL,
		FirstName:    p.FirstName,
		CompanyName:  p.Company,
		CustomFields: customFields,
	}
	// Placeholder addresses must not leak into outreach messaging.
	if !model.IsPlaceholderEmail(p.Email) {
		req.Email = p.Email
	}

	err := resilience.Do(ctx, a.retry, func(ctx context.Context) error {
		return a.client.AssignToCampaign(ctx, campaignID, req)
	})
	if err != nil {
		return err
	}

	if a.store != nil {
		err := a.store.UpdateProspectStatus(ctx, p.ID, model.StatusUpdate{
			Status:     model.StatusInCampaign,
			CampaignID: campaignID,
		})
		if err != nil {
			// The assignment went through; a stale status is recoverable.
			zap.L().Warn("status update after assignment failed",
				zap.String("prospect_id", p.ID), zap.Error(err))
		}
	}
	return nil
}

// AssignFromDatabase assigns stored prospects in the given status that have
// a profile URL.
func (a *OutreachAssigner) AssignFromDatabase(ctx context.Context, campaignID string, status model.ProspectStatus, limit int, customFields map[string]string) (*model.OutreachResult, error) {
	prospects, err := a.store.ListByStatusWithLinkedIn(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	return a.AssignBatch(ctx, campaignID, prospects, customFields), nil
}
