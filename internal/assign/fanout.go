package assign

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Fanout routes a persisted batch to outreach and CRM according to the
// caller's options. Either destination may be absent.
type Fanout struct {
	outreach          *OutreachAssigner
	crm               *CRMSyncer
	defaultCampaignID string
}

// NewFanout creates a Fanout. Nil assigners disable their destination.
func NewFanout(outreach *OutreachAssigner, crm *CRMSyncer, defaultCampaignID string) *Fanout {
	return &Fanout{outreach: outreach, crm: crm, defaultCampaignID: defaultCampaignID}
}

// Assign dispatches the saved prospects. The outreach result is always
// non-nil so callers can surface whether assignment ran; CRM results are
// nil when CRM sync was not requested.
func (f *Fanout) Assign(ctx context.Context, saved *model.SaveResult, opts model.SearchOptions) (*model.OutreachResult, []model.CRMSyncResult) {
	outreachResult := f.assignOutreach(ctx, saved, opts)

	var crmResults []model.CRMSyncResult
	if opts.AssignToCRM {
		if f.crm == nil {
			zap.L().Warn("crm assignment requested but no CRM client is configured")
		} else {
			crmResults = f.crm.SyncBatch(ctx, saved.SavedForCRM)
		}
	}

	return outreachResult, crmResults
}

func (f *Fanout) assignOutreach(ctx context.Context, saved *model.SaveResult, opts model.SearchOptions) *model.OutreachResult {
	if !opts.AssignToOutreach {
		return &model.OutreachResult{Skipped: true}
	}
	if f.outreach == nil {
		zap.L().Warn("outreach assignment requested but no outreach client is configured")
		return &model.OutreachResult{Skipped: true}
	}

	campaignID := opts.CampaignID
	if campaignID == "" {
		campaignID = f.defaultCampaignID
	}
	if campaignID == "" {
		zap.L().Warn("outreach assignment requested but no campaign id provided")
		return &model.OutreachResult{Skipped: true}
	}

	return f.outreach.AssignBatch(ctx, campaignID, saved.SavedForOutreach, opts.CustomFields)
}
