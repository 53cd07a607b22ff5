package assign

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/model"
)

// fakeStore is a no-op store.Store for assignment tests. Embed it and
// override the methods a test cares about.
type fakeStore struct {
	listByStatus []model.Prospect
}

func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

func (f *fakeStore) UpsertOrganization(context.Context, *model.Organization) (string, error) {
	return "", nil
}

func (f *fakeStore) CreateProspect(_ context.Context, p *model.Prospect) (*model.Prospect, error) {
	return p, nil
}

func (f *fakeStore) UpdateProspect(_ context.Context, p *model.Prospect) (*model.Prospect, error) {
	return p, nil
}

func (f *fakeStore) GetProspect(context.Context, string) (*model.Prospect, error) {
	return nil, nil
}

func (f *fakeStore) GetProspectByContactID(context.Context, string) (*model.Prospect, error) {
	return nil, nil
}

func (f *fakeStore) GetProspectByLinkedInURL(context.Context, string) (*model.Prospect, error) {
	return nil, nil
}

func (f *fakeStore) ListProspects(context.Context, model.ProspectFilter) ([]model.Prospect, error) {
	return nil, nil
}

func (f *fakeStore) ListByStatusWithLinkedIn(context.Context, model.ProspectStatus, int) ([]model.Prospect, error) {
	return f.listByStatus, nil
}

func (f *fakeStore) UpdateProspectStatus(context.Context, string, model.StatusUpdate) error {
	return nil
}

func (f *fakeStore) AddConversationMessage(context.Context, string, model.ConversationMessage) error {
	return nil
}

func (f *fakeStore) ListNeedingFollowUp(context.Context) ([]model.Prospect, error) {
	return nil, nil
}

func (f *fakeStore) Stats(context.Context) (*model.ProspectStats, error) {
	return &model.ProspectStats{}, nil
}
