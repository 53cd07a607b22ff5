// Package store persists prospects and organizations behind a Store
// interface with Postgres and SQLite drivers.
package store

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Store is the persistence interface for prospects and organizations.
// Lookup methods return (nil, nil) when no row matches.
type Store interface {
	// Migrate creates or updates the schema.
	Migrate(ctx context.Context) error

	// UpsertOrganization inserts or updates an organization keyed by domain
	// and returns its id.
	UpsertOrganization(ctx context.Context, org *model.Organization) (string, error)

	// CreateProspect inserts a new prospect and returns it with generated
	// fields populated.
	CreateProspect(ctx context.Context, p *model.Prospect) (*model.Prospect, error)

	// UpdateProspect overwrites a prospect's mutable contact fields.
	UpdateProspect(ctx context.Context, p *model.Prospect) (*model.Prospect, error)

	// GetProspect fetches a prospect by internal id.
	GetProspect(ctx context.Context, id string) (*model.Prospect, error)

	// GetProspectByContactID fetches a prospect by provider contact id.
	GetProspectByContactID(ctx context.Context, contactID string) (*model.Prospect, error)

	// GetProspectByLinkedInURL fetches a prospect by professional-network URL.
	GetProspectByLinkedInURL(ctx context.Context, url string) (*model.Prospect, error)

	// ListProspects returns prospects matching the filter, newest first.
	ListProspects(ctx context.Context, f model.ProspectFilter) ([]model.Prospect, error)

	// ListByStatusWithLinkedIn returns prospects in the given status that
	// have a professional-network URL, oldest first.
	ListByStatusWithLinkedIn(ctx context.Context, status model.ProspectStatus, limit int) ([]model.Prospect, error)

	// UpdateProspectStatus applies a status transition and stamps the
	// last-interaction time.
	UpdateProspectStatus(ctx context.Context, id string, u model.StatusUpdate) error

	// AddConversationMessage appends a message to the prospect's
	// conversation log. Messages from the prospect bump the response count.
	AddConversationMessage(ctx context.Context, id string, msg model.ConversationMessage) error

	// ListNeedingFollowUp returns messaged prospects whose last interaction
	// is older than the follow-up window.
	ListNeedingFollowUp(ctx context.Context) ([]model.Prospect, error)

	// Stats summarizes the prospect table.
	Stats(ctx context.Context) (*model.ProspectStats, error)

	// Close releases database resources.
	Close() error
}
