package store

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/apollo"
)

// SaveProspects persists a normalized batch of people. The operation is
// idempotent: a person already known by provider contact id or by
// professional-network URL is updated in place, and a unique-constraint
// collision on insert is reinterpreted as an update. Per-record failures are
// logged and counted as skips so one bad record never aborts the batch.
// Cancellation stops the batch before the next record.
func SaveProspects(ctx context.Context, s Store, people []apollo.Person) (*model.SaveResult, error) {
	result := &model.SaveResult{}

	for _, person := range people {
		if ctx.Err() != nil {
			break
		}

		if person.FirstName == "" && person.LastName == "" {
			result.Skipped++
			continue
		}

		orgID := saveOrganization(ctx, s, person.Organization)

		candidate := toProspect(person, orgID)
		saved, updated, err := saveOne(ctx, s, candidate)
		if err != nil {
			zap.L().Warn("prospect save failed",
				zap.String("first_name", person.FirstName),
				zap.String("last_name", person.LastName),
				zap.Error(err))
			result.Skipped++
			continue
		}

		if updated {
			result.Updated++
		} else {
			result.Saved++
		}
		result.SavedForCRM = append(result.SavedForCRM, *saved)
		if saved.LinkedInURL != "" {
			result.SavedForOutreach = append(result.SavedForOutreach, *saved)
		}
	}

	zap.L().Info("batch save complete",
		zap.Int("saved", result.Saved),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// saveOne resolves an existing prospect and updates it, or creates a new
// one. Returns updated=true when an existing row was overwritten.
func saveOne(ctx context.Context, s Store, candidate *model.Prospect) (*model.Prospect, bool, error) {
	existing, err := resolveExisting(ctx, s, candidate)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return updateExisting(ctx, s, existing, candidate)
	}

	created, err := s.CreateProspect(ctx, candidate)
	if err == nil {
		return created, false, nil
	}
	if !resilience.IsUniqueViolation(err) {
		return nil, false, err
	}

	// Lost a race or matched on a key we did not resolve by; treat the
	// collision as an update.
	existing, rerr := resolveExisting(ctx, s, candidate)
	if rerr != nil {
		return nil, false, rerr
	}
	if existing == nil {
		return nil, false, err
	}
	return updateExisting(ctx, s, existing, candidate)
}

func resolveExisting(ctx context.Context, s Store, candidate *model.Prospect) (*model.Prospect, error) {
	existing, err := s.GetProspectByContactID(ctx, candidate.ContactID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.GetProspectByLinkedInURL(ctx, candidate.LinkedInURL)
}

func updateExisting(ctx context.Context, s Store, existing, candidate *model.Prospect) (*model.Prospect, bool, error) {
	merged := *candidate
	merged.ID = existing.ID
	updated, err := s.UpdateProspect(ctx, &merged)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// saveOrganization upserts the person's organization and returns its id.
// Failures are logged and degrade to an unlinked prospect.
func saveOrganization(ctx context.Context, s Store, org *apollo.Organization) string {
	if org == nil || org.Name == "" {
		return ""
	}

	website := org.WebsiteURL
	if website == "" && org.PrimaryDomain != "" {
		website = org.PrimaryDomain
	}
	location := joinNonEmpty(", ", org.City, org.State)

	orgID, err := s.UpsertOrganization(ctx, &model.Organization{
		Name:          org.Name,
		Domain:        DeriveDomain(website, org.Name),
		Industry:      org.Industry,
		EmployeeCount: org.EstimatedNumEmployees,
		Location:      location,
		LinkedInURL:   org.LinkedInURL,
		WebsiteURL:    org.WebsiteURL,
		Revenue:       org.EstimatedRevenuePrinted,
	})
	if err != nil {
		zap.L().Warn("organization upsert failed",
			zap.String("name", org.Name), zap.Error(err))
		return ""
	}
	return orgID
}

// DeriveDomain extracts a canonical domain from a website URL, or
// synthesizes one from the company name when no website is known.
func DeriveDomain(website, name string) string {
	if website != "" {
		host := website
		if u, err := url.Parse(website); err == nil && u.Host != "" {
			host = u.Host
		}
		host = strings.TrimPrefix(strings.ToLower(host), "www.")
		if i := strings.IndexByte(host, '/'); i >= 0 {
			host = host[:i]
		}
		if host != "" {
			return host
		}
	}

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String() + ".com"
}

func toProspect(p apollo.Person, orgID string) *model.Prospect {
	prospect := &model.Prospect{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Title:          p.Title,
		Email:          p.Email,
		Phone:          p.PhoneNumber,
		LinkedInURL:    p.LinkedInURL,
		Location:       joinNonEmpty(", ", p.City, p.State, p.Country),
		ContactID:      p.ID,
		OrganizationID: orgID,
		Status:         model.StatusNew,
	}
	if p.Organization != nil {
		prospect.Company = p.Organization.Name
		prospect.Industry = p.Organization.Industry
	}
	return prospect
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
