package search

import (
	"strings"

	"github.com/sells-group/prospect-cli/pkg/apollo"
)

const (
	noEmailSentinel   = "no-email"
	noCompanySentinel = "no-company"
)

// dedupeKey builds the coarse identity key used to collapse duplicate
// results across cascade steps: first and last name plus email and company
// when present, all lower-cased.
func dedupeKey(p apollo.Person) string {
	email := noEmailSentinel
	if p.Email != "" {
		email = p.Email
	}
	company := noCompanySentinel
	if p.Organization != nil && p.Organization.Name != "" {
		company = p.Organization.Name
	}
	parts := []string{p.FirstName, p.LastName, email, company}
	return strings.ToLower(strings.Join(parts, "|"))
}

// Dedupe removes duplicate people, keeping the first occurrence of each
// identity key and preserving input order.
func Dedupe(people []apollo.Person) []apollo.Person {
	seen := make(map[string]struct{}, len(people))
	out := make([]apollo.Person, 0, len(people))
	for _, p := range people {
		key := dedupeKey(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
