package enrich

import (
	"fmt"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/apollo"
)

// PlaceholderEmail builds the deterministic dummy address used when a
// person's real email is missing or locked. Missing name parts contribute
// nothing; nameless records never reach persistence.
func PlaceholderEmail(first, last string) string {
	return fmt.Sprintf("dummy%s%s@gmail.com", sanitizeNamePart(first), sanitizeNamePart(last))
}

// sanitizeNamePart keeps letters only and lower-cases them.
func sanitizeNamePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

// Normalize merges enrichment results into the raw people and guarantees
// every record has a usable email. Enriched emails replace locked or missing
// ones; anything still unusable gets the placeholder. Enriched phone numbers
// win over raw ones.
func Normalize(people []apollo.Person, enriched map[int]*apollo.Person) []apollo.Person {
	out := make([]apollo.Person, len(people))
	for i, p := range people {
		if e, ok := enriched[i]; ok && e != nil {
			if usableEmail(e.Email) {
				p.Email = e.Email
			}
			if e.PhoneNumber != "" {
				p.PhoneNumber = e.PhoneNumber
			}
			if p.Title == "" {
				p.Title = e.Title
			}
			if p.LinkedInURL == "" {
				p.LinkedInURL = e.LinkedInURL
			}
		}
		if !usableEmail(p.Email) {
			p.Email = PlaceholderEmail(p.FirstName, p.LastName)
		}
		out[i] = p
	}
	return out
}

func usableEmail(email string) bool {
	return email != "" && email != model.LockedEmailSentinel
}
