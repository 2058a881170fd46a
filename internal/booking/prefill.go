// Package booking builds the results address and the scheduler embed URL
// prefilled from a lead's contact details.
package booking

import (
	"net/url"
	"strings"
	"sync"

	"enrollment-assessment/internal/domain"
)

// ResultsBasePath is the address of the results step.
const ResultsBasePath = "/results"

// CleanPhone keeps only digits and '+'.
func CleanPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PrefillQuery encodes the lead fields that were filled in as scheduler query
// parameters. A filled phone is sent even when cleaning leaves it empty.
func PrefillQuery(lead domain.LeadInfo, withCompany bool) string {
	type param struct{ key, raw, value string }
	params := []param{
		{"first_name", lead.FirstName, lead.FirstName},
		{"last_name", lead.LastName, lead.LastName},
		{"email", lead.Email, lead.Email},
		{"phone", lead.Phone, CleanPhone(lead.Phone)},
	}
	if withCompany {
		params = append(params, param{"company_name", lead.BusinessName, lead.BusinessName})
	}

	// url.Values.Encode sorts keys; build by hand to keep the field order.
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.raw == "" {
			continue
		}
		parts = append(parts, url.QueryEscape(p.key)+"="+url.QueryEscape(p.value))
	}
	return strings.Join(parts, "&")
}

// ResultsPath is the address pushed when the visitor reaches the results step.
func ResultsPath(lead domain.LeadInfo) string {
	return ResultsBasePath + "?" + PrefillQuery(lead, false)
}

// CalendarURL returns the booking iframe source, or "" when no booking URL is configured.
func CalendarURL(bookingURL string, lead domain.LeadInfo) string {
	if bookingURL == "" {
		return ""
	}
	return bookingURL + "?" + PrefillQuery(lead, true)
}

// EmbedRegistry tracks which form-embed scripts a page has already loaded.
type EmbedRegistry struct {
	mu       sync.Mutex
	injected map[string]struct{}
}

func NewEmbedRegistry() *EmbedRegistry {
	return &EmbedRegistry{injected: make(map[string]struct{})}
}

// Inject reports whether src should be added to the page. It returns true at
// most once per source; empty sources are never injected.
func (r *EmbedRegistry) Inject(src string) bool {
	if src == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.injected[src]; ok {
		return false
	}
	r.injected[src] = struct{}{}
	return true
}
