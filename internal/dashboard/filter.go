// Package dashboard is the reviewer's session view over the fetched
// submissions: in-memory filtering plus optimistic mutations.
package dashboard

import (
	"regexp"
	"strings"

	"github.com/cessadesk/cessadesk/internal/intake"
	"github.com/cessadesk/cessadesk/internal/models"
)

// AllStatuses disables the status filter.
const AllStatuses = "all"

// reShaped matches terms that look like a registration number, masked or not.
var reShaped = regexp.MustCompile(`^[\d\s.\-]+$`)

type Query struct {
	Term   string `json:"q"`
	Status string `json:"status"`
}

// Matches reports whether sub passes both the search term and the status
// filter.
func (q Query) Matches(sub models.Submission) bool {
	if q.Status != "" && q.Status != AllStatuses && string(sub.Status) != q.Status {
		return false
	}
	term := strings.TrimSpace(q.Term)
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(sub.Name), strings.ToLower(term)) {
		return true
	}
	if reShaped.MatchString(term) {
		if digits := intake.Digits(term); digits != "" && strings.Contains(intake.Digits(sub.RE), digits) {
			return true
		}
	}
	return strings.Contains(sub.RE, term)
}

// Filter returns the rows matching q, preserving order.
func Filter(rows []models.Submission, q Query) []models.Submission {
	out := make([]models.Submission, 0, len(rows))
	for _, r := range rows {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
