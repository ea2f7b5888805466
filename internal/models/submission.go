package models

import (
	"strings"
	"time"
)

// TimeLayout is fixed-width so stored timestamps sort correctly as text.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Timestamp formats t in UTC with TimeLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Submission is one officer's cessation request.
type Submission struct {
	ID            string       `json:"id,omitempty"`
	Name          string       `json:"name"`
	RE            string       `json:"re"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	IsJudicial    bool         `json:"isJudicial"`
	AgreedToTerms bool         `json:"agreedToTerms"`
	Status        Status       `json:"status"`
	CreatedAt     string       `json:"createdAt"`
	Files         []Attachment `json:"files"`
}

// Attachment references one stored document of a submission.
type Attachment struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	// Path is the object-store key the URL was resolved from.
	Path string `json:"path,omitempty"`
}

// Retrievable reports whether the attachment points at a stored object.
// Rows written by the browser-only revisions carry object URLs that died
// with the tab, and the storage client hands out a placeholder host when
// it was never configured.
func (a Attachment) Retrievable() bool {
	u := strings.TrimSpace(a.URL)
	switch {
	case u == "", u == "#":
		return false
	case strings.HasPrefix(u, "blob:"):
		return false
	case strings.Contains(u, "placeholder"):
		return false
	}
	return true
}
