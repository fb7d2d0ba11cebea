package model

import "time"

// Status is the moderation state of a version, and of the document aggregate
// derived from its versions.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Filter selects versions by status in the moderation worklist.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterPending  Filter = Filter(StatusPending)
	FilterApproved Filter = Filter(StatusApproved)
	FilterRejected Filter = Filter(StatusRejected)
)

// ParseFilter maps a raw query value to a Filter. An empty value means all.
func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, true
	case FilterPending, FilterApproved, FilterRejected:
		return Filter(s), true
	}
	return FilterAll, false
}

// Matches reports whether a version status passes the filter.
func (f Filter) Matches(s Status) bool {
	return f == FilterAll || Filter(s) == f
}

// Version is one immutable content snapshot in a document's history. Only the
// Status field is ever mutated after creation; the payload fields are frozen
// at submission time. Versions are serialized into the document's Versions
// column so that every lifecycle operation is a single-record read-modify-write.
type Version struct {
	V         int64     `json:"v"`
	FileURL   string    `json:"file_url,omitempty"`
	Title     string    `json:"title,omitempty"`
	Contents  string    `json:"contents,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}
