package service

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/papyri/archive/internal/model"
)

// initialImportNotes marks a version synthesized from a pre-versioning document.
const initialImportNotes = "Initial import"

// NormalizeVersions resolves the stored version column into a canonical
// ordered collection. The column is a tagged union: a proper list of version
// entries, a single legacy object from before versioning existed, or empty.
// The result is always a fresh slice sorted by version number ascending, so
// callers can mutate it freely. Pure: no I/O, the document is not modified.
func NormalizeVersions(doc *model.Document) []model.Version {
	raw := bytes.TrimSpace(doc.Versions)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return synthesized(doc)
	}

	if raw[0] == '[' {
		var versions []model.Version
		if err := json.Unmarshal(raw, &versions); err != nil || len(versions) == 0 {
			return synthesized(doc)
		}
		sort.Slice(versions, func(i, j int) bool {
			return versions[i].V < versions[j].V
		})
		return versions
	}

	// A single object with a numeric version number is a one-entry history;
	// without one it is the legacy shape and the document's own fields are
	// the only source of truth.
	var probe struct {
		V int64 `json:"v"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.V > 0 {
		var version model.Version
		if err := json.Unmarshal(raw, &version); err == nil {
			return []model.Version{version}
		}
	}

	return synthesized(doc)
}

// synthesized builds the single initial version for a legacy document, or an
// empty collection when there is no attach_file to synthesize from.
func synthesized(doc *model.Document) []model.Version {
	if doc.AttachFile == "" {
		return []model.Version{}
	}

	v := doc.CurrentVersion
	if v <= 0 {
		v = 1
	}

	status := model.StatusPending
	if doc.Status == model.StatusApproved {
		status = model.StatusApproved
	}

	return []model.Version{{
		V:         v,
		FileURL:   doc.AttachFile,
		Title:     doc.Title,
		Contents:  doc.Contents,
		Tags:      doc.TagList(),
		Status:    status,
		Notes:     initialImportNotes,
		CreatedAt: doc.CreatedAt,
		CreatedBy: doc.OwnerID,
	}}
}

// hasVersionList reports whether the stored column already carries a proper
// version list, i.e. whether seeding would be redundant.
func hasVersionList(doc *model.Document) bool {
	raw := bytes.TrimSpace(doc.Versions)
	if len(raw) == 0 || raw[0] != '[' {
		return false
	}
	var versions []model.Version
	return json.Unmarshal(raw, &versions) == nil && len(versions) > 0
}

// findVersion returns the index of the exact version number, or -1.
func findVersion(versions []model.Version, v int64) int {
	for i := range versions {
		if versions[i].V == v {
			return i
		}
	}
	return -1
}

// currentOrLatest selects the version the current pointer names, falling back
// to the numerically highest one when the pointer is stale. Returns -1 for an
// empty collection.
func currentOrLatest(versions []model.Version, current int64) int {
	if idx := findVersion(versions, current); idx >= 0 {
		return idx
	}
	latest := -1
	for i := range versions {
		if latest < 0 || versions[i].V > versions[latest].V {
			latest = i
		}
	}
	return latest
}

// latestApproved returns the index of the approved version with the highest
// version number, or -1 when none is approved.
func latestApproved(versions []model.Version) int {
	best := -1
	for i := range versions {
		if versions[i].Status != model.StatusApproved {
			continue
		}
		if best < 0 || versions[i].V > versions[best].V {
			best = i
		}
	}
	return best
}

func anyPending(versions []model.Version) bool {
	for i := range versions {
		if versions[i].Status == model.StatusPending {
			return true
		}
	}
	return false
}

func maxVersionNumber(versions []model.Version) int64 {
	var max int64
	for i := range versions {
		if versions[i].V > max {
			max = versions[i].V
		}
	}
	return max
}
