package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document is the logical unit a user submits and moderators review.
// Versions holds the ordered version collection as an embedded JSON column;
// documents created before versioning existed may carry a single legacy
// object there instead of a list, which the normalizer resolves at load time.
type Document struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OwnerID        string         `gorm:"index;not null" json:"owner_id"`
	OwnerEmail     string         `json:"owner_email,omitempty"`
	Title          string         `gorm:"not null" json:"title"`
	Type           string         `json:"type,omitempty"`
	Contents       string         `json:"contents,omitempty"`
	Tags           datatypes.JSON `json:"tags,omitempty"`
	Status         Status         `gorm:"index;default:pending" json:"status"`
	CurrentVersion int64          `json:"current_version"`
	AttachFile     string         `json:"attach_file,omitempty"`
	Versions       datatypes.JSON `json:"versions,omitempty"`
	LastEditedBy   string         `json:"last_edited_by,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// SetVersions replaces the stored version collection.
func (d *Document) SetVersions(versions []Version) error {
	data, err := json.Marshal(versions)
	if err != nil {
		return err
	}
	d.Versions = data
	return nil
}

// TagList decodes the document-level tags. A corrupted column yields nil
// rather than an error; tags are opaque payload produced by the classification
// collaborator and never gate an operation.
func (d *Document) TagList() []string {
	if len(d.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(d.Tags, &tags); err != nil {
		return nil
	}
	return tags
}

// SetTags replaces the document-level tags.
func (d *Document) SetTags(tags []string) error {
	if tags == nil {
		d.Tags = nil
		return nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	d.Tags = data
	return nil
}

func (d *Document) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}
