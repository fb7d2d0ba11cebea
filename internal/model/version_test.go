package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestParseFilter(t *testing.T) {
	filter, ok := ParseFilter("")
	assert.True(t, ok)
	assert.Equal(t, FilterAll, filter)

	filter, ok = ParseFilter("pending")
	assert.True(t, ok)
	assert.Equal(t, FilterPending, filter)

	_, ok = ParseFilter("published")
	assert.False(t, ok)
}

func TestFilterMatches(t *testing.T) {
	assert.True(t, FilterAll.Matches(StatusPending))
	assert.True(t, FilterAll.Matches(StatusRejected))
	assert.True(t, FilterPending.Matches(StatusPending))
	assert.False(t, FilterPending.Matches(StatusApproved))
}

func TestDocumentTags(t *testing.T) {
	doc := &Document{}
	assert.Nil(t, doc.TagList())

	assert.NoError(t, doc.SetTags([]string{"trade", "harbor"}))
	assert.Equal(t, []string{"trade", "harbor"}, doc.TagList())

	// corrupt tags are opaque payload, never an error
	doc.Tags = datatypes.JSON(`{not json`)
	assert.Nil(t, doc.TagList())

	assert.NoError(t, doc.SetTags(nil))
	assert.Nil(t, doc.TagList())
}
