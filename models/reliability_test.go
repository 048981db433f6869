package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson"
)

// The empty ProviderID is the global-blacklist marker, so it must survive
// any insert path, not only upserts that inject it through the filter.
func TestBlockEntryGlobalMarkerAlwaysStored(t *testing.T) {
	entry := BlockEntry{ID: "b1", Phone: "+5511999", ProviderID: ""}

	raw, err := bson.Marshal(entry)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	v, ok := doc["provider_id"]
	assert.True(t, ok, "provider_id must be present even when empty")
	assert.Equal(t, "", v)
}
