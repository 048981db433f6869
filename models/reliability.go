package models

import "time"

// ReliabilityRecord tracks a phone's cumulative no-show count. The count is
// monotonically non-decreasing outside an admin reset.
type ReliabilityRecord struct {
	Phone        string    `bson:"phone" json:"phone"`
	NoShowCount  int       `bson:"no_show_count" json:"noShowCount"`
	LastNoShowAt time.Time `bson:"last_no_show_at" json:"lastNoShowAt"`
}

// NoShowRecord is one appended no-show event.
type NoShowRecord struct {
	ID         string    `bson:"id" json:"id"`
	Phone      string    `bson:"phone" json:"phone"`
	ProviderID string    `bson:"provider_id" json:"providerId"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

// BlockEntry silences all inbound processing for a phone. An empty
// ProviderID marks an entry on the shared cross-provider blacklist.
type BlockEntry struct {
	ID         string    `bson:"id" json:"id"`
	Phone      string    `bson:"phone" json:"phone"`
	ProviderID string    `bson:"provider_id" json:"providerId"` // "" = global, never omitted
	Reason     string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
