package matrix

import (
	"github.com/trimatrixio/matrix-engine/database/models"
)

// ReentryEvent defines struct to contain the audit record linking a
// completed position to its re-entry position. Append-only.
type ReentryEvent struct {
	ID                  int64 `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	UserID              int64 `gorm:"column:user_id;type:bigint;not null" json:"user_id"`
	SlotNumber          int64 `gorm:"column:slot_number;type:bigint;not null" json:"slot_number"`
	CompletedPositionID int64 `gorm:"column:completed_position_id;type:bigint;not null" json:"completed_position_id"`
	NewPositionID       int64 `gorm:"column:new_position_id;type:bigint;not null" json:"new_position_id"`
	TriggerPositionID   int64 `gorm:"column:trigger_position_id;type:bigint;not null" json:"trigger_position_id"`
	CycleBefore         int64 `gorm:"column:cycle_before;type:bigint;not null" json:"cycle_before"`
	CycleAfter          int64 `gorm:"column:cycle_after;type:bigint;not null" json:"cycle_after"`
	Timestamp           int64 `gorm:"column:timestamp;type:bigint;not null" json:"timestamp"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*ReentryEvent) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return []models.ForeignKeyConstraint{
		{
			Field:    "completed_position_id",
			Dest:     "\"position\"(id)",
			OnDelete: "RESTRICT",
			OnUpdate: "RESTRICT",
		},
		{
			Field:    "new_position_id",
			Dest:     "\"position\"(id)",
			OnDelete: "RESTRICT",
			OnUpdate: "RESTRICT",
		},
	}
}

// Indexes returns information to create index.
func (*ReentryEvent) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{
			Name:   "reentry_user_slot_idx",
			Fields: []string{"user_id", "slot_number"},
		},
	}
}
