package matrix

import (
	"github.com/trimatrixio/matrix-engine/database/models"
	"github.com/trimatrixio/matrix-engine/types"
)

// Position defines struct to contain one node of a per-slot ternary tree.
// Level1/2/3 count the position's own descendants at relative depth 1/2/3;
// Total counts all descendants. ChildCount is the claimed direct-children
// counter used for the optimistic placement update, so two concurrent
// placements cannot both take the last open child.
type Position struct {
	ID         int64  `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	UserID     int64  `gorm:"column:user_id;type:bigint;not null" json:"user_id"`
	SponsorID  *int64 `gorm:"column:sponsor_id;type:bigint" json:"sponsor_id"`
	SlotNumber int64  `gorm:"column:slot_number;type:bigint;not null" json:"slot_number"`
	Cycle      int64  `gorm:"column:cycle;type:bigint;not null" json:"cycle"`
	ParentID   *int64 `gorm:"column:parent_id;type:bigint" json:"parent_id"`
	Depth      int64  `gorm:"column:depth;type:bigint;not null" json:"depth"`
	ChildCount int64  `gorm:"column:child_count;type:bigint;not null" json:"child_count"`

	Level1 int64 `gorm:"column:level1;type:bigint;not null" json:"level1"`
	Level2 int64 `gorm:"column:level2;type:bigint;not null" json:"level2"`
	Level3 int64 `gorm:"column:level3;type:bigint;not null" json:"level3"`
	Total  int64 `gorm:"column:total;type:bigint;not null" json:"total"`

	Completed bool                 `gorm:"column:completed;not null" json:"completed"`
	Status    types.PositionStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	IsReentry bool                 `gorm:"column:is_reentry;not null" json:"is_reentry"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*Position) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return []models.ForeignKeyConstraint{
		{
			Field:    "user_id",
			Dest:     "\"user\"(id)",
			OnDelete: "RESTRICT",
			OnUpdate: "RESTRICT",
		},
		{
			Field:    "parent_id",
			Dest:     "\"position\"(id)",
			OnDelete: "RESTRICT",
			OnUpdate: "RESTRICT",
		},
	}
}

// Indexes returns information to create index.
func (*Position) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{
			Name:   "user_slot_cycle_unique_idx",
			Unique: true,
			Fields: []string{"user_id", "slot_number", "cycle"},
		},
		{
			Name:   "slot_parent_idx",
			Fields: []string{"slot_number", "parent_id"},
		},
		{
			Name:      "slot_root_idx",
			Fields:    []string{"slot_number"},
			Condition: "WHERE parent_id IS NULL",
		},
	}
}
