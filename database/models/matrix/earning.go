package matrix

import (
	"github.com/shopspring/decimal"
	"github.com/trimatrixio/matrix-engine/database/models"
	"github.com/trimatrixio/matrix-engine/types"
)

// Earning defines struct to contain one immutable ledger record. Append-only.
type Earning struct {
	ID               int64             `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	UserID           int64             `gorm:"column:user_id;type:bigint;not null" json:"user_id"`
	SourcePositionID *int64            `gorm:"column:source_position_id;type:bigint" json:"source_position_id"`
	UplinePositionID *int64            `gorm:"column:upline_position_id;type:bigint" json:"upline_position_id"`
	SlotNumber       int64             `gorm:"column:slot_number;type:bigint;not null" json:"slot_number"`
	Amount           decimal.Decimal   `gorm:"column:amount;type:decimal(38,18);not null" json:"amount"`
	Type             types.EarningType `gorm:"column:type;type:varchar(16);not null" json:"type"`
	Timestamp        int64             `gorm:"column:timestamp;type:bigint;not null" json:"timestamp"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*Earning) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return []models.ForeignKeyConstraint{
		{
			Field:    "user_id",
			Dest:     "\"user\"(id)",
			OnDelete: "RESTRICT",
			OnUpdate: "RESTRICT",
		},
	}
}

// Indexes returns information to create index.
func (*Earning) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{
			Name:   "user_slot_idx",
			Fields: []string{"user_id", "slot_number"},
		},
	}
}
