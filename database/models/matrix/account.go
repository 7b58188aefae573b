package matrix

import (
	"github.com/shopspring/decimal"
	"github.com/trimatrixio/matrix-engine/database/models"
)

// UserSlotAccount defines struct to contain the per (user, slot) rollup.
// Created lazily on first activation or credit, mutated additively, never
// deleted.
type UserSlotAccount struct {
	ID            int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	UserID        int64           `gorm:"column:user_id;type:bigint;not null" json:"user_id"`
	SlotNumber    int64           `gorm:"column:slot_number;type:bigint;not null" json:"slot_number"`
	TotalInvested decimal.Decimal `gorm:"column:total_invested;type:decimal(38,18);not null" json:"total_invested"`
	TotalEarned   decimal.Decimal `gorm:"column:total_earned;type:decimal(38,18);not null" json:"total_earned"`
	ROICap        decimal.Decimal `gorm:"column:roi_cap;type:decimal(38,18);not null" json:"roi_cap"`
	Active        bool            `gorm:"column:active;not null" json:"active"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*UserSlotAccount) ForeignKeyConstraints() []models.ForeignKeyConstraint {
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
func (*UserSlotAccount) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{
			Name:   "user_slot_unique_idx",
			Unique: true,
			Fields: []string{"user_id", "slot_number"},
		},
	}
}
