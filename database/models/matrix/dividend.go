package matrix

import (
	"github.com/shopspring/decimal"
	"github.com/trimatrixio/matrix-engine/database/models"
	"github.com/trimatrixio/matrix-engine/types"
)

// DividendPoolRecord defines struct to contain one IN/OUT flow of the shared
// dividend pool. Append-only.
type DividendPoolRecord struct {
	ID         int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	Flow       types.PoolFlow  `gorm:"column:flow;type:varchar(8);not null" json:"flow"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(38,18);not null" json:"amount"`
	UserID     int64           `gorm:"column:user_id;type:bigint;not null" json:"user_id"`
	SlotNumber int64           `gorm:"column:slot_number;type:bigint;not null" json:"slot_number"`
	BatchRef   string          `gorm:"column:batch_ref;type:varchar(128)" json:"batch_ref"`
	Timestamp  int64           `gorm:"column:timestamp;type:bigint;not null" json:"timestamp"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*DividendPoolRecord) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return nil
}

// Indexes returns information to create index.
func (*DividendPoolRecord) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{
			Name:   "pool_user_idx",
			Fields: []string{"user_id"},
		},
	}
}
