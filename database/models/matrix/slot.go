package matrix

import (
	"github.com/shopspring/decimal"
	"github.com/trimatrixio/matrix-engine/database/models"
)

// Slot defines struct to contain the static price list entry of a slot
// number. Seeded at reset, read-only afterwards.
type Slot struct {
	ID     int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	Number int64           `gorm:"column:number;type:bigint;not null" json:"number"`
	Price  decimal.Decimal `gorm:"column:price;type:decimal(38,18);not null" json:"price"`
	Active bool            `gorm:"column:active;not null" json:"active"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*Slot) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return nil
}

// Indexes returns information to create index.
func (*Slot) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{
			Name:   "number_unique_idx",
			Unique: true,
			Fields: []string{"number"},
		},
	}
}
