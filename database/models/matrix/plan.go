package matrix

import (
	"github.com/shopspring/decimal"
	"github.com/trimatrixio/matrix-engine/database/models"
)

// CommissionPlan defines struct to contain the configured fractions of the
// slot price paid out on each placement. RateReserve is tracked but not paid
// by this engine; it is retained for the external settlement path.
type CommissionPlan struct {
	ID           int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	RateLevel1   decimal.Decimal `gorm:"column:rate_level1;type:decimal(38,18);not null" json:"rate_level1"`
	RateLevel2   decimal.Decimal `gorm:"column:rate_level2;type:decimal(38,18);not null" json:"rate_level2"`
	RateLevel3   decimal.Decimal `gorm:"column:rate_level3;type:decimal(38,18);not null" json:"rate_level3"`
	RateDividend decimal.Decimal `gorm:"column:rate_dividend;type:decimal(38,18);not null" json:"rate_dividend"`
	RateReserve  decimal.Decimal `gorm:"column:rate_reserve;type:decimal(38,18);not null" json:"rate_reserve"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*CommissionPlan) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return nil
}

// Indexes returns information to create index.
func (*CommissionPlan) Indexes() []models.CustomIndex {
	return nil
}
