package matrix

import (
	"github.com/shopspring/decimal"
	"github.com/trimatrixio/matrix-engine/database/models"
)

// User defines struct to contain identity and sponsor-chain records of a user.
// The sponsor reference is set once at registration and never reassigned, so
// the referral graph stays a forest.
type User struct {
	ID              int64           `gorm:"column:id;primary_key;AUTO_INCREMENT;not null" json:"id"`
	Wallet          string          `gorm:"column:wallet;type:varchar(128);not null" json:"wallet"`
	SponsorID       *int64          `gorm:"column:sponsor_id;type:bigint" json:"sponsor_id"`
	DividendBalance decimal.Decimal `gorm:"column:dividend_balance;type:decimal(38,18);not null" json:"dividend_balance"`

	models.Base
}

// ForeignKeyConstraints create foreign key constraints.
func (*User) ForeignKeyConstraints() []models.ForeignKeyConstraint {
	return []models.ForeignKeyConstraint{
		{
			Field:    "sponsor_id",
			Dest:     "\"user\"(id)",
			OnDelete: "RESTRICT",
			OnUpdate: "RESTRICT",
		},
	}
}

// Indexes returns information to create index.
func (*User) Indexes() []models.CustomIndex {
	return []models.CustomIndex{
		{
			Name:   "wallet_unique_idx",
			Unique: true,
			Fields: []string{"wallet"},
		},
		{
			Name:   "sponsor_idx",
			Fields: []string{"sponsor_id"},
		},
	}
}
