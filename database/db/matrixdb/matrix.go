package matrixdb

import (
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trimatrixio/matrix-engine/common/config"
	"github.com/trimatrixio/matrix-engine/common/logging"
	"github.com/trimatrixio/matrix-engine/database/models"
	"github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

var logger = logging.NewLoggerTag("database")

// slotCount is the size of the seeded catalog.
const slotCount = 12

// MatrixDBApp is the database application.
type MatrixDBApp struct {
}

// Models returns the models for a given database app.
func (e *MatrixDBApp) Models() []interface{} {
	return matrix.AllModels
}

// IsEmpty check if a given database is empty.
func (e *MatrixDBApp) IsEmpty(db *gorm.DB) bool {
	return !db.Migrator().HasTable("position")
}

// PreReset is executed before db is reset.
func (e *MatrixDBApp) PreReset(tx *gorm.DB) error {
	return nil
}

// PostReset is executed after db is reset.
func (e *MatrixDBApp) PostReset(tx *gorm.DB) error {
	if err := initSchemaVersion(tx); err != nil {
		return err
	}
	if err := seedSlotCatalog(tx); err != nil {
		return err
	}
	return seedCommissionPlan(tx)
}

// seedSlotCatalog writes the static price list: slot 1 at BASE_SLOT_PRICE
// (default $8), each next slot doubling.
func seedSlotCatalog(db *gorm.DB) error {
	price := config.GetDecimal("BASE_SLOT_PRICE", decimal.NewFromInt(8))
	two := decimal.NewFromInt(2)
	for number := int64(1); number <= slotCount; number++ {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "number"}},
			UpdateAll: true,
		}).Create(&matrix.Slot{
			Number: number,
			Price:  price,
			Active: true,
		}).Error
		if err != nil {
			return err
		}
		price = price.Mul(two)
	}
	logger.Info("seeded %v slots", slotCount)
	return nil
}

// seedCommissionPlan writes the default payout fractions: 20%/10%/5% for
// levels 1-3, 31% dividend pool, 34% settlement reserve.
func seedCommissionPlan(db *gorm.DB) error {
	var n int64
	if err := db.Model(&matrix.CommissionPlan{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		logger.Info("commission plan already seeded")
		return nil
	}
	err := db.Create(&matrix.CommissionPlan{
		RateLevel1:   config.GetDecimal("RATE_LEVEL1", decimal.NewFromFloat(0.20)),
		RateLevel2:   config.GetDecimal("RATE_LEVEL2", decimal.NewFromFloat(0.10)),
		RateLevel3:   config.GetDecimal("RATE_LEVEL3", decimal.NewFromFloat(0.05)),
		RateDividend: config.GetDecimal("RATE_DIVIDEND", decimal.NewFromFloat(0.31)),
		RateReserve:  config.GetDecimal("RATE_RESERVE", decimal.NewFromFloat(0.34)),
	}).Error
	if err != nil {
		return err
	}
	logger.Info("seeded default commission plan")
	return nil
}

func initSchemaVersion(db *gorm.DB) error {
	var result models.System
	err := db.Model(&models.System{}).Select("*").Where(
		"name = ?", "schema_version").Last(&result).Error
	var v int
	logger.Info("set default schema_version to 1")
	if err == nil {
		v, err = strconv.Atoi(result.Value)
		if err == nil {
			logger.Info("success to get last schema_version from system table")
		}
	}
	if res := db.Model(&models.System{}).Create(
		&models.System{
			Name:  types.SysVarSchemaVersion,
			Value: strconv.Itoa(v + 1),
		}); res.Error != nil {
		return res.Error
	}
	logger.Info("Initialized DB Schema version to %v.", v+1)
	return nil
}
