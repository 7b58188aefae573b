package db

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

type InitializeTablesTestSuite struct {
	suite.Suite
}

func (s *InitializeTablesTestSuite) SetupSuite() {
	Initialize()
	Reset(GetDB(), types.Matrix, true)
}

func (s *InitializeTablesTestSuite) TearDownSuite() {
	Finalize()
}

func (s *InitializeTablesTestSuite) TestEmpty() {
	db := GetDB()
	require.NotNil(s.T(), db, "GetDB() must not return nil")

	var recordList []interface{}
	err := initializeTables(recordList, db)
	ok := assert.Nil(s.T(), err, "InitializeTables() failed. err(%s)", err)
	if !ok {
		s.logRecordList(recordList)
		return
	}
}

func initializeTables(recordList []interface{}, tx *gorm.DB) error {
	for idx, record := range recordList {
		typeOfRecord := reflect.TypeOf(record)
		if typeOfRecord.Kind() != reflect.Ptr {
			return fmt.Errorf("typeOfRecord.Kind() != reflect.Ptr")
		}

		if result := tx.Create(record); result.Error != nil {
			logger.Error("tx.Create() (%d/%d) for %s failed! record(%+v), "+
				"result.Error(%s)",
				idx+1,
				len(recordList),
				typeOfRecord.Elem().Name(),
				record,
				result.Error)
			return result.Error
		}
	}
	return nil
}

func (s *InitializeTablesTestSuite) TestSlotCatalogSeeded() {
	db := GetDB()
	require.NotNil(s.T(), db, "GetDB() must not return nil")

	var slots []*model.Slot
	err := db.Order("number asc").Find(&slots).Error
	require.Nil(s.T(), err)
	require.NotEmpty(s.T(), slots, "slot catalog must be seeded on reset")
	for i, slot := range slots {
		assert.Equal(s.T(), int64(i+1), slot.Number)
		assert.True(s.T(), slot.Active)
	}
}

func (s *InitializeTablesTestSuite) TestCommissionPlanSeeded() {
	db := GetDB()
	require.NotNil(s.T(), db, "GetDB() must not return nil")

	var n int64
	err := db.Model(&model.CommissionPlan{}).Count(&n).Error
	require.Nil(s.T(), err)
	assert.Equal(s.T(), int64(1), n)
}

func (s *InitializeTablesTestSuite) logRecordList(recordList []interface{}) {
	for idx, record := range recordList {
		s.T().Logf("idx(%d), %+v", idx, record)
	}
}

func TestInitializeTables(t *testing.T) {
	suite.Run(t, &InitializeTablesTestSuite{})
}
