package matrix

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/trimatrixio/matrix-engine/common/logging"
	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

func newTestEngine() (*Engine, *MockStore) {
	store := NewMockStore()
	store.AddSlot(1, decimal.NewFromInt(8))
	store.AddSlot(2, decimal.NewFromInt(16))
	return NewEngine(logging.NewLoggerTag("test"), store), store
}

func testWallet(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

func mustRegister(t *testing.T, e *Engine, n int, sponsorID *int64) *model.User {
	user, err := e.RegisterUser(testWallet(n), sponsorID)
	require.Nil(t, err)
	require.NotNil(t, user)
	return user
}

func mustActivate(t *testing.T, e *Engine, userID, slotNumber int64) *model.Position {
	position, err := e.ActivateSlot(userID, slotNumber)
	require.Nil(t, err)
	require.NotNil(t, position)
	return position
}

type EngineTestSuite struct {
	suite.Suite

	engine *Engine
	store  *MockStore
}

func (s *EngineTestSuite) SetupTest() {
	s.engine, s.store = newTestEngine()
}

func (s *EngineTestSuite) TestRegisterIsIdempotentByWallet() {
	first, err := s.engine.RegisterUser(testWallet(1), nil)
	require.Nil(s.T(), err)
	second, err := s.engine.RegisterUser(testWallet(1), nil)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), first.ID, second.ID)

	// different casing of the same address must not register twice
	third, err := s.engine.RegisterUser("0X"+testWallet(1)[2:], nil)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), first.ID, third.ID)
}

func (s *EngineTestSuite) TestRegisterRejectsBadWallet() {
	_, err := s.engine.RegisterUser("not-a-wallet", nil)
	assert.ErrorIs(s.T(), err, ErrInvalidWallet)
}

func (s *EngineTestSuite) TestRegisterRejectsUnknownSponsor() {
	missing := int64(404)
	_, err := s.engine.RegisterUser(testWallet(2), &missing)
	assert.ErrorIs(s.T(), err, ErrUserNotFound)
}

func (s *EngineTestSuite) TestSlotsActivateInAscendingOrder() {
	user := mustRegister(s.T(), s.engine, 1, nil)

	_, err := s.engine.ActivateSlot(user.ID, 2)
	assert.ErrorIs(s.T(), err, ErrSlotOrder)

	mustActivate(s.T(), s.engine, user.ID, 1)
	mustActivate(s.T(), s.engine, user.ID, 2)
}

func (s *EngineTestSuite) TestActivateTwiceRejected() {
	user := mustRegister(s.T(), s.engine, 1, nil)
	mustActivate(s.T(), s.engine, user.ID, 1)

	_, err := s.engine.ActivateSlot(user.ID, 1)
	assert.ErrorIs(s.T(), err, ErrSlotAlreadyActive)
}

func (s *EngineTestSuite) TestActivateUnknownUserOrSlot() {
	_, err := s.engine.ActivateSlot(404, 1)
	assert.ErrorIs(s.T(), err, ErrUserNotFound)

	user := mustRegister(s.T(), s.engine, 1, nil)
	_, err = s.engine.ActivateSlot(user.ID, 99)
	assert.ErrorIs(s.T(), err, ErrSlotNotFound)
}

func (s *EngineTestSuite) TestDividendClaim() {
	user := mustRegister(s.T(), s.engine, 1, nil)

	err := s.engine.ClaimDividend(user.ID, decimal.NewFromInt(1))
	assert.ErrorIs(s.T(), err, ErrInsufficientDividend)

	require.Nil(s.T(), s.engine.CreditDividend(user.ID, decimal.NewFromInt(10), "batch-1"))
	require.Nil(s.T(), s.engine.ClaimDividend(user.ID, decimal.NewFromInt(4)))

	fresh, err := s.store.UserByID(user.ID)
	require.Nil(s.T(), err)
	assert.True(s.T(), fresh.DividendBalance.Equal(decimal.NewFromInt(6)))

	// credit leaves an audited pool outflow and a dividend earning
	require.Len(s.T(), s.store.PoolRecords, 1)
	assert.Equal(s.T(), types.PoolFlowOut, s.store.PoolRecords[0].Flow)
	assert.Equal(s.T(), "batch-1", s.store.PoolRecords[0].BatchRef)
	require.Len(s.T(), s.store.Earnings, 1)
	assert.Equal(s.T(), types.EarningDividend, s.store.Earnings[0].Type)
}

func (s *EngineTestSuite) TestDividendFundedActivationSkipsPoolContribution() {
	user := mustRegister(s.T(), s.engine, 1, nil)
	require.Nil(s.T(), s.engine.CreditDividend(user.ID, decimal.NewFromInt(8), "batch-1"))

	position, err := s.engine.ActivateSlotWithDividend(user.ID, 1)
	require.Nil(s.T(), err)
	assert.False(s.T(), position.IsReentry)

	fresh, err := s.store.UserByID(user.ID)
	require.Nil(s.T(), err)
	assert.True(s.T(), fresh.DividendBalance.IsZero())

	// only the distribution outflow exists, no IN contribution
	require.Len(s.T(), s.store.PoolRecords, 1)
	assert.Equal(s.T(), types.PoolFlowOut, s.store.PoolRecords[0].Flow)
}

func (s *EngineTestSuite) TestDividendFundedActivationRequiresBalance() {
	user := mustRegister(s.T(), s.engine, 1, nil)
	_, err := s.engine.ActivateSlotWithDividend(user.ID, 1)
	assert.ErrorIs(s.T(), err, ErrInsufficientDividend)

	// the failed activation must leave nothing behind
	n, err := s.store.PositionCount(user.ID)
	require.Nil(s.T(), err)
	assert.Zero(s.T(), n)
}

func (s *EngineTestSuite) TestAvailableCycles() {
	user := mustRegister(s.T(), s.engine, 1, nil)
	mustActivate(s.T(), s.engine, user.ID, 1)

	cycles, err := s.engine.AvailableCycles(user.ID, 1)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), []int64{1}, cycles)
}

func (s *EngineTestSuite) TestDashboardAggregation() {
	sponsor := mustRegister(s.T(), s.engine, 1, nil)
	mustActivate(s.T(), s.engine, sponsor.ID, 1)

	referral := mustRegister(s.T(), s.engine, 2, &sponsor.ID)
	mustActivate(s.T(), s.engine, referral.ID, 1)

	dashboard, err := s.engine.GetDashboard(sponsor.ID)
	require.Nil(s.T(), err)
	assert.True(s.T(), dashboard.Stats.TotalInvested.Equal(decimal.NewFromInt(8)))
	assert.True(s.T(), dashboard.Stats.TotalEarned.Equal(decimal.NewFromFloat(1.6)))
	assert.Equal(s.T(), int64(1), dashboard.Stats.PositionCount)
	assert.Equal(s.T(), int64(1), dashboard.Stats.DirectReferrals)
	require.Len(s.T(), dashboard.Slots, 1)
	assert.True(s.T(), dashboard.Slots[0].ROICap.Equal(decimal.NewFromInt(24)))
	require.Len(s.T(), dashboard.RecentEarnings, 1)
	require.Contains(s.T(), dashboard.EarningsByType, types.EarningLevel1)
	assert.True(s.T(), dashboard.EarningsByType[types.EarningLevel1].Equal(decimal.NewFromFloat(1.6)))
}

func TestEngine(t *testing.T) {
	suite.Run(t, &EngineTestSuite{})
}
