package matrix

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

// moneyScale is the decimal precision every ledger amount is rounded to, so
// repeated fractional splits sum exactly across cycles.
const moneyScale = 8

var levelEarningTypes = [types.CompletionDepth]types.EarningType{
	types.EarningLevel1,
	types.EarningLevel2,
	types.EarningLevel3,
}

// compensate pays the three nearest uplines of a freshly created position
// and contributes the dividend fraction to the shared pool. Re-entries and
// dividend-funded activations skip the pool contribution. The reserve
// fraction is computed for the external settlement path but never persisted
// here.
func (e *Engine) compensate(st Store, position *model.Position, slot *model.Slot,
	chain []*model.Position, dividendFunded bool) error {
	plan, err := st.Plan()
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("commission plan not seeded")
	}
	rates := [types.CompletionDepth]decimal.Decimal{
		plan.RateLevel1, plan.RateLevel2, plan.RateLevel3,
	}
	for i := 0; i < types.CompletionDepth && i < len(chain); i++ {
		amount := slot.Price.Mul(rates[i]).Round(moneyScale)
		if err := e.creditLevelIncome(st, chain[i], amount, position, levelEarningTypes[i]); err != nil {
			return err
		}
	}

	if !position.IsReentry && !dividendFunded {
		contribution := slot.Price.Mul(plan.RateDividend).Round(moneyScale)
		if err := st.CreatePoolRecord(&model.DividendPoolRecord{
			Flow:       types.PoolFlowIn,
			Amount:     contribution,
			UserID:     position.UserID,
			SlotNumber: slot.Number,
			Timestamp:  time.Now().Unix(),
		}); err != nil {
			return err
		}
	}

	reserve := slot.Price.Mul(plan.RateReserve).Round(moneyScale)
	e.logger.Debug("reserved %s of position %d for settlement", reserve, position.ID)
	return nil
}

// creditLevelIncome credits a level commission to the owner of an upline
// position: account rollup plus an immutable earning referencing both the
// source and the receiving position.
func (e *Engine) creditLevelIncome(st Store, upline *model.Position, amount decimal.Decimal,
	source *model.Position, earningType types.EarningType) error {
	account, err := st.Account(upline.UserID, upline.SlotNumber)
	if err != nil {
		return err
	}
	if account == nil {
		account = &model.UserSlotAccount{
			UserID:        upline.UserID,
			SlotNumber:    upline.SlotNumber,
			TotalInvested: decimal.Zero,
			TotalEarned:   decimal.Zero,
			ROICap:        decimal.Zero,
		}
	}
	account.TotalEarned = account.TotalEarned.Add(amount)
	if err := st.SaveAccount(account); err != nil {
		return err
	}
	return st.CreateEarning(&model.Earning{
		UserID:           upline.UserID,
		SourcePositionID: &source.ID,
		UplinePositionID: &upline.ID,
		SlotNumber:       upline.SlotNumber,
		Amount:           amount,
		Type:             earningType,
		Timestamp:        time.Now().Unix(),
	})
}
