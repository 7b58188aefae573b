package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

// DAO is the gorm-backed matrix.Store. Lookups translate
// gorm.ErrRecordNotFound into (nil, nil); the engine decides what absence
// means.
type DAO struct {
	db *gorm.DB
}

var _ matrix.Store = (*DAO)(nil)

// NewDAO returns a DAO bound to a database handle.
func NewDAO(db *gorm.DB) *DAO {
	return &DAO{db: db}
}

// Transaction implements matrix.Store. The repeatable-read isolation keeps a
// whole placement cascade on one data snapshot.
func (d *DAO) Transaction(body func(matrix.Store) error) error {
	return WithTransaction(d.db, func(tx *gorm.DB) error {
		return body(&DAO{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// UserByID implements matrix.Store.
func (d *DAO) UserByID(id int64) (*model.User, error) {
	var u model.User
	if err := d.db.Where("id=?", id).First(&u).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fail to get user: id=%v %w", id, err)
	}
	return &u, nil
}

// UserByWallet implements matrix.Store.
func (d *DAO) UserByWallet(wallet string) (*model.User, error) {
	var u model.User
	if err := d.db.Where("wallet=?", wallet).First(&u).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fail to get user: wallet=%v %w", wallet, err)
	}
	return &u, nil
}

// CreateUser implements matrix.Store.
func (d *DAO) CreateUser(u *model.User) error {
	if err := d.db.Create(u).Error; err != nil {
		return fmt.Errorf("fail to create user: wallet=%v %w", u.Wallet, err)
	}
	return nil
}

// SaveUser implements matrix.Store.
func (d *DAO) SaveUser(u *model.User) error {
	if err := d.db.Save(u).Error; err != nil {
		return fmt.Errorf("fail to save user: id=%v %w", u.ID, err)
	}
	return nil
}

// DirectReferrals implements matrix.Store.
func (d *DAO) DirectReferrals(sponsorID int64) ([]*model.User, error) {
	var us []*model.User
	if err := d.db.Where("sponsor_id=?", sponsorID).Order("id asc").Find(&us).Error; err != nil {
		return nil, fmt.Errorf("fail to list referrals: sponsor=%v %w", sponsorID, err)
	}
	return us, nil
}

// SlotByNumber implements matrix.Store.
func (d *DAO) SlotByNumber(number int64) (*model.Slot, error) {
	var s model.Slot
	if err := d.db.Where("number=?", number).First(&s).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fail to get slot: number=%v %w", number, err)
	}
	return &s, nil
}

// Slots implements matrix.Store.
func (d *DAO) Slots() ([]*model.Slot, error) {
	var ss []*model.Slot
	if err := d.db.Order("number asc").Find(&ss).Error; err != nil {
		return nil, fmt.Errorf("fail to list slots %w", err)
	}
	return ss, nil
}

// Plan implements matrix.Store.
func (d *DAO) Plan() (*model.CommissionPlan, error) {
	var p model.CommissionPlan
	if err := d.db.Order("id desc").First(&p).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fail to get commission plan %w", err)
	}
	return &p, nil
}

// PositionByID implements matrix.Store.
func (d *DAO) PositionByID(id int64) (*model.Position, error) {
	var p model.Position
	if err := d.db.Where("id=?", id).First(&p).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fail to get position: id=%v %w", id, err)
	}
	return &p, nil
}

// CreatePosition implements matrix.Store.
func (d *DAO) CreatePosition(p *model.Position) error {
	if err := d.db.Create(p).Error; err != nil {
		return fmt.Errorf("fail to create position: user=%v slot=%v cycle=%v %w",
			p.UserID, p.SlotNumber, p.Cycle, err)
	}
	return nil
}

// SavePositions implements matrix.Store.
func (d *DAO) SavePositions(ps []*model.Position) error {
	if len(ps) == 0 {
		return nil
	}
	if err := d.db.Save(&ps).Error; err != nil {
		return fmt.Errorf("fail to save positions: size=%v %w", len(ps), err)
	}
	return nil
}

// ClaimChildSlot implements matrix.Store. The conditional update is the
// serialization point: only one writer can take the last open child.
func (d *DAO) ClaimChildSlot(parentID int64) error {
	res := d.db.Model(&model.Position{}).
		Where("id=? and child_count < ?", parentID, types.MatrixWidth).
		UpdateColumn("child_count", gorm.Expr("child_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("fail to claim child slot: parent=%v %w", parentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return matrix.ErrConflict
	}
	return nil
}

// ChildrenOf implements matrix.Store. Creation order is id order.
func (d *DAO) ChildrenOf(parentID int64) ([]*model.Position, error) {
	var ps []*model.Position
	if err := d.db.Where("parent_id=?", parentID).Order("id asc").Find(&ps).Error; err != nil {
		return nil, fmt.Errorf("fail to list children: parent=%v %w", parentID, err)
	}
	return ps, nil
}

// LatestPosition implements matrix.Store.
func (d *DAO) LatestPosition(userID, slotNumber int64) (*model.Position, error) {
	var p model.Position
	err := d.db.Where("user_id=? and slot_number=?", userID, slotNumber).
		Order("id desc").First(&p).Error
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fail to get latest position: user=%v slot=%v %w",
			userID, slotNumber, err)
	}
	return &p, nil
}

// PositionsOf implements matrix.Store.
func (d *DAO) PositionsOf(userID, slotNumber int64) ([]*model.Position, error) {
	var ps []*model.Position
	err := d.db.Where("user_id=? and slot_number=?", userID, slotNumber).
		Order("cycle asc").Find(&ps).Error
	if err != nil {
		return nil, fmt.Errorf("fail to list positions: user=%v slot=%v %w",
			userID, slotNumber, err)
	}
	return ps, nil
}

// OldestRoot implements matrix.Store.
func (d *DAO) OldestRoot(slotNumber int64) (*model.Position, error) {
	var p model.Position
	err := d.db.Where("slot_number=? and parent_id is null", slotNumber).
		Order("id asc").First(&p).Error
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fail to get root position: slot=%v %w", slotNumber, err)
	}
	return &p, nil
}

// MaxCycle implements matrix.Store.
func (d *DAO) MaxCycle(userID, slotNumber int64) (int64, error) {
	var result struct {
		Max int64
	}
	err := d.db.Model(&model.Position{}).
		Select("coalesce(max(cycle), 0) as max").
		Where("user_id=? and slot_number=?", userID, slotNumber).
		Scan(&result).Error
	if err != nil {
		return 0, fmt.Errorf("fail to get max cycle: user=%v slot=%v %w",
			userID, slotNumber, err)
	}
	return result.Max, nil
}

// PositionCount implements matrix.Store.
func (d *DAO) PositionCount(userID int64) (int64, error) {
	var n int64
	if err := d.db.Model(&model.Position{}).Where("user_id=?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("fail to count positions: user=%v %w", userID, err)
	}
	return n, nil
}

// AncestorChain implements matrix.Store. One recursive query loads the whole
// chain; depth descends toward the root so ordering by it yields nearest
// first.
func (d *DAO) AncestorChain(positionID int64) ([]*model.Position, error) {
	var ps []*model.Position
	err := d.db.Raw(`
		WITH RECURSIVE chain AS (
			SELECT p.* FROM "position" p
			WHERE p.id = (SELECT parent_id FROM "position" WHERE id = ?)
			UNION ALL
			SELECT p.* FROM "position" p JOIN chain c ON p.id = c.parent_id
		)
		SELECT * FROM chain ORDER BY depth DESC`, positionID).
		Scan(&ps).Error
	if err != nil {
		return nil, fmt.Errorf("fail to load ancestor chain: position=%v %w", positionID, err)
	}
	return ps, nil
}

// Account implements matrix.Store.
func (d *DAO) Account(userID, slotNumber int64) (*model.UserSlotAccount, error) {
	var a model.UserSlotAccount
	err := d.db.Where("user_id=? and slot_number=?", userID, slotNumber).First(&a).Error
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fail to get account: user=%v slot=%v %w",
			userID, slotNumber, err)
	}
	return &a, nil
}

// SaveAccount implements matrix.Store.
func (d *DAO) SaveAccount(a *model.UserSlotAccount) error {
	if err := d.db.Save(a).Error; err != nil {
		return fmt.Errorf("fail to save account: user=%v slot=%v %w",
			a.UserID, a.SlotNumber, err)
	}
	return nil
}

// AccountsOf implements matrix.Store.
func (d *DAO) AccountsOf(userID int64) ([]*model.UserSlotAccount, error) {
	var as []*model.UserSlotAccount
	if err := d.db.Where("user_id=?", userID).Order("slot_number asc").Find(&as).Error; err != nil {
		return nil, fmt.Errorf("fail to list accounts: user=%v %w", userID, err)
	}
	return as, nil
}

// CreateEarning implements matrix.Store.
func (d *DAO) CreateEarning(e *model.Earning) error {
	if err := d.db.Create(e).Error; err != nil {
		return fmt.Errorf("fail to create earning: user=%v type=%v %w", e.UserID, e.Type, err)
	}
	return nil
}

// RecentEarnings implements matrix.Store.
func (d *DAO) RecentEarnings(userID int64, limit int) ([]*model.Earning, error) {
	var es []*model.Earning
	err := d.db.Where("user_id=?", userID).Order("id desc").Limit(limit).Find(&es).Error
	if err != nil {
		return nil, fmt.Errorf("fail to list earnings: user=%v %w", userID, err)
	}
	return es, nil
}

// SumEarnings implements matrix.Store.
func (d *DAO) SumEarnings(userID int64) (decimal.Decimal, error) {
	var result struct {
		Sum decimal.Decimal
	}
	err := d.db.Model(&model.Earning{}).
		Select("coalesce(sum(amount), 0) as sum").
		Where("user_id=?", userID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("fail to sum earnings: user=%v %w", userID, err)
	}
	return result.Sum, nil
}

// SumEarningsByType implements matrix.Store.
func (d *DAO) SumEarningsByType(userID int64) (map[types.EarningType]decimal.Decimal, error) {
	var rows []struct {
		Type types.EarningType
		Sum  decimal.Decimal
	}
	err := d.db.Model(&model.Earning{}).
		Select("type, coalesce(sum(amount), 0) as sum").
		Where("user_id=?", userID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fail to sum earnings by type: user=%v %w", userID, err)
	}
	sums := make(map[types.EarningType]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.Type] = row.Sum
	}
	return sums, nil
}

// CreatePoolRecord implements matrix.Store.
func (d *DAO) CreatePoolRecord(r *model.DividendPoolRecord) error {
	if err := d.db.Create(r).Error; err != nil {
		return fmt.Errorf("fail to create pool record: flow=%v user=%v %w", r.Flow, r.UserID, err)
	}
	return nil
}

// CreateReentryEvent implements matrix.Store.
func (d *DAO) CreateReentryEvent(ev *model.ReentryEvent) error {
	if err := d.db.Create(ev).Error; err != nil {
		return fmt.Errorf("fail to create reentry event: user=%v slot=%v %w",
			ev.UserID, ev.SlotNumber, err)
	}
	return nil
}
