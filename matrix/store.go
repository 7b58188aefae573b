package matrix

import (
	"github.com/shopspring/decimal"
	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

// Store is the persistence surface the engine runs on. Lookup methods return
// (nil, nil) when the record is absent; only real storage failures produce an
// error. Transaction runs body against a store bound to one transaction and
// rolls everything back if body fails, which keeps a whole
// place-propagate-reenter cascade atomic.
type Store interface {
	Transaction(body func(Store) error) error

	// User directory.
	UserByID(id int64) (*model.User, error)
	UserByWallet(wallet string) (*model.User, error)
	CreateUser(u *model.User) error
	SaveUser(u *model.User) error
	DirectReferrals(sponsorID int64) ([]*model.User, error)

	// Slot catalog.
	SlotByNumber(number int64) (*model.Slot, error)
	Slots() ([]*model.Slot, error)

	// Commission plan.
	Plan() (*model.CommissionPlan, error)

	// Matrix forest.
	PositionByID(id int64) (*model.Position, error)
	CreatePosition(p *model.Position) error
	SavePositions(ps []*model.Position) error
	// ClaimChildSlot increments the parent's child counter only while it is
	// below the matrix width. Returns ErrConflict when the slot was taken.
	ClaimChildSlot(parentID int64) error
	ChildrenOf(parentID int64) ([]*model.Position, error)
	LatestPosition(userID, slotNumber int64) (*model.Position, error)
	PositionsOf(userID, slotNumber int64) ([]*model.Position, error)
	OldestRoot(slotNumber int64) (*model.Position, error)
	MaxCycle(userID, slotNumber int64) (int64, error)
	PositionCount(userID int64) (int64, error)
	// AncestorChain returns the proper ancestors of a position, nearest
	// first, loaded in one pass.
	AncestorChain(positionID int64) ([]*model.Position, error)

	// Accounts.
	Account(userID, slotNumber int64) (*model.UserSlotAccount, error)
	SaveAccount(a *model.UserSlotAccount) error
	AccountsOf(userID int64) ([]*model.UserSlotAccount, error)

	// Ledgers. Append-only.
	CreateEarning(e *model.Earning) error
	RecentEarnings(userID int64, limit int) ([]*model.Earning, error)
	SumEarnings(userID int64) (decimal.Decimal, error)
	SumEarningsByType(userID int64) (map[types.EarningType]decimal.Decimal, error)
	CreatePoolRecord(r *model.DividendPoolRecord) error
	CreateReentryEvent(ev *model.ReentryEvent) error
}
