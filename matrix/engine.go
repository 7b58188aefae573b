package matrix

import (
	"fmt"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/trimatrixio/matrix-engine/common/config"
	"github.com/trimatrixio/matrix-engine/common/logging"
	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

// maxPlaceRetries bounds optimistic-claim retries before the conflict is
// surfaced as transient.
const maxPlaceRetries = 3

// recentEarningLimit caps the dashboard earning feed.
const recentEarningLimit = 10

// Engine drives the forced-matrix placement and compensation state machine.
// All mutating operations on one slot are serialized behind a per-slot lock
// and run inside a single storage transaction, so a cascade either commits
// whole or not at all.
type Engine struct {
	logger logging.Logger
	store  Store

	roiMultiplier decimal.Decimal

	slotMu    sync.Mutex
	slotLocks map[int64]*sync.Mutex
}

// NewEngine returns an engine bound to a store.
func NewEngine(logger logging.Logger, store Store) *Engine {
	return &Engine{
		logger:        logger,
		store:         store,
		roiMultiplier: config.GetDecimal("ROI_MULTIPLIER", decimal.NewFromInt(3)),
		slotLocks:     make(map[int64]*sync.Mutex),
	}
}

func (e *Engine) lockSlot(slotNumber int64) func() {
	e.slotMu.Lock()
	mu, ok := e.slotLocks[slotNumber]
	if !ok {
		mu = &sync.Mutex{}
		e.slotLocks[slotNumber] = mu
	}
	e.slotMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// RegisterUser registers a wallet and links it to a sponsor. Idempotent by
// wallet address: a second call returns the existing user unchanged.
func (e *Engine) RegisterUser(wallet string, sponsorID *int64) (*model.User, error) {
	if !ethcommon.IsHexAddress(wallet) {
		return nil, ErrInvalidWallet
	}
	// checksum form, so casing cannot register twice
	wallet = ethcommon.HexToAddress(wallet).Hex()

	var user *model.User
	err := e.store.Transaction(func(st Store) error {
		existing, err := st.UserByWallet(wallet)
		if err != nil {
			return err
		}
		if existing != nil {
			user = existing
			return nil
		}
		if sponsorID != nil {
			sponsor, err := st.UserByID(*sponsorID)
			if err != nil {
				return err
			}
			if sponsor == nil {
				return fmt.Errorf("sponsor %d: %w", *sponsorID, ErrUserNotFound)
			}
		}
		user = &model.User{
			Wallet:          wallet,
			SponsorID:       sponsorID,
			DividendBalance: decimal.Zero,
		}
		return st.CreateUser(user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ActivateSlot buys a slot for a user, places the resulting position and
// pays the uplines. Slots must be activated in ascending order.
func (e *Engine) ActivateSlot(userID, slotNumber int64) (*model.Position, error) {
	return e.activate(userID, slotNumber, false)
}

// ActivateSlotWithDividend funds the activation from the user's accumulated
// dividend balance. The pool contribution is skipped since the funding
// already came from the pool.
func (e *Engine) ActivateSlotWithDividend(userID, slotNumber int64) (*model.Position, error) {
	return e.activate(userID, slotNumber, true)
}

func (e *Engine) activate(userID, slotNumber int64, useDividend bool) (*model.Position, error) {
	unlock := e.lockSlot(slotNumber)
	defer unlock()

	var created *model.Position
	err := e.store.Transaction(func(st Store) error {
		user, err := st.UserByID(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
		}
		slot, err := st.SlotByNumber(slotNumber)
		if err != nil {
			return err
		}
		if slot == nil {
			return fmt.Errorf("slot %d: %w", slotNumber, ErrSlotNotFound)
		}
		if !slot.Active {
			return fmt.Errorf("slot %d: %w", slotNumber, ErrSlotInactive)
		}
		account, err := st.Account(userID, slotNumber)
		if err != nil {
			return err
		}
		// uplines earn into inactive accounts; only an owned activation blocks
		if account != nil && account.Active {
			return fmt.Errorf("user %d slot %d: %w", userID, slotNumber, ErrSlotAlreadyActive)
		}
		if slotNumber > 1 {
			prev, err := st.Account(userID, slotNumber-1)
			if err != nil {
				return err
			}
			if prev == nil || !prev.Active {
				return fmt.Errorf("slot %d requires slot %d: %w",
					slotNumber, slotNumber-1, ErrSlotOrder)
			}
		}
		if useDividend {
			if user.DividendBalance.LessThan(slot.Price) {
				return fmt.Errorf("balance %s < price %s: %w",
					user.DividendBalance, slot.Price, ErrInsufficientDividend)
			}
			user.DividendBalance = user.DividendBalance.Sub(slot.Price)
			if err := st.SaveUser(user); err != nil {
				return err
			}
		}
		if err := e.creditInvestment(st, user, slot); err != nil {
			return err
		}
		created, err = e.place(st, placeRequest{
			user:           user,
			slot:           slot,
			cycle:          1,
			dividendFunded: useDividend,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (e *Engine) creditInvestment(st Store, user *model.User, slot *model.Slot) error {
	account, err := st.Account(user.ID, slot.Number)
	if err != nil {
		return err
	}
	if account == nil {
		account = &model.UserSlotAccount{
			UserID:        user.ID,
			SlotNumber:    slot.Number,
			TotalInvested: decimal.Zero,
			TotalEarned:   decimal.Zero,
			ROICap:        decimal.Zero,
		}
	}
	account.TotalInvested = account.TotalInvested.Add(slot.Price)
	account.ROICap = account.TotalInvested.Mul(e.roiMultiplier)
	account.Active = true
	return st.SaveAccount(account)
}

// ClaimDividend deducts from the user's dividend balance. No earning record
// is written; the balance was credited from audited pool outflows already.
func (e *Engine) ClaimDividend(userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return e.store.Transaction(func(st Store) error {
		user, err := st.UserByID(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
		}
		if user.DividendBalance.LessThan(amount) {
			return fmt.Errorf("balance %s < claim %s: %w",
				user.DividendBalance, amount, ErrInsufficientDividend)
		}
		user.DividendBalance = user.DividendBalance.Sub(amount)
		return st.SaveUser(user)
	})
}

// CreditDividend distributes pool funds to a user: balance credit, pool OUT
// record carrying the distribution batch reference, and a DIVIDEND earning.
func (e *Engine) CreditDividend(userID int64, amount decimal.Decimal, batchRef string) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return e.store.Transaction(func(st Store) error {
		user, err := st.UserByID(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
		}
		user.DividendBalance = user.DividendBalance.Add(amount)
		if err := st.SaveUser(user); err != nil {
			return err
		}
		now := time.Now().Unix()
		if err := st.CreatePoolRecord(&model.DividendPoolRecord{
			Flow:      types.PoolFlowOut,
			Amount:    amount,
			UserID:    userID,
			BatchRef:  batchRef,
			Timestamp: now,
		}); err != nil {
			return err
		}
		return st.CreateEarning(&model.Earning{
			UserID:    userID,
			Amount:    amount,
			Type:      types.EarningDividend,
			Timestamp: now,
		})
	})
}

// AvailableCycles returns the sorted cycle indices the user holds positions
// in for a slot.
func (e *Engine) AvailableCycles(userID, slotNumber int64) ([]int64, error) {
	positions, err := e.store.PositionsOf(userID, slotNumber)
	if err != nil {
		return nil, err
	}
	cycles := make([]int64, len(positions))
	for i, p := range positions {
		cycles[i] = p.Cycle
	}
	return cycles, nil
}

// DashboardStats is the headline aggregation of one user.
type DashboardStats struct {
	TotalInvested   decimal.Decimal `json:"total_invested"`
	TotalEarned     decimal.Decimal `json:"total_earned"`
	DividendBalance decimal.Decimal `json:"dividend_balance"`
	PositionCount   int64           `json:"position_count"`
	DirectReferrals int64           `json:"direct_referrals"`
}

// Dashboard aggregates accounts, earnings and positions of one user.
type Dashboard struct {
	Stats          DashboardStats                        `json:"stats"`
	EarningsByType map[types.EarningType]decimal.Decimal `json:"earnings_by_type"`
	Slots          []*model.UserSlotAccount              `json:"slots"`
	RecentEarnings []*model.Earning                      `json:"recent_earnings"`
}

// GetDashboard builds the dashboard aggregation for a user.
func (e *Engine) GetDashboard(userID int64) (*Dashboard, error) {
	user, err := e.store.UserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	accounts, err := e.store.AccountsOf(userID)
	if err != nil {
		return nil, err
	}
	invested := decimal.Zero
	for _, a := range accounts {
		invested = invested.Add(a.TotalInvested)
	}
	earned, err := e.store.SumEarnings(userID)
	if err != nil {
		return nil, err
	}
	byType, err := e.store.SumEarningsByType(userID)
	if err != nil {
		return nil, err
	}
	positionCount, err := e.store.PositionCount(userID)
	if err != nil {
		return nil, err
	}
	referrals, err := e.store.DirectReferrals(userID)
	if err != nil {
		return nil, err
	}
	recent, err := e.store.RecentEarnings(userID, recentEarningLimit)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Stats: DashboardStats{
			TotalInvested:   invested,
			TotalEarned:     earned,
			DividendBalance: user.DividendBalance,
			PositionCount:   positionCount,
			DirectReferrals: int64(len(referrals)),
		},
		EarningsByType: byType,
		Slots:          accounts,
		RecentEarnings: recent,
	}, nil
}
