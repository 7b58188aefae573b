package matrix

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

// MockStore is an in-memory Store used by unit tests. Getters return copies
// so a mutation only lands once the matching Save is called, and Transaction
// restores a snapshot when the body fails, matching the database-backed
// store's rollback.
type MockStore struct {
	mu sync.Mutex

	nextUserID     int64
	nextPositionID int64
	nextRowID      int64

	users     map[int64]*model.User
	slots     map[int64]*model.Slot
	plan      *model.CommissionPlan
	positions map[int64]*model.Position
	accounts  map[int64]*model.UserSlotAccount

	Earnings      []*model.Earning
	PoolRecords   []*model.DividendPoolRecord
	ReentryEvents []*model.ReentryEvent
}

// NewMockStore returns an empty mock store with a seeded commission plan.
func NewMockStore() *MockStore {
	return &MockStore{
		users:     make(map[int64]*model.User),
		slots:     make(map[int64]*model.Slot),
		positions: make(map[int64]*model.Position),
		accounts:  make(map[int64]*model.UserSlotAccount),
		plan: &model.CommissionPlan{
			ID:           1,
			RateLevel1:   decimal.NewFromFloat(0.20),
			RateLevel2:   decimal.NewFromFloat(0.10),
			RateLevel3:   decimal.NewFromFloat(0.05),
			RateDividend: decimal.NewFromFloat(0.31),
			RateReserve:  decimal.NewFromFloat(0.34),
		},
	}
}

// AddSlot seeds one catalog entry.
func (m *MockStore) AddSlot(number int64, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[number] = &model.Slot{ID: number, Number: number, Price: price, Active: true}
}

// SetPlan replaces the seeded commission plan.
func (m *MockStore) SetPlan(plan *model.CommissionPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plan = plan
}

func (m *MockStore) snapshot() *MockStore {
	s := &MockStore{
		nextUserID:     m.nextUserID,
		nextPositionID: m.nextPositionID,
		nextRowID:      m.nextRowID,
		users:          make(map[int64]*model.User, len(m.users)),
		slots:          m.slots,
		plan:           m.plan,
		positions:      make(map[int64]*model.Position, len(m.positions)),
		accounts:       make(map[int64]*model.UserSlotAccount, len(m.accounts)),
		Earnings:       append([]*model.Earning(nil), m.Earnings...),
		PoolRecords:    append([]*model.DividendPoolRecord(nil), m.PoolRecords...),
		ReentryEvents:  append([]*model.ReentryEvent(nil), m.ReentryEvents...),
	}
	for id, u := range m.users {
		c := *u
		s.users[id] = &c
	}
	for id, p := range m.positions {
		c := *p
		s.positions[id] = &c
	}
	for id, a := range m.accounts {
		c := *a
		s.accounts[id] = &c
	}
	return s
}

func (m *MockStore) restore(s *MockStore) {
	m.nextUserID = s.nextUserID
	m.nextPositionID = s.nextPositionID
	m.nextRowID = s.nextRowID
	m.users = s.users
	m.positions = s.positions
	m.accounts = s.accounts
	m.Earnings = s.Earnings
	m.PoolRecords = s.PoolRecords
	m.ReentryEvents = s.ReentryEvents
}

// Transaction implements Store.
func (m *MockStore) Transaction(body func(Store) error) error {
	m.mu.Lock()
	snap := m.snapshot()
	m.mu.Unlock()
	if err := body(m); err != nil {
		m.mu.Lock()
		m.restore(snap)
		m.mu.Unlock()
		return err
	}
	return nil
}

// UserByID implements Store.
func (m *MockStore) UserByID(id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

// UserByWallet implements Store.
func (m *MockStore) UserByWallet(wallet string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Wallet == wallet {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// CreateUser implements Store.
func (m *MockStore) CreateUser(u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	u.ID = m.nextUserID
	c := *u
	m.users[u.ID] = &c
	return nil
}

// SaveUser implements Store.
func (m *MockStore) SaveUser(u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *u
	m.users[u.ID] = &c
	return nil
}

// DirectReferrals implements Store.
func (m *MockStore) DirectReferrals(sponsorID int64) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if u.SponsorID != nil && *u.SponsorID == sponsorID {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SlotByNumber implements Store.
func (m *MockStore) SlotByNumber(number int64) (*model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[number]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

// Slots implements Store.
func (m *MockStore) Slots() ([]*model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Slot, 0, len(m.slots))
	for _, s := range m.slots {
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// Plan implements Store.
func (m *MockStore) Plan() (*model.CommissionPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.plan == nil {
		return nil, nil
	}
	c := *m.plan
	return &c, nil
}

// PositionByID implements Store.
func (m *MockStore) PositionByID(id int64) (*model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// CreatePosition implements Store.
func (m *MockStore) CreatePosition(p *model.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPositionID++
	p.ID = m.nextPositionID
	c := *p
	m.positions[p.ID] = &c
	return nil
}

// SavePositions implements Store.
func (m *MockStore) SavePositions(ps []*model.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range ps {
		c := *p
		m.positions[p.ID] = &c
	}
	return nil
}

// ClaimChildSlot implements Store.
func (m *MockStore) ClaimChildSlot(parentID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[parentID]
	if !ok {
		return ErrPositionNotFound
	}
	if p.ChildCount >= types.MatrixWidth {
		return ErrConflict
	}
	p.ChildCount++
	return nil
}

// ChildrenOf implements Store.
func (m *MockStore) ChildrenOf(parentID int64) ([]*model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Position
	for _, p := range m.positions {
		if p.ParentID != nil && *p.ParentID == parentID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LatestPosition implements Store.
func (m *MockStore) LatestPosition(userID, slotNumber int64) (*model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Position
	for _, p := range m.positions {
		if p.UserID == userID && p.SlotNumber == slotNumber {
			if latest == nil || p.ID > latest.ID {
				latest = p
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	c := *latest
	return &c, nil
}

// PositionsOf implements Store.
func (m *MockStore) PositionsOf(userID, slotNumber int64) ([]*model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Position
	for _, p := range m.positions {
		if p.UserID == userID && p.SlotNumber == slotNumber {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cycle < out[j].Cycle })
	return out, nil
}

// OldestRoot implements Store.
func (m *MockStore) OldestRoot(slotNumber int64) (*model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *model.Position
	for _, p := range m.positions {
		if p.SlotNumber == slotNumber && p.ParentID == nil {
			if oldest == nil || p.ID < oldest.ID {
				oldest = p
			}
		}
	}
	if oldest == nil {
		return nil, nil
	}
	c := *oldest
	return &c, nil
}

// MaxCycle implements Store.
func (m *MockStore) MaxCycle(userID, slotNumber int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var max int64
	for _, p := range m.positions {
		if p.UserID == userID && p.SlotNumber == slotNumber && p.Cycle > max {
			max = p.Cycle
		}
	}
	return max, nil
}

// PositionCount implements Store.
func (m *MockStore) PositionCount(userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.positions {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

// AncestorChain implements Store.
func (m *MockStore) AncestorChain(positionID int64) ([]*model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var chain []*model.Position
	p, ok := m.positions[positionID]
	if !ok {
		// absence yields an empty chain, same as the recursive SQL query
		return nil, nil
	}
	for p.ParentID != nil {
		parent, ok := m.positions[*p.ParentID]
		if !ok {
			break
		}
		c := *parent
		chain = append(chain, &c)
		p = parent
	}
	return chain, nil
}

// Account implements Store.
func (m *MockStore) Account(userID, slotNumber int64) (*model.UserSlotAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.UserID == userID && a.SlotNumber == slotNumber {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

// SaveAccount implements Store.
func (m *MockStore) SaveAccount(a *model.UserSlotAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		m.nextRowID++
		a.ID = m.nextRowID
	}
	c := *a
	m.accounts[a.ID] = &c
	return nil
}

// AccountsOf implements Store.
func (m *MockStore) AccountsOf(userID int64) ([]*model.UserSlotAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.UserSlotAccount
	for _, a := range m.accounts {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotNumber < out[j].SlotNumber })
	return out, nil
}

// CreateEarning implements Store.
func (m *MockStore) CreateEarning(e *model.Earning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRowID++
	e.ID = m.nextRowID
	c := *e
	m.Earnings = append(m.Earnings, &c)
	return nil
}

// RecentEarnings implements Store.
func (m *MockStore) RecentEarnings(userID int64, limit int) ([]*model.Earning, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Earning
	for i := len(m.Earnings) - 1; i >= 0 && len(out) < limit; i-- {
		if m.Earnings[i].UserID == userID {
			c := *m.Earnings[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

// SumEarnings implements Store.
func (m *MockStore) SumEarnings(userID int64) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, e := range m.Earnings {
		if e.UserID == userID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// SumEarningsByType implements Store.
func (m *MockStore) SumEarningsByType(userID int64) (map[types.EarningType]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sums := make(map[types.EarningType]decimal.Decimal)
	for _, e := range m.Earnings {
		if e.UserID == userID {
			sums[e.Type] = sums[e.Type].Add(e.Amount)
		}
	}
	return sums, nil
}

// CreatePoolRecord implements Store.
func (m *MockStore) CreatePoolRecord(r *model.DividendPoolRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRowID++
	r.ID = m.nextRowID
	c := *r
	m.PoolRecords = append(m.PoolRecords, &c)
	return nil
}

// CreateReentryEvent implements Store.
func (m *MockStore) CreateReentryEvent(ev *model.ReentryEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRowID++
	ev.ID = m.nextRowID
	c := *ev
	m.ReentryEvents = append(m.ReentryEvents, &c)
	return nil
}
