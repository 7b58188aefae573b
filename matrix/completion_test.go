package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

// A five-deep sponsor chain puts exactly one position at each depth, so the
// level counters of every ancestor can be checked against the distance.
func TestLevelCountersFollowDistance(t *testing.T) {
	engine, store := newTestEngine()

	users := make([]*model.User, 5)
	positions := make([]*model.Position, 5)
	for i := range users {
		var sponsorID *int64
		if i > 0 {
			sponsorID = &users[i-1].ID
		}
		users[i] = mustRegister(t, engine, i+1, sponsorID)
		positions[i] = mustActivate(t, engine, users[i].ID, 1)
		assert.Equal(t, int64(i), positions[i].Depth)
	}

	root, err := store.PositionByID(positions[0].ID)
	require.Nil(t, err)
	assert.Equal(t, int64(1), root.Level1)
	assert.Equal(t, int64(1), root.Level2)
	assert.Equal(t, int64(1), root.Level3)
	// total counts the whole subtree, not just the first three levels
	assert.Equal(t, int64(4), root.Total)
	assert.False(t, root.Completed)

	second, err := store.PositionByID(positions[1].ID)
	require.Nil(t, err)
	assert.Equal(t, int64(1), second.Level1)
	assert.Equal(t, int64(1), second.Level2)
	assert.Equal(t, int64(1), second.Level3)
	assert.Equal(t, int64(3), second.Total)
}

// Filling the first three levels of the root (3+9+27 positions) completes it
// and re-enters the owner in a fresh cycle.
func TestCompletionTriggersReentry(t *testing.T) {
	engine, store := newTestEngine()
	owner := mustRegister(t, engine, 1, nil)
	rootPos := mustActivate(t, engine, owner.ID, 1)

	for i := 2; i <= 39; i++ {
		user := mustRegister(t, engine, i, &owner.ID)
		mustActivate(t, engine, user.ID, 1)

		fresh, err := store.PositionByID(rootPos.ID)
		require.Nil(t, err)
		assert.False(t, fresh.Completed, "must not complete at %d descendants", i-1)
	}

	last := mustRegister(t, engine, 40, &owner.ID)
	trigger := mustActivate(t, engine, last.ID, 1)

	fresh, err := store.PositionByID(rootPos.ID)
	require.Nil(t, err)
	assert.True(t, fresh.Completed)
	assert.Equal(t, types.PositionCompleted, fresh.Status)
	assert.Equal(t, int64(3), fresh.Level1)
	assert.Equal(t, int64(9), fresh.Level2)
	assert.Equal(t, int64(27), fresh.Level3)

	require.Len(t, store.ReentryEvents, 1)
	event := store.ReentryEvents[0]
	assert.Equal(t, rootPos.ID, event.CompletedPositionID)
	assert.Equal(t, trigger.ID, event.TriggerPositionID)
	assert.Equal(t, int64(1), event.CycleBefore)
	assert.Equal(t, int64(2), event.CycleAfter)

	reentered, err := store.PositionByID(event.NewPositionID)
	require.Nil(t, err)
	assert.Equal(t, owner.ID, reentered.UserID)
	assert.Equal(t, int64(2), reentered.Cycle)
	assert.True(t, reentered.IsReentry)
	// the new position joins the existing tree below the filled levels
	assert.Equal(t, int64(4), reentered.Depth)

	cycles, err := engine.AvailableCycles(owner.ID, 1)
	require.Nil(t, err)
	assert.Equal(t, []int64{1, 2}, cycles)

	// 40 paid activations contribute to the pool, the re-entry does not
	inflows := 0
	for _, r := range store.PoolRecords {
		if r.Flow == types.PoolFlowIn {
			inflows++
		}
	}
	assert.Equal(t, 40, inflows)
}

// One insertion can push two stacked ancestors over the threshold at once:
// the child at distance 1 and its parent at distance 2. Both re-enter in the
// same cascade, nearest ancestor first, each in its own fresh cycle.
func TestOneInsertionCompletesStackedAncestors(t *testing.T) {
	engine, store := newTestEngine()

	parentOwner := &model.User{Wallet: testWallet(1)}
	require.Nil(t, store.CreateUser(parentOwner))
	childOwner := &model.User{Wallet: testWallet(2)}
	require.Nil(t, store.CreateUser(childOwner))
	newcomer := &model.User{Wallet: testWallet(3), SponsorID: &childOwner.ID}
	require.Nil(t, store.CreateUser(newcomer))

	// both positions sit one short of completion
	parent := &model.Position{UserID: parentOwner.ID, SlotNumber: 1, Cycle: 1,
		ChildCount: 3, Level1: 3, Level2: 8, Level3: 27,
		Status: types.PositionActive}
	require.Nil(t, store.CreatePosition(parent))
	child := &model.Position{UserID: childOwner.ID, SlotNumber: 1, Cycle: 1,
		ParentID: &parent.ID, Depth: 1, ChildCount: 2, Level1: 2, Level2: 9, Level3: 27,
		Status: types.PositionActive}
	require.Nil(t, store.CreatePosition(child))

	slot, err := store.SlotByNumber(1)
	require.Nil(t, err)
	created, err := engine.place(store, placeRequest{user: newcomer, slot: slot, cycle: 1})
	require.Nil(t, err)
	require.NotNil(t, created.ParentID)
	require.Equal(t, child.ID, *created.ParentID)

	for _, id := range []int64{child.ID, parent.ID} {
		fresh, err := store.PositionByID(id)
		require.Nil(t, err)
		assert.True(t, fresh.Completed, "position %d must complete", id)
	}

	require.Len(t, store.ReentryEvents, 2)
	assert.Equal(t, childOwner.ID, store.ReentryEvents[0].UserID)
	assert.Equal(t, parentOwner.ID, store.ReentryEvents[1].UserID)
	for _, event := range store.ReentryEvents {
		assert.Equal(t, created.ID, event.TriggerPositionID)
		assert.Equal(t, int64(1), event.CycleBefore)
		assert.Equal(t, int64(2), event.CycleAfter)

		reentered, err := store.PositionByID(event.NewPositionID)
		require.Nil(t, err)
		assert.True(t, reentered.IsReentry)
		assert.Equal(t, int64(2), reentered.Cycle)
		// levels 1-3 below the old root are full, so both re-entries land
		// under the triggering position
		require.NotNil(t, reentered.ParentID)
		assert.Equal(t, created.ID, *reentered.ParentID)
	}
}

// The re-entry cycle is one above the user's highest existing cycle in the
// slot, not one above the completed position's cycle.
func TestReentryCycleIsMonotonic(t *testing.T) {
	engine, store := newTestEngine()

	rootOwner := &model.User{Wallet: testWallet(1)}
	require.Nil(t, store.CreateUser(rootOwner))
	user := &model.User{Wallet: testWallet(2)}
	require.Nil(t, store.CreateUser(user))

	root := &model.Position{UserID: rootOwner.ID, SlotNumber: 1, Cycle: 1,
		Status: types.PositionActive}
	require.Nil(t, store.CreatePosition(root))
	completed := &model.Position{UserID: user.ID, SlotNumber: 1, Cycle: 1,
		Status: types.PositionCompleted, Completed: true}
	require.Nil(t, store.CreatePosition(completed))
	later := &model.Position{UserID: user.ID, SlotNumber: 1, Cycle: 3,
		Status: types.PositionActive}
	require.Nil(t, store.CreatePosition(later))

	jobs, err := engine.reenter(store, reentryJob{completed: completed, trigger: completed})
	require.Nil(t, err)
	assert.Empty(t, jobs)

	require.Len(t, store.ReentryEvents, 1)
	assert.Equal(t, int64(1), store.ReentryEvents[0].CycleBefore)
	assert.Equal(t, int64(4), store.ReentryEvents[0].CycleAfter)
}

// A dangling user or slot reference aborts only that re-entry, never the
// whole cascade.
func TestReentrySkipsBrokenReferences(t *testing.T) {
	engine, store := newTestEngine()

	completed := &model.Position{UserID: 404, SlotNumber: 1, Cycle: 1,
		Status: types.PositionCompleted, Completed: true}
	require.Nil(t, store.CreatePosition(completed))

	jobs, err := engine.reenter(store, reentryJob{completed: completed, trigger: completed})
	require.Nil(t, err)
	assert.Empty(t, jobs)
	assert.Empty(t, store.ReentryEvents)
}
