package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

func TestFirstActivationBecomesRoot(t *testing.T) {
	engine, store := newTestEngine()
	user := mustRegister(t, engine, 1, nil)

	position := mustActivate(t, engine, user.ID, 1)
	assert.Nil(t, position.ParentID)
	assert.Equal(t, int64(0), position.Depth)
	assert.Equal(t, int64(1), position.Cycle)
	assert.Equal(t, types.PositionActive, position.Status)

	root, err := store.OldestRoot(1)
	require.Nil(t, err)
	require.NotNil(t, root)
	assert.Equal(t, position.ID, root.ID)
}

// Spillover fills the tree breadth-first: the first three referrals land
// directly under the sponsor, the next nine one level below, left to right.
func TestBreadthFirstSpillover(t *testing.T) {
	engine, store := newTestEngine()
	sponsor := mustRegister(t, engine, 1, nil)
	rootPos := mustActivate(t, engine, sponsor.ID, 1)

	var placed []*model.Position
	for i := 2; i <= 13; i++ {
		user := mustRegister(t, engine, i, &sponsor.ID)
		placed = append(placed, mustActivate(t, engine, user.ID, 1))
	}

	depths := map[int64]int{}
	for _, p := range placed {
		depths[p.Depth]++
	}
	assert.Equal(t, map[int64]int{1: 3, 2: 9}, depths)

	// the three level-1 positions each hold exactly three children
	for _, p := range placed[:3] {
		require.NotNil(t, p.ParentID)
		assert.Equal(t, rootPos.ID, *p.ParentID)
		children, err := store.ChildrenOf(p.ID)
		require.Nil(t, err)
		assert.Len(t, children, 3)
	}

	// spillover is left to right: the fourth joiner sits under the first
	require.NotNil(t, placed[3].ParentID)
	assert.Equal(t, placed[0].ID, *placed[3].ParentID)
	require.NotNil(t, placed[6].ParentID)
	assert.Equal(t, placed[1].ID, *placed[6].ParentID)
	require.NotNil(t, placed[11].ParentID)
	assert.Equal(t, placed[2].ID, *placed[11].ParentID)

	fresh, err := store.PositionByID(rootPos.ID)
	require.Nil(t, err)
	assert.Equal(t, int64(3), fresh.Level1)
	assert.Equal(t, int64(9), fresh.Level2)
	assert.Equal(t, int64(12), fresh.Total)
}

func TestEntryRootWalksSponsorChain(t *testing.T) {
	engine, _ := newTestEngine()
	a := mustRegister(t, engine, 1, nil)
	posA := mustActivate(t, engine, a.ID, 1)

	// b's sponsor holds no position in the slot, so entry climbs to a
	b := mustRegister(t, engine, 2, &a.ID)
	c := mustRegister(t, engine, 3, &b.ID)
	posC := mustActivate(t, engine, c.ID, 1)
	require.NotNil(t, posC.ParentID)
	assert.Equal(t, posA.ID, *posC.ParentID)

	// once b activates, b's referrals enter at b's position
	posB := mustActivate(t, engine, b.ID, 1)
	d := mustRegister(t, engine, 4, &b.ID)
	posD := mustActivate(t, engine, d.ID, 1)
	require.NotNil(t, posD.ParentID)
	assert.Equal(t, posB.ID, *posD.ParentID)
}

func TestSponsorlessUserFallsBackToOldestRoot(t *testing.T) {
	engine, _ := newTestEngine()
	a := mustRegister(t, engine, 1, nil)
	posA := mustActivate(t, engine, a.ID, 1)

	orphan := mustRegister(t, engine, 2, nil)
	posO := mustActivate(t, engine, orphan.ID, 1)
	require.NotNil(t, posO.ParentID)
	assert.Equal(t, posA.ID, *posO.ParentID)
}

func TestAncestorChainOfUnknownPositionIsEmpty(t *testing.T) {
	_, store := newTestEngine()
	chain, err := store.AncestorChain(404)
	require.Nil(t, err)
	assert.Empty(t, chain)
}

func TestSlotsHoldIndependentTrees(t *testing.T) {
	engine, _ := newTestEngine()
	a := mustRegister(t, engine, 1, nil)
	mustActivate(t, engine, a.ID, 1)
	posA2 := mustActivate(t, engine, a.ID, 2)

	// a is root of slot 2 even though slot 1 already has positions
	assert.Nil(t, posA2.ParentID)
	assert.Equal(t, int64(2), posA2.SlotNumber)
}
