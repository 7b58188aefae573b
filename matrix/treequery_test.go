package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

// The fixture packs every relation into one small tree:
//
//	a ── root
//	├── b    sponsored by a
//	│   ├── d    sponsored by a, overflowed below b
//	│   ├── e    sponsored by b
//	│   └── f    sponsored by an outsider who holds no position
//	├── c2   sponsored by a
//	└── c3   sponsored by a
type TreeQueryTestSuite struct {
	suite.Suite

	engine *Engine
	store  *MockStore

	a, b, outsider *model.User
	posA           *model.Position
	posB           *model.Position
}

func (s *TreeQueryTestSuite) SetupTest() {
	s.engine, s.store = newTestEngine()
	t := s.T()

	s.a = mustRegister(t, s.engine, 1, nil)
	s.posA = mustActivate(t, s.engine, s.a.ID, 1)

	s.b = mustRegister(t, s.engine, 2, &s.a.ID)
	s.posB = mustActivate(t, s.engine, s.b.ID, 1)
	for i := 3; i <= 4; i++ {
		u := mustRegister(t, s.engine, i, &s.a.ID)
		mustActivate(t, s.engine, u.ID, 1)
	}

	d := mustRegister(t, s.engine, 5, &s.a.ID)
	posD := mustActivate(t, s.engine, d.ID, 1)
	require.Equal(t, s.posB.ID, *posD.ParentID)

	e := mustRegister(t, s.engine, 6, &s.b.ID)
	mustActivate(t, s.engine, e.ID, 1)

	s.outsider = mustRegister(t, s.engine, 7, nil)
	f := mustRegister(t, s.engine, 8, &s.outsider.ID)
	posF := mustActivate(t, s.engine, f.ID, 1)
	require.Equal(t, s.posB.ID, *posF.ParentID)
}

func (s *TreeQueryTestSuite) relationsOf(node *TreeNode) []types.Relation {
	relations := make([]types.Relation, len(node.Children))
	for i, child := range node.Children {
		relations[i] = child.Relation
	}
	return relations
}

func (s *TreeQueryTestSuite) TestViewerSeesOwnSubtree() {
	view, err := s.engine.UserTree(s.b.ID, 1, 1)
	require.Nil(s.T(), err)

	assert.Equal(s.T(), s.posB.ID, view.Root.PositionID)
	assert.Equal(s.T(), types.RelationSelf, view.Root.Relation)

	// d was sponsored by someone above b, e directly by b, f by an
	// outsider with no position
	assert.Equal(s.T(), []types.Relation{
		types.RelationUplineOverflow,
		types.RelationDirectPartner,
		types.RelationTeamMember,
	}, s.relationsOf(view.Root))

	require.NotNil(s.T(), view.Parent)
	assert.Equal(s.T(), s.posA.ID, view.Parent.PositionID)
	assert.Equal(s.T(), s.a.ID, view.Parent.UserID)
}

func (s *TreeQueryTestSuite) TestRootViewerSeesOverflowBelow() {
	view, err := s.engine.UserTree(s.a.ID, 1, 1)
	require.Nil(s.T(), err)

	assert.Equal(s.T(), types.RelationSelf, view.Root.Relation)
	assert.Nil(s.T(), view.Parent)
	assert.Equal(s.T(), []types.Relation{
		types.RelationDirectPartner,
		types.RelationDirectPartner,
		types.RelationDirectPartner,
	}, s.relationsOf(view.Root))

	// e sits under b: its sponsor's position hangs below a's own
	under := view.Root.Children[0]
	assert.Equal(s.T(), []types.Relation{
		types.RelationDirectPartner,
		types.RelationBottomOverflow,
		types.RelationTeamMember,
	}, s.relationsOf(under))
}

func (s *TreeQueryTestSuite) TestViewerWithoutPositionGetsFullTree() {
	view, err := s.engine.UserTree(s.outsider.ID, 1, 1)
	require.Nil(s.T(), err)

	// classified relative to the global root's owner
	assert.Equal(s.T(), s.posA.ID, view.Root.PositionID)
	assert.Equal(s.T(), s.a.ID, view.Root.UserID)
	assert.Equal(s.T(), types.RelationSelf, view.Root.Relation)
	assert.Len(s.T(), view.Root.Children, 3)
}

func (s *TreeQueryTestSuite) TestUnknownCycleFallsBackToFirstPosition() {
	view, err := s.engine.BuildCycleSubtree(s.a.ID, 1, 99)
	require.Nil(s.T(), err)
	assert.Equal(s.T(), s.posA.ID, view.Root.PositionID)
	assert.Equal(s.T(), int64(1), view.Root.Cycle)
}

func (s *TreeQueryTestSuite) TestEmptySlotHasNoTree() {
	_, err := s.engine.UserTree(s.outsider.ID, 2, 1)
	assert.ErrorIs(s.T(), err, ErrPositionNotFound)
}

func TestTreeQuery(t *testing.T) {
	suite.Run(t, &TreeQueryTestSuite{})
}
