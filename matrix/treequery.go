package matrix

import (
	"fmt"

	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

// TreeNode is one rendered position with its relation to the viewer.
type TreeNode struct {
	PositionID int64          `json:"position_id"`
	UserID     int64          `json:"user_id"`
	Relation   types.Relation `json:"relation"`
	Cycle      int64          `json:"cycle"`
	IsReentry  bool           `json:"is_reentry"`
	Depth      int64          `json:"depth"`
	Children   []*TreeNode    `json:"children"`
}

// TreeParent identifies the reference position's structural parent, returned
// separately so a caller can render "go up one level" even though the parent
// is not part of the subtree.
type TreeParent struct {
	PositionID int64 `json:"position_id"`
	UserID     int64 `json:"user_id"`
}

// TreeView is a relation-annotated subtree for one viewer.
type TreeView struct {
	Root   *TreeNode   `json:"root"`
	Parent *TreeParent `json:"parent,omitempty"`
}

// treeBuilder carries the per-build state: the viewer, the reference
// position's own chain, and a cache of sponsor-position resolutions.
type treeBuilder struct {
	engine     *Engine
	st         Store
	viewerID   int64
	slotNumber int64
	refID      int64
	refChain   map[int64]bool
	relCache   map[int64]types.Relation
}

// UserTree builds the viewer's relation-annotated subtree for a (slot,
// cycle) pair. A viewer without positions in the slot gets the entire slot
// tree, classified relative to the global root's owner.
func (e *Engine) UserTree(viewerID, slotNumber, cycle int64) (*TreeView, error) {
	positions, err := e.store.PositionsOf(viewerID, slotNumber)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return e.BuildFullSlotTree(slotNumber)
	}
	return e.BuildCycleSubtree(viewerID, slotNumber, cycle)
}

// BuildFullSlotTree renders the whole slot tree from its global root with
// relations computed as if the root's owner were the viewer.
func (e *Engine) BuildFullSlotTree(slotNumber int64) (*TreeView, error) {
	root, err := e.store.OldestRoot(slotNumber)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("slot %d has no positions: %w", slotNumber, ErrPositionNotFound)
	}
	return e.buildView(root.UserID, root)
}

// BuildCycleSubtree renders the subtree rooted at the viewer's position for
// the requested cycle, falling back to the viewer's first position when that
// cycle is absent.
func (e *Engine) BuildCycleSubtree(viewerID, slotNumber, cycle int64) (*TreeView, error) {
	positions, err := e.store.PositionsOf(viewerID, slotNumber)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("user %d has no position in slot %d: %w",
			viewerID, slotNumber, ErrPositionNotFound)
	}
	ref := positions[0]
	for _, p := range positions {
		if p.Cycle == cycle {
			ref = p
			break
		}
	}
	return e.buildView(viewerID, ref)
}

func (e *Engine) buildView(viewerID int64, ref *model.Position) (*TreeView, error) {
	chain, err := e.store.AncestorChain(ref.ID)
	if err != nil {
		return nil, err
	}
	b := &treeBuilder{
		engine:     e,
		st:         e.store,
		viewerID:   viewerID,
		slotNumber: ref.SlotNumber,
		refID:      ref.ID,
		refChain:   map[int64]bool{ref.ID: true},
		relCache:   make(map[int64]types.Relation),
	}
	for _, ancestor := range chain {
		b.refChain[ancestor.ID] = true
	}

	root, err := b.build(ref)
	if err != nil {
		return nil, err
	}
	view := &TreeView{Root: root}
	if len(chain) > 0 {
		view.Parent = &TreeParent{
			PositionID: chain[0].ID,
			UserID:     chain[0].UserID,
		}
	}
	return view, nil
}

func (b *treeBuilder) build(position *model.Position) (*TreeNode, error) {
	relation, err := b.classify(position)
	if err != nil {
		return nil, err
	}
	node := &TreeNode{
		PositionID: position.ID,
		UserID:     position.UserID,
		Relation:   relation,
		Cycle:      position.Cycle,
		IsReentry:  position.IsReentry,
		Depth:      position.Depth,
	}
	children, err := b.st.ChildrenOf(position.ID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		childNode, err := b.build(child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

// classify resolves the relation of one node to the viewer. SELF wins, then
// DIRECT_PARTNER, then the sponsor's structural placement decides between
// the overflow cases, defaulting to TEAM_MEMBER.
func (b *treeBuilder) classify(position *model.Position) (types.Relation, error) {
	if position.UserID == b.viewerID {
		return types.RelationSelf, nil
	}
	if position.SponsorID == nil {
		return types.RelationTeamMember, nil
	}
	sponsorID := *position.SponsorID
	if sponsorID == b.viewerID {
		return types.RelationDirectPartner, nil
	}
	if cached, ok := b.relCache[sponsorID]; ok {
		return cached, nil
	}
	relation, err := b.sponsorRelation(sponsorID)
	if err != nil {
		return "", err
	}
	b.relCache[sponsorID] = relation
	return relation, nil
}

func (b *treeBuilder) sponsorRelation(sponsorID int64) (types.Relation, error) {
	sponsorPositions, err := b.st.PositionsOf(sponsorID, b.slotNumber)
	if err != nil {
		return "", err
	}
	if len(sponsorPositions) == 0 {
		return types.RelationTeamMember, nil
	}
	for _, sp := range sponsorPositions {
		// sponsor sits on the viewer's own chain: node was pushed down past
		// someone structurally above the viewer
		if b.refChain[sp.ID] {
			return types.RelationUplineOverflow, nil
		}
	}
	for _, sp := range sponsorPositions {
		chain, err := b.st.AncestorChain(sp.ID)
		if err != nil {
			return "", err
		}
		for _, ancestor := range chain {
			// viewer sits on the sponsor's chain: overflow happened downward
			if ancestor.ID == b.refID {
				return types.RelationBottomOverflow, nil
			}
		}
	}
	return types.RelationTeamMember, nil
}
