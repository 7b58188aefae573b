package matrix

import (
	"errors"
	"fmt"

	"github.com/trimatrixio/matrix-engine/common/utils"
	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

// placeRequest describes one position to create.
type placeRequest struct {
	user           *model.User
	slot           *model.Slot
	cycle          int64
	isReentry      bool
	dividendFunded bool
	// trigger is the position whose insertion completed an ancestor, set on
	// re-entry placements only.
	trigger *model.Position
}

// reentryJob is one queued re-entry of a just-completed position.
type reentryJob struct {
	completed *model.Position
	trigger   *model.Position
}

// place creates a position, propagates counts up its ancestor chain, pays
// commissions and drains the re-entry cascade iteratively. Must run inside
// one transaction under the slot lock.
func (e *Engine) place(st Store, req placeRequest) (*model.Position, error) {
	created, completed, err := e.placeOne(st, req)
	if err != nil {
		return nil, err
	}

	queue := utils.NewDeque()
	for _, c := range completed {
		queue.PushBack(reentryJob{completed: c, trigger: created})
	}
	for queue.Len() > 0 {
		item, _ := queue.PopFront()
		job := item.(reentryJob)
		more, err := e.reenter(st, job)
		if err != nil {
			return nil, err
		}
		for _, j := range more {
			queue.PushBack(j)
		}
	}
	return created, nil
}

// placeOne performs a single entry-root resolution, BFS attach, ancestor
// update and payout. It returns the ancestors that completed on this
// insertion, nearest first.
func (e *Engine) placeOne(st Store, req placeRequest) (*model.Position, []*model.Position, error) {
	created, err := e.createPosition(st, req)
	if err != nil {
		return nil, nil, err
	}
	// one chain load serves both count propagation and payouts
	chain, err := st.AncestorChain(created.ID)
	if err != nil {
		return nil, nil, err
	}
	completed, err := e.updateCounts(st, chain)
	if err != nil {
		return nil, nil, err
	}
	if err := e.compensate(st, created, req.slot, chain, req.dividendFunded); err != nil {
		return nil, nil, err
	}
	return created, completed, nil
}

// createPosition resolves the entry root, finds the BFS placement parent and
// attaches a new position under it. The child slot is claimed with a
// conditional update; a lost race reloads the tree and tries again up to
// maxPlaceRetries.
func (e *Engine) createPosition(st Store, req placeRequest) (*model.Position, error) {
	for attempt := 0; attempt < maxPlaceRetries; attempt++ {
		entryRoot, err := e.findEntryRoot(st, req.user, req.slot.Number)
		if err != nil {
			return nil, err
		}

		position := &model.Position{
			UserID:     req.user.ID,
			SponsorID:  req.user.SponsorID,
			SlotNumber: req.slot.Number,
			Cycle:      req.cycle,
			Status:     types.PositionActive,
			IsReentry:  req.isReentry,
		}

		if entryRoot == nil {
			// first-ever position of this slot becomes the global root
			if err := st.CreatePosition(position); err != nil {
				return nil, err
			}
			e.logger.Info("created root position %d: user=%d slot=%d",
				position.ID, req.user.ID, req.slot.Number)
			return position, nil
		}

		parent, err := e.findPlacementParent(st, entryRoot)
		if err != nil {
			return nil, err
		}
		if err := st.ClaimChildSlot(parent.ID); err != nil {
			if errors.Is(err, ErrConflict) {
				e.logger.Warn("placement conflict on parent %d, retrying (%d/%d)",
					parent.ID, attempt+1, maxPlaceRetries)
				continue
			}
			return nil, err
		}
		position.ParentID = &parent.ID
		position.Depth = parent.Depth + 1
		if err := st.CreatePosition(position); err != nil {
			return nil, err
		}
		e.logger.Debug("placed position %d under %d: user=%d slot=%d cycle=%d depth=%d",
			position.ID, parent.ID, req.user.ID, req.slot.Number, req.cycle, position.Depth)
		return position, nil
	}
	return nil, fmt.Errorf("placement retries exceeded: %w", ErrConflict)
}

// findEntryRoot walks the user's sponsor chain, nearest sponsor first, and
// returns the first sponsor's most recent position in this slot. A user with
// no sponsored entry point folds into the slot's oldest root. Returns
// (nil, nil) only when the slot has no positions at all.
func (e *Engine) findEntryRoot(st Store, user *model.User, slotNumber int64) (*model.Position, error) {
	seen := map[int64]bool{user.ID: true}
	sponsorID := user.SponsorID
	for sponsorID != nil {
		if seen[*sponsorID] {
			// sponsor graph is a forest by construction; bail out if not
			e.logger.Error("sponsor chain cycle at user %d", *sponsorID)
			break
		}
		seen[*sponsorID] = true
		position, err := st.LatestPosition(*sponsorID, slotNumber)
		if err != nil {
			return nil, err
		}
		if position != nil {
			return position, nil
		}
		sponsor, err := st.UserByID(*sponsorID)
		if err != nil {
			return nil, err
		}
		if sponsor == nil {
			break
		}
		sponsorID = sponsor.SponsorID
	}
	return st.OldestRoot(slotNumber)
}

// findPlacementParent searches breadth-first from the entry root for the
// first position with an open child slot. Children are visited in creation
// order, which yields the least-depth left-to-right fill of a forced matrix.
func (e *Engine) findPlacementParent(st Store, entryRoot *model.Position) (*model.Position, error) {
	queue := utils.NewDeque()
	queue.PushBack(entryRoot)
	for queue.Len() > 0 {
		item, _ := queue.PopFront()
		node := item.(*model.Position)
		if node.ChildCount < types.MatrixWidth {
			return node, nil
		}
		children, err := st.ChildrenOf(node.ID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			queue.PushBack(child)
		}
	}
	return nil, ErrPlacementExhausted
}
