package matrix

import (
	"time"

	model "github.com/trimatrixio/matrix-engine/database/models/matrix"
	"github.com/trimatrixio/matrix-engine/types"
)

// updateCounts applies one insertion to the ancestor chain, nearest first:
// total always increments, the level bucket only within the 3-level window.
// Each ancestor's completion is judged against its own window no matter how
// deep the insertion sits. The chain is persisted in one batch. Returns
// ancestors that completed on this insertion, nearest first.
func (e *Engine) updateCounts(st Store, chain []*model.Position) ([]*model.Position, error) {
	if len(chain) == 0 {
		return nil, nil
	}

	var completed []*model.Position
	for i, ancestor := range chain {
		distance := int64(i + 1)
		switch distance {
		case 1:
			ancestor.Level1++
		case 2:
			ancestor.Level2++
		case 3:
			ancestor.Level3++
		}
		ancestor.Total++

		if !ancestor.Completed &&
			ancestor.Level1+ancestor.Level2+ancestor.Level3 >= types.MatrixCapacity {
			ancestor.Completed = true
			ancestor.Status = types.PositionCompleted
			completed = append(completed, ancestor)
			e.logger.Info("position %d completed: user=%d slot=%d cycle=%d",
				ancestor.ID, ancestor.UserID, ancestor.SlotNumber, ancestor.Cycle)
		}
	}
	if err := st.SavePositions(chain); err != nil {
		return nil, err
	}
	return completed, nil
}

// reenter spawns a fresh entry-rooted position for the owner of a completed
// one. A dangling user or slot reference is logged and skipped so one broken
// link cannot roll back sibling completions already applied.
func (e *Engine) reenter(st Store, job reentryJob) ([]reentryJob, error) {
	user, err := st.UserByID(job.completed.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		e.logger.Warn("re-entry skipped: user %d of position %d not found",
			job.completed.UserID, job.completed.ID)
		return nil, nil
	}
	slot, err := st.SlotByNumber(job.completed.SlotNumber)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		e.logger.Warn("re-entry skipped: slot %d of position %d not found",
			job.completed.SlotNumber, job.completed.ID)
		return nil, nil
	}

	maxCycle, err := st.MaxCycle(user.ID, slot.Number)
	if err != nil {
		return nil, err
	}
	cycleAfter := maxCycle + 1

	created, moreCompleted, err := e.placeOne(st, placeRequest{
		user:      user,
		slot:      slot,
		cycle:     cycleAfter,
		isReentry: true,
		trigger:   job.trigger,
	})
	if err != nil {
		return nil, err
	}

	if err := st.CreateReentryEvent(&model.ReentryEvent{
		UserID:              user.ID,
		SlotNumber:          slot.Number,
		CompletedPositionID: job.completed.ID,
		NewPositionID:       created.ID,
		TriggerPositionID:   job.trigger.ID,
		CycleBefore:         job.completed.Cycle,
		CycleAfter:          cycleAfter,
		Timestamp:           time.Now().Unix(),
	}); err != nil {
		return nil, err
	}
	e.logger.Info("re-entry: position %d -> %d, user=%d slot=%d cycle %d -> %d",
		job.completed.ID, created.ID, user.ID, slot.Number, job.completed.Cycle, cycleAfter)

	jobs := make([]reentryJob, len(moreCompleted))
	for i, c := range moreCompleted {
		jobs[i] = reentryJob{completed: c, trigger: created}
	}
	return jobs, nil
}
