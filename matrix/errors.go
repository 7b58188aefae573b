package matrix

import "errors"

var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrSlotNotFound is returned when a slot number is not in the catalog.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrPositionNotFound is returned when a referenced position does not exist.
	ErrPositionNotFound = errors.New("position not found")
	// ErrSlotOrder is returned when a slot is activated before its predecessor.
	ErrSlotOrder = errors.New("slots must be activated in ascending order")
	// ErrSlotInactive is returned when the catalog entry is disabled.
	ErrSlotInactive = errors.New("slot is not active")
	// ErrSlotAlreadyActive is returned when a user buys a slot twice. New
	// positions for an owned slot only arrive through re-entry.
	ErrSlotAlreadyActive = errors.New("slot already activated")
	// ErrInsufficientDividend is returned when a deduction exceeds the
	// dividend balance.
	ErrInsufficientDividend = errors.New("insufficient dividend balance")
	// ErrPlacementExhausted means BFS found no open child slot. Completion
	// spawns re-entries before saturation can block placement, so hitting
	// this is an internal invariant violation.
	ErrPlacementExhausted = errors.New("placement search exhausted: matrix invariant violated")
	// ErrConflict is returned by the store when an optimistic child-slot
	// claim loses a race. The engine retries with fresh data.
	ErrConflict = errors.New("concurrent placement conflict")
	// ErrInvalidWallet is returned when a wallet address fails format checks.
	ErrInvalidWallet = errors.New("invalid wallet address")
	// ErrInvalidAmount is returned when a deduction or credit is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")
)
